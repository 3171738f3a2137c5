// services/health_check_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type stubModelRepo struct {
	models   []models.AIModel
	disabled []uuid.UUID
}

func (s *stubModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AIModel, error) {
	for i := range s.models {
		if s.models[i].AIModelID == id {
			return &s.models[i], nil
		}
	}
	return nil, nil
}

func (s *stubModelRepo) GetEnabled(ctx context.Context) ([]models.AIModel, error) {
	var enabled []models.AIModel
	for _, m := range s.models {
		if m.IsEnabled {
			enabled = append(enabled, m)
		}
	}
	return enabled, nil
}

func (s *stubModelRepo) GetAll(ctx context.Context) ([]models.AIModel, error) {
	return s.models, nil
}

func (s *stubModelRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	for i := range s.models {
		if s.models[i].AIModelID == id {
			s.models[i].IsEnabled = enabled
		}
	}
	if !enabled {
		s.disabled = append(s.disabled, id)
	}
	return nil
}

type stubStateRepo struct {
	values map[string]string
}

func newStubStateRepo() *stubStateRepo {
	return &stubStateRepo{values: map[string]string{}}
}

func (s *stubStateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubStateRepo) Put(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *stubStateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// stubSelector fails calls for providers listed in failing
type stubSelector struct {
	failing map[string]bool
}

func (s *stubSelector) SelectModel(ctx context.Context, strategy, sessionID string) (*models.AIModel, error) {
	return nil, nil
}

func (s *stubSelector) RecordCallResult(ctx context.Context, modelID uuid.UUID, success bool, latency time.Duration) {
}

func (s *stubSelector) CallModel(ctx context.Context, model *models.AIModel, prompt string, timeout time.Duration) (*ModelCallResult, error) {
	if s.failing[model.Name] {
		return nil, fmt.Errorf("%s: API returned status 500: upstream down", model.Name)
	}
	return &ModelCallResult{Text: "ok"}, nil
}

type stubNotifier struct {
	alerts []string
}

func (s *stubNotifier) SendModelFailureAlert(modelName string, consecutiveFailures int, lastErr string) error {
	s.alerts = append(s.alerts, modelName)
	return nil
}

func TestCheckAllModelsDisablesAfterThreeFailures(t *testing.T) {
	broken := models.AIModel{AIModelID: uuid.New(), Name: "gemini", DisplayName: "Gemini Flash", IsEnabled: true}
	healthy := models.AIModel{AIModelID: uuid.New(), Name: "openai", DisplayName: "GPT-4.1", IsEnabled: true}

	modelRepo := &stubModelRepo{models: []models.AIModel{broken, healthy}}
	repos := &RepositoryManager{AIModelRepo: modelRepo, StateRepo: newStubStateRepo()}
	notifier := &stubNotifier{}
	s := NewHealthCheckService(repos, &stubSelector{failing: map[string]bool{"gemini": true}}, notifier)

	// Two sweeps: streak builds but stays under the threshold
	for i := 0; i < 2; i++ {
		report, err := s.CheckAllModels(context.Background())
		if err != nil {
			t.Fatalf("sweep %d: unexpected error: %v", i, err)
		}
		if len(report.Disabled) != 0 {
			t.Fatalf("sweep %d: model disabled too early", i)
		}
	}

	// Third failure crosses the threshold
	report, err := s.CheckAllModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Disabled) != 1 || report.Disabled[0] != "gemini" {
		t.Fatalf("expected gemini disabled, got %v", report.Disabled)
	}
	if len(modelRepo.disabled) != 1 || modelRepo.disabled[0] != broken.AIModelID {
		t.Errorf("expected SetEnabled(false) for broken model")
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0] != "Gemini Flash" {
		t.Errorf("expected one admin alert for Gemini Flash, got %v", notifier.alerts)
	}
	if report.Healthy != 1 {
		t.Errorf("expected healthy model unaffected, got %d healthy", report.Healthy)
	}
}

func TestCheckAllModelsRecoveryResetsStreak(t *testing.T) {
	flaky := models.AIModel{AIModelID: uuid.New(), Name: "mistral", DisplayName: "Mistral Large", IsEnabled: true}
	modelRepo := &stubModelRepo{models: []models.AIModel{flaky}}
	stateRepo := newStubStateRepo()
	repos := &RepositoryManager{AIModelRepo: modelRepo, StateRepo: stateRepo}
	selector := &stubSelector{failing: map[string]bool{"mistral": true}}
	s := NewHealthCheckService(repos, selector, &stubNotifier{})

	// Two failures, then a recovery, then two more failures: never disabled
	for _, failing := range []bool{true, true, false, true, true} {
		selector.failing["mistral"] = failing
		report, err := s.CheckAllModels(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Disabled) != 0 {
			t.Fatal("streak should have been reset by the successful check")
		}
	}
}
