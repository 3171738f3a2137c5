// services/model_selector_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers"
	"github.com/brandlens/brandlens-workflows/internal/selector"
)

type modelSelectorService struct {
	repos    *RepositoryManager
	selector *selector.Selector
	registry *providers.Registry
	costs    CostService
}

// NewModelSelectorService creates the service that picks a model per call
// and dispatches the call through the provider registry
func NewModelSelectorService(repos *RepositoryManager, sel *selector.Selector, registry *providers.Registry, costs CostService) ModelSelectorService {
	return &modelSelectorService{
		repos:    repos,
		selector: sel,
		registry: registry,
		costs:    costs,
	}
}

// SelectModel loads the enabled model set and applies the distribution
// strategy. Returns nil when no model is enabled; callers treat that as "no
// provider available".
func (s *modelSelectorService) SelectModel(ctx context.Context, strategy, sessionID string) (*models.AIModel, error) {
	enabled, err := s.repos.AIModelRepo.GetEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load enabled models: %w", err)
	}

	chosen, err := s.selector.SelectModel(ctx, strategy, sessionID, enabled)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		fmt.Printf("[ModelSelectorService] ⚠️ No enabled models available (strategy %s)\n", strategy)
		return nil, nil
	}

	fmt.Printf("[ModelSelectorService] Selected model %s (%s) via %s\n", chosen.DisplayName, chosen.Name, strategy)
	return chosen, nil
}

func (s *modelSelectorService) RecordCallResult(ctx context.Context, modelID uuid.UUID, success bool, latency time.Duration) {
	s.selector.UpdatePerformanceMetrics(ctx, modelID, success, latency)
}

// CallModel dispatches one prompt to the model's provider, prices the
// result, and records the outcome in the performance metrics
func (s *modelSelectorService) CallModel(ctx context.Context, model *models.AIModel, prompt string, timeout time.Duration) (*ModelCallResult, error) {
	adapter := s.registry.ForProvider(model.Name)

	req := providers.CallRequest{
		Prompt:      prompt,
		Model:       model.ConfigString("model"),
		APIKey:      model.ConfigString("api_key"),
		Temperature: model.ConfigFloat("temperature", 0.7),
		MaxTokens:   int(model.ConfigFloat("max_tokens", 2000)),
		BaseURL:     model.ConfigString("base_url"),
		Timeout:     timeout,
		Extra:       model.APIConfig,
	}

	start := time.Now()
	resp, err := adapter.Call(ctx, req)
	latency := time.Since(start)

	s.selector.UpdatePerformanceMetrics(ctx, model.AIModelID, err == nil, latency)

	if err != nil {
		return nil, fmt.Errorf("provider %s call failed: %w", model.Name, err)
	}

	return &ModelCallResult{
		Text:         resp.Text,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Cost:         s.costs.CalculateCost(model.Name, req.Model, resp.InputTokens, resp.OutputTokens),
		Latency:      latency,
	}, nil
}
