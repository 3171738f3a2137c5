// services/health_check_service.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/brandlens/brandlens-workflows/internal/providers"
)

// MaxConsecutiveFailures is how many health checks in a row a model may fail
// before it is disabled
const MaxConsecutiveFailures = 3

// failureStateTTL keeps failure streaks around long enough to span several
// cron runs without persisting stale streaks forever
const failureStateTTL = 48 * time.Hour

type healthCheckService struct {
	repos         *RepositoryManager
	selector      ModelSelectorService
	notifications NotificationService
}

// NewHealthCheckService creates the periodic model health sweeper
func NewHealthCheckService(repos *RepositoryManager, selector ModelSelectorService, notifications NotificationService) HealthCheckService {
	return &healthCheckService{
		repos:         repos,
		selector:      selector,
		notifications: notifications,
	}
}

// CheckAllModels pings every enabled model with a short timeout. A model
// failing its third consecutive check is disabled and the admin alerted.
// Recovery resets the streak.
func (s *healthCheckService) CheckAllModels(ctx context.Context) (*HealthCheckReport, error) {
	enabled, err := s.repos.AIModelRepo.GetEnabled(ctx)
	if err != nil {
		return nil, err
	}

	report := &HealthCheckReport{CheckedAt: time.Now()}
	fmt.Printf("[HealthCheck] 🚀 Checking %d enabled models\n", len(enabled))

	for i := range enabled {
		model := &enabled[i]
		report.Checked++

		_, callErr := s.selector.CallModel(ctx, model, "Reply with the single word: ok", providers.HealthCheckTimeout)
		if callErr == nil {
			report.Healthy++
			s.resetFailureStreak(ctx, model.Name)
			continue
		}

		report.Failed++
		streak := s.bumpFailureStreak(ctx, model.Name)
		fmt.Printf("[HealthCheck] ⚠️ Model %s failed check %d/%d: %v\n", model.Name, streak, MaxConsecutiveFailures, callErr)

		if streak < MaxConsecutiveFailures {
			continue
		}

		if err := s.repos.AIModelRepo.SetEnabled(ctx, model.AIModelID, false); err != nil {
			fmt.Printf("[HealthCheck] ⚠️ Failed to disable model %s: %v\n", model.Name, err)
			continue
		}
		report.Disabled = append(report.Disabled, model.Name)
		fmt.Printf("[HealthCheck] Disabled model %s after %d consecutive failures\n", model.Name, streak)

		if err := s.notifications.SendModelFailureAlert(model.DisplayName, streak, callErr.Error()); err != nil {
			fmt.Printf("[HealthCheck] ⚠️ Failed to send alert for model %s: %v\n", model.Name, err)
		}
	}

	// Opportunistic reaping of expired selector state
	if reaped, err := s.repos.StateRepo.DeleteExpired(ctx); err == nil && reaped > 0 {
		fmt.Printf("[HealthCheck] Reaped %d expired selector state rows\n", reaped)
	}

	fmt.Printf("[HealthCheck] ✅ Done: %d healthy, %d failed, %d disabled\n", report.Healthy, report.Failed, len(report.Disabled))
	return report, nil
}

func failureKey(modelName string) string {
	return "healthcheck:failures:" + modelName
}

func (s *healthCheckService) bumpFailureStreak(ctx context.Context, modelName string) int {
	streak := 1
	if raw, ok, err := s.repos.StateRepo.Get(ctx, failureKey(modelName)); err == nil && ok {
		if prev, err := strconv.Atoi(raw); err == nil {
			streak = prev + 1
		}
	}
	if err := s.repos.StateRepo.Put(ctx, failureKey(modelName), strconv.Itoa(streak), failureStateTTL); err != nil {
		fmt.Printf("[HealthCheck] ⚠️ Failed to persist failure streak for %s: %v\n", modelName, err)
	}
	return streak
}

func (s *healthCheckService) resetFailureStreak(ctx context.Context, modelName string) {
	if err := s.repos.StateRepo.Put(ctx, failureKey(modelName), "0", failureStateTTL); err != nil {
		fmt.Printf("[HealthCheck] ⚠️ Failed to reset failure streak for %s: %v\n", modelName, err)
	}
}
