// workflows/stats_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
	"github.com/brandlens/brandlens-workflows/services"
	"github.com/google/uuid"
)

// statsWindow is the trailing window each snapshot aggregates over
const statsWindow = 24 * time.Hour

type StatsProcessor struct {
	visibilityService services.VisibilityService
	brandRepo         repositories.BrandRepository
	client            inngestgo.Client
}

func NewStatsProcessor(visibilityService services.VisibilityService, brandRepo repositories.BrandRepository) *StatsProcessor {
	return &StatsProcessor{
		visibilityService: visibilityService,
		brandRepo:         brandRepo,
	}
}

func (p *StatsProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// UpdateStatsEvent represents the event data for one brand's stat snapshot
type UpdateStatsEvent struct {
	BrandID     string `json:"brand_id"`
	SessionID   string `json:"session_id,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *StatsProcessor) UpdateBrandStats() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "update-brand-stats",
			Name:    "Update Brand Competitive Stats - Visibility Snapshot",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.stats.update", nil),
		func(ctx context.Context, input inngestgo.Input[UpdateStatsEvent]) (any, error) {
			brandID := input.Event.Data.BrandID
			sessionID := input.Event.Data.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			inserted, err := step.Run(ctx, "update-competitive-stats", func(ctx context.Context) (int, error) {
				id, err := uuid.Parse(brandID)
				if err != nil {
					return 0, fmt.Errorf("invalid brand ID: %w", err)
				}
				return p.visibilityService.UpdateCompetitiveStats(ctx, id, sessionID, statsWindow)
			})
			if err != nil {
				return nil, fmt.Errorf("stats update failed: %w", err)
			}

			return map[string]interface{}{
				"brand_id":   brandID,
				"session_id": sessionID,
				"snapshots":  inserted,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create update-brand-stats function: %v\n", err)
	}

	return fn
}

// DailyStatsSnapshot fans out one stats-update event per brand every night
func (p *StatsProcessor) DailyStatsSnapshot() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-stats-snapshot",
			Name: "Daily Stats Snapshot - All Brands",
		},
		inngestgo.CronTrigger("0 3 * * *"), // Every day at 3 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			brands, err := step.Run(ctx, "get-brands", func(ctx context.Context) ([]models.Brand, error) {
				return p.brandRepo.GetAll(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to load brands: %w", err)
			}

			sessionID := uuid.NewString()
			for _, brand := range brands {
				stepName := fmt.Sprintf("trigger-stats-%s", brand.BrandID)
				brandID := brand.BrandID
				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "brand.stats.update",
						Data: map[string]interface{}{
							"brand_id":     brandID.String(),
							"session_id":   sessionID,
							"triggered_by": "daily_snapshot",
						},
					}
					return p.client.Send(ctx, evt)
				})
				if err != nil {
					return nil, fmt.Errorf("failed to trigger stats update for brand %s: %w", brandID, err)
				}
			}

			return map[string]interface{}{
				"session_id":   sessionID,
				"total_brands": len(brands),
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create daily-stats-snapshot function: %v\n", err)
	}

	return fn
}
