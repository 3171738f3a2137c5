// workflows/competitor_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/services"
	"github.com/google/uuid"
)

// DefaultCompetitorSuggestions is how many competitors one suggestion run
// asks for
const DefaultCompetitorSuggestions = 5

type CompetitorProcessor struct {
	competitorService services.CompetitorService
	client            inngestgo.Client
}

func NewCompetitorProcessor(competitorService services.CompetitorService) *CompetitorProcessor {
	return &CompetitorProcessor{
		competitorService: competitorService,
	}
}

func (p *CompetitorProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// SuggestCompetitorsEvent represents the event data for competitor discovery
type SuggestCompetitorsEvent struct {
	BrandID     string `json:"brand_id"`
	Count       int    `json:"count,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *CompetitorProcessor) SuggestBrandCompetitors() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "suggest-brand-competitors",
			Name:    "Suggest Brand Competitors - AI Discovery",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.competitors.suggest", nil),
		func(ctx context.Context, input inngestgo.Input[SuggestCompetitorsEvent]) (any, error) {
			brandID := input.Event.Data.BrandID
			count := input.Event.Data.Count
			if count <= 0 {
				count = DefaultCompetitorSuggestions
			}
			fmt.Printf("[SuggestBrandCompetitors] Starting competitor discovery for brand: %s\n", brandID)

			suggested, err := step.Run(ctx, "suggest-competitors", func(ctx context.Context) ([]models.Competitor, error) {
				id, err := uuid.Parse(brandID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand ID: %w", err)
				}
				return p.competitorService.SuggestCompetitors(ctx, id, count)
			})
			if err != nil {
				return nil, fmt.Errorf("competitor suggestion failed: %w", err)
			}

			names := make([]string, 0, len(suggested))
			for _, c := range suggested {
				names = append(names, c.Name)
			}

			return map[string]interface{}{
				"brand_id":  brandID,
				"suggested": len(suggested),
				"names":     names,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create suggest-brand-competitors function: %v\n", err)
	}

	return fn
}
