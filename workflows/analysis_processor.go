// workflows/analysis_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/services"
	"github.com/google/uuid"
)

type AnalysisProcessor struct {
	analysisService services.AnalysisService
	client          inngestgo.Client
}

func NewAnalysisProcessor(analysisService services.AnalysisService) *AnalysisProcessor {
	return &AnalysisProcessor{
		analysisService: analysisService,
	}
}

func (p *AnalysisProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// AnalyzePromptEvent represents the event data for one prompt analysis
type AnalyzePromptEvent struct {
	BrandPromptID   string `json:"brand_prompt_id"`
	SessionID       string `json:"session_id,omitempty"`
	ForceRegenerate bool   `json:"force_regenerate,omitempty"`
	TriggeredBy     string `json:"triggered_by,omitempty"`
}

func (p *AnalysisProcessor) AnalyzeBrandPrompt() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "analyze-brand-prompt",
			Name:    "Analyze Brand Prompt - AI Visibility Analysis",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.prompt.analyze", nil),
		func(ctx context.Context, input inngestgo.Input[AnalyzePromptEvent]) (any, error) {
			brandPromptID := input.Event.Data.BrandPromptID
			sessionID := input.Event.Data.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			fmt.Printf("[AnalyzeBrandPrompt] Starting analysis for brand prompt: %s (session %s)\n", brandPromptID, sessionID)

			result, err := step.Run(ctx, "run-analysis", func(ctx context.Context) (*services.AnalysisRunResult, error) {
				id, err := uuid.Parse(brandPromptID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand prompt ID: %w", err)
				}
				return p.analysisService.AnalyzeBrandPrompt(ctx, id, sessionID, input.Event.Data.ForceRegenerate)
			})
			if err != nil {
				return nil, fmt.Errorf("analysis failed: %w", err)
			}

			if result.Skipped {
				fmt.Printf("[AnalyzeBrandPrompt] Brand prompt %s already analyzed - skipped\n", brandPromptID)
				return map[string]interface{}{
					"brand_prompt_id": brandPromptID,
					"skipped":         true,
				}, nil
			}

			fmt.Printf("[AnalyzeBrandPrompt] ✅ Analysis complete for %s: %d resources, %d mentions\n", brandPromptID, result.Resources, result.Mentions)
			return map[string]interface{}{
				"brand_prompt_id": brandPromptID,
				"session_id":      sessionID,
				"ai_provider":     result.AIProvider,
				"sentiment":       result.Sentiment,
				"position":        result.Position,
				"resources":       result.Resources,
				"mentions":        result.Mentions,
				"total_cost":      result.TotalCost,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create analyze-brand-prompt function: %v\n", err)
	}

	return fn
}
