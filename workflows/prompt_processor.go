// workflows/prompt_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/services"
	"github.com/google/uuid"
)

type PromptProcessor struct {
	promptGenerator services.PromptGeneratorService
	client          inngestgo.Client
}

func NewPromptProcessor(promptGenerator services.PromptGeneratorService) *PromptProcessor {
	return &PromptProcessor{
		promptGenerator: promptGenerator,
	}
}

func (p *PromptProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// GeneratePromptsEvent represents the event data for prompt generation.
// PostID scopes the run to one post; empty means brand-level generation.
type GeneratePromptsEvent struct {
	BrandID         string `json:"brand_id"`
	PostID          string `json:"post_id,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
	Description     string `json:"description,omitempty"`
	ReplaceExisting bool   `json:"replace_existing,omitempty"`
	TriggeredBy     string `json:"triggered_by,omitempty"`
}

func (p *PromptProcessor) GenerateBrandPrompts() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "generate-brand-prompts",
			Name:    "Generate Brand Prompts - AI Question Generation",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.prompts.generate", nil),
		func(ctx context.Context, input inngestgo.Input[GeneratePromptsEvent]) (any, error) {
			brandID := input.Event.Data.BrandID
			sessionID := input.Event.Data.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			fmt.Printf("[GenerateBrandPrompts] Starting prompt generation for brand: %s (session %s)\n", brandID, sessionID)

			// Step 1: Generate and persist the prompts
			genResult, err := step.Run(ctx, "generate-prompts", func(ctx context.Context) (*services.GeneratePromptsResult, error) {
				brandUUID, err := uuid.Parse(brandID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand ID: %w", err)
				}
				var postID *uuid.UUID
				if input.Event.Data.PostID != "" {
					postUUID, err := uuid.Parse(input.Event.Data.PostID)
					if err != nil {
						return nil, fmt.Errorf("invalid post ID: %w", err)
					}
					postID = &postUUID
				}
				return p.promptGenerator.GeneratePrompts(ctx, brandUUID, postID, sessionID, input.Event.Data.Description, input.Event.Data.ReplaceExisting)
			})
			if err != nil {
				return nil, fmt.Errorf("prompt generation failed: %w", err)
			}

			// Step 2: Fan out one analysis event per created prompt. One
			// step per event keeps the sends idempotent across retries.
			for _, brandPromptID := range genResult.BrandPromptIDs {
				stepName := fmt.Sprintf("trigger-analysis-%s", brandPromptID)
				id := brandPromptID
				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "brand.prompt.analyze",
						Data: map[string]interface{}{
							"brand_prompt_id": id.String(),
							"session_id":      sessionID,
							"triggered_by":    "prompt_generation",
						},
					}
					return p.client.Send(ctx, evt)
				})
				if err != nil {
					return nil, fmt.Errorf("failed to trigger analysis for brand prompt %s: %w", id, err)
				}
			}

			fmt.Printf("[GenerateBrandPrompts] ✅ Generated %d prompts for brand %s (fallback: %v)\n", genResult.Created, brandID, genResult.UsedFallback)
			return map[string]interface{}{
				"brand_id":      brandID,
				"post_id":       input.Event.Data.PostID,
				"session_id":    sessionID,
				"created":       genResult.Created,
				"deactivated":   genResult.Deactivated,
				"used_fallback": genResult.UsedFallback,
				"ai_provider":   genResult.AIProvider,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create generate-brand-prompts function: %v\n", err)
	}

	return fn
}
