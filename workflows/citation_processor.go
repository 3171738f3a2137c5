// workflows/citation_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/brandlens-workflows/services"
	"github.com/google/uuid"
)

type CitationProcessor struct {
	citationService services.CitationCheckService
	client          inngestgo.Client
}

func NewCitationProcessor(citationService services.CitationCheckService) *CitationProcessor {
	return &CitationProcessor{
		citationService: citationService,
	}
}

func (p *CitationProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// CheckCitationsEvent represents the event data for a post citation check
type CheckCitationsEvent struct {
	PostID      string `json:"post_id"`
	SessionID   string `json:"session_id,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *CitationProcessor) CheckPostCitations() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "check-post-citations",
			Name:    "Check Post Citations - Proportional Provider Sampling",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.citations.check", nil),
		func(ctx context.Context, input inngestgo.Input[CheckCitationsEvent]) (any, error) {
			postID := input.Event.Data.PostID
			sessionID := input.Event.Data.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			fmt.Printf("[CheckPostCitations] Starting citation check for post: %s (session %s)\n", postID, sessionID)

			result, err := step.Run(ctx, "check-citations", func(ctx context.Context) (*services.CitationCheckResult, error) {
				id, err := uuid.Parse(postID)
				if err != nil {
					return nil, fmt.Errorf("invalid post ID: %w", err)
				}
				return p.citationService.CheckPostCitations(ctx, id, sessionID)
			})
			if err != nil {
				return nil, fmt.Errorf("citation check failed: %w", err)
			}

			fmt.Printf("[CheckPostCitations] ✅ Checked post %s: %d prompts, %d providers, %d mentioned\n", postID, result.PromptsSelected, result.ProvidersRun, result.Mentioned)
			return map[string]interface{}{
				"post_id":          postID,
				"session_id":       sessionID,
				"prompts_selected": result.PromptsSelected,
				"providers_run":    result.ProvidersRun,
				"mentioned":        result.Mentioned,
			}, nil
		},
	)
	if err != nil {
		fmt.Printf("Failed to create check-post-citations function: %v\n", err)
	}

	return fn
}
