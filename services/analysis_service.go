// services/analysis_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers"
)

type analysisService struct {
	repos    *RepositoryManager
	selector ModelSelectorService
}

// NewAnalysisService creates the service that runs the two-section analysis
// call for one prompt and persists everything the parser extracts
func NewAnalysisService(repos *RepositoryManager, selector ModelSelectorService) AnalysisService {
	return &analysisService{
		repos:    repos,
		selector: selector,
	}
}

// AnalyzeBrandPrompt runs one analysis pass. Already-completed prompts are
// skipped unless forceRegenerate is set. A provider failure marks the row
// failed and returns the error so the job layer can retry.
func (s *analysisService) AnalyzeBrandPrompt(ctx context.Context, brandPromptID uuid.UUID, sessionID string, forceRegenerate bool) (*AnalysisRunResult, error) {
	bp, err := s.repos.BrandPromptRepo.GetByID(ctx, brandPromptID)
	if err != nil {
		return nil, err
	}
	if bp == nil {
		return nil, fmt.Errorf("brand prompt %s not found", brandPromptID)
	}

	if bp.AnalysisCompletedAt != nil && !forceRegenerate {
		fmt.Printf("[AnalysisService] Brand prompt %s already analyzed at %s - skipping\n", brandPromptID, bp.AnalysisCompletedAt.Format(time.RFC3339))
		result := &AnalysisRunResult{BrandPromptID: brandPromptID, Skipped: true}
		if bp.AIProvider != nil {
			result.AIProvider = *bp.AIProvider
		}
		if bp.Sentiment != nil {
			result.Sentiment = *bp.Sentiment
		}
		if bp.Position != nil {
			result.Position = *bp.Position
		}
		if existing, err := s.repos.ResourceRepo.GetByBrandPrompt(ctx, brandPromptID); err == nil {
			result.Resources = len(existing)
		}
		return result, nil
	}

	prompt, err := s.repos.PromptRepo.GetByID(ctx, bp.PromptID)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, fmt.Errorf("prompt %s not found for brand prompt %s", bp.PromptID, brandPromptID)
	}

	brand, err := s.repos.BrandRepo.GetByID(ctx, bp.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found", bp.BrandID)
	}

	competitors, err := s.repos.CompetitorRepo.GetAccepted(ctx, bp.BrandID)
	if err != nil {
		return nil, err
	}

	model, err := s.selector.SelectModel(ctx, models.StrategyWeighted, sessionID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("analysis of brand prompt %s: %w", brandPromptID, ErrNoEnabledModel)
	}

	competitorNames := make([]string, 0, len(competitors))
	competitorRefs := make([]analysis.CompetitorRef, 0, len(competitors))
	for _, c := range competitors {
		competitorNames = append(competitorNames, c.Name)
		competitorRefs = append(competitorRefs, analysis.CompetitorRef{Name: c.Name, Domain: c.Domain})
	}

	instruction := analysis.BuildAnalysisPrompt(analysis.PromptInput{
		Question:        prompt.Text,
		BrandName:       brand.Name,
		BrandDomain:     analysis.ExtractDomain(brand.Website),
		CompetitorNames: competitorNames,
	})

	fmt.Printf("[AnalysisService] Analyzing prompt %q for brand %s via %s\n", prompt.Text, brand.Name, model.Name)

	call, err := s.selector.CallModel(ctx, model, instruction, providers.AnalysisTimeout)
	if err != nil {
		if markErr := s.repos.BrandPromptRepo.MarkFailed(ctx, brandPromptID, err.Error()); markErr != nil {
			fmt.Printf("[AnalysisService] ⚠️ Failed to mark brand prompt %s failed: %v\n", brandPromptID, markErr)
		}
		return nil, err
	}

	parsed := analysis.Parse(call.Text)

	resources := make([]models.BrandPromptResource, 0, len(parsed.Resources))
	for _, r := range parsed.Resources {
		normalized := analysis.NormalizeResource(r, competitorRefs)
		resources = append(resources, models.BrandPromptResource{
			URL:             normalized.URL,
			Type:            normalized.Type,
			Domain:          normalized.Domain,
			Title:           normalized.Title,
			Description:     normalized.Description,
			IsCompetitorURL: normalized.IsCompetitorURL,
		})
	}

	sentiment := analysis.SentimentScore(parsed.Sentiment)
	now := time.Now()
	bp.AIResponse = &parsed.Answer
	bp.Sentiment = &sentiment
	bp.Position = &parsed.Position
	bp.CompetitorMentions = parsed.CompetitorMentions
	bp.AIProvider = &model.Name
	bp.InputTokens = &call.InputTokens
	bp.OutputTokens = &call.OutputTokens
	bp.TotalCost = &call.Cost
	bp.AnalysisCompletedAt = &now
	bp.Resources = resourceSummary(resources)

	if err := s.repos.BrandPromptRepo.SaveAnalysis(ctx, bp); err != nil {
		return nil, err
	}

	// Resources are fully replaced on every pass, never merged
	if err := s.repos.ResourceRepo.Replace(ctx, brandPromptID, resources); err != nil {
		return nil, err
	}

	mentions, err := s.recordMentions(ctx, bp, prompt, brand, competitors, parsed, model.Name, sessionID, sentiment)
	if err != nil {
		return nil, err
	}

	position := float64(parsed.Position)
	if err := s.repos.PromptRepo.UpdateMetrics(ctx, prompt.PromptID, prompt.Visibility, &sentiment, &position); err != nil {
		fmt.Printf("[AnalysisService] ⚠️ Failed to update metrics for prompt %s: %v\n", prompt.PromptID, err)
	}

	fmt.Printf("[AnalysisService] ✅ Analyzed prompt %s: sentiment=%s position=%d resources=%d mentions=%d cost=$%.4f\n",
		prompt.PromptID, parsed.Sentiment, parsed.Position, len(resources), mentions, call.Cost)

	return &AnalysisRunResult{
		BrandPromptID: brandPromptID,
		AIProvider:    model.Name,
		Sentiment:     sentiment,
		Position:      parsed.Position,
		Resources:     len(resources),
		Mentions:      mentions,
		TotalCost:     call.Cost,
	}, nil
}

// recordMentions scans the answer for the brand and every accepted
// competitor and appends the resulting mention events
func (s *analysisService) recordMentions(ctx context.Context, bp *models.BrandPrompt, prompt *models.Prompt, brand *models.Brand, competitors []models.Competitor, parsed *analysis.ParsedResponse, modelName, sessionID string, sentiment int) (int, error) {
	entities := []analysis.SearchEntity{{
		EntityType: models.EntityTypeBrand,
		Name:       brand.Name,
		Domain:     analysis.ExtractDomain(brand.Website),
	}}
	for i := range competitors {
		c := &competitors[i]
		entities = append(entities, analysis.SearchEntity{
			EntityType:   models.EntityTypeCompetitor,
			Name:         c.Name,
			Aliases:      c.AliasNames(),
			Domain:       c.Domain,
			CompetitorID: &c.CompetitorID,
		})
	}

	events := analysis.ExtractMentions(parsed.Answer, entities)
	if len(events) == 0 {
		return 0, nil
	}

	rows := make([]models.BrandMention, 0, len(events))
	for _, ev := range events {
		rows = append(rows, models.BrandMention{
			BrandID:      bp.BrandID,
			PromptID:     prompt.PromptID,
			CompetitorID: ev.CompetitorID,
			EntityType:   ev.EntityType,
			EntityName:   ev.EntityName,
			EntityDomain: ev.EntityDomain,
			MentionCount: ev.MentionCount,
			Position:     ev.Position,
			Context:      ev.Context,
			Sentiment:    &sentiment,
			AIModel:      &modelName,
			SessionID:    sessionID,
		})
	}
	if err := s.repos.MentionRepo.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}

	for _, ev := range events {
		if ev.CompetitorID == nil {
			continue
		}
		if err := s.repos.CompetitorRepo.IncrementMentionCount(ctx, *ev.CompetitorID, ev.MentionCount); err != nil {
			fmt.Printf("[AnalysisService] ⚠️ Failed to bump mention count for competitor %s: %v\n", *ev.CompetitorID, err)
		}
	}

	return len(events), nil
}

// resourceSummary stores a compact copy of the extracted resources on the
// brand_prompts row for dashboard reads that skip the resource table
func resourceSummary(resources []models.BrandPromptResource) models.JSONMap {
	urls := make([]interface{}, 0, len(resources))
	for _, r := range resources {
		urls = append(urls, map[string]interface{}{
			"url":  r.URL,
			"type": r.Type,
		})
	}
	return models.JSONMap{"count": len(resources), "urls": urls}
}
