// services/competitor_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/config"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

type competitorService struct {
	cfg          *config.Config
	repos        *RepositoryManager
	openAIClient *openai.Client
}

// NewCompetitorService creates the service that suggests competitors for a
// brand via OpenAI structured outputs
func NewCompetitorService(cfg *config.Config, repos *RepositoryManager) CompetitorService {
	fmt.Printf("[NewCompetitorService] Creating service with OpenAI key (length: %d)\n", len(cfg.OpenAIAPIKey))

	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &competitorService{
		cfg:          cfg,
		repos:        repos,
		openAIClient: &client,
	}
}

// CompetitorSuggestion is one suggested competitor from the extraction call
type CompetitorSuggestion struct {
	Name    string   `json:"name" jsonschema_description:"Company name of the competitor"`
	Domain  string   `json:"domain" jsonschema_description:"Primary website domain of the competitor, without scheme"`
	Aliases []string `json:"aliases" jsonschema_description:"Alternative names or abbreviations the competitor is known by"`
}

// CompetitorSuggestionResponse is the structured extraction payload
type CompetitorSuggestionResponse struct {
	Competitors []CompetitorSuggestion `json:"competitors" jsonschema_description:"Direct competitors of the brand, strongest first"`
}

// SuggestCompetitors asks OpenAI for the brand's direct competitors and
// stores new ones as suggested rows pending user review. Already-known
// domains are skipped.
func (s *competitorService) SuggestCompetitors(ctx context.Context, brandID uuid.UUID, count int) ([]models.Competitor, error) {
	brand, err := s.repos.BrandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}

	existing, err := s.repos.CompetitorRepo.GetByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Domain)] = true
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "competitor_suggestions",
		Description: openai.String("Identify direct competitors of a brand"),
		Schema:      GenerateSchema[CompetitorSuggestionResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a market research analyst. Identify real, currently operating companies only."),
			openai.UserMessage(s.buildSuggestionPrompt(brand, count)),
		},
		Model: openai.ChatModelGPT4_1,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0), // Deterministic extraction
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest competitors: %w", err)
	}
	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	var suggested CompetitorSuggestionResponse
	if err := json.Unmarshal([]byte(chatResponse.Choices[0].Message.Content), &suggested); err != nil {
		return nil, fmt.Errorf("failed to parse competitor suggestions: %w", err)
	}

	var created []models.Competitor
	for _, suggestion := range suggested.Competitors {
		domain := analysis.ExtractDomain(suggestion.Domain)
		if domain == "" || known[domain] {
			continue
		}
		known[domain] = true

		aliases := models.JSONMap{}
		if len(suggestion.Aliases) > 0 {
			names := make([]interface{}, 0, len(suggestion.Aliases))
			for _, a := range suggestion.Aliases {
				names = append(names, a)
			}
			aliases["names"] = names
		}

		competitor := models.Competitor{
			BrandID: brandID,
			Name:    suggestion.Name,
			Domain:  domain,
			Aliases: aliases,
			Status:  models.CompetitorStatusSuggested,
			Source:  models.CompetitorSourceAI,
		}
		if err := s.repos.CompetitorRepo.Create(ctx, &competitor); err != nil {
			return created, err
		}
		created = append(created, competitor)
		if len(created) == count {
			break
		}
	}

	fmt.Printf("[CompetitorService] ✅ Suggested %d new competitors for brand %s\n", len(created), brand.Name)
	return created, nil
}

func (s *competitorService) buildSuggestionPrompt(brand *models.Brand, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "List up to %d direct competitors of %s (%s).\n", count, brand.Name, brand.Website)
	if brand.Description != nil && *brand.Description != "" {
		fmt.Fprintf(&b, "About the brand: %s\n", *brand.Description)
	}
	if brand.Country != nil && *brand.Country != "" {
		fmt.Fprintf(&b, "Prefer competitors active in %s.\n", *brand.Country)
	}
	b.WriteString("Only include companies that compete for the same customers. Strongest competitors first.")
	return b.String()
}
