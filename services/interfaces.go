// services/interfaces.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/jmoiron/sqlx"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/repositories"
)

// ErrNoEnabledModel is returned by paths that cannot proceed without a model.
// Selection itself soft-misses with (nil, nil); callers that must have a model
// wrap this.
var ErrNoEnabledModel = errors.New("no enabled model available")

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db                  *repositories.Client
	AIModelRepo         repositories.AIModelRepository
	BrandRepo           repositories.BrandRepository
	CompetitorRepo      repositories.CompetitorRepository
	PostRepo            repositories.PostRepository
	PromptRepo          repositories.PromptRepository
	BrandPromptRepo     repositories.BrandPromptRepository
	ResourceRepo        repositories.ResourceRepository
	MentionRepo         repositories.MentionRepository
	CompetitiveStatRepo repositories.CompetitiveStatRepository
	PostCitationRepo    repositories.PostCitationRepository
	StateRepo           repositories.StateRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *repositories.Client) *RepositoryManager {
	return &RepositoryManager{
		db:                  db,
		AIModelRepo:         repositories.NewAIModelRepo(db),
		BrandRepo:           repositories.NewBrandRepo(db),
		CompetitorRepo:      repositories.NewCompetitorRepo(db),
		PostRepo:            repositories.NewPostRepo(db),
		PromptRepo:          repositories.NewPromptRepo(db),
		BrandPromptRepo:     repositories.NewBrandPromptRepo(db),
		ResourceRepo:        repositories.NewResourceRepo(db),
		MentionRepo:         repositories.NewMentionRepo(db),
		CompetitiveStatRepo: repositories.NewCompetitiveStatRepo(db),
		PostCitationRepo:    repositories.NewPostCitationRepo(db),
		StateRepo:           repositories.NewStateRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx, nil)
}

// ModelSelectorService picks the model to use for a call and feeds call
// outcomes back into the performance metrics
type ModelSelectorService interface {
	SelectModel(ctx context.Context, strategy, sessionID string) (*models.AIModel, error)
	RecordCallResult(ctx context.Context, modelID uuid.UUID, success bool, latency time.Duration)
	CallModel(ctx context.Context, model *models.AIModel, prompt string, timeout time.Duration) (*ModelCallResult, error)
}

// ModelCallResult is one completed provider call
type ModelCallResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Cost         float64
	Latency      time.Duration
}

// PromptGeneratorService produces candidate end-user questions for a brand
// or, when postID is set, for one of the brand's posts
type PromptGeneratorService interface {
	GeneratePrompts(ctx context.Context, brandID uuid.UUID, postID *uuid.UUID, sessionID, description string, replaceExisting bool) (*GeneratePromptsResult, error)
	GenerateQuestions(ctx context.Context, subject SubjectContext, count int) ([]string, error)
}

// SubjectContext describes what the generated questions should be about.
// Topic is set for post-level generation and narrows the questions to the
// post's subject matter.
type SubjectContext struct {
	Name        string
	Website     string
	Description string
	Country     string
	Topic       string
}

// GeneratePromptsResult summarizes one prompt-generation run
type GeneratePromptsResult struct {
	BrandID        uuid.UUID   `json:"brand_id"`
	PostID         *uuid.UUID  `json:"post_id,omitempty"`
	Created        int         `json:"created"`
	Deactivated    int         `json:"deactivated"`
	UsedFallback   bool        `json:"used_fallback"`
	AIProvider     string      `json:"ai_provider"`
	BrandPromptIDs []uuid.UUID `json:"brand_prompt_ids"`
}

// AnalysisService runs the two-section analysis call for one prompt and
// persists the parsed result
type AnalysisService interface {
	AnalyzeBrandPrompt(ctx context.Context, brandPromptID uuid.UUID, sessionID string, forceRegenerate bool) (*AnalysisRunResult, error)
}

// AnalysisRunResult summarizes one analysis pass
type AnalysisRunResult struct {
	BrandPromptID uuid.UUID `json:"brand_prompt_id"`
	Skipped       bool      `json:"skipped"`
	AIProvider    string    `json:"ai_provider"`
	Sentiment     int       `json:"sentiment"`
	Position      int       `json:"position"`
	Resources     int       `json:"resources"`
	Mentions      int       `json:"mentions"`
	TotalCost     float64   `json:"total_cost"`
}

// VisibilityService aggregates mention events into presence-frequency
// visibility and snapshots competitive stats
type VisibilityService interface {
	CalculateVisibility(ctx context.Context, brandID uuid.UUID, windowStart, windowEnd time.Time) (*models.VisibilityReport, error)
	UpdateCompetitiveStats(ctx context.Context, brandID uuid.UUID, sessionID string, window time.Duration) (int, error)
}

// CitationCheckService proportionally samples prompts per provider and runs
// the citation check for a post
type CitationCheckService interface {
	SelectPrompts(grouped map[string][]models.Prompt, cap int) []models.Prompt
	CheckPostCitations(ctx context.Context, postID uuid.UUID, sessionID string) (*CitationCheckResult, error)
}

// CitationCheckResult summarizes one citation-check run
type CitationCheckResult struct {
	PostID          uuid.UUID `json:"post_id"`
	PromptsSelected int       `json:"prompts_selected"`
	ProvidersRun    int       `json:"providers_run"`
	Mentioned       int       `json:"mentioned"`
}

// CompetitorService suggests competitors for a brand via structured outputs
type CompetitorService interface {
	SuggestCompetitors(ctx context.Context, brandID uuid.UUID, count int) ([]models.Competitor, error)
}

// HealthCheckService pings every configured model and disables the ones
// that keep failing
type HealthCheckService interface {
	CheckAllModels(ctx context.Context) (*HealthCheckReport, error)
}

// HealthCheckReport summarizes one health-check sweep
type HealthCheckReport struct {
	Checked   int       `json:"checked"`
	Healthy   int       `json:"healthy"`
	Failed    int       `json:"failed"`
	Disabled  []string  `json:"disabled,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NotificationService is the admin alert side-channel
type NotificationService interface {
	SendModelFailureAlert(modelName string, consecutiveFailures int, lastErr string) error
}

// CostService prices completed provider calls
type CostService interface {
	CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
