// internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

// Repositories return (nil, nil) for a missing row. Errors always mean the
// query itself failed, never "not found".

type AIModelRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.AIModel, error)
	GetEnabled(ctx context.Context) ([]models.AIModel, error)
	GetAll(ctx context.Context) ([]models.AIModel, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

type BrandRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	GetAll(ctx context.Context) ([]models.Brand, error)
}

type CompetitorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Competitor, error)
	GetAccepted(ctx context.Context, brandID uuid.UUID) ([]models.Competitor, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Competitor, error)
	Create(ctx context.Context, competitor *models.Competitor) error
	IncrementMentionCount(ctx context.Context, id uuid.UUID, delta int) error
}

type PostRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
}

type PromptRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Prompt, error)
	GetActiveByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Prompt, error)
	GetByPost(ctx context.Context, postID uuid.UUID) ([]models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	UpdateMetrics(ctx context.Context, id uuid.UUID, visibility *float64, sentiment *int, position *float64) error
	// Deactivation returns how many rows flipped to inactive
	DeactivateByBrand(ctx context.Context, brandID uuid.UUID, source string) (int64, error)
	DeactivateByPost(ctx context.Context, postID uuid.UUID, source string) (int64, error)
}

type BrandPromptRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.BrandPrompt, error)
	Create(ctx context.Context, bp *models.BrandPrompt) error
	SaveAnalysis(ctx context.Context, bp *models.BrandPrompt) error
	MarkFailed(ctx context.Context, id uuid.UUID, analysisErr string) error
}

type ResourceRepository interface {
	GetByBrandPrompt(ctx context.Context, brandPromptID uuid.UUID) ([]models.BrandPromptResource, error)
	// Replace hard-deletes existing rows for the brand prompt and inserts
	// the new set in one transaction
	Replace(ctx context.Context, brandPromptID uuid.UUID, resources []models.BrandPromptResource) error
}

type MentionRepository interface {
	Create(ctx context.Context, mention *models.BrandMention) error
	CreateBatch(ctx context.Context, mentions []models.BrandMention) error
	GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandMention, error)
	CountAnalyzedPrompts(ctx context.Context, brandID uuid.UUID, since time.Time) (int, error)
}

type CompetitiveStatRepository interface {
	Create(ctx context.Context, stat *models.BrandCompetitiveStat) error
	GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandCompetitiveStat, error)
}

type PostCitationRepository interface {
	Upsert(ctx context.Context, citation *models.PostCitation) error
	GetByPost(ctx context.Context, postID uuid.UUID) ([]models.PostCitation, error)
}

// StateRepository is the TTL'd key-value store backing model-selection state
type StateRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int64, error)
}
