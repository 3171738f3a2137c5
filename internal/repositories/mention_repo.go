// internal/repositories/mention_repo.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type mentionRepo struct {
	db *Client
}

func NewMentionRepo(db *Client) MentionRepository {
	return &mentionRepo{db: db}
}

const mentionInsert = `
	INSERT INTO brand_mentions (brand_mention_id, brand_id, prompt_id, competitor_id, entity_type, entity_name, entity_domain, mention_count, position, context, sentiment, ai_model, session_id, analyzed_at)
	VALUES (:brand_mention_id, :brand_id, :prompt_id, :competitor_id, :entity_type, :entity_name, :entity_domain, :mention_count, :position, :context, :sentiment, :ai_model, :session_id, :analyzed_at)`

func (r *mentionRepo) Create(ctx context.Context, mention *models.BrandMention) error {
	if mention.BrandMentionID == uuid.Nil {
		mention.BrandMentionID = uuid.New()
	}
	if mention.AnalyzedAt.IsZero() {
		mention.AnalyzedAt = time.Now()
	}

	if _, err := r.db.NamedExecContext(ctx, mentionInsert, mention); err != nil {
		return fmt.Errorf("failed to create mention for %s: %w", mention.EntityName, err)
	}
	return nil
}

func (r *mentionRepo) CreateBatch(ctx context.Context, mentions []models.BrandMention) error {
	if len(mentions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := range mentions {
		mention := &mentions[i]
		if mention.BrandMentionID == uuid.Nil {
			mention.BrandMentionID = uuid.New()
		}
		if mention.AnalyzedAt.IsZero() {
			mention.AnalyzedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, mentionInsert, mention); err != nil {
			return fmt.Errorf("failed to insert mention for %s: %w", mention.EntityName, err)
		}
	}

	return tx.Commit()
}

func (r *mentionRepo) GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandMention, error) {
	var result []models.BrandMention
	err := r.db.SelectContext(ctx, &result, `
		SELECT brand_mention_id, brand_id, prompt_id, competitor_id, entity_type, entity_name, entity_domain, mention_count, position, context, sentiment, ai_model, session_id, analyzed_at
		FROM brand_mentions
		WHERE brand_id = $1 AND analyzed_at >= $2
		ORDER BY analyzed_at`, brandID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions for brand %s: %w", brandID, err)
	}
	return result, nil
}

// CountAnalyzedPrompts counts distinct prompts with at least one mention
// event in the window. This is the visibility denominator: prompts whose
// answers mentioned nothing at all do not count.
func (r *mentionRepo) CountAnalyzedPrompts(ctx context.Context, brandID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT prompt_id)
		FROM brand_mentions
		WHERE brand_id = $1 AND analyzed_at >= $2`, brandID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyzed prompts for brand %s: %w", brandID, err)
	}
	return count, nil
}
