// internal/repositories/prompt_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type promptRepo struct {
	db *Client
}

func NewPromptRepo(db *Client) PromptRepository {
	return &promptRepo{db: db}
}

const promptColumns = `prompt_id, brand_id, post_id, text, source, ai_provider, sort_order, status, visibility, sentiment, position, volume, created_at, updated_at`

func (r *promptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.GetContext(ctx, &prompt, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE prompt_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt %s: %w", id, err)
	}
	return &prompt, nil
}

func (r *promptRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Prompt, error) {
	var result []models.Prompt
	err := r.db.SelectContext(ctx, &result, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE brand_id = $1
		ORDER BY sort_order, created_at`, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts for brand %s: %w", brandID, err)
	}
	return result, nil
}

func (r *promptRepo) GetActiveByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Prompt, error) {
	var result []models.Prompt
	err := r.db.SelectContext(ctx, &result, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE brand_id = $1 AND status = $2
		ORDER BY sort_order, created_at`, brandID, models.PromptStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active prompts for brand %s: %w", brandID, err)
	}
	return result, nil
}

func (r *promptRepo) GetByPost(ctx context.Context, postID uuid.UUID) ([]models.Prompt, error) {
	var result []models.Prompt
	err := r.db.SelectContext(ctx, &result, `
		SELECT `+promptColumns+`
		FROM prompts
		WHERE post_id = $1
		ORDER BY sort_order, created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts for post %s: %w", postID, err)
	}
	return result, nil
}

func (r *promptRepo) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.PromptID == uuid.Nil {
		prompt.PromptID = uuid.New()
	}
	now := time.Now()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO prompts (prompt_id, brand_id, post_id, text, source, ai_provider, sort_order, status, visibility, sentiment, position, volume, created_at, updated_at)
		VALUES (:prompt_id, :brand_id, :post_id, :text, :source, :ai_provider, :sort_order, :status, :visibility, :sentiment, :position, :volume, :created_at, :updated_at)`,
		prompt)
	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	return nil
}

func (r *promptRepo) UpdateMetrics(ctx context.Context, id uuid.UUID, visibility *float64, sentiment *int, position *float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE prompts
		SET visibility = $2, sentiment = $3, position = $4, updated_at = NOW()
		WHERE prompt_id = $1`, id, visibility, sentiment, position)
	if err != nil {
		return fmt.Errorf("failed to update metrics for prompt %s: %w", id, err)
	}
	return nil
}

// DeactivateByBrand marks a brand's brand-level prompts from one source
// inactive. Used when regenerating with replaceExisting so old AI suggestions
// stop being analyzed without losing their history. Post-level prompts are
// untouched; those are replaced per post.
func (r *promptRepo) DeactivateByBrand(ctx context.Context, brandID uuid.UUID, source string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prompts
		SET status = $3, updated_at = NOW()
		WHERE brand_id = $1 AND post_id IS NULL AND source = $2 AND status != $3`,
		brandID, source, models.PromptStatusInactive)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate prompts for brand %s: %w", brandID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (r *promptRepo) DeactivateByPost(ctx context.Context, postID uuid.UUID, source string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prompts
		SET status = $3, updated_at = NOW()
		WHERE post_id = $1 AND source = $2 AND status != $3`,
		postID, source, models.PromptStatusInactive)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate prompts for post %s: %w", postID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
