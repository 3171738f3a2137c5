// internal/repositories/brand_prompt_repo.go
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

type brandPromptRepo struct {
	db *Client
}

func NewBrandPromptRepo(db *Client) BrandPromptRepository {
	return &brandPromptRepo{db: db}
}

const brandPromptColumns = `brand_prompt_id, brand_id, prompt_id, ai_response, resources, sentiment, position, competitor_mentions, ai_provider, input_tokens, output_tokens, total_cost, analysis_completed_at, analysis_failed_at, analysis_error, created_at, updated_at`

func (r *brandPromptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BrandPrompt, error) {
	var bp models.BrandPrompt
	err := r.db.GetContext(ctx, &bp, `
		SELECT `+brandPromptColumns+`
		FROM brand_prompts
		WHERE brand_prompt_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand prompt %s: %w", id, err)
	}
	return &bp, nil
}

func (r *brandPromptRepo) Create(ctx context.Context, bp *models.BrandPrompt) error {
	if bp.BrandPromptID == uuid.Nil {
		bp.BrandPromptID = uuid.New()
	}
	now := time.Now()
	bp.CreatedAt = now
	bp.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO brand_prompts (brand_prompt_id, brand_id, prompt_id, created_at, updated_at)
		VALUES (:brand_prompt_id, :brand_id, :prompt_id, :created_at, :updated_at)`,
		bp)
	if err != nil {
		return fmt.Errorf("failed to create brand prompt: %w", err)
	}
	return nil
}

// SaveAnalysis overwrites the analysis columns for the prompt's row. The row
// is 1:1 with the prompt, so a re-run replaces the previous result and
// clears any earlier failure marker.
func (r *brandPromptRepo) SaveAnalysis(ctx context.Context, bp *models.BrandPrompt) error {
	bp.UpdatedAt = time.Now()
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE brand_prompts
		SET ai_response = :ai_response,
		    resources = :resources,
		    sentiment = :sentiment,
		    position = :position,
		    competitor_mentions = :competitor_mentions,
		    ai_provider = :ai_provider,
		    input_tokens = :input_tokens,
		    output_tokens = :output_tokens,
		    total_cost = :total_cost,
		    analysis_completed_at = :analysis_completed_at,
		    analysis_failed_at = NULL,
		    analysis_error = NULL,
		    updated_at = :updated_at
		WHERE brand_prompt_id = :brand_prompt_id`,
		bp)
	if err != nil {
		return fmt.Errorf("failed to save analysis for brand prompt %s: %w", bp.BrandPromptID, err)
	}
	return nil
}

func (r *brandPromptRepo) MarkFailed(ctx context.Context, id uuid.UUID, analysisErr string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE brand_prompts
		SET analysis_failed_at = NOW(), analysis_error = $2, updated_at = NOW()
		WHERE brand_prompt_id = $1`, id, analysisErr)
	if err != nil {
		return fmt.Errorf("failed to mark brand prompt %s failed: %w", id, err)
	}
	return nil
}
