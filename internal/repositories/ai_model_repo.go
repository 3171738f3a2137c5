// internal/repositories/ai_model_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type aiModelRepo struct {
	db *Client
}

func NewAIModelRepo(db *Client) AIModelRepository {
	return &aiModelRepo{db: db}
}

func (r *aiModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AIModel, error) {
	var model models.AIModel
	err := r.db.GetContext(ctx, &model, `
		SELECT ai_model_id, name, display_name, is_enabled, sort_order, api_config, created_at, updated_at
		FROM ai_models
		WHERE ai_model_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ai model %s: %w", id, err)
	}
	return &model, nil
}

func (r *aiModelRepo) GetEnabled(ctx context.Context) ([]models.AIModel, error) {
	var result []models.AIModel
	err := r.db.SelectContext(ctx, &result, `
		SELECT ai_model_id, name, display_name, is_enabled, sort_order, api_config, created_at, updated_at
		FROM ai_models
		WHERE is_enabled = true
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled ai models: %w", err)
	}
	return result, nil
}

func (r *aiModelRepo) GetAll(ctx context.Context) ([]models.AIModel, error) {
	var result []models.AIModel
	err := r.db.SelectContext(ctx, &result, `
		SELECT ai_model_id, name, display_name, is_enabled, sort_order, api_config, created_at, updated_at
		FROM ai_models
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get ai models: %w", err)
	}
	return result, nil
}

func (r *aiModelRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ai_models
		SET is_enabled = $2, updated_at = NOW()
		WHERE ai_model_id = $1`, id, enabled)
	if err != nil {
		return fmt.Errorf("failed to update ai model %s enabled flag: %w", id, err)
	}
	return nil
}
