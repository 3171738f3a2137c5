// internal/repositories/resource_repo.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type resourceRepo struct {
	db *Client
}

func NewResourceRepo(db *Client) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) GetByBrandPrompt(ctx context.Context, brandPromptID uuid.UUID) ([]models.BrandPromptResource, error) {
	var result []models.BrandPromptResource
	err := r.db.SelectContext(ctx, &result, `
		SELECT resource_id, brand_prompt_id, url, type, domain, title, description, is_competitor_url, created_at
		FROM brand_prompt_resources
		WHERE brand_prompt_id = $1
		ORDER BY created_at`, brandPromptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resources for brand prompt %s: %w", brandPromptID, err)
	}
	return result, nil
}

func (r *resourceRepo) Replace(ctx context.Context, brandPromptID uuid.UUID, resources []models.BrandPromptResource) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM brand_prompt_resources
		WHERE brand_prompt_id = $1`, brandPromptID); err != nil {
		return fmt.Errorf("failed to delete old resources for brand prompt %s: %w", brandPromptID, err)
	}

	now := time.Now()
	for i := range resources {
		resource := &resources[i]
		if resource.ResourceID == uuid.Nil {
			resource.ResourceID = uuid.New()
		}
		resource.BrandPromptID = brandPromptID
		resource.CreatedAt = now

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO brand_prompt_resources (resource_id, brand_prompt_id, url, type, domain, title, description, is_competitor_url, created_at)
			VALUES (:resource_id, :brand_prompt_id, :url, :type, :domain, :title, :description, :is_competitor_url, :created_at)`,
			resource); err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", resource.URL, err)
		}
	}

	return tx.Commit()
}
