// internal/repositories/brand_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type brandRepo struct {
	db *Client
}

func NewBrandRepo(db *Client) BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.GetContext(ctx, &brand, `
		SELECT brand_id, name, website, description, country, created_at, updated_at
		FROM brands
		WHERE brand_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand %s: %w", id, err)
	}
	return &brand, nil
}

func (r *brandRepo) GetAll(ctx context.Context) ([]models.Brand, error) {
	var result []models.Brand
	err := r.db.SelectContext(ctx, &result, `
		SELECT brand_id, name, website, description, country, created_at, updated_at
		FROM brands
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get brands: %w", err)
	}
	return result, nil
}
