// internal/repositories/stat_repo.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type competitiveStatRepo struct {
	db *Client
}

func NewCompetitiveStatRepo(db *Client) CompetitiveStatRepository {
	return &competitiveStatRepo{db: db}
}

// Create appends one snapshot row. Stats are never updated in place: each
// analysis session adds a new point to the time series.
func (r *competitiveStatRepo) Create(ctx context.Context, stat *models.BrandCompetitiveStat) error {
	if stat.StatID == uuid.Nil {
		stat.StatID = uuid.New()
	}
	if stat.AnalyzedAt.IsZero() {
		stat.AnalyzedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO brand_competitive_stats (stat_id, brand_id, competitor_id, entity_type, entity_name, visibility, sentiment, position, raw_data, session_id, analyzed_at)
		VALUES (:stat_id, :brand_id, :competitor_id, :entity_type, :entity_name, :visibility, :sentiment, :position, :raw_data, :session_id, :analyzed_at)`,
		stat)
	if err != nil {
		return fmt.Errorf("failed to create competitive stat for %s: %w", stat.EntityName, err)
	}
	return nil
}

func (r *competitiveStatRepo) GetByBrandSince(ctx context.Context, brandID uuid.UUID, since time.Time) ([]models.BrandCompetitiveStat, error) {
	var result []models.BrandCompetitiveStat
	err := r.db.SelectContext(ctx, &result, `
		SELECT stat_id, brand_id, competitor_id, entity_type, entity_name, visibility, sentiment, position, raw_data, session_id, analyzed_at
		FROM brand_competitive_stats
		WHERE brand_id = $1 AND analyzed_at >= $2
		ORDER BY analyzed_at`, brandID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitive stats for brand %s: %w", brandID, err)
	}
	return result, nil
}
