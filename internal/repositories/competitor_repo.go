// internal/repositories/competitor_repo.go
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

type competitorRepo struct {
	db *Client
}

func NewCompetitorRepo(db *Client) CompetitorRepository {
	return &competitorRepo{db: db}
}

const competitorColumns = `competitor_id, brand_id, name, domain, aliases, status, source, mention_count, created_at, updated_at`

func (r *competitorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Competitor, error) {
	var competitor models.Competitor
	err := r.db.GetContext(ctx, &competitor, `
		SELECT `+competitorColumns+`
		FROM competitors
		WHERE competitor_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor %s: %w", id, err)
	}
	return &competitor, nil
}

func (r *competitorRepo) GetAccepted(ctx context.Context, brandID uuid.UUID) ([]models.Competitor, error) {
	var result []models.Competitor
	err := r.db.SelectContext(ctx, &result, `
		SELECT `+competitorColumns+`
		FROM competitors
		WHERE brand_id = $1 AND status = $2
		ORDER BY name`, brandID, models.CompetitorStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepted competitors for brand %s: %w", brandID, err)
	}
	return result, nil
}

func (r *competitorRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Competitor, error) {
	var result []models.Competitor
	err := r.db.SelectContext(ctx, &result, `
		SELECT `+competitorColumns+`
		FROM competitors
		WHERE brand_id = $1
		ORDER BY name`, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitors for brand %s: %w", brandID, err)
	}
	return result, nil
}

func (r *competitorRepo) Create(ctx context.Context, competitor *models.Competitor) error {
	if competitor.CompetitorID == uuid.Nil {
		competitor.CompetitorID = uuid.New()
	}
	now := time.Now()
	competitor.CreatedAt = now
	competitor.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO competitors (competitor_id, brand_id, name, domain, aliases, status, source, mention_count, created_at, updated_at)
		VALUES (:competitor_id, :brand_id, :name, :domain, :aliases, :status, :source, :mention_count, :created_at, :updated_at)`,
		competitor)
	if err != nil {
		return fmt.Errorf("failed to create competitor %s: %w", competitor.Name, err)
	}
	return nil
}

func (r *competitorRepo) IncrementMentionCount(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE competitors
		SET mention_count = mention_count + $2, updated_at = NOW()
		WHERE competitor_id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to increment mention count for competitor %s: %w", id, err)
	}
	return nil
}
