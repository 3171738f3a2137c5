// internal/repositories/post_citation_repo.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type postCitationRepo struct {
	db *Client
}

func NewPostCitationRepo(db *Client) PostCitationRepository {
	return &postCitationRepo{db: db}
}

// Upsert keeps exactly one current result per (post, ai_provider) pair
func (r *postCitationRepo) Upsert(ctx context.Context, citation *models.PostCitation) error {
	if citation.PostCitationID == uuid.Nil {
		citation.PostCitationID = uuid.New()
	}
	if citation.CheckedAt.IsZero() {
		citation.CheckedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO post_citations (post_citation_id, post_id, ai_provider, is_mentioned, position, citation_text, confidence, metadata, checked_at)
		VALUES (:post_citation_id, :post_id, :ai_provider, :is_mentioned, :position, :citation_text, :confidence, :metadata, :checked_at)
		ON CONFLICT (post_id, ai_provider) DO UPDATE
		SET is_mentioned = EXCLUDED.is_mentioned,
		    position = EXCLUDED.position,
		    citation_text = EXCLUDED.citation_text,
		    confidence = EXCLUDED.confidence,
		    metadata = EXCLUDED.metadata,
		    checked_at = EXCLUDED.checked_at`,
		citation)
	if err != nil {
		return fmt.Errorf("failed to upsert citation for post %s provider %s: %w", citation.PostID, citation.AIProvider, err)
	}
	return nil
}

func (r *postCitationRepo) GetByPost(ctx context.Context, postID uuid.UUID) ([]models.PostCitation, error) {
	var result []models.PostCitation
	err := r.db.SelectContext(ctx, &result, `
		SELECT post_citation_id, post_id, ai_provider, is_mentioned, position, citation_text, confidence, metadata, checked_at
		FROM post_citations
		WHERE post_id = $1
		ORDER BY ai_provider`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get citations for post %s: %w", postID, err)
	}
	return result, nil
}
