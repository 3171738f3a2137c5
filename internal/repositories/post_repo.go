// internal/repositories/post_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

type postRepo struct {
	db *Client
}

func NewPostRepo(db *Client) PostRepository {
	return &postRepo{db: db}
}

const postColumns = `post_id, brand_id, title, url, content, created_at, updated_at`

func (r *postRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, `
		SELECT `+postColumns+`
		FROM posts
		WHERE post_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return &post, nil
}
