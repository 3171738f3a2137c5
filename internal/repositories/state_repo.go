// internal/repositories/state_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type stateRepo struct {
	db *Client
}

// NewStateRepo returns the postgres-backed key-value store for
// model-selection state. Selection calls are one-shot per workflow step, so
// counters and usage maps live in the selector_state table instead of
// process memory.
func NewStateRepo(db *Client) StateRepository {
	return &stateRepo{db: db}
}

func (r *stateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `
		SELECT value
		FROM selector_state
		WHERE key = $1 AND expires_at > NOW()`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get selector state %q: %w", key, err)
	}
	return value, true, nil
}

func (r *stateRepo) Put(ctx context.Context, key string, value string, ttl time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO selector_state (key, value, expires_at, updated_at)
		VALUES ($1, $2, NOW() + $3::interval, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at`,
		key, value, fmt.Sprintf("%d seconds", int(ttl.Seconds())))
	if err != nil {
		return fmt.Errorf("failed to put selector state %q: %w", key, err)
	}
	return nil
}

// DeleteExpired reaps rows past their TTL. Called opportunistically from the
// health-check cron.
func (r *stateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM selector_state
		WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired selector state: %w", err)
	}
	return result.RowsAffected()
}
