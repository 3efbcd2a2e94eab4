package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/site-scraper/internal/entity"
)

// ErrConfigNotFound is returned when the caller has no saved config.
var ErrConfigNotFound = errors.New("feishu config not found")

// pgxPool is the subset of *pgxpool.Pool used by repositories.
type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// FeishuConfigRepository stores sealed destination configs keyed by subject.
type FeishuConfigRepository interface {
	Get(ctx context.Context, subject string) (*entity.StoredFeishuConfig, error)
	Upsert(ctx context.Context, subject, sealed string) (*entity.StoredFeishuConfig, error)
	Delete(ctx context.Context, subject string) error
}

// PGXFeishuConfigRepository implements FeishuConfigRepository with pgx.
type PGXFeishuConfigRepository struct {
	pool pgxPool
}

// NewPGXFeishuConfigRepository instantiates a config repository.
func NewPGXFeishuConfigRepository(pool *pgxpool.Pool) *PGXFeishuConfigRepository {
	return &PGXFeishuConfigRepository{pool: pool}
}

// Get fetches the sealed config of subject.
func (r *PGXFeishuConfigRepository) Get(ctx context.Context, subject string) (*entity.StoredFeishuConfig, error) {
	row := r.pool.QueryRow(ctx, `SELECT subject, sealed, updated_at FROM feishu_configs WHERE subject = $1`, subject)

	var cfg entity.StoredFeishuConfig
	if err := row.Scan(&cfg.Subject, &cfg.Sealed, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("query feishu config: %w", err)
	}
	return &cfg, nil
}

// Upsert stores sealed for subject, replacing any previous value.
func (r *PGXFeishuConfigRepository) Upsert(ctx context.Context, subject, sealed string) (*entity.StoredFeishuConfig, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO feishu_configs (subject, sealed, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (subject) DO UPDATE
        SET sealed = EXCLUDED.sealed,
            updated_at = NOW()
        RETURNING subject, sealed, updated_at
    `, subject, sealed)

	var cfg entity.StoredFeishuConfig
	if err := row.Scan(&cfg.Subject, &cfg.Sealed, &cfg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert feishu config: %w", err)
	}
	return &cfg, nil
}

// Delete removes the config of subject. Deleting a missing row is not an error.
func (r *PGXFeishuConfigRepository) Delete(ctx context.Context, subject string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM feishu_configs WHERE subject = $1`, subject); err != nil {
		return fmt.Errorf("delete feishu config: %w", err)
	}
	return nil
}

// IsUndefinedTable reports whether err is PostgreSQL's undefined_table error.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
