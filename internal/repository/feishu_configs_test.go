package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{scan: func(dest ...any) error { return nil }}
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, query, args...)
	}
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}

type stubRow struct {
	scan func(dest ...any) error
}

func (s *stubRow) Scan(dest ...any) error {
	if s.scan != nil {
		return s.scan(dest...)
	}
	return nil
}

func TestFeishuConfigGet(t *testing.T) {
	updated := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := &PGXFeishuConfigRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if !strings.Contains(query, "FROM feishu_configs") || args[0] != "user-1" {
				t.Fatalf("unexpected query %q args %v", query, args)
			}
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*string) = "user-1"
				*dest[1].(*string) = "c2VhbGVk"
				*dest[2].(*time.Time) = updated
				return nil
			}}
		},
	}}

	cfg, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Subject != "user-1" || cfg.Sealed != "c2VhbGVk" || !cfg.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestFeishuConfigGetNotFound(t *testing.T) {
	repo := &PGXFeishuConfigRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}

	if _, err := repo.Get(context.Background(), "nobody"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestFeishuConfigUpsert(t *testing.T) {
	var gotArgs []any
	repo := &PGXFeishuConfigRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if !strings.Contains(query, "ON CONFLICT (subject)") {
				t.Fatalf("expected upsert query, got %q", query)
			}
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*string) = args[0].(string)
				*dest[1].(*string) = args[1].(string)
				*dest[2].(*time.Time) = time.Now()
				return nil
			}}
		},
	}}

	cfg, err := repo.Upsert(context.Background(), "user-1", "sealed-blob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotArgs) != 2 || cfg.Sealed != "sealed-blob" {
		t.Fatalf("unexpected upsert result %+v args %v", cfg, gotArgs)
	}
}

func TestFeishuConfigDelete(t *testing.T) {
	called := false
	repo := &PGXFeishuConfigRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			called = true
			if !strings.HasPrefix(query, "DELETE FROM feishu_configs") || args[0] != "user-1" {
				t.Fatalf("unexpected exec %q %v", query, args)
			}
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}}

	if err := repo.Delete(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected exec to be called")
	}
}

func TestIsUndefinedTable(t *testing.T) {
	err := fmt.Errorf("query feishu config: %w", &pgconn.PgError{Code: "42P01"})
	if !IsUndefinedTable(err) {
		t.Fatalf("expected undefined table to be detected")
	}
	if IsUndefinedTable(errors.New("boom")) {
		t.Fatalf("unexpected match for plain error")
	}
}
