package repository

import (
	"context"
	"fmt"

	"storefront/pagegen/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PageRepository interface {
	EnsureSchema(ctx context.Context) error
	SavePage(ctx context.Context, storeID, buildID string, page domain.PageDescriptor) error
	SaveRedirect(ctx context.Context, storeID, buildID string, redirect domain.Redirect) error
	LoadRegistration(ctx context.Context, storeID, buildID string) (*domain.Registration, error)
}

type pageRepository struct {
	db *pgxpool.Pool
}

func NewPageRepository(db *pgxpool.Pool) PageRepository {
	return &pageRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	store_id   TEXT NOT NULL,
	path       TEXT NOT NULL,
	match_path TEXT NOT NULL DEFAULT '',
	template   TEXT NOT NULL,
	context    JSONB NOT NULL,
	build_id   TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (store_id, path)
);
CREATE TABLE IF NOT EXISTS redirects (
	store_id    TEXT NOT NULL,
	from_path   TEXT NOT NULL,
	to_path     TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	build_id    TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (store_id, from_path)
);`

func (r *pageRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *pageRepository) SavePage(ctx context.Context, storeID, buildID string, page domain.PageDescriptor) error {
	query := `
	INSERT INTO pages (store_id, path, match_path, template, context, build_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (store_id, path)
	DO UPDATE SET match_path = $3, template = $4, context = $5, build_id = $6, updated_at = now()`

	pageContext := page.Context
	if pageContext == nil {
		pageContext = domain.PageContext{}
	}

	_, err := r.db.Exec(ctx, query, storeID, page.Path, page.MatchPath, page.Template.String(), pageContext, buildID)
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", page.Path, err)
	}
	return nil
}

func (r *pageRepository) SaveRedirect(ctx context.Context, storeID, buildID string, redirect domain.Redirect) error {
	query := `
	INSERT INTO redirects (store_id, from_path, to_path, status_code, build_id)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (store_id, from_path)
	DO UPDATE SET to_path = $3, status_code = $4, build_id = $5, updated_at = now()`

	_, err := r.db.Exec(ctx, query, storeID, redirect.FromPath, redirect.ToPath, redirect.StatusCode, buildID)
	if err != nil {
		return fmt.Errorf("failed to save redirect %s: %w", redirect.FromPath, err)
	}
	return nil
}

// LoadRegistration returns only the rows written by buildID. Rows of earlier
// builds stay in the tables but no longer resolve.
func (r *pageRepository) LoadRegistration(ctx context.Context, storeID, buildID string) (*domain.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT path, match_path, template, context FROM pages WHERE store_id = $1 AND build_id = $2 ORDER BY path`,
		storeID, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}

	pages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PageDescriptor, error) {
		var (
			page     domain.PageDescriptor
			template string
		)
		err := row.Scan(&page.Path, &page.MatchPath, &template, &page.Context)
		page.Template = domain.Template(template)
		return page, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pages: %w", err)
	}

	rows, err = r.db.Query(ctx,
		`SELECT from_path, to_path, status_code FROM redirects WHERE store_id = $1 AND build_id = $2 ORDER BY from_path`,
		storeID, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query redirects: %w", err)
	}

	redirects, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Redirect])
	if err != nil {
		return nil, fmt.Errorf("failed to read redirects: %w", err)
	}

	return &domain.Registration{Pages: pages, Redirects: redirects}, nil
}
