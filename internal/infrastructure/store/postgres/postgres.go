// Package postgres implements the document store on PostgreSQL (offline mode).
// All collections share one JSONB documents table keyed by (collection, id).
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"tillbook/internal/core/apperror"
	"tillbook/internal/infrastructure/store"
)

const documentsTable = "documents"

// Store is the PostgreSQL-backed document store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New connects to PostgreSQL and prepares the documents table.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			doc        JSONB       NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func (s *Store) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	sql, args, err := s.Builder().
		Select("doc").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var docs []json.RawMessage
	if err := pgxscan.Select(ctx, s.pool, &docs, sql, args...); err != nil {
		return nil, apperror.NewPersistence("list "+collection, err)
	}
	return docs, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (json.RawMessage, error) {
	sql, args, err := s.Builder().
		Select("doc").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var doc json.RawMessage
	if err := pgxscan.Get(ctx, s.pool, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(collection, id)
		}
		return nil, apperror.NewPersistence("get "+collection, err)
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperror.NewPersistence("encode "+collection, err)
	}

	sql, args, err := s.Builder().
		Insert(documentsTable).
		Columns("collection", "id", "doc").
		Values(collection, id, raw).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence("put "+collection, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	sql, args, err := s.Builder().
		Delete(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence("delete "+collection, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
