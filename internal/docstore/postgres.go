package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each document as a JSONB row in the documents table
// (see migrations/001_documents.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, collection, key string) (json.RawMessage, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", Path(collection, key), err)
	}
	return data, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, data FROM documents WHERE collection = $1 ORDER BY created_at, key`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return scanDocuments(rows)
}

func (s *PostgresStore) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := valueText(value)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT key, data FROM documents
		 WHERE collection = $1 AND data->>$2 = $3
		 ORDER BY created_at, key`,
		collection, field, want,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		var data []byte
		if err := rows.Scan(&d.Key, &data); err != nil {
			return nil, err
		}
		d.Data = data
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Set(ctx context.Context, collection, key string, data json.RawMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (collection, key, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, key, []byte(data),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", Path(collection, key), err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("update %s: %w", Path(collection, key), err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		 WHERE collection = $1 AND key = $2`,
		collection, key, patch,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", Path(collection, key), err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", Path(collection, key), err)
	}
	return nil
}
