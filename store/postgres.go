package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tablekeep/pkg/logger"

	"github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`

// Postgres stores each document as one JSONB row keyed by (collection, id).
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// EnsureSchema creates the documents table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schema); err != nil {
		logger.Sugar.Errorf("Failed to create documents table: %v", err)
		return err
	}
	return nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	// lib/pq wants a string, not []byte, for JSONB parameters.
	_, err = p.DB.ExecContext(ctx, `INSERT INTO documents (collection, id, data, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, string(data))
	if err != nil {
		logger.Sugar.Errorf("Failed to set document %s/%s: %v", collection, id, describe(err))
		return err
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	err := p.DB.QueryRowContext(ctx, "SELECT data FROM documents WHERE collection = $1 AND id = $2", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get document %s/%s: %v", collection, id, describe(err))
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// describe adds the SQLSTATE to driver errors for the logs.
func describe(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("%s (sqlstate %s)", pqErr.Message, pqErr.Code)
	}
	return err.Error()
}
