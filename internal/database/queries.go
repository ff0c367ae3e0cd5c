package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDocumentNotFound indica que nenhuma linha foi afetada.
var ErrDocumentNotFound = errors.New("document not found")

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      JSONB       NOT NULL,
		criado_em  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		atualizado_em TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, key)
	)
`

type DocumentRow struct {
	Key   string
	Value json.RawMessage
}

// EnsureSchema cria a tabela de documentos se ainda não existir.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (db *DB) ListDocuments(ctx context.Context, collection string) ([]DocumentRow, error) {
	query := `
		SELECT key, value
		FROM documents
		WHERE collection = $1
		ORDER BY key ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var raw []byte
		if err := rows.Scan(&d.Key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		d.Value = json.RawMessage(raw)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

func (db *DB) InsertDocument(ctx context.Context, collection, key string, value map[string]interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `INSERT INTO documents (collection, key, value) VALUES ($1, $2, $3::jsonb)`
	if _, err := db.conn.ExecContext(ctx, query, collection, key, string(payload)); err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// MergeDocument aplica um merge raso (jsonb ||) sobre o documento existente.
func (db *DB) MergeDocument(ctx context.Context, collection, key string, partial map[string]interface{}) error {
	payload, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	query := `
		UPDATE documents
		SET value = value || $3::jsonb, atualizado_em = CURRENT_TIMESTAMP
		WHERE collection = $1 AND key = $2
	`

	result, err := db.conn.ExecContext(ctx, query, collection, key, string(payload))
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

func (db *DB) DeleteDocument(ctx context.Context, collection, key string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND key = $2`
	if _, err := db.conn.ExecContext(ctx, query, collection, key); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}
