package docstore

import (
	"context"
	"errors"

	"oitivas-pro/internal/database"
)

// PostgresStore guarda documentos como linhas JSONB, uma por chave.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.ListDocuments(ctx, collection)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, Document{Key: r.Key, Value: r.Value})
	}
	return docs, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, value map[string]interface{}) (string, error) {
	key, err := newKey()
	if err != nil {
		return "", err
	}
	if err := s.db.InsertDocument(ctx, collection, key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PostgresStore) Update(ctx context.Context, docPath string, partial map[string]interface{}) error {
	collection, key := Split(docPath)
	err := s.db.MergeDocument(ctx, collection, key, partial)
	if errors.Is(err, database.ErrDocumentNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, docPath string) error {
	collection, key := Split(docPath)
	return s.db.DeleteDocument(ctx, collection, key)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
