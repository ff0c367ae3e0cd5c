package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore guarda documentos no Firebase Realtime Database.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	nodes, err := s.client.NewRef(collection).OrderByKey().GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(nodes))
	for _, node := range nodes {
		var raw json.RawMessage
		if err := node.Unmarshal(&raw); err != nil {
			return nil, fmt.Errorf("error decoding %s/%s: %w", collection, node.Key(), err)
		}
		docs = append(docs, Document{Key: node.Key(), Value: raw})
	}
	return docs, nil
}

func (s *FirebaseStore) Create(ctx context.Context, collection string, value map[string]interface{}) (string, error) {
	ref, err := s.client.NewRef(collection).Push(ctx, value)
	if err != nil {
		return "", fmt.Errorf("error pushing to %s: %w", collection, err)
	}
	return ref.Key, nil
}

// Update faz a verificação de existência e o merge numa única transação:
// um update simples num caminho ausente criaria o nó, e uma exclusão
// concorrente entre leitura e escrita deixaria um registro parcial.
func (s *FirebaseStore) Update(ctx context.Context, docPath string, partial map[string]interface{}) error {
	missing := false
	err := s.client.NewRef(docPath).Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
		var current map[string]interface{}
		if err := node.Unmarshal(&current); err != nil {
			return nil, err
		}
		if current == nil {
			missing = true
			return nil, ErrNotFound
		}
		missing = false
		for k, v := range partial {
			current[k] = v
		}
		return current, nil
	})
	if missing {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error updating %s: %w", docPath, err)
	}
	return nil
}

func (s *FirebaseStore) Delete(ctx context.Context, docPath string) error {
	if err := s.client.NewRef(docPath).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting %s: %w", docPath, err)
	}
	return nil
}

// Ping lê um caminho fixo pequeno.
func (s *FirebaseStore) Ping(ctx context.Context) error {
	var v interface{}
	if err := s.client.NewRef("_health").Get(ctx, &v); err != nil {
		return fmt.Errorf("firebase ping: %w", err)
	}
	return nil
}
