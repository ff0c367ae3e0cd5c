package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore guarda documentos em memória. Atende STORE_BACKEND=memory e
// os testes dos pacotes acima.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]interface{})}
}

func (m *MemoryStore) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Document, 0, len(keys))
	for _, k := range keys {
		raw, err := json.Marshal(docs[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		out = append(out, Document{Key: k, Value: raw})
	}
	return out, nil
}

func (m *MemoryStore) Create(ctx context.Context, collection string, value map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := newKey()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]interface{})
	}
	m.collections[collection][key] = cloneFields(value)
	return key, nil
}

func (m *MemoryStore) Update(ctx context.Context, docPath string, partial map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	collection, key := Split(docPath)

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, docPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	collection, key := Split(docPath)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], key)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// newKey gera uma chave ordenada pelo tempo, para que a ordem das chaves
// siga a de inserção, como os push IDs do Realtime Database.
func newKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return id.String(), nil
}

func cloneFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
