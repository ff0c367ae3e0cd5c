// Package docstore é a fronteira com o armazenamento remoto de documentos
// por chave, separado por unidade. Caminhos usam barra:
// <root>/<tenant>/hearings[/<key>].
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strings"
)

// HearingsCollection é o segmento fixo da coleção sob a unidade.
const HearingsCollection = "hearings"

// ErrNotFound é retornado por Update quando a chave não existe.
var ErrNotFound = errors.New("docstore: document not found")

// Document é um valor de uma coleção, com sua chave.
type Document struct {
	Key   string
	Value json.RawMessage
}

// Store é implementado por todos os backends.
//
// ReadAll retorna os documentos da coleção em ordem de chave. Coleção
// ausente resulta em slice vazio, não em erro. Create gera uma chave nova.
// Update faz merge dos campos num documento existente e falha com
// ErrNotFound se ele não existir. Delete é idempotente.
type Store interface {
	ReadAll(ctx context.Context, collection string) ([]Document, error)
	Create(ctx context.Context, collection string, value map[string]interface{}) (string, error)
	Update(ctx context.Context, docPath string, partial map[string]interface{}) error
	Delete(ctx context.Context, docPath string) error
}

// Pinger é implementado pelos backends que informam sua saúde.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HearingsPath retorna o caminho da coleção de oitivas da unidade.
func HearingsPath(root, tenantID string) string {
	return path.Join(root, tenantID, HearingsCollection)
}

// Child retorna o caminho de key dentro de collection.
func Child(collection, key string) string {
	return path.Join(collection, key)
}

// Split separa o caminho de um documento em coleção e chave.
func Split(docPath string) (collection, key string) {
	docPath = strings.Trim(docPath, "/")
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return "", docPath
	}
	return docPath[:i], docPath[i+1:]
}

// ValidKey indica se key serve como um único segmento de caminho.
func ValidKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, ".$#[]/")
}
