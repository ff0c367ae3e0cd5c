package docstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	firebase "firebase.google.com/go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRTDB atende as chamadas REST do Realtime Database usadas pelo
// FirebaseStore, em caminhos planos e com pré-condição de ETag.
type fakeRTDB struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	// beforeWrite roda uma vez, com o lock, antes do próximo PUT.
	beforeWrite func(nodes map[string]json.RawMessage)
}

func (f *fakeRTDB) current(path string) json.RawMessage {
	if v, ok := f.nodes[path]; ok {
		return v
	}
	return json.RawMessage("null")
}

func etagOf(v json.RawMessage) string {
	sum := sha1.Sum(v)
	return hex.EncodeToString(sum[:])
}

func (f *fakeRTDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.Trim(strings.TrimSuffix(r.URL.Path, ".json"), "/")
	switch r.Method {
	case http.MethodGet:
		body := f.current(path)
		if r.Header.Get("X-Firebase-ETag") == "true" {
			w.Header().Set("ETag", etagOf(body))
		}
		w.Write(body)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if f.beforeWrite != nil {
			f.beforeWrite(f.nodes)
			f.beforeWrite = nil
		}
		cur := f.current(path)
		if match := r.Header.Get("If-Match"); match != "" && match != etagOf(cur) {
			w.Header().Set("ETag", etagOf(cur))
			w.WriteHeader(http.StatusPreconditionFailed)
			w.Write(cur)
			return
		}
		if string(body) == "null" {
			delete(f.nodes, path)
		} else {
			f.nodes[path] = body
		}
		w.Header().Set("ETag", etagOf(body))
		w.Write(body)
	case http.MethodDelete:
		delete(f.nodes, path)
		w.Write([]byte("null"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFirebaseStore(t *testing.T, fake *fakeRTDB) *FirebaseStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	port := srv.URL[strings.LastIndex(srv.URL, ":"):]
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   "oitivas-test",
		DatabaseURL: "localhost" + port + "?ns=oitivas-test",
	})
	require.NoError(t, err)
	client, err := app.Database(ctx)
	require.NoError(t, err)
	return NewFirebaseStore(client)
}

const fbDoc = "units/t/hearings/k1"

func TestFirebaseUpdateMerges(t *testing.T) {
	fake := &fakeRTDB{nodes: map[string]json.RawMessage{
		fbDoc: json.RawMessage(`{"name":"Ana","date":"2025-03-10"}`),
	}}
	s := newFirebaseStore(t, fake)

	require.NoError(t, s.Update(context.Background(), fbDoc, map[string]interface{}{"status": "realizada"}))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.nodes[fbDoc], &got))
	assert.Equal(t, "Ana", got["name"])
	assert.Equal(t, "realizada", got["status"])
}

func TestFirebaseUpdateMissingIsNotFound(t *testing.T) {
	fake := &fakeRTDB{nodes: map[string]json.RawMessage{}}
	s := newFirebaseStore(t, fake)

	err := s.Update(context.Background(), fbDoc, map[string]interface{}{"status": "realizada"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, fake.nodes)
}

func TestFirebaseUpdateRacingDeleteLeavesNoRecord(t *testing.T) {
	fake := &fakeRTDB{nodes: map[string]json.RawMessage{
		fbDoc: json.RawMessage(`{"name":"Ana","date":"2025-03-10"}`),
	}}
	fake.beforeWrite = func(nodes map[string]json.RawMessage) { delete(nodes, fbDoc) }
	s := newFirebaseStore(t, fake)

	err := s.Update(context.Background(), fbDoc, map[string]interface{}{"status": "realizada"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, exists := fake.nodes[fbDoc]
	assert.False(t, exists, "a concurrent delete must not be undone by the merge")
}
