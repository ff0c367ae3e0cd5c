package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	col := HearingsPath("units", "unidade_pc_br")
	assert.Equal(t, "units/unidade_pc_br/hearings", col)
	assert.Equal(t, "units/unidade_pc_br/hearings/k1", Child(col, "k1"))

	c, k := Split("/units/t/hearings/k1/")
	assert.Equal(t, "units/t/hearings", c)
	assert.Equal(t, "k1", k)

	c, k = Split("k1")
	assert.Equal(t, "", c)
	assert.Equal(t, "k1", k)
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("-NxA1b2"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a/b"))
	assert.False(t, ValidKey("a.b"))
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	col := HearingsPath("units", "t1")

	docs, err := m.ReadAll(ctx, col)
	require.NoError(t, err)
	assert.Empty(t, docs)

	k1, err := m.Create(ctx, col, map[string]interface{}{"name": "Ana"})
	require.NoError(t, err)
	k2, err := m.Create(ctx, col, map[string]interface{}{"name": "Bruno"})
	require.NoError(t, err)

	docs, err = m.ReadAll(ctx, col)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, k1, docs[0].Key, "keys follow insertion order")
	assert.Equal(t, k2, docs[1].Key)

	require.NoError(t, m.Update(ctx, Child(col, k1), map[string]interface{}{"status": "realizada"}))

	docs, _ = m.ReadAll(ctx, col)
	var v map[string]string
	require.NoError(t, json.Unmarshal(docs[0].Value, &v))
	assert.Equal(t, "Ana", v["name"])
	assert.Equal(t, "realizada", v["status"])

	assert.ErrorIs(t, m.Update(ctx, Child(col, "missing"), map[string]interface{}{"x": 1}), ErrNotFound)

	require.NoError(t, m.Delete(ctx, Child(col, k1)))
	require.NoError(t, m.Delete(ctx, Child(col, k1)), "delete is idempotent")

	docs, _ = m.ReadAll(ctx, col)
	assert.Len(t, docs, 1)
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Create(ctx, HearingsPath("units", "a"), map[string]interface{}{"name": "Ana"})
	require.NoError(t, err)

	docs, err := m.ReadAll(ctx, HearingsPath("units", "b"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().ReadAll(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
