package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "tables", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "tables", "t1", Document{"a": "1", "b": "2"}))
	require.NoError(t, m.Set(ctx, "tables", "t1", Document{"c": "3"}))

	doc, err := m.Get(ctx, "tables", "t1")
	require.NoError(t, err)
	assert.Equal(t, Document{"c": "3"}, doc)
}

func TestMemoryIsolatesCallerState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := Document{"list": []any{"x"}}
	require.NoError(t, m.Set(ctx, "images", "image-list", in))
	in["list"] = []any{"mutated"}

	out, err := m.Get(ctx, "images", "image-list")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, out["list"])

	out["list"] = nil
	again, err := m.Get(ctx, "images", "image-list")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, again["list"])
}

func TestMemoryCollectionsAreSeparate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "tables", "same", Document{"k": "tables"}))

	_, err := m.Get(ctx, "images", "same")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.ErrorIs(t, m.Set(ctx, "tables", "t", Document{}), context.Canceled)
	_, err := m.Get(ctx, "tables", "t")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentDecode(t *testing.T) {
	doc, err := ToDocument(struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}{Name: "n", Items: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, Document{"name": "n", "items": []any{"a", "b"}}, doc)

	var out struct {
		Items []string `json:"items"`
	}
	require.NoError(t, doc.Decode(&out))
	assert.Equal(t, []string{"a", "b"}, out.Items)
}
