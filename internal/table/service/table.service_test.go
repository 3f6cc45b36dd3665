package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tablekeep/internal/table/model"
	"tablekeep/pkg/apperror"
	"tablekeep/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	err  error
	sets int
}

func (f *failingStore) Set(context.Context, string, string, store.Document) error {
	f.sets++
	return f.err
}

func (f *failingStore) Get(context.Context, string, string) (store.Document, error) {
	return nil, f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("UTC+2", 2*3600))
}

func newService(client store.Client) *TableService {
	s := NewTableService(client)
	s.Now = fixedClock
	return s
}

func TestEncodeTable(t *testing.T) {
	enc := EncodeTable([]string{"Name", "Age"}, [][]string{{"Ann", "31"}, {"Bob", "42"}}, fixedClock())

	assert.Equal(t, map[string]string{"0": "Name", "1": "Age"}, enc.HeaderRow)
	assert.Equal(t, []map[string]string{
		{"0": "Ann", "1": "31"},
		{"0": "Bob", "1": "42"},
	}, enc.TableData)
	assert.Equal(t, "2025-03-04T03:06:07.890Z", enc.UpdatedAt)
}

func TestEncodeTableEmpty(t *testing.T) {
	enc := EncodeTable(nil, nil, fixedClock())
	assert.NotNil(t, enc.HeaderRow)
	assert.NotNil(t, enc.TableData)
	assert.Empty(t, enc.TableData)
}

func TestDecodeOrdersKeysNumerically(t *testing.T) {
	enc := model.EncodedTable{
		HeaderRow: map[string]string{"0": "h0", "1": "h1", "10": "h10", "2": "h2"},
		TableData: []map[string]string{
			{"0": "a", "1": "b", "10": "k", "2": "c"},
		},
	}
	got := DecodeTable(enc)
	assert.Equal(t, []string{"h0", "h1", "h2", "h10"}, got.HeaderRow)
	assert.Equal(t, [][]string{{"a", "b", "c", "k"}}, got.Rows)
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newService(store.NewMemory())

	header := make([]string, 12)
	for i := range header {
		header[i] = "col" + string(rune('A'+i))
	}
	rows := [][]string{
		{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
		{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
		{" ", "", "tab\t", "ünï", "x", "y", "z", "!", "@", "#", "$", "%"},
	}

	updatedAt, err := s.PersistTable(ctx, "sheet-1", header, rows)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04T03:06:07.890Z", updatedAt)

	got, found, err := s.LoadTable(ctx, "sheet-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, header, got.HeaderRow)
	assert.Equal(t, rows, got.Rows)
	assert.Equal(t, updatedAt, got.UpdatedAt)
}

func TestPersistOverwritesWholeDocument(t *testing.T) {
	ctx := context.Background()
	s := newService(store.NewMemory())

	_, err := s.PersistTable(ctx, "t", []string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}, {"5", "6"}})
	require.NoError(t, err)
	_, err = s.PersistTable(ctx, "t", []string{"A"}, [][]string{{"only"}})
	require.NoError(t, err)

	got, found, err := s.LoadTable(ctx, "t")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"A"}, got.HeaderRow)
	assert.Equal(t, [][]string{{"only"}}, got.Rows)
}

func TestLoadMissingTableIsNotAnError(t *testing.T) {
	s := newService(store.NewMemory())

	got, found, err := s.LoadTable(context.Background(), "nothing-here")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestLoadStoredWithLexicalKeyOrder(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, Collection, "odd", store.Document{
		"headerRow": map[string]any{"0": "a", "1": "b", "10": "k", "2": "c"},
		"tableData": []any{map[string]any{"1": "y", "0": "x"}},
		"updatedAt": "2024-01-01T00:00:00.000Z",
	}))

	got, found, err := newService(mem).LoadTable(ctx, "odd")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"a", "b", "c", "k"}, got.HeaderRow)
	assert.Equal(t, [][]string{{"x", "y"}}, got.Rows)
}

func TestPersistFailureIsPersistenceError(t *testing.T) {
	cause := errors.New("quota exceeded")
	s := newService(&failingStore{err: cause})

	_, err := s.PersistTable(context.Background(), "t", []string{"A"}, nil)
	var pe *apperror.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, cause)
}

func TestLoadFailureIsDistinctFromAbsent(t *testing.T) {
	cause := errors.New("permission denied")
	s := newService(&failingStore{err: cause})

	got, found, err := s.LoadTable(context.Background(), "t")
	var pe *apperror.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, cause)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestLoadNonStringCellsAsText(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, Collection, "typed", store.Document{
		"headerRow": map[string]any{"0": 1, "1": "Name"},
		"tableData": []any{map[string]any{"0": 2.5, "1": true, "2": nil}},
		"updatedAt": "2024-01-01T00:00:00.000Z",
	}))

	got, found, err := newService(mem).LoadTable(ctx, "typed")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"1", "Name"}, got.HeaderRow)
	assert.Equal(t, [][]string{{"2.5", "true", ""}}, got.Rows)
}

func TestLoadMalformedTableIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, Collection, "broken", store.Document{
		"headerRow": []any{"a", "b"},
	}))

	_, found, err := newService(mem).LoadTable(ctx, "broken")
	var pe *apperror.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.False(t, found)
}

func TestEmptyDocIDRejectedBeforeStore(t *testing.T) {
	fs := &failingStore{}
	s := newService(fs)

	_, err := s.PersistTable(context.Background(), "", []string{"A"}, nil)
	assert.ErrorIs(t, err, ErrMissingDocID)

	_, _, err = s.LoadTable(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingDocID)
	assert.Zero(t, fs.sets)
}
