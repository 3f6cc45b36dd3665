package store

import (
	"context"
	"sync"
)

// Memory is an in-process Client. Documents are deep-copied on the way in
// and out, so callers never share state with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]Document)}
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp, err := ToDocument(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]Document)
	}
	m.docs[collection][id] = cp
	return nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	doc, ok := m.docs[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return ToDocument(doc)
}
