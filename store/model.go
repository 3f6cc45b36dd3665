package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("document not found")

// Document is a schemaless stored value: string keys mapping to primitives,
// sequences, or nested maps, in their JSON-decoded form.
type Document map[string]any

// Client is the document store addressed by (collection, id).
// Set always replaces the whole document.
type Client interface {
	Set(ctx context.Context, collection, id string, doc Document) error
	Get(ctx context.Context, collection, id string) (Document, error)
}

// ToDocument converts any JSON-encodable value into a Document.
func ToDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills v from the document's JSON form.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
