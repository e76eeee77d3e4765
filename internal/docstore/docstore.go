// Package docstore wraps the cloud document database behind a small
// collection/document interface so repositories stay independent of the
// Firestore client and can run against an in-memory store in tests.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDocNotFound is returned when a document id has no backing document.
var ErrDocNotFound = errors.New("document not found")

// Document is an untyped document snapshot.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Filter is an equality predicate on a single field. The store supports no
// range or ordering predicates; callers sort in memory when they must.
type Filter struct {
	Field string
	Value interface{}
}

// Tx exposes the operations permitted inside a transaction.
type Tx interface {
	Get(col, id string) (*Document, error)
	Set(col, id string, data interface{}) error
	Delete(col, id string) error
}

// Store is the remote document database contract.
type Store interface {
	Set(ctx context.Context, col, id string, data interface{}) error
	Get(ctx context.Context, col, id string) (*Document, error)
	Delete(ctx context.Context, col, id string) error
	Query(ctx context.Context, col string, filters []Filter) ([]Document, error)
	// RunTransaction applies fn atomically: either every write inside fn is
	// committed or none is.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// DataTo decodes a document's raw map into dest via a JSON round-trip.
func DataTo(doc *Document, dest interface{}) error {
	if doc == nil {
		return ErrDocNotFound
	}
	raw, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}

// ToMap converts a typed value into the map form stored in a document.
func ToMap(data interface{}) (map[string]interface{}, error) {
	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document data: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document data is not an object: %w", err)
	}
	return m, nil
}
