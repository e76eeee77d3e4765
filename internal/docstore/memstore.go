package docstore

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store used by tests and local development.
type MemStore struct {
	mu   sync.RWMutex
	cols map[string]map[string]map[string]interface{}

	// WriteErr, when set, is consulted before every write and lets tests
	// inject collection-level write failures.
	WriteErr func(col, id string) error
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{cols: make(map[string]map[string]map[string]interface{})}
}

func (s *MemStore) Set(ctx context.Context, col, id string, data interface{}) error {
	m, err := ToMap(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		if err := s.WriteErr(col, id); err != nil {
			return err
		}
	}
	s.putLocked(col, id, m)
	return nil
}

func (s *MemStore) Get(ctx context.Context, col, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.cols[col]
	if !ok {
		return nil, ErrDocNotFound
	}
	data, ok := docs[id]
	if !ok {
		return nil, ErrDocNotFound
	}
	return &Document{ID: id, Data: cloneMap(data)}, nil
}

func (s *MemStore) Delete(ctx context.Context, col, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		if err := s.WriteErr(col, id); err != nil {
			return err
		}
	}
	if docs, ok := s.cols[col]; ok {
		delete(docs, id)
	}
	return nil
}

func (s *MemStore) Query(ctx context.Context, col string, filters []Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for id, data := range s.cols[col] {
		matched := true
		for _, f := range filters {
			if !looseEqual(data[f.Field], f.Value) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, Document{ID: id, Data: cloneMap(data)})
		}
	}
	return out, nil
}

// RunTransaction stages writes in a buffer and commits all-or-nothing while
// holding the store lock, mirroring the atomicity of the real backend.
func (s *MemStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	for _, w := range tx.writes {
		if s.WriteErr != nil {
			if err := s.WriteErr(w.col, w.id); err != nil {
				return err
			}
		}
	}
	for _, w := range tx.writes {
		if w.delete {
			if docs, ok := s.cols[w.col]; ok {
				delete(docs, w.id)
			}
			continue
		}
		s.putLocked(w.col, w.id, w.data)
	}
	return nil
}

// Len reports the number of documents in a collection.
func (s *MemStore) Len(col string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cols[col])
}

func (s *MemStore) putLocked(col, id string, data map[string]interface{}) {
	docs, ok := s.cols[col]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.cols[col] = docs
	}
	docs[id] = cloneMap(data)
}

type memWrite struct {
	col    string
	id     string
	data   map[string]interface{}
	delete bool
}

type memTx struct {
	store  *MemStore
	writes []memWrite
}

func (t *memTx) Get(col, id string) (*Document, error) {
	docs, ok := t.store.cols[col]
	if !ok {
		return nil, ErrDocNotFound
	}
	data, ok := docs[id]
	if !ok {
		return nil, ErrDocNotFound
	}
	return &Document{ID: id, Data: cloneMap(data)}, nil
}

func (t *memTx) Set(col, id string, data interface{}) error {
	m, err := ToMap(data)
	if err != nil {
		return err
	}
	t.writes = append(t.writes, memWrite{col: col, id: id, data: m})
	return nil
}

func (t *memTx) Delete(col, id string) error {
	t.writes = append(t.writes, memWrite{col: col, id: id, delete: true})
	return nil
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// looseEqual compares scalar field values the way the JSON round-trip stores
// them, where every number becomes float64.
func looseEqual(a, b interface{}) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
