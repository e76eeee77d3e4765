package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store over a Firestore client.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps the given client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Set creates or fully replaces the document.
func (s *FirestoreStore) Set(ctx context.Context, col, id string, data interface{}) error {
	m, err := ToMap(data)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(col).Doc(id).Set(ctx, m); err != nil {
		return fmt.Errorf("set %s/%s: %w", col, id, err)
	}
	return nil
}

// Get fetches a single document, translating Firestore's not-found code.
func (s *FirestoreStore) Get(ctx context.Context, col, id string) (*Document, error) {
	snap, err := s.client.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrDocNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", col, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *FirestoreStore) Delete(ctx context.Context, col, id string) error {
	if _, err := s.client.Collection(col).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", col, id, err)
	}
	return nil
}

// Query runs an equality-filter query over a collection.
func (s *FirestoreStore) Query(ctx context.Context, col string, filters []Filter) ([]Document, error) {
	q := s.client.Collection(col).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", col, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// RunTransaction executes fn inside a Firestore transaction.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: t, ctx: ctx})
	})
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
	ctx    context.Context
}

func (t *firestoreTx) Get(col, id string) (*Document, error) {
	snap, err := t.tx.Get(t.client.Collection(col).Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrDocNotFound
		}
		return nil, fmt.Errorf("tx get %s/%s: %w", col, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (t *firestoreTx) Set(col, id string, data interface{}) error {
	m, err := ToMap(data)
	if err != nil {
		return err
	}
	return t.tx.Set(t.client.Collection(col).Doc(id), m)
}

func (t *firestoreTx) Delete(col, id string) error {
	return t.tx.Delete(t.client.Collection(col).Doc(id))
}
