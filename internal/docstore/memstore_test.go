package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "widgets", "w1", memDoc{Name: "alpha", Count: 3}))

	doc, err := store.Get(ctx, "widgets", "w1")
	require.NoError(t, err)

	var got memDoc
	require.NoError(t, DataTo(doc, &got))
	assert.Equal(t, memDoc{Name: "alpha", Count: 3}, got)
}

func TestMemStoreGetMissing(t *testing.T) {
	store := NewMemStore()
	_, err := store.Get(context.Background(), "widgets", "nope")
	assert.ErrorIs(t, err, ErrDocNotFound)
}

func TestMemStoreQueryNumericFilter(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "widgets", "w1", memDoc{Name: "alpha", Count: 3}))
	require.NoError(t, store.Set(ctx, "widgets", "w2", memDoc{Name: "beta", Count: 5}))

	// Stored numbers decode as float64; an int filter value must still match.
	docs, err := store.Query(ctx, "widgets", []Filter{{Field: "count", Value: 3}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "w1", docs[0].ID)
}

func TestMemStoreTransactionAtomicity(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	boom := errors.New("write rejected")
	store.WriteErr = func(col, id string) error {
		if col == "b" {
			return boom
		}
		return nil
	}

	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Set("a", "1", memDoc{Name: "a"}); err != nil {
			return err
		}
		return tx.Set("b", "1", memDoc{Name: "b"})
	})
	require.ErrorIs(t, err, boom)

	// Neither write landed.
	assert.Equal(t, 0, store.Len("a"))
	assert.Equal(t, 0, store.Len("b"))
}

func TestMemStoreTransactionCommit(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a", "old", memDoc{Name: "old"}))

	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Set("a", "new", memDoc{Name: "new"}); err != nil {
			return err
		}
		return tx.Delete("a", "old")
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, "a", "old")
	assert.ErrorIs(t, err, ErrDocNotFound)
	_, err = store.Get(ctx, "a", "new")
	assert.NoError(t, err)
}
