package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

func newTestCache(t *testing.T, maxEntrySize int64) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheRepository(client, nil, time.Hour, maxEntrySize), mr
}

type profileSnapshot struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	FeesPaid bool   `json:"fees_paid"`
}

func TestCacheRoundTrip(t *testing.T) {
	repo, _ := newTestCache(t, 0)
	ctx := context.Background()

	in := profileSnapshot{Name: "Asha", Role: "STUDENT"}
	require.NoError(t, repo.Set(ctx, ProfileKey("u1"), in))

	var out profileSnapshot
	require.NoError(t, repo.Get(ctx, ProfileKey("u1"), &out))
	assert.Equal(t, in, out)
}

func TestCacheMissOnAbsentKey(t *testing.T) {
	repo, _ := newTestCache(t, 0)

	var out profileSnapshot
	err := repo.Get(context.Background(), ProfileKey("nope"), &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheSchemaMismatchReadsAsMiss(t *testing.T) {
	repo, mr := newTestCache(t, 0)
	ctx := context.Background()

	stale, err := json.Marshal(map[string]interface{}{
		"schema":    1,
		"stored_at": time.Now().UTC(),
		"data":      json.RawMessage(`{"name":"Old"}`),
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set(ProfileKey("u1"), string(stale)))

	var out profileSnapshot
	err = repo.Get(ctx, ProfileKey("u1"), &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheCorruptEntryDropped(t *testing.T) {
	repo, mr := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set(ProfileKey("u1"), "not-json"))

	var out profileSnapshot
	err := repo.Get(ctx, ProfileKey("u1"), &out)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists(ProfileKey("u1")), "corrupt entry is purged")
}

func TestCacheSizeCeiling(t *testing.T) {
	repo, _ := newTestCache(t, 64)
	ctx := context.Background()

	big := make([]byte, 256)
	for i := range big {
		big[i] = 'x'
	}
	err := repo.Set(ctx, EntityListKey("u1", "students"), string(big))
	assert.ErrorIs(t, err, appErrors.ErrCacheEntryTooBig)
}

func TestCachePatchFieldsMergesWithoutClobbering(t *testing.T) {
	repo, _ := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, ProfileKey("u1"), profileSnapshot{Name: "Asha", Role: "STUDENT"}))

	require.NoError(t, repo.PatchFields(ctx, ProfileKey("u1"), map[string]interface{}{
		"fees_paid": true,
	}))

	var out profileSnapshot
	require.NoError(t, repo.Get(ctx, ProfileKey("u1"), &out))
	assert.Equal(t, "Asha", out.Name, "untouched fields survive the patch")
	assert.True(t, out.FeesPaid)
}

func TestCachePatchFieldsCreatesMissingEntry(t *testing.T) {
	repo, _ := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.PatchFields(ctx, SyncStatusKey("u1"), map[string]interface{}{
		"uid":     "u1",
		"running": true,
	}))

	var out map[string]interface{}
	require.NoError(t, repo.Get(ctx, SyncStatusKey("u1"), &out))
	assert.Equal(t, true, out["running"])
}

func TestCacheDeleteByPattern(t *testing.T) {
	repo, mr := newTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, EntityListKey("u1", "students"), []string{"a"}))
	require.NoError(t, repo.Set(ctx, EntityListKey("u2", "students"), []string{"b"}))
	require.NoError(t, repo.Set(ctx, SessionKey("u1"), "s"))

	require.NoError(t, repo.DeleteByPattern(ctx, "entities:*:students"))

	assert.False(t, mr.Exists(EntityListKey("u1", "students")))
	assert.False(t, mr.Exists(EntityListKey("u2", "students")))
	assert.True(t, mr.Exists(SessionKey("u1")))
}

type recordingCacheMetrics struct {
	hits   int
	misses int
}

func (m *recordingCacheMetrics) RecordCacheOperation(hit bool, _ time.Duration) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestCacheGetRecordsHitsAndMisses(t *testing.T) {
	repo, _ := newTestCache(t, 0)
	metrics := &recordingCacheMetrics{}
	repo.WithMetrics(metrics)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, ProfileKey("u1"), profileSnapshot{Name: "Asha"}))

	var out profileSnapshot
	require.NoError(t, repo.Get(ctx, ProfileKey("u1"), &out))
	require.ErrorIs(t, repo.Get(ctx, ProfileKey("nope"), &out), appErrors.ErrCacheMiss)
	require.ErrorIs(t, repo.Get(ctx, ProfileKey("nope"), &out), appErrors.ErrCacheMiss)

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}
