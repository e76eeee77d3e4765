package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	"github.com/pudocs/dept-portal-api/pkg/config"
)

func syncUser() models.UserInfo {
	return models.UserInfo{UID: "uid-1", Email: "asha@example.edu", Role: models.RoleStudent}
}

func TestSyncWarmsEntityLists(t *testing.T) {
	cache := newMemCache()
	fetchers := []EntityFetcher{
		{Name: "notices", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			return []string{"n1", "n2"}, nil
		}},
		{Name: "exams", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			return []string{"e1"}, nil
		}},
	}
	svc := NewSyncService(fetchers, cache, config.SyncConfig{RunTimeout: time.Second}, nil)

	result, err := svc.TriggerAndWait(context.Background(), syncUser())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Warmed)
	assert.ElementsMatch(t, []string{"notices", "exams"}, result.Entities)

	assert.True(t, cache.has(repository.EntityListKey("uid-1", "notices")))
	assert.True(t, cache.has(repository.EntityListKey("uid-1", "exams")))

	status, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.LastWarmed)
	assert.Empty(t, status.LastError)
}

func TestSyncConcurrentTriggersShareOneRun(t *testing.T) {
	var runs int32
	release := make(chan struct{})
	fetchers := []EntityFetcher{
		{Name: "slow", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			atomic.AddInt32(&runs, 1)
			<-release
			return []string{"x"}, nil
		}},
	}
	svc := NewSyncService(fetchers, newMemCache(), config.SyncConfig{RunTimeout: 5 * time.Second}, nil)

	const callers = 4
	var wg sync.WaitGroup
	results := make([]models.SyncResult, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = <-svc.Trigger(syncUser())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs), "concurrent triggers collapse into one run")
	for _, res := range results {
		assert.Equal(t, 1, res.Warmed)
	}
}

func TestSyncFetcherFailureIsPartial(t *testing.T) {
	cache := newMemCache()
	boom := errors.New("backend down")
	fetchers := []EntityFetcher{
		{Name: "bad", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			return nil, boom
		}},
		{Name: "good", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			return []string{"ok"}, nil
		}},
	}
	svc := NewSyncService(fetchers, cache, config.SyncConfig{RunTimeout: time.Second}, nil)

	result := <-svc.Trigger(syncUser())
	assert.Equal(t, 1, result.Warmed, "later fetchers still run after a failure")
	assert.NotEmpty(t, result.ErrMessage)
	assert.True(t, cache.has(repository.EntityListKey("uid-1", "good")))

	status, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "backend down", status.LastError)
}

func TestSyncCancelAbortsRun(t *testing.T) {
	started := make(chan struct{})
	fetchers := []EntityFetcher{
		{Name: "blocking", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	}
	svc := NewSyncService(fetchers, newMemCache(), config.SyncConfig{RunTimeout: 10 * time.Second}, nil)

	ch := svc.Trigger(syncUser())
	<-started
	svc.Cancel("uid-1")

	select {
	case result := <-ch:
		assert.NotEmpty(t, result.ErrMessage)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled run did not finish")
	}
}

func TestSyncShutdownAbortsEverything(t *testing.T) {
	started := make(chan struct{})
	fetchers := []EntityFetcher{
		{Name: "blocking", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}},
	}
	svc := NewSyncService(fetchers, newMemCache(), config.SyncConfig{RunTimeout: 10 * time.Second}, nil)

	ch := svc.Trigger(syncUser())
	<-started
	svc.Shutdown()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not abort the run")
	}
}

func TestSyncSkippedFetcher(t *testing.T) {
	cache := newMemCache()
	fetchers := []EntityFetcher{
		{Name: "role-gated", Fetch: func(ctx context.Context, user models.UserInfo) (interface{}, error) {
			return nil, nil
		}},
	}
	svc := NewSyncService(fetchers, cache, config.SyncConfig{RunTimeout: time.Second}, nil)

	result := <-svc.Trigger(syncUser())
	assert.Equal(t, 0, result.Warmed)
	assert.Empty(t, result.ErrMessage)
	assert.False(t, cache.has(repository.EntityListKey("uid-1", "role-gated")))
}

func TestSyncStatusUnknownUser(t *testing.T) {
	svc := NewSyncService(nil, newMemCache(), config.SyncConfig{}, nil)

	status, err := svc.Status(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Equal(t, "stranger", status.UID)
	assert.False(t, status.Running)
	assert.True(t, status.LastRunAt.IsZero())
}
