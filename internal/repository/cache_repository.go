package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

// CacheSchemaVersion tags every cached envelope. Entries written by an older
// build read back as a miss instead of a decode failure.
const CacheSchemaVersion = 2

// Cache key builders for the local persistence tier.
func SessionKey(uid string) string          { return fmt.Sprintf("session:%s", uid) }
func ProfileKey(uid string) string          { return fmt.Sprintf("profile:%s", uid) }
func EntityListKey(uid, name string) string { return fmt.Sprintf("entities:%s:%s", uid, name) }
func SyncStatusKey(uid string) string       { return fmt.Sprintf("sync:%s", uid) }

type cacheEnvelope struct {
	Schema   int             `json:"schema"`
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// CacheMetrics records read outcomes and latency for the local tier.
type CacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// CacheRepository is the device-storage analogue: typed get/set/remove over
// Redis with versioned JSON envelopes, a per-entry size ceiling, and
// field-level patching so concurrent writers do not clobber whole values.
type CacheRepository struct {
	client       *redis.Client
	logger       *zap.Logger
	ttl          time.Duration
	maxEntrySize int64
	metrics      CacheMetrics
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger, ttl time.Duration, maxEntrySize int64) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if maxEntrySize <= 0 {
		maxEntrySize = 1 << 20
	}
	return &CacheRepository{client: client, logger: logger, ttl: ttl, maxEntrySize: maxEntrySize}
}

// WithMetrics attaches hit/miss instrumentation to reads.
func (r *CacheRepository) WithMetrics(metrics CacheMetrics) *CacheRepository {
	r.metrics = metrics
	return r
}

// Get retrieves and unmarshals the cached value into dest. A missing key, an
// unknown schema tag, or an undecodable envelope all surface as ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()
	err := r.get(ctx, key, dest)
	if r.metrics != nil {
		r.metrics.RecordCacheOperation(err == nil, time.Since(start))
	}
	return err
}

func (r *CacheRepository) get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		r.logger.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		_ = r.client.Del(ctx, key).Err()
		return appErrors.ErrCacheMiss
	}
	if envelope.Schema != CacheSchemaVersion {
		return appErrors.ErrCacheMiss
	}

	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals the value into a versioned envelope and stores it. Payloads
// over the size ceiling are rejected so oversized blobs (base64 photos and
// the like) cannot grow the tier without bound.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}) error {
	if r.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if int64(len(data)) > r.maxEntrySize {
		r.logger.Warn("cache entry rejected over size ceiling",
			zap.String("key", key), zap.Int("size", len(data)), zap.Int64("ceiling", r.maxEntrySize))
		return appErrors.Clone(appErrors.ErrCacheEntryTooBig, fmt.Sprintf("entry %s is %d bytes", key, len(data)))
	}

	envelope := cacheEnvelope{Schema: CacheSchemaVersion, StoredAt: time.Now().UTC(), Data: data}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal cache envelope for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// PatchFields merges the given fields into a cached JSON object instead of
// replacing the whole value, so two writers touching different fields of the
// same snapshot do not lose each other's updates. The merge runs under a
// per-key watch and retries on conflict.
func (r *CacheRepository) PatchFields(ctx context.Context, key string, fields map[string]interface{}) error {
	if r.client == nil {
		return nil
	}

	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current := make(map[string]interface{})

			raw, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
				// patching a missing entry creates it
			case err != nil:
				return fmt.Errorf("redis get %s: %w", key, err)
			default:
				var envelope cacheEnvelope
				if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Schema == CacheSchemaVersion {
					_ = json.Unmarshal(envelope.Data, &current)
				}
			}

			for k, v := range fields {
				current[k] = v
			}

			data, err := json.Marshal(current)
			if err != nil {
				return fmt.Errorf("marshal patched value for %s: %w", key, err)
			}
			envelope := cacheEnvelope{Schema: CacheSchemaVersion, StoredAt: time.Now().UTC(), Data: data}
			payload, err := json.Marshal(envelope)
			if err != nil {
				return fmt.Errorf("marshal cache envelope for %s: %w", key, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, r.ttl)
				return nil
			})
			return err
		}, key)

		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("patch %s: too many concurrent writers", key)
}

// Delete removes a cached entry.
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes cached entries matching the provided pattern, used
// when a user logs out or an entity is purged.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
