package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters for the
// admin status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	SyncRunsTotal            uint64    `json:"sync_runs_total"`
	AverageSyncDurationMs    float64   `json:"avg_sync_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
