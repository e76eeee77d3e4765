package models

import "time"

// SyncResult summarises one cache warm-up run.
type SyncResult struct {
	UID        string        `json:"uid"`
	Role       UserRole      `json:"role"`
	Entities   []string      `json:"entities"`
	Warmed     int           `json:"warmed"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
	ErrMessage string        `json:"error,omitempty"`
}

// SyncStatus is the last-known sync state for a user, stored in the local
// tier so clients can show cache freshness.
type SyncStatus struct {
	UID        string    `json:"uid"`
	Running    bool      `json:"running"`
	LastRunAt  time.Time `json:"last_run_at"`
	LastError  string    `json:"last_error,omitempty"`
	LastWarmed int       `json:"last_warmed"`
}
