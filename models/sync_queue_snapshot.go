package models

import "time"

// SyncQueueSnapshot is a read-only summary of the sync queue, recomputed on
// every queue mutation. The UI renders it directly (badge counts, "retry"
// affordances), so it must never expose live queue internals.
type SyncQueueSnapshot struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Running int `json:"running"`
	Synced  int `json:"synced"`
	Failed  int `json:"failed"`

	// NextRetryAt is the time of the next automatic drain attempt, nil when
	// nothing is scheduled (queue empty or offline).
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`

	// OldestPending is the enqueue time of the oldest pending operation, nil
	// when none are pending. Useful for "unsynced since ..." indicators.
	OldestPending *time.Time `json:"oldest_pending,omitempty"`
}
