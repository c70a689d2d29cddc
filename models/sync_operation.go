// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OpKind is the type of a queued write.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// OpStatus is the lifecycle state of a queued write.
//
// Transitions: Pending -> Running -> Synced | Failed, and Failed -> Pending
// when a retry is requested. Running operations found after a restart are
// reset to Pending (the process died mid-drain).
type OpStatus string

const (
	StatusPending OpStatus = "pending"
	StatusRunning OpStatus = "running"
	StatusSynced  OpStatus = "synced"
	StatusFailed  OpStatus = "failed"
)

// SyncOperation is one durable entry of the sync queue: a local write waiting
// to be replayed against the remote store. Operations are persisted in the
// local store before Enqueue returns, so the queue survives restarts.
type SyncOperation struct {
	// ID is a UUIDv7, time-ordered so lexical order roughly matches enqueue
	// order. It doubles as the idempotency key sent to the remote store.
	ID string `json:"id"`

	// Seq is a per-process monotonic sequence number. It breaks ties between
	// operations enqueued within the same UUIDv7 timestamp granularity and
	// fixes replay order after a restart.
	Seq int64 `json:"seq"`

	Kind       OpKind          `json:"kind"`
	Collection string          `json:"collection"`
	RecordID   string          `json:"record_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`

	Status OpStatus `json:"status"`

	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the terminal failure message when Status is Failed.
	Error string `json:"error,omitempty"`

	// RetryAvailable marks operations eligible for a manual retry: failed
	// ones, and pending ones recovered from a crashed drain.
	RetryAvailable bool `json:"retry_available"`
}

// RecordKey returns the "collection:id" key of the record this operation
// targets.
func (op SyncOperation) RecordKey() string {
	return RecordKey(op.Collection, op.RecordID)
}

// NewOpID generates a time-ordered operation ID. UUIDv7 keeps queue listings
// sorted by creation time; on the rare v7 failure a random v4 is used.
func NewOpID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
