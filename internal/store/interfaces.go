// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package store persists application records and the sync queue on the
// device. Three interchangeable backends implement the same contract: an
// in-memory map (tests, ephemeral sessions), a CloverDB document store and
// an SQLite database. The sync engine never talks to a backend directly;
// it goes through the [Local] interface returned by [New].
package store

import (
	"context"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/local_store_mock.go -package=mock

// Records is the local mirror of the tracked dataset. Writes are
// unconditional upserts: the caller decides whether a record should win
// (optimistic local writes carry a fresh timestamp, remote reads are
// authoritative after a drain).
type Records interface {
	// Put inserts or overwrites a record under (collection, id).
	Put(ctx context.Context, record models.Record) error

	// Get returns the record stored under (collection, id), tombstones
	// included; callers must check Deleted. Returns [ErrRecordNotFound]
	// when the key was never written.
	Get(ctx context.Context, collection, id string) (models.Record, error)

	// List returns the live (non-deleted) records of a collection, newest
	// first. query.Filter is matched by equality against top-level payload
	// fields; query.Limit caps the result when positive.
	List(ctx context.Context, collection string, query models.RemoteQuery) ([]models.Record, error)

	// Delete writes a tombstone under (collection, id) with the given
	// timestamp. Deleting an unknown key still stores a tombstone so the
	// deletion survives a later stale read.
	Delete(ctx context.Context, collection, id string, at time.Time) error
}

// Queue is the durable outbox of local writes awaiting replay against the
// remote store. Entries keep their insertion order (Seq) across restarts.
type Queue interface {
	// Append persists a new operation, assigns the next Seq and returns the
	// stored operation.
	Append(ctx context.Context, op models.SyncOperation) (models.SyncOperation, error)

	// Update overwrites the operation identified by op.ID. Returns
	// [ErrOperationNotFound] when no such operation exists.
	Update(ctx context.Context, op models.SyncOperation) error

	// Delete removes the operation with the given ID. Returns
	// [ErrOperationNotFound] when no such operation exists.
	Delete(ctx context.Context, opID string) error

	// Get returns the operation with the given ID or [ErrOperationNotFound].
	Get(ctx context.Context, opID string) (models.SyncOperation, error)

	// List returns operations in Seq order. With no statuses the whole
	// queue is returned; otherwise only operations in one of the given
	// states.
	List(ctx context.Context, statuses ...models.OpStatus) ([]models.SyncOperation, error)

	// ResetRunning moves every running operation back to pending, clears its
	// start time and marks it retryable. Called once on startup: a running
	// entry at that point means the previous process died mid-drain. Returns
	// the number of operations reset.
	ResetRunning(ctx context.Context) (int, error)

	// PruneSynced deletes synced operations that completed before the given
	// time and returns the number removed.
	PruneSynced(ctx context.Context, olderThan time.Time) (int, error)
}

// Local is a connected local store. Records and Queue may be called before
// Connect; their methods return [ErrNotConnected] until the store is open.
type Local interface {
	// Connect opens the backend (creating files or schema as needed).
	// Calling Connect on an open store is a no-op.
	Connect(ctx context.Context) error

	// Close releases the backend. The store can be reopened with Connect.
	Close() error

	Records() Records
	Queue() Queue
}
