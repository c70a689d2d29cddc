package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotConnected is returned by every Records and Queue method when the
	// store has not been opened with Connect (or was closed). It signals a
	// wiring bug, not a runtime condition worth retrying.
	ErrNotConnected = errors.New("local store is not connected")

	// ErrRecordNotFound is returned when a lookup targets a (collection, id)
	// pair that was never written to the local mirror. A tombstoned record
	// is still found; check Record.Deleted instead.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrOperationNotFound is returned when an update, delete or lookup
	// targets a sync-queue operation ID that does not exist, typically
	// because the operation was already pruned.
	ErrOperationNotFound = errors.New("sync operation was not found")

	// ErrUnknownBackend is returned by [New] when the configured backend
	// name does not match any supported storage engine.
	ErrUnknownBackend = errors.New("unknown local store backend")
)
