package models

import (
	"encoding/json"
	"time"
)

// Record is a single keyed document in the tracked dataset (a task, a
// session, a goal). The sync core never interprets Payload: it moves records
// between the local store, the result cache and the remote store as opaque
// JSON.
type Record struct {
	// Collection is the logical dataset the record belongs to
	// (e.g. "tasks", "sessions", "goals").
	Collection string `json:"collection"`

	// ID identifies the record within its collection.
	ID string `json:"id"`

	// Payload holds the record body. Stored and transported verbatim.
	Payload json.RawMessage `json:"payload"`

	// UpdatedAt is the timestamp of the last local modification. The remote
	// store resolves concurrent writers by this value (last writer wins).
	UpdatedAt time.Time `json:"updated_at"`

	// Deleted marks a soft-deleted record. Deletions replicate like updates.
	Deleted bool `json:"deleted"`
}

// Key returns the canonical cache/invalidation key of the record,
// "collection:id". The same form is used by the result cache, the sync
// queue and the read path, so an invalidation issued by one component is
// visible to the others.
func (r Record) Key() string {
	return RecordKey(r.Collection, r.ID)
}

// RecordKey builds the canonical "collection:id" key without a Record value.
func RecordKey(collection, id string) string {
	return collection + ":" + id
}
