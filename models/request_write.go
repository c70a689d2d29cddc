package models

// WriteRequest replays one queued local write against the remote store.
type WriteRequest struct {
	// OpID is the queue operation ID, passed as an idempotency key. The
	// remote must treat a replayed OpID as already applied, so a crash
	// between remote commit and local acknowledgement cannot double-apply.
	OpID string `json:"op_id"`

	Kind       OpKind `json:"kind"`
	Collection string `json:"collection"`
	RecordID   string `json:"record_id"`

	// Record is the full record body. Deletes carry a tombstone (Deleted
	// set, payload empty) so the remote can order them against concurrent
	// updates by UpdatedAt.
	Record *Record `json:"record,omitempty"`

	// Hash of the serialized record — transport integrity check.
	Hash string `json:"hash,omitempty"`
}
