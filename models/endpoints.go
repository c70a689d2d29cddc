package models

// Remote read endpoints understood by the batch dispatcher. The adapter
// forwards the endpoint name verbatim; the remote routes every batched param
// to the matching operation and answers with one result per param.
const (
	// EndpointRecordGet resolves a single record. Each param is a RecordRef;
	// each result is the record JSON, or null when the record does not exist.
	EndpointRecordGet = "records/get"

	// EndpointRecordQuery resolves a collection query. Each param is a
	// QueryRequest; each result is a JSON array of matching records.
	EndpointRecordQuery = "records/query"
)

// RecordRef identifies one record for a batched point read.
type RecordRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Key returns the canonical "collection:id" form of the reference.
func (r RecordRef) Key() string {
	return RecordKey(r.Collection, r.ID)
}
