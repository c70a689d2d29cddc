package models

import "encoding/json"

// QueryResponse carries the records matching a QueryRequest.
type QueryResponse struct {
	Records []Record `json:"records"`

	// Length is the total number of entries in Records. Provided so the
	// client can validate the response without iterating the slice.
	Length int `json:"length"`
}

// BatchResponse answers a BatchRequest. Results aligns with the request's
// Params slice: Results[i] is the opaque response for Params[i].
type BatchResponse struct {
	Results []json.RawMessage `json:"results"`
	Length  int               `json:"length"`
}
