// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package models

import "encoding/json"

// RemoteQuery is an opaque filter passed through to the remote store when
// reading a collection. The sync core does not interpret Filter; it only
// serializes it, so any filter language the remote understands is allowed.
type RemoteQuery struct {
	// Filter narrows the result set. Keys and values are forwarded verbatim.
	Filter map[string]any `json:"filter,omitempty"`

	// Limit caps the number of returned records. Zero means no cap.
	Limit int `json:"limit,omitempty"`
}

// QueryRequest asks the remote store for records of one collection matching
// a query.
type QueryRequest struct {
	Collection string      `json:"collection"`
	Query      RemoteQuery `json:"query"`
}

// BatchRequest carries several coalesced read requests for one endpoint in a
// single round trip. Params holds one opaque parameter blob per original
// request, in submission order.
type BatchRequest struct {
	// Endpoint names the remote operation the batched params belong to.
	Endpoint string `json:"endpoint"`

	// Params are the individual request parameters, one entry per caller.
	Params []json.RawMessage `json:"params"`

	// Hash of serialized Params — transport integrity check.
	Hash string `json:"hash,omitempty"`

	// Length is the total number of entries in Params.
	Length int `json:"length"`
}
