// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package adapter provides the transport layer for talking to the remote
// record store.
//
// The primary abstraction is [RemoteStore], which decouples the sync core
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteStore]) built on resty.
//
// Error values defined in errors.go are mapped from transport failures and
// HTTP status codes by mapHTTPError so that callers can use [errors.Is] for
// transport-agnostic handling: [ErrNetworkUnavailable] marks transient
// failures that should flip the connectivity signal and park the sync queue,
// [ErrInvalidPayload] marks requests the remote will never accept.
package adapter

import (
	"context"
	"encoding/json"

	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore defines transport-agnostic communication with the remote
// record store. Implementations are responsible for serialisation, auth
// header management, payload integrity hashes, and mapping transport-level
// errors to the sentinel values defined in this package.
type RemoteStore interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently held by the adapter, or an
	// empty string if none has been set.
	Token() string

	// Read fetches the records of one collection matching query.
	Read(ctx context.Context, collection string, query models.RemoteQuery) ([]models.Record, error)

	// ReadBatch executes a group of read requests against endpoint in a
	// single round trip and returns one result per param, in param order.
	// This is the dispatch surface the request coordinator flushes batches
	// through.
	ReadBatch(ctx context.Context, endpoint string, params []json.RawMessage) ([]json.RawMessage, error)

	// Write pushes one queued operation to the remote. The operation ID
	// travels as an idempotency key, so redelivering the same operation
	// after a crash or retry is safe. Returns [ErrConflict] (wrapped) when
	// the remote holds a newer version of the record.
	Write(ctx context.Context, op models.SyncOperation) error

	// Ping probes remote reachability. Used by the connectivity prober; any
	// failure comes back wrapped in [ErrNetworkUnavailable].
	Ping(ctx context.Context) error
}
