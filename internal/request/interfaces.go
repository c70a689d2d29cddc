// Package request coordinates remote reads: identical concurrent requests
// collapse into one flight, and distinct requests for the same endpoint are
// grouped into batches before they reach the adapter.
package request

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/dispatcher_mock.go -package=mock

// Dispatcher executes a flushed batch against the remote. The adapter
// implements this; results come back one per param, in param order.
type Dispatcher interface {
	ReadBatch(ctx context.Context, endpoint string, params []json.RawMessage) ([]json.RawMessage, error)
}
