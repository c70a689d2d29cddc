package adapter

import "errors"

var (
	// ErrNetworkUnavailable marks transient transport failures: connection
	// refused, DNS errors, timeouts and 5xx responses. Retryable; drives the
	// offline transition.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrInvalidPayload marks requests the remote rejected as malformed.
	// Never retried.
	ErrInvalidPayload = errors.New("invalid payload")

	ErrNotFound = errors.New("record not found on remote")
	ErrConflict = errors.New("remote holds a newer version")
)
