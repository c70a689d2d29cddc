package syncer

import "errors"

// ErrInvalidOperation is returned by Enqueue when the operation cannot be
// queued at all: unknown kind, empty collection or record ID, or a missing
// payload on create/update. Nothing is written locally in that case.
var ErrInvalidOperation = errors.New("invalid sync operation")
