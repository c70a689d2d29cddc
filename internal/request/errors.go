package request

import "errors"

var (
	ErrClosed = errors.New("request coordinator is closed")
)
