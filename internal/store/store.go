package store

import (
	"fmt"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// Supported backend names for [config.Local].Backend.
const (
	BackendMemory = "memory"
	BackendClover = "clover"
	BackendSQLite = "sqlite"
)

// New builds the local store selected by cfg.Backend. An empty backend name
// selects the in-memory store. The returned store is not connected yet;
// call [Local.Connect] before use.
func New(cfg config.Local, log *logger.Logger) (Local, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(log), nil
	case BackendClover:
		return NewClover(cfg.DSN, log), nil
	case BackendSQLite:
		return NewSQLite(cfg.DSN, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
