package config

import "errors"

// Validation errors returned by [Config.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidCacheConfigs indicates invalid result cache settings
	// (for example, a non-positive TTL or entry cap).
	ErrInvalidCacheConfigs = errors.New("invalid cache configuration")
	// ErrInvalidRequestConfigs indicates invalid request coordinator settings
	// (for example, a zero dedup window or batch size).
	ErrInvalidRequestConfigs = errors.New("invalid request configuration")
	// ErrInvalidSyncConfigs indicates invalid sync queue settings
	// (for example, a zero auto-drain interval).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidPrefetchConfigs indicates invalid prefetch settings
	// (for example, an idle timeout shorter than the idle delay).
	ErrInvalidPrefetchConfigs = errors.New("invalid prefetch configuration")
	// ErrInvalidRemoteConfigs indicates invalid remote store settings
	// (for example, a missing address or zero request timeout).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidLocalConfigs indicates invalid local store settings
	// (for example, an unknown backend or a missing DSN).
	ErrInvalidLocalConfigs = errors.New("invalid local storage configuration")
	// ErrInvalidNetmonConfigs indicates invalid connectivity monitor settings
	// (for example, a zero probe interval).
	ErrInvalidNetmonConfigs = errors.New("invalid netmon configuration")
)
