// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package config

// validate checks that the final merged [Config] satisfies all invariants
// before it is used at startup. With defaults merged in, a validation failure
// means some source explicitly set an unusable value.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *Config) validate() error {
	if cfg.Cache.TTL <= 0 || cfg.Cache.MaxEntries <= 0 || cfg.Cache.SweepInterval <= 0 {
		return ErrInvalidCacheConfigs
	}

	if cfg.Request.DedupWindow <= 0 || cfg.Request.BatchWindow <= 0 ||
		cfg.Request.MaxBatchSize <= 0 || cfg.Request.MaxQueueLength <= 0 ||
		cfg.Request.CleanupInterval <= 0 {
		return ErrInvalidRequestConfigs
	}

	if cfg.Sync.AutoDrainInterval <= 0 || cfg.Sync.RetryAttempts <= 0 ||
		cfg.Sync.RetryBackoff <= 0 || cfg.Sync.SyncedRetention <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Prefetch.IdleDelay <= 0 || cfg.Prefetch.HoverDebounce <= 0 ||
		cfg.Prefetch.IdleTimeout < cfg.Prefetch.IdleDelay {
		return ErrInvalidPrefetchConfigs
	}

	if cfg.Remote.HTTPAddress == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	switch cfg.Local.Backend {
	case "memory":
	case "clover", "sqlite":
		if cfg.Local.DSN == "" {
			return ErrInvalidLocalConfigs
		}
	default:
		return ErrInvalidLocalConfigs
	}

	if cfg.Netmon.ProbeInterval <= 0 || cfg.Netmon.FailThreshold <= 0 {
		return ErrInvalidNetmonConfigs
	}

	return nil
}
