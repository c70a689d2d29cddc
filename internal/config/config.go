// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package config

import (
	"time"
)

// Config is the top-level configuration container for the sync core. It
// aggregates all component configurations and is populated by merging values
// from environment variables, command-line flags, an optional JSON file, and
// the built-in defaults.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type Config struct {
	// Cache holds result cache settings (TTL, capacity, sweep interval).
	Cache Cache `envPrefix:"CACHE_"`

	// Request holds request coordinator settings (dedup window, batching).
	Request Request `envPrefix:"REQUEST_"`

	// Sync holds sync queue settings (drain cadence, retry policy).
	Sync Sync `envPrefix:"SYNC_"`

	// Prefetch holds prefetch and idle-scheduling settings.
	Prefetch Prefetch `envPrefix:"PREFETCH_"`

	// Remote holds the remote store endpoint settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Local holds the local embedded store settings.
	Local Local `envPrefix:"LOCAL_"`

	// Netmon holds connectivity monitoring settings.
	Netmon Netmon `envPrefix:"NETMON_"`

	// Metrics holds metrics exposure settings.
	Metrics Metrics `envPrefix:"METRICS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged after env and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Cache configures the result cache.
type Cache struct {
	// TTL is the default lifetime of a cached entry when the caller does not
	// specify one (e.g. "5m").
	// Env: CACHE_TTL
	TTL time.Duration `env:"TTL"`

	// MaxEntries caps the number of live entries. Inserting a new key at the
	// cap evicts the oldest entry by insertion order.
	// Env: CACHE_MAX_ENTRIES
	MaxEntries int `env:"MAX_ENTRIES"`

	// SweepInterval is how often the background sweep removes expired
	// entries that no one has read since they expired.
	// Env: CACHE_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
}

// Request configures the request coordinator.
type Request struct {
	// DedupWindow is how long an in-flight request stays joinable by
	// identical callers before a fresh dispatch is started.
	// Env: REQUEST_DEDUP_WINDOW
	DedupWindow time.Duration `env:"DEDUP_WINDOW"`

	// BatchWindow is how long the coordinator collects requests for one
	// endpoint before dispatching them as a single batch.
	// Env: REQUEST_BATCH_WINDOW
	BatchWindow time.Duration `env:"BATCH_WINDOW"`

	// MaxBatchSize flushes a batch early once this many requests are
	// waiting, without letting the full batch window elapse.
	// Env: REQUEST_MAX_BATCH_SIZE
	MaxBatchSize int `env:"MAX_BATCH_SIZE"`

	// MaxQueueLength bounds the per-endpoint waiting queue. Requests beyond
	// the bound bypass batching and dispatch individually.
	// Env: REQUEST_MAX_QUEUE_LENGTH
	MaxQueueLength int `env:"MAX_QUEUE_LENGTH"`

	// CleanupInterval is how often stale dedup bookkeeping is purged.
	// Env: REQUEST_CLEANUP_INTERVAL
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"`
}

// Sync configures the sync queue and its drain behavior.
type Sync struct {
	// AutoDrainInterval is how often a background drain is attempted while
	// online and operations are pending.
	// Env: SYNC_AUTO_DRAIN_INTERVAL
	AutoDrainInterval time.Duration `env:"AUTO_DRAIN_INTERVAL"`

	// RetryAttempts is the number of in-place attempts for an operation that
	// fails with a transient network error before it is marked failed.
	// Env: SYNC_RETRY_ATTEMPTS
	RetryAttempts int `env:"RETRY_ATTEMPTS"`

	// RetryBackoff is the pause between transient retry attempts.
	// Env: SYNC_RETRY_BACKOFF
	RetryBackoff time.Duration `env:"RETRY_BACKOFF"`

	// SyncedRetention is how long completed operations remain visible in
	// queue snapshots before the retention worker prunes them.
	// Env: SYNC_SYNCED_RETENTION
	SyncedRetention time.Duration `env:"SYNCED_RETENTION"`
}

// Prefetch configures the prefetch service and the idle scheduler it uses.
type Prefetch struct {
	// IdleDelay is the quiet period after which idle-priority work becomes
	// eligible to run.
	// Env: PREFETCH_IDLE_DELAY
	IdleDelay time.Duration `env:"IDLE_DELAY"`

	// IdleTimeout is the hard deadline for idle-priority work: even under
	// constant load the task runs once this much time has passed.
	// Env: PREFETCH_IDLE_TIMEOUT
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT"`

	// HoverDebounce is how long a pointer must rest on an element before its
	// hover prefetch fires.
	// Env: PREFETCH_HOVER_DEBOUNCE
	HoverDebounce time.Duration `env:"HOVER_DEBOUNCE"`

	// ViewportMargin is the look-ahead margin, in pixels, that the embedding
	// UI applies when deciding that an observed element is about to become
	// visible.
	// Env: PREFETCH_VIEWPORT_MARGIN
	ViewportMargin int `env:"VIEWPORT_MARGIN"`

	// Routes is the static likely-next-route table used by predictive
	// prefetching: for each route, the routes a user most often visits next.
	// Only settable via the JSON config file.
	Routes map[string][]string `env:"-" json:"routes,omitempty"`
}

// Remote configures access to the remote document store.
type Remote struct {
	// HTTPAddress is the base address of the remote store API, in
	// "host:port" or full URL form.
	// Env: REMOTE_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the per-request timeout for remote calls.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HashKey is the HMAC key for payload integrity headers. Empty disables
	// integrity hashing.
	// Env: REMOTE_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// AuthToken is an opaque bearer token attached to remote requests. The
	// sync core never issues or inspects it.
	// Env: REMOTE_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Local configures the local embedded store.
type Local struct {
	// Backend selects the storage engine: "memory", "clover" or "sqlite".
	// Env: LOCAL_BACKEND
	Backend string `env:"BACKEND"`

	// DSN locates the store: a file path for sqlite, a directory for
	// clover. Ignored by the memory backend.
	// Env: LOCAL_DSN
	DSN string `env:"DSN"`
}

// Netmon configures connectivity monitoring.
type Netmon struct {
	// ProbeInterval is how often the prober pings the remote store.
	// Env: NETMON_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// FailThreshold is the number of consecutive failed probes after which
	// the monitor reports offline. A single success flips it back online.
	// Env: NETMON_FAIL_THRESHOLD
	FailThreshold int `env:"FAIL_THRESHOLD"`

	// StartOffline makes the monitor report offline until the first
	// successful probe or an explicit online signal.
	// Env: NETMON_START_OFFLINE
	StartOffline bool `env:"START_OFFLINE"`

	// Manual disables the prober entirely; connectivity is then driven
	// through SetOnline by the embedding application or CLI.
	// Env: NETMON_MANUAL
	Manual bool `env:"MANUAL"`
}

// Metrics configures metrics exposure.
type Metrics struct {
	// Enabled registers Prometheus collectors for all components.
	// Env: METRICS_ENABLED
	Enabled bool `env:"ENABLED"`
}

// Default returns the built-in defaults for every tunable. They are merged in
// last, so any explicitly configured value wins over them.
func Default() *Config {
	return &Config{
		Cache: Cache{
			TTL:           5 * time.Minute,
			MaxEntries:    100,
			SweepInterval: time.Minute,
		},
		Request: Request{
			DedupWindow:     time.Second,
			BatchWindow:     50 * time.Millisecond,
			MaxBatchSize:    10,
			MaxQueueLength:  256,
			CleanupInterval: 10 * time.Second,
		},
		Sync: Sync{
			AutoDrainInterval: 30 * time.Second,
			RetryAttempts:     3,
			RetryBackoff:      500 * time.Millisecond,
			SyncedRetention:   24 * time.Hour,
		},
		Prefetch: Prefetch{
			IdleDelay:      time.Second,
			IdleTimeout:    2 * time.Second,
			HoverDebounce:  100 * time.Millisecond,
			ViewportMargin: 50,
		},
		Remote: Remote{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 15 * time.Second,
		},
		Local: Local{
			Backend: "memory",
		},
		Netmon: Netmon{
			ProbeInterval: 15 * time.Second,
			FailThreshold: 2,
		},
	}
}

// GetConfig loads, merges, and validates the sync core configuration from all
// available sources in the following priority order (first source wins for
// fields it sets):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *Config or an error if any source fails to load
// or the final config fails validation.
func GetConfig() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
