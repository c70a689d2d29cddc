// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/adapter"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/cache"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/metrics"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/netmon"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/prefetch"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/request"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/scheduler"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/store"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/syncer"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/workers"
)

// App is the sync core facade. All UI-facing reads, writes, queue control
// and prefetch triggers go through it; no caller reaches a component
// directly.
//
// The zero value is not usable: build with [New], start with [Run].
type App struct {
	cfg    *config.Config
	logger *logger.Logger

	local    store.Local
	remote   adapter.RemoteStore
	monitor  netmon.Monitor
	manual   *netmon.Manual
	prober   *netmon.Prober
	results  *cache.ResultCache
	requests *request.Coordinator
	sched    *scheduler.IdleScheduler
	prefetch *prefetch.Service
	registry *prometheus.Registry

	mu      sync.Mutex
	syncer  *syncer.Coordinator
	workers *workers.Workers
	started bool
	closed  bool
}

// New wires every component from cfg. Nothing is opened yet: the local
// store connects and the background workers start in [App.Run]. A nil cfg
// uses the built-in defaults, a nil log discards all output.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Remote, log)
	if err != nil {
		return nil, fmt.Errorf("build remote adapter: %w", err)
	}

	local, err := store.New(cfg.Local, log.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("build local store: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   log,
		local:    local,
		remote:   remote,
		results:  cache.New(cfg.Cache, log),
		requests: request.NewCoordinator(remote, cfg.Request, log),
		registry: prometheus.NewRegistry(),
	}

	if cfg.Netmon.Manual {
		a.manual = netmon.NewManual(!cfg.Netmon.StartOffline, log.Component("netmon"))
		a.monitor = a.manual
	} else {
		a.prober = netmon.NewProber(remote, cfg.Netmon, log.Component("netmon"))
		a.manual = a.prober.Manual
		a.monitor = a.prober
	}

	a.sched = scheduler.NewIdleScheduler(cfg.Prefetch.IdleDelay, cfg.Prefetch.IdleTimeout, log)
	a.prefetch = prefetch.New(a.sched, cfg.Prefetch, log.Component("prefetch"))

	return a, nil
}

// Run opens the local store, recovers the sync queue and starts the
// background workers (cache sweep, request cleanup, auto-drain, synced-op
// retention and, unless the monitor is manual, the connectivity prober).
// The app runs once; after Close it cannot be restarted.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.started {
		return ErrAlreadyRunning
	}

	if err := a.local.Connect(ctx); err != nil {
		return fmt.Errorf("connect local store: %w", err)
	}

	sc, err := syncer.New(a.local.Records(), a.local.Queue(), a.remote, a.results, a.monitor, a.cfg.Sync, a.logger.Component("syncer"))
	if err != nil {
		_ = a.local.Close()
		return fmt.Errorf("build sync coordinator: %w", err)
	}
	a.syncer = sc

	if a.cfg.Metrics.Enabled {
		providers := metrics.Providers{
			Cache:    a.results,
			Requests: a.requests,
			Queue:    sc,
			Prefetch: a.prefetch,
		}
		if _, err := metrics.Register(a.registry, providers); err != nil {
			sc.Close()
			a.syncer = nil
			_ = a.local.Close()
			return err
		}
	}

	wlog := a.logger.Component("workers")
	ws := []workers.Worker{
		workers.NewPeriodic("cache-sweep", interval(a.cfg.Cache.SweepInterval, time.Minute), func(context.Context) { a.results.Sweep() }, wlog),
		workers.NewPeriodic("request-cleanup", interval(a.cfg.Request.CleanupInterval, 10*time.Second), func(context.Context) { a.requests.Cleanup() }, wlog),
		workers.NewPeriodic("auto-drain", interval(a.cfg.Sync.AutoDrainInterval, 30*time.Second), sc.AutoDrain, wlog).WithKick(sc.DrainSignal()),
		workers.NewPeriodic("synced-retention", pruneInterval(a.cfg.Sync.SyncedRetention), func(ctx context.Context) { _, _ = sc.PruneSynced(ctx) }, wlog),
	}
	if a.prober != nil {
		ws = append(ws, &proberWorker{prober: a.prober})
	}
	a.workers = workers.New(ws...)
	a.workers.Run()

	a.started = true
	a.logger.Info().
		Str("backend", a.cfg.Local.Backend).
		Bool("manual_netmon", a.prober == nil).
		Msg("sync core started")

	return nil
}

// Close stops the workers and releases every backend. Idempotent; safe to
// call before Run.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.workers != nil {
		a.workers.Stop()
	}
	if a.syncer != nil {
		a.syncer.Close()
	}
	a.prefetch.Clear()
	a.requests.Close()
	a.sched.Close()

	var err error
	if a.started {
		err = a.local.Close()
		a.started = false
	}
	if err != nil {
		return fmt.Errorf("close local store: %w", err)
	}

	a.logger.Info().Msg("sync core stopped")
	return nil
}

// coordinator returns the sync coordinator once Run has built it.
func (a *App) coordinator() (*syncer.Coordinator, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}
	if a.syncer == nil {
		return nil, ErrNotRunning
	}
	return a.syncer, nil
}

// Online reports the current connectivity verdict.
func (a *App) Online() bool {
	return a.monitor.Online()
}

// SetOnline overrides the connectivity state. With a probing monitor the
// override holds only until the next probe verdict.
func (a *App) SetOnline(online bool) {
	a.manual.SetOnline(online)
}

// SetToken installs the bearer token attached to subsequent remote calls.
// The sync core never issues or inspects tokens; auth belongs to the
// embedding application.
func (a *App) SetToken(token string) {
	a.remote.SetToken(token)
}

// MetricsHandler serves this instance's metrics registry. The registry is
// populated by Run when metrics are enabled; otherwise the handler answers
// with an empty exposition.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

// proberWorker adapts the prober's Start/Stop lifecycle to the workers
// contract.
type proberWorker struct {
	prober *netmon.Prober
}

func (w *proberWorker) Run()  { w.prober.Start(context.Background()) }
func (w *proberWorker) Stop() { w.prober.Stop() }

// interval guards the worker tickers against zero values from partial
// configs.
func interval(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// pruneInterval derives the retention worker cadence: a few sweeps per
// window, at least once a minute.
func pruneInterval(retention time.Duration) time.Duration {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	iv := retention / 4
	if iv < time.Minute {
		iv = time.Minute
	}
	return iv
}
