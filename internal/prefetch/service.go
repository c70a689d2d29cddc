// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package prefetch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/scheduler"
)

const (
	defaultIdleTimeout    = 2 * time.Second
	defaultHoverDebounce  = 100 * time.Millisecond
	defaultViewportMargin = 50
)

// Priority is a load-priority hint carried to loaders through their context.
// Transports may map it to request prioritisation; nothing else interprets it.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// When selects the scheduler lane a prefetch runs on.
type When int

const (
	// Immediate runs the load as soon as the worker is free.
	Immediate When = iota
	// Idle defers the load until the immediate lane quiets down, bounded by
	// the configured idle timeout.
	Idle
)

// Options tune a single prefetch call.
type Options struct {
	Priority Priority
	When     When
}

type priorityKey struct{}

// WithPriority returns a copy of ctx carrying the prefetch priority.
func WithPriority(ctx context.Context, p Priority) context.Context {
	return context.WithValue(ctx, priorityKey{}, p)
}

// PriorityFromContext reads the prefetch priority from ctx, defaulting to
// PriorityLow.
func PriorityFromContext(ctx context.Context) Priority {
	if p, ok := ctx.Value(priorityKey{}).(Priority); ok {
		return p
	}
	return PriorityLow
}

// Service implements Prefetcher.
type Service struct {
	sched scheduler.Scheduler

	idleTimeout    time.Duration
	hoverDebounce  time.Duration
	viewportMargin int

	mu         sync.Mutex
	loaders    map[string]LoaderFunc
	routes     map[string]struct{}
	data       map[string]any
	loading    map[string]struct{}
	observers  map[string]observer
	routeTable map[string][]string
	completed  int64
	failed     int64

	logger *logger.Logger
}

var _ Prefetcher = (*Service)(nil)

// New builds the service. The route table is copied from cfg; zero tuning
// values fall back to the defaults.
func New(sched scheduler.Scheduler, cfg config.Prefetch, log *logger.Logger) *Service {
	s := &Service{
		sched:          sched,
		idleTimeout:    cfg.IdleTimeout,
		hoverDebounce:  cfg.HoverDebounce,
		viewportMargin: cfg.ViewportMargin,
		loaders:        make(map[string]LoaderFunc),
		routes:         make(map[string]struct{}),
		data:           make(map[string]any),
		loading:        make(map[string]struct{}),
		observers:      make(map[string]observer),
		routeTable:     make(map[string][]string, len(cfg.Routes)),
		logger:         log,
	}
	if s.idleTimeout <= 0 {
		s.idleTimeout = defaultIdleTimeout
	}
	if s.hoverDebounce <= 0 {
		s.hoverDebounce = defaultHoverDebounce
	}
	if s.viewportMargin <= 0 {
		s.viewportMargin = defaultViewportMargin
	}
	for route, next := range cfg.Routes {
		s.routeTable[route] = append([]string(nil), next...)
	}

	return s
}

// RegisterRoute implements Prefetcher.
func (s *Service) RegisterRoute(route string, loader LoaderFunc) {
	s.mu.Lock()
	s.loaders[route] = loader
	s.mu.Unlock()
}

// PrefetchRoute implements Prefetcher.
func (s *Service) PrefetchRoute(route string, opts Options) {
	s.mu.Lock()
	if _, done := s.routes[route]; done {
		s.mu.Unlock()
		return
	}
	loader, ok := s.loaders[route]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug().Str("route", route).Msg("no loader registered for route")
		return
	}
	// marked before the load resolves so concurrent triggers stay no-ops;
	// a failed load unmarks below
	s.routes[route] = struct{}{}
	s.mu.Unlock()

	s.schedule(opts, func(ctx context.Context) {
		if _, err := loader(ctx); err != nil {
			s.mu.Lock()
			delete(s.routes, route)
			s.failed++
			s.mu.Unlock()
			s.logger.Warn().Err(err).Str("route", route).Msg("route prefetch failed")
			return
		}
		s.mu.Lock()
		s.completed++
		s.mu.Unlock()
		s.logger.Debug().Str("route", route).Msg("route prefetched")
	})
}

// PrefetchData implements Prefetcher.
func (s *Service) PrefetchData(key string, loader LoaderFunc, opts Options) {
	if loader == nil {
		return
	}

	s.mu.Lock()
	if _, done := s.data[key]; done {
		s.mu.Unlock()
		return
	}
	if _, busy := s.loading[key]; busy {
		s.mu.Unlock()
		return
	}
	s.loading[key] = struct{}{}
	s.mu.Unlock()

	s.schedule(opts, func(ctx context.Context) {
		value, err := loader(ctx)

		s.mu.Lock()
		delete(s.loading, key)
		if err == nil {
			s.data[key] = value
			s.completed++
		} else {
			s.failed++
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("data prefetch failed")
			return
		}
		s.logger.Debug().Str("key", key).Msg("data prefetched")
	})
}

// PrefetchedData implements Prefetcher.
func (s *Service) PrefetchedData(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	return value, ok
}

// SetupViewportPrefetch implements Prefetcher.
func (s *Service) SetupViewportPrefetch(elementID, route string) *ViewportObserver {
	o := &ViewportObserver{
		ElementID: elementID,
		Route:     route,
		Margin:    s.viewportMargin,
		service:   s,
	}
	s.addObserver(elementID, o)
	return o
}

// SetupHoverPrefetch implements Prefetcher.
func (s *Service) SetupHoverPrefetch(elementID, route string) *HoverObserver {
	o := &HoverObserver{
		ElementID: elementID,
		Route:     route,
		debounce:  s.hoverDebounce,
		service:   s,
	}
	s.addObserver(elementID, o)
	return o
}

// PredictivePrefetch implements Prefetcher.
func (s *Service) PredictivePrefetch(currentRoute string) {
	s.mu.Lock()
	next := append([]string(nil), s.routeTable[currentRoute]...)
	s.mu.Unlock()

	if len(next) == 0 {
		s.logger.Debug().Str("route", currentRoute).Msg("no predicted next routes")
		return
	}

	for _, route := range next {
		s.PrefetchRoute(route, Options{When: Idle})
	}
}

// SetRouteTable implements Prefetcher.
func (s *Service) SetRouteTable(table map[string][]string) {
	copied := make(map[string][]string, len(table))
	for route, next := range table {
		copied[route] = append([]string(nil), next...)
	}

	s.mu.Lock()
	s.routeTable = copied
	s.mu.Unlock()
}

// Routes implements Prefetcher.
func (s *Service) Routes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	routes := make([]string, 0, len(s.routes))
	for route := range s.routes {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// Stats implements Prefetcher.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		RegisteredLoaders: len(s.loaders),
		PrefetchedRoutes:  len(s.routes),
		PrefetchedData:    len(s.data),
		ActiveObservers:   len(s.observers),
		Completed:         s.completed,
		Failed:            s.failed,
	}
}

// Clear implements Prefetcher.
func (s *Service) Clear() {
	s.mu.Lock()
	detached := make([]observer, 0, len(s.observers))
	for _, o := range s.observers {
		detached = append(detached, o)
	}
	s.observers = make(map[string]observer)
	s.routes = make(map[string]struct{})
	s.data = make(map[string]any)
	s.loading = make(map[string]struct{})
	s.mu.Unlock()

	for _, o := range detached {
		o.Disconnect()
	}

	s.logger.Debug().Msg("prefetch state cleared")
}

// schedule hands the task to the configured lane with the priority hint on
// its context.
func (s *Service) schedule(opts Options, task func(context.Context)) {
	run := func() {
		task(WithPriority(context.Background(), opts.Priority))
	}

	if opts.When == Idle {
		s.sched.RunWhenIdle(run, s.idleTimeout)
		return
	}
	s.sched.RunNow(run)
}

// addObserver installs o for the element, disconnecting a previous observer.
func (s *Service) addObserver(elementID string, o observer) {
	s.mu.Lock()
	previous := s.observers[elementID]
	s.observers[elementID] = o
	s.mu.Unlock()

	if previous != nil {
		previous.Disconnect()
	}
}

// removeObserver drops o if it is still the element's registered observer.
// Identity-checked so a replaced observer's disconnect cannot evict its
// replacement.
func (s *Service) removeObserver(elementID string, o observer) {
	s.mu.Lock()
	if s.observers[elementID] == o {
		delete(s.observers, elementID)
	}
	s.mu.Unlock()
}
