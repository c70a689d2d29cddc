// Package prefetch warms routes and data ahead of navigation. Loads are
// fire-and-forget: they run on the scheduler's immediate or idle lane,
// failures are logged and swallowed, and a failed route is unmarked so a
// later trigger can retry. The embedding UI drives the viewport and hover
// observers; this package only supplies the timing and bookkeeping.
package prefetch

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/prefetcher_mock.go -package=mock

// LoaderFunc loads the value behind a route or data key.
type LoaderFunc func(ctx context.Context) (any, error)

// Prefetcher is the prefetch surface consumed by the client facade and the
// CLI.
type Prefetcher interface {
	// RegisterRoute binds a loader to a route. Prefetching a route without
	// a loader is a no-op.
	RegisterRoute(route string, loader LoaderFunc)

	// PrefetchRoute schedules the route's loader. Idempotent per route: a
	// route already prefetched, or currently loading, is a no-op. Never
	// blocks the caller.
	PrefetchRoute(route string, opts Options)

	// PrefetchData schedules loader and stores its result under key,
	// retrievable via PrefetchedData without re-fetching.
	PrefetchData(key string, loader LoaderFunc, opts Options)

	// PrefetchedData returns the value resolved for key, if any.
	PrefetchedData(key string) (any, bool)

	// SetupViewportPrefetch registers a one-shot visibility observer for an
	// element: the first Intersect triggers an immediate prefetch of route
	// and disconnects. A second observer for the same element replaces the
	// first.
	SetupViewportPrefetch(elementID, route string) *ViewportObserver

	// SetupHoverPrefetch registers a debounced hover observer: Enter arms
	// the debounce timer, Leave cancels it, and firing triggers a
	// high-priority immediate prefetch of route.
	SetupHoverPrefetch(elementID, route string) *HoverObserver

	// PredictivePrefetch idle-prefetches every likely-next route of
	// currentRoute per the route table.
	PredictivePrefetch(currentRoute string)

	// SetRouteTable replaces the likely-next-route table.
	SetRouteTable(table map[string][]string)

	// Routes lists the prefetched routes, sorted.
	Routes() []string

	// Stats returns a point-in-time activity summary.
	Stats() Stats

	// Clear disconnects all observers, stops their timers and empties the
	// prefetched route and data sets. Registered loaders and the route
	// table survive.
	Clear()
}

// observer is the common disconnect surface of both observer kinds.
type observer interface {
	Disconnect()
}
