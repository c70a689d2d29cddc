package prefetch

// Stats is a point-in-time snapshot of prefetch state and lifetime counters.
type Stats struct {
	// RegisteredLoaders is the number of routes with a bound loader.
	RegisteredLoaders int `json:"registered_loaders"`
	// PrefetchedRoutes is the number of routes currently marked prefetched.
	PrefetchedRoutes int `json:"prefetched_routes"`
	// PrefetchedData is the number of resolved data keys held.
	PrefetchedData int `json:"prefetched_data"`
	// ActiveObservers is the number of connected viewport and hover
	// observers.
	ActiveObservers int `json:"active_observers"`
	// Completed counts loads that resolved since construction.
	Completed int64 `json:"completed"`
	// Failed counts loads that errored since construction.
	Failed int64 `json:"failed"`
}
