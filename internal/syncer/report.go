package syncer

// DrainReport summarizes one drain pass.
type DrainReport struct {
	// Attempted counts operations the pass tried to push, including the
	// ones that failed. Operations skipped to preserve per-record order are
	// not counted.
	Attempted int `json:"attempted"`

	Synced int `json:"synced"`
	Failed int `json:"failed"`

	// Offline reports that the drain did not run because the monitor said
	// offline. Recoverable, not an error.
	Offline bool `json:"offline,omitempty"`

	// AlreadyRunning reports that another drain held the lock. The queue
	// state is unchanged by this call.
	AlreadyRunning bool `json:"already_running,omitempty"`
}
