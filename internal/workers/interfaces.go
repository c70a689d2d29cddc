// Package workers runs the sync core's background maintenance loops: cache
// sweeps, request-coordinator cleanup, queue auto-drain, synced-operation
// retention and the connectivity probe.
// It defines the Worker interface and a Workers aggregate that starts and
// stops the whole set in a unified way.
package workers

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to spawn goroutines internally and return
// immediately; a worker that also implements Stop is shut down by the
// aggregate in reverse start order.
type Worker interface {
	Run()
}

// Stopper is the optional shutdown side of a Worker.
type Stopper interface {
	Stop()
}
