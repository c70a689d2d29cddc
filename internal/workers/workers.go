package workers

// Workers aggregates background workers and manages them as one unit.
type Workers struct {
	workers []Worker
}

// New builds an aggregate over the given workers. Start order is argument
// order.
func New(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in registration order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop stops every worker implementing Stopper, in reverse registration
// order so dependents go down before what they depend on.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		if s, ok := w.workers[i].(Stopper); ok {
			s.Stop()
		}
	}
}
