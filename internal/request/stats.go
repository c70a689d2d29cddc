package request

import "sync/atomic"

// Stats is a point-in-time snapshot of coordinator activity.
type Stats struct {
	// InFlight is the number of dedup keys with a live dispatch.
	InFlight int `json:"in_flight"`
	// BatchesFlushed counts dispatched batches over the coordinator lifetime.
	BatchesFlushed uint64 `json:"batches_flushed"`
	// Fallbacks counts requests dispatched individually after queue
	// exhaustion.
	Fallbacks uint64 `json:"fallbacks"`
	// DedupHits counts Do calls that joined an existing flight instead of
	// dispatching.
	DedupHits uint64 `json:"dedup_hits"`
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	inFlight := len(c.inflight)
	c.mu.Unlock()

	return Stats{
		InFlight:       inFlight,
		BatchesFlushed: atomic.LoadUint64(&c.batchesFlushed),
		Fallbacks:      atomic.LoadUint64(&c.fallbacks),
		DedupHits:      atomic.LoadUint64(&c.dedupHits),
	}
}
