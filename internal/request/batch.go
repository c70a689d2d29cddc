package request

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type batchResult struct {
	data json.RawMessage
	err  error
}

// pending is one request waiting inside a batch. result is buffered so
// delivery never blocks the flusher.
type pending struct {
	param  json.RawMessage
	result chan batchResult
}

// batcher collects requests for one endpoint and flushes them as a single
// dispatch when the batch window elapses or the batch is full, whichever
// comes first. outstanding counts callers still waiting on a result for this
// endpoint; past the queue limit, add refuses and the caller dispatches
// alone.
type batcher struct {
	coord    *Coordinator
	endpoint string

	mu    sync.Mutex
	queue []*pending
	timer *time.Timer

	outstanding atomic.Int64
}

func newBatcher(c *Coordinator, endpoint string) *batcher {
	return &batcher{coord: c, endpoint: endpoint}
}

// add queues p for the next flush. It reports false when the endpoint is
// saturated and the caller should fall back to an individual dispatch.
func (b *batcher) add(p *pending) bool {
	if int(b.outstanding.Load()) >= b.coord.maxQueueLength {
		return false
	}
	b.outstanding.Add(1)

	b.mu.Lock()
	b.queue = append(b.queue, p)

	if len(b.queue) == 1 {
		b.timer = time.AfterFunc(b.coord.batchWindow, b.flush)
	}

	if len(b.queue) >= b.coord.maxBatchSize {
		entries := b.takeLocked()
		b.mu.Unlock()
		// Run off the caller's goroutine so add returns promptly and the
		// caller can wait on its result channel.
		go b.run(entries)
		return true
	}

	b.mu.Unlock()
	return true
}

// flush dispatches whatever is queued right now. Safe to call at any time;
// an empty queue is a no-op.
func (b *batcher) flush() {
	b.mu.Lock()
	entries := b.takeLocked()
	b.mu.Unlock()

	if len(entries) == 0 {
		return
	}
	b.run(entries)
}

// takeLocked detaches the current queue and stops the window timer.
// Caller must hold b.mu.
func (b *batcher) takeLocked() []*pending {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	entries := b.queue
	b.queue = nil
	return entries
}

// run executes one batch against the dispatcher and hands each caller its
// own result. A dispatch error rejects every request in the group; there is
// no partial success at this layer. The dispatch deliberately does not use
// any single caller's context, the adapter bounds it with its own request
// timeout.
func (b *batcher) run(entries []*pending) {
	defer b.outstanding.Add(int64(-len(entries)))

	params := make([]json.RawMessage, len(entries))
	for i, p := range entries {
		params[i] = p.param
	}

	results, err := b.coord.dispatcher.ReadBatch(context.Background(), b.endpoint, params)
	if err == nil && len(results) != len(entries) {
		err = fmt.Errorf("dispatcher returned %d results for %d params", len(results), len(entries))
	}
	if err != nil {
		for _, p := range entries {
			p.result <- batchResult{err: err}
		}
		return
	}

	atomic.AddUint64(&b.coord.batchesFlushed, 1)
	b.coord.logger.Debug().
		Str("endpoint", b.endpoint).
		Int("size", len(entries)).
		Msg("batch flushed")

	for i, p := range entries {
		p.result <- batchResult{data: results[i]}
	}
}
