// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package request

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// flight marks one live dispatch for a dedup key. The pointer identity lets
// the owner remove its own entry without clobbering a successor that was
// started after the window expired.
type flight struct {
	started time.Time
}

// Coordinator is the single entry point for remote reads. Each distinct
// (endpoint, params) pair has at most one dispatch in flight within the dedup
// window; concurrent identical calls share that flight's result. New
// dispatches are collected into per-endpoint batches before hitting the
// dispatcher.
type Coordinator struct {
	dispatcher Dispatcher

	dedupWindow    time.Duration
	batchWindow    time.Duration
	maxBatchSize   int
	maxQueueLength int

	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]*flight
	batchers map[string]*batcher

	closed atomic.Bool

	batchesFlushed uint64
	fallbacks      uint64
	dedupHits      uint64

	logger *logger.Logger
}

// NewCoordinator constructs a Coordinator over the given dispatcher.
func NewCoordinator(dispatcher Dispatcher, cfg config.Request, log *logger.Logger) *Coordinator {
	return &Coordinator{
		dispatcher:     dispatcher,
		dedupWindow:    cfg.DedupWindow,
		batchWindow:    cfg.BatchWindow,
		maxBatchSize:   cfg.MaxBatchSize,
		maxQueueLength: cfg.MaxQueueLength,
		inflight:       make(map[string]*flight),
		batchers:       make(map[string]*batcher),
		logger:         log.Component("request"),
	}
}

// Do executes one deduplicated read. params is marshalled to JSON to form the
// dedup key, so two calls with equal endpoint and equal params share a single
// dispatch. The shared flight runs on the first caller's context; joiners that
// cancel their own context stop waiting without cancelling the flight.
func (c *Coordinator) Do(ctx context.Context, endpoint string, params any) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal request params: %w", err)
	}
	key := endpoint + "?" + string(body)

	// A flight older than the dedup window no longer absorbs new callers:
	// forget it so this call starts fresh. The old dispatch still completes
	// for whoever is waiting on it.
	c.mu.Lock()
	if fl, ok := c.inflight[key]; ok && time.Since(fl.started) > c.dedupWindow {
		c.group.Forget(key)
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	executed := false
	result, err, _ := c.group.Do(key, func() (any, error) {
		executed = true
		return c.dispatch(ctx, endpoint, json.RawMessage(body), key)
	})
	if !executed {
		atomic.AddUint64(&c.dedupHits, 1)
	}
	if err != nil {
		return nil, err
	}

	return result.(json.RawMessage), nil
}

// dispatch runs exactly once per live flight: it registers the key as in
// flight, hands the request to the endpoint's batcher and waits for the
// result. ctx here is the first caller's context.
func (c *Coordinator) dispatch(ctx context.Context, endpoint string, param json.RawMessage, key string) (json.RawMessage, error) {
	fl := &flight{started: time.Now()}
	c.mu.Lock()
	c.inflight[key] = fl
	b := c.batchers[endpoint]
	if b == nil {
		b = newBatcher(c, endpoint)
		c.batchers[endpoint] = b
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[key] == fl {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	p := &pending{param: param, result: make(chan batchResult, 1)}
	if !b.add(p) {
		// The endpoint has too many callers waiting already. Bypassing the
		// batch keeps the request moving instead of piling it on.
		atomic.AddUint64(&c.fallbacks, 1)
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("max_queue_length", c.maxQueueLength).
			Msg("batch queue exhausted, dispatching individually")

		results, err := c.dispatcher.ReadBatch(ctx, endpoint, []json.RawMessage{param})
		if err != nil {
			return nil, err
		}
		if len(results) != 1 {
			return nil, fmt.Errorf("dispatcher returned %d results for 1 param", len(results))
		}
		return results[0], nil
	}

	select {
	case res := <-p.result:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cleanup forgets every dedup entry older than the window and returns how
// many were purged. Underlying dispatches are not cancelled; only the
// bookkeeping that lets late callers join them is dropped.
func (c *Coordinator) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for key, fl := range c.inflight {
		if time.Since(fl.started) > c.dedupWindow {
			c.group.Forget(key)
			delete(c.inflight, key)
			purged++
		}
	}

	if purged > 0 {
		c.logger.Debug().Int("purged", purged).Msg("stale dedup entries purged")
	}

	return purged
}

// Close flushes every pending batch and rejects subsequent Do calls with
// ErrClosed. Dispatches already in flight run to completion.
func (c *Coordinator) Close() {
	if c.closed.Swap(true) {
		return
	}

	c.mu.Lock()
	batchers := make([]*batcher, 0, len(c.batchers))
	for _, b := range c.batchers {
		batchers = append(batchers, b)
	}
	c.mu.Unlock()

	for _, b := range batchers {
		b.flush()
	}
}
