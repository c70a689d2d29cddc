// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/adapter"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/cache"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/netmon"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/store"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

const (
	defaultAutoDrainInterval = 30 * time.Second
	defaultRetryAttempts     = 3
	defaultRetryBackoff      = 500 * time.Millisecond
	defaultSyncedRetention   = 24 * time.Hour
)

// Coordinator implements Syncer over the local store, the remote adapter and
// the connectivity monitor. Writes land locally first; a drain pass replays
// them against the remote in queue order, one record lane at a time.
//
// Conflicts are resolved document-level, last writer wins: the remote accepts
// each operation's timestamp and there is no field merge.
type Coordinator struct {
	records store.Records
	queue   store.Queue
	remote  adapter.RemoteStore
	cache   *cache.ResultCache
	monitor netmon.Monitor

	autoDrainInterval time.Duration
	retryAttempts     int
	retryBackoff      time.Duration
	retention         time.Duration

	// drainMu makes the drain non-reentrant. TryLock keeps ManualSync from
	// blocking behind a running pass.
	drainMu sync.Mutex

	mu          sync.RWMutex
	snap        models.SyncQueueSnapshot
	nextRetryAt *time.Time

	nudge       chan struct{}
	unsubscribe func()
	closeOnce   sync.Once

	logger *logger.Logger
}

var _ Syncer = (*Coordinator)(nil)

// New builds the coordinator and recovers queue state from the local store:
// operations left running by a crashed drain go back to pending, marked
// retryable.
func New(records store.Records, queue store.Queue, remote adapter.RemoteStore, results *cache.ResultCache, monitor netmon.Monitor, cfg config.Sync, log *logger.Logger) (*Coordinator, error) {
	c := &Coordinator{
		records:           records,
		queue:             queue,
		remote:            remote,
		cache:             results,
		monitor:           monitor,
		autoDrainInterval: cfg.AutoDrainInterval,
		retryAttempts:     cfg.RetryAttempts,
		retryBackoff:      cfg.RetryBackoff,
		retention:         cfg.SyncedRetention,
		nudge:             make(chan struct{}, 1),
		logger:            log,
	}
	if c.autoDrainInterval <= 0 {
		c.autoDrainInterval = defaultAutoDrainInterval
	}
	if c.retryAttempts <= 0 {
		c.retryAttempts = defaultRetryAttempts
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = defaultRetryBackoff
	}
	if c.retention <= 0 {
		c.retention = defaultSyncedRetention
	}

	ctx := context.Background()
	reset, err := c.queue.ResetRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("recover interrupted operations: %w", err)
	}
	if reset > 0 {
		log.Info().Int("count", reset).Msg("operations recovered from interrupted drain")
	}
	c.refreshSnapshot(ctx)

	c.unsubscribe = monitor.Subscribe(func(online bool) {
		if online {
			c.signalDrain()
			return
		}
		c.setNextRetry(nil)
	})

	return c, nil
}

// Enqueue implements Syncer. The local write and the queued operation share
// one timestamp, which the remote uses for last-writer-wins.
func (c *Coordinator) Enqueue(ctx context.Context, kind models.OpKind, collection, recordID string, payload json.RawMessage) (models.SyncOperation, error) {
	if err := validateOp(kind, collection, recordID, payload); err != nil {
		return models.SyncOperation{}, err
	}

	now := time.Now()

	switch kind {
	case models.OpDelete:
		if err := c.records.Delete(ctx, collection, recordID, now); err != nil {
			return models.SyncOperation{}, fmt.Errorf("apply local delete: %w", err)
		}
	default:
		record := models.Record{
			Collection: collection,
			ID:         recordID,
			Payload:    payload,
			UpdatedAt:  now,
		}
		if err := c.records.Put(ctx, record); err != nil {
			return models.SyncOperation{}, fmt.Errorf("apply local write: %w", err)
		}
	}

	op := models.SyncOperation{
		ID:         models.NewOpID(),
		Kind:       kind,
		Collection: collection,
		RecordID:   recordID,
		Payload:    payload,
		Status:     models.StatusPending,
		EnqueuedAt: now,
	}
	op, err := c.queue.Append(ctx, op)
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("persist operation: %w", err)
	}

	// the cached remote copy went stale the moment the local write landed
	c.invalidateReads(op)
	c.refreshSnapshot(ctx)

	if c.monitor.Online() {
		next := now.Add(c.autoDrainInterval)
		c.setNextRetry(&next)
		c.signalDrain()
	}

	c.logger.Debug().Str("op_id", op.ID).Str("key", op.RecordKey()).Str("kind", string(kind)).Msg("operation enqueued")

	return op, nil
}

// ManualSync implements Syncer.
func (c *Coordinator) ManualSync(ctx context.Context) (DrainReport, error) {
	if !c.monitor.Online() {
		return DrainReport{Offline: true}, nil
	}
	if !c.drainMu.TryLock() {
		return DrainReport{AlreadyRunning: true}, nil
	}
	defer c.drainMu.Unlock()

	return c.drain(ctx)
}

func (c *Coordinator) drain(ctx context.Context) (DrainReport, error) {
	pending, err := c.queue.List(ctx, models.StatusPending)
	if err != nil {
		return DrainReport{}, fmt.Errorf("list pending operations: %w", err)
	}

	var report DrainReport
	blocked := make(map[string]struct{})

	for _, op := range pending {
		if ctx.Err() != nil {
			break
		}
		key := op.RecordKey()
		if _, skip := blocked[key]; skip {
			// an earlier operation for this record failed; replaying this
			// one now would reorder the record's history
			continue
		}

		report.Attempted++
		if err := c.syncOne(ctx, op); err != nil {
			report.Failed++
			blocked[key] = struct{}{}
			c.logger.Warn().Err(err).Str("op_id", op.ID).Str("key", key).Msg("operation failed")
			continue
		}
		report.Synced++
	}

	c.refreshSnapshot(ctx)
	c.logger.Info().
		Int("attempted", report.Attempted).
		Int("synced", report.Synced).
		Int("failed", report.Failed).
		Msg("drain finished")

	return report, nil
}

// syncOne pushes a single operation, persisting every status transition so a
// crash at any point is recoverable.
func (c *Coordinator) syncOne(ctx context.Context, op models.SyncOperation) error {
	started := time.Now()
	op.Status = models.StatusRunning
	op.StartedAt = &started
	op.CompletedAt = nil
	op.Error = ""
	op.RetryAvailable = false
	if err := c.queue.Update(ctx, op); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	c.refreshSnapshot(ctx)

	pushErr := c.push(ctx, op)

	completed := time.Now()
	op.CompletedAt = &completed
	if pushErr != nil {
		op.Status = models.StatusFailed
		op.Error = pushErr.Error()
		op.RetryAvailable = true
		if err := c.queue.Update(ctx, op); err != nil {
			c.logger.Err(err).Str("op_id", op.ID).Msg("persisting failed status failed")
		}
		c.refreshSnapshot(ctx)
		return pushErr
	}

	op.Status = models.StatusSynced
	if err := c.queue.Update(ctx, op); err != nil {
		c.logger.Err(err).Str("op_id", op.ID).Msg("persisting synced status failed")
	}

	c.invalidateReads(op)
	c.refreshSnapshot(ctx)

	return nil
}

// push sends the operation to the remote, retrying transient transport
// failures in place. Validation and conflict errors surface immediately.
func (c *Coordinator) push(ctx context.Context, op models.SyncOperation) error {
	b := retry.WithMaxRetries(uint64(c.retryAttempts-1), retry.NewConstant(c.retryBackoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.remote.Write(ctx, op)
		if err == nil {
			return nil
		}
		if errors.Is(err, adapter.ErrNetworkUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// invalidateReads drops the cached reads a write makes stale: the record
// itself and every query over its collection.
func (c *Coordinator) invalidateReads(op models.SyncOperation) {
	c.cache.Invalidate(op.RecordKey())
	c.cache.InvalidatePattern(op.Collection + "?")
}

// RetryFailed implements Syncer.
func (c *Coordinator) RetryFailed(ctx context.Context) (DrainReport, error) {
	failed, err := c.queue.List(ctx, models.StatusFailed)
	if err != nil {
		return DrainReport{}, fmt.Errorf("list failed operations: %w", err)
	}

	for _, op := range failed {
		op.Status = models.StatusPending
		op.StartedAt = nil
		op.CompletedAt = nil
		op.Error = ""
		op.RetryAvailable = false
		if err := c.queue.Update(ctx, op); err != nil {
			return DrainReport{}, fmt.Errorf("requeue operation %s: %w", op.ID, err)
		}
	}
	c.refreshSnapshot(ctx)

	if len(failed) > 0 {
		c.logger.Info().Int("count", len(failed)).Msg("failed operations requeued")
	}

	return c.ManualSync(ctx)
}

// ClearQueue implements Syncer.
func (c *Coordinator) ClearQueue(ctx context.Context) (int, error) {
	ops, err := c.queue.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list operations: %w", err)
	}

	removed := 0
	for _, op := range ops {
		if err := c.queue.Delete(ctx, op.ID); err != nil {
			return removed, fmt.Errorf("delete operation %s: %w", op.ID, err)
		}
		removed++
	}

	c.refreshSnapshot(ctx)
	c.setNextRetry(nil)
	c.logger.Info().Int("count", removed).Msg("sync queue cleared")

	return removed, nil
}

// Snapshot implements Syncer.
func (c *Coordinator) Snapshot() models.SyncQueueSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snap
	if c.nextRetryAt != nil {
		t := *c.nextRetryAt
		snap.NextRetryAt = &t
	}
	if c.snap.OldestPending != nil {
		t := *c.snap.OldestPending
		snap.OldestPending = &t
	}

	return snap
}

// AutoDrain implements Syncer. It is the body of the background drain
// worker: one attempt per tick or kick, only while online with pending work.
// Failed operations are never picked up here; RetryFailed is the only way
// back from failed.
func (c *Coordinator) AutoDrain(ctx context.Context) {
	if !c.monitor.Online() || c.Snapshot().Pending == 0 {
		c.setNextRetry(nil)
		return
	}

	if _, err := c.ManualSync(ctx); err != nil {
		c.logger.Err(err).Msg("automatic drain failed")
	}

	// work can remain: operations blocked behind a failed record lane
	if c.monitor.Online() && c.Snapshot().Pending > 0 {
		next := time.Now().Add(c.autoDrainInterval)
		c.setNextRetry(&next)
		return
	}
	c.setNextRetry(nil)
}

// PruneSynced implements Syncer.
func (c *Coordinator) PruneSynced(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-c.retention)

	pruned, err := c.queue.PruneSynced(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune synced operations: %w", err)
	}
	if pruned > 0 {
		c.refreshSnapshot(ctx)
		c.logger.Debug().Int("count", pruned).Msg("synced operations pruned")
	}

	return pruned, nil
}

// DrainSignal implements Syncer.
func (c *Coordinator) DrainSignal() <-chan struct{} {
	return c.nudge
}

// Close implements Syncer.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
	})
}

// refreshSnapshot recomputes the queue summary from the store. Called after
// every queue mutation, so readers are at most one mutation behind.
func (c *Coordinator) refreshSnapshot(ctx context.Context) {
	ops, err := c.queue.List(ctx)
	if err != nil {
		c.logger.Err(err).Str("func", "refreshSnapshot").Msg("listing queue failed")
		return
	}

	snap := models.SyncQueueSnapshot{Total: len(ops)}
	var oldest *time.Time
	for _, op := range ops {
		switch op.Status {
		case models.StatusPending:
			snap.Pending++
			if oldest == nil || op.EnqueuedAt.Before(*oldest) {
				t := op.EnqueuedAt
				oldest = &t
			}
		case models.StatusRunning:
			snap.Running++
		case models.StatusSynced:
			snap.Synced++
		case models.StatusFailed:
			snap.Failed++
		}
	}
	snap.OldestPending = oldest

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

func (c *Coordinator) signalDrain() {
	select {
	case c.nudge <- struct{}{}:
	default:
	}
}

func (c *Coordinator) setNextRetry(t *time.Time) {
	c.mu.Lock()
	c.nextRetryAt = t
	c.mu.Unlock()
}

func validateOp(kind models.OpKind, collection, recordID string, payload json.RawMessage) error {
	if collection == "" || recordID == "" {
		return fmt.Errorf("%w: collection and record id are required", ErrInvalidOperation)
	}

	switch kind {
	case models.OpCreate, models.OpUpdate:
		if len(payload) == 0 {
			return fmt.Errorf("%w: %s requires a payload", ErrInvalidOperation, kind)
		}
	case models.OpDelete:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, kind)
	}

	return nil
}
