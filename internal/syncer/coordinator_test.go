package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/adapter"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/cache"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/netmon"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/store"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// fakeRemote records every Write and returns scripted errors per record key,
// consumed in order. The zero state accepts everything.
type fakeRemote struct {
	mu     sync.Mutex
	writes []models.SyncOperation
	errs   map[string][]error

	// block, when non-nil, parks Write until closed. started is closed when
	// the first Write begins. Both must be set before the coordinator runs.
	block       chan struct{}
	started     chan struct{}
	startedOnce sync.Once
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{errs: make(map[string][]error)}
}

func (f *fakeRemote) failNext(recordKey string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[recordKey] = append(f.errs[recordKey], errs...)
}

func (f *fakeRemote) Write(ctx context.Context, op models.SyncOperation) error {
	if f.started != nil {
		f.startedOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, op)
	if scripted := f.errs[op.RecordKey()]; len(scripted) > 0 {
		err := scripted[0]
		f.errs[op.RecordKey()] = scripted[1:]
		return err
	}
	return nil
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeRemote) writtenKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.writes))
	for _, op := range f.writes {
		keys = append(keys, op.RecordKey())
	}
	return keys
}

func (f *fakeRemote) SetToken(string) {}

func (f *fakeRemote) Token() string { return "" }

func (f *fakeRemote) Read(context.Context, string, models.RemoteQuery) ([]models.Record, error) {
	return nil, nil
}

func (f *fakeRemote) ReadBatch(context.Context, string, []json.RawMessage) ([]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

func newTestCoordinator(t *testing.T, remote adapter.RemoteStore, online bool, cfg config.Sync) (*Coordinator, store.Local, *cache.ResultCache, *netmon.Manual) {
	t.Helper()

	log := logger.Nop()
	local := store.NewMemory(log)
	require.NoError(t, local.Connect(context.Background()))
	t.Cleanup(func() { _ = local.Close() })

	results := cache.New(config.Cache{}, log)
	monitor := netmon.NewManual(online, log)

	c, err := New(local.Records(), local.Queue(), remote, results, monitor, cfg, log)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c, local, results, monitor
}

// fastRetry keeps transient retries from slowing the tests down.
func fastRetry() config.Sync {
	return config.Sync{RetryBackoff: time.Millisecond}
}

func drainSignalled(c *Coordinator) bool {
	select {
	case <-c.DrainSignal():
		return true
	default:
		return false
	}
}

func TestEnqueue_RejectsInvalidOperations(t *testing.T) {
	ctx := context.Background()
	c, local, _, _ := newTestCoordinator(t, newFakeRemote(), true, fastRetry())

	tests := []struct {
		name       string
		kind       models.OpKind
		collection string
		recordID   string
		payload    json.RawMessage
	}{
		{"empty collection", models.OpCreate, "", "1", json.RawMessage(`{}`)},
		{"empty record id", models.OpCreate, "tasks", "", json.RawMessage(`{}`)},
		{"create without payload", models.OpCreate, "tasks", "1", nil},
		{"update without payload", models.OpUpdate, "tasks", "1", nil},
		{"unknown kind", models.OpKind("merge"), "tasks", "1", json.RawMessage(`{}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Enqueue(ctx, tt.kind, tt.collection, tt.recordID, tt.payload)
			assert.ErrorIs(t, err, ErrInvalidOperation)
		})
	}

	ops, err := local.Queue().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops, "rejected operations must not be queued")

	_, err = local.Records().Get(ctx, "tasks", "1")
	assert.ErrorIs(t, err, store.ErrRecordNotFound, "rejected operations must not touch the records store")
}

func TestEnqueue_AppliesLocallyAndQueues(t *testing.T) {
	ctx := context.Background()
	c, local, _, _ := newTestCoordinator(t, newFakeRemote(), true, fastRetry())

	payload := json.RawMessage(`{"title":"water plants","status":"open"}`)
	op, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, op.ID)
	assert.Equal(t, int64(1), op.Seq)
	assert.Equal(t, models.StatusPending, op.Status)

	record, err := local.Records().Get(ctx, "tasks", "t1")
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(record.Payload))
	assert.Equal(t, op.EnqueuedAt, record.UpdatedAt, "local write and operation must share one timestamp")

	stored, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 1, snap.Pending)
	require.NotNil(t, snap.OldestPending)
	assert.Equal(t, op.EnqueuedAt, *snap.OldestPending)
	assert.NotNil(t, snap.NextRetryAt)

	assert.True(t, drainSignalled(c), "enqueue while online must nudge the drain worker")
}

func TestEnqueue_DeleteTombstonesLocally(t *testing.T) {
	ctx := context.Background()
	c, local, _, _ := newTestCoordinator(t, newFakeRemote(), true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{"title":"x"}`))
	require.NoError(t, err)

	_, err = c.Enqueue(ctx, models.OpDelete, "tasks", "t1", nil)
	require.NoError(t, err)

	record, err := local.Records().Get(ctx, "tasks", "t1")
	require.NoError(t, err)
	assert.True(t, record.Deleted, "delete must tombstone the local record immediately")
}

func TestEnqueue_InvalidatesCachedReads(t *testing.T) {
	ctx := context.Background()
	c, _, results, _ := newTestCoordinator(t, newFakeRemote(), true, fastRetry())

	results.Set("tasks:t1", "stale record", time.Minute)
	results.Set(`tasks?{"status":"open"}`, "stale query", time.Minute)
	results.Set("moods:m1", "unrelated", time.Minute)

	_, err := c.Enqueue(ctx, models.OpUpdate, "tasks", "t1", json.RawMessage(`{"status":"done"}`))
	require.NoError(t, err)

	_, ok := results.Get("tasks:t1")
	assert.False(t, ok, "record read must be dropped")
	_, ok = results.Get(`tasks?{"status":"open"}`)
	assert.False(t, ok, "collection queries must be dropped")
	_, ok = results.Get("moods:m1")
	assert.True(t, ok, "other collections must survive")
}

func TestEnqueue_OfflineQueuesWithoutSignal(t *testing.T) {
	ctx := context.Background()
	c, local, _, _ := newTestCoordinator(t, newFakeRemote(), false, fastRetry())

	op, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	stored, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	assert.False(t, drainSignalled(c), "no drain nudge while offline")
	assert.Nil(t, c.Snapshot().NextRetryAt)
}

func TestManualSync_Offline(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, _, _, _ := newTestCoordinator(t, remote, false, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.True(t, report.Offline)
	assert.Zero(t, report.Attempted)
	assert.Zero(t, remote.writeCount())
	assert.Equal(t, 1, c.Snapshot().Pending, "queue must be untouched")
}

func TestManualSync_PushesInQueueOrder(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, local, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, models.OpCreate, "moods", "m1", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, models.OpUpdate, "tasks", "t1", json.RawMessage(`{"v":3}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 3, Synced: 3}, report)

	assert.Equal(t, []string{"tasks:t1", "moods:m1", "tasks:t1"}, remote.writtenKeys())

	ops, err := local.Queue().List(ctx)
	require.NoError(t, err)
	for _, op := range ops {
		assert.Equal(t, models.StatusSynced, op.Status)
		assert.NotNil(t, op.CompletedAt)
	}

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.Synced)
	assert.Zero(t, snap.Pending)
	assert.Nil(t, snap.OldestPending)
}

func TestManualSync_InvalidatesOnSuccess(t *testing.T) {
	ctx := context.Background()
	c, _, results, _ := newTestCoordinator(t, newFakeRemote(), true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpUpdate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	// seeded after the enqueue-time invalidation, dropped by the drain
	results.Set("tasks:t1", "stale", time.Minute)
	results.Set(`tasks?{"limit":10}`, "stale", time.Minute)

	_, err = c.ManualSync(ctx)
	require.NoError(t, err)

	_, ok := results.Get("tasks:t1")
	assert.False(t, ok)
	_, ok = results.Get(`tasks?{"limit":10}`)
	assert.False(t, ok)
}

func TestManualSync_FailureBlocksRecordLane(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrInvalidPayload)
	c, local, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	first, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	second, err := c.Enqueue(ctx, models.OpUpdate, "tasks", "t1", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	other, err := c.Enqueue(ctx, models.OpCreate, "moods", "m1", json.RawMessage(`{"v":3}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 2, Synced: 1, Failed: 1}, report)

	// the follow-up write for tasks:t1 must never reach the remote
	assert.Equal(t, []string{"tasks:t1", "moods:m1"}, remote.writtenKeys())

	failed, err := local.Queue().Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
	assert.True(t, failed.RetryAvailable)
	assert.NotNil(t, failed.CompletedAt)

	blocked, err := local.Queue().Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, blocked.Status, "later writes to a failed record stay queued")

	synced, err := local.Queue().Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, synced.Status)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Pending)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Synced)
}

func TestManualSync_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrNetworkUnavailable)
	c, local, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	op, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 1, Synced: 1}, report)
	assert.Equal(t, 2, remote.writeCount(), "one transient failure, one successful retry")

	stored, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, stored.Status)
}

func TestManualSync_ExhaustsTransientRetries(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrNetworkUnavailable, adapter.ErrNetworkUnavailable)
	cfg := fastRetry()
	cfg.RetryAttempts = 2
	c, local, _, _ := newTestCoordinator(t, remote, true, cfg)

	op, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 1, Failed: 1}, report)
	assert.Equal(t, 2, remote.writeCount())

	stored, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Error)
}

func TestManualSync_NoRetryOnPermanentErrors(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrInvalidPayload)
	c, _, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 1, Failed: 1}, report)
	assert.Equal(t, 1, remote.writeCount(), "permanent errors must not be retried")
}

func TestManualSync_NotReentrant(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.block = make(chan struct{})
	remote.started = make(chan struct{})
	c, _, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	type result struct {
		report DrainReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := c.ManualSync(ctx)
		done <- result{report, err}
	}()

	<-remote.started

	report, err := c.ManualSync(ctx)
	require.NoError(t, err)
	assert.True(t, report.AlreadyRunning)
	assert.Zero(t, report.Attempted)

	close(remote.block)

	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, DrainReport{Attempted: 1, Synced: 1}, first.report)
}

func TestRetryFailed_RequeuesAndDrains(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrInvalidPayload)
	c, local, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	op, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	_, err = c.ManualSync(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, c.Snapshot().Failed)

	// the remote accepts the operation this time
	report, err := c.RetryFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Attempted: 1, Synced: 1}, report)

	stored, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, stored.Status)
	assert.Empty(t, stored.Error, "requeueing must clear the previous failure")
	assert.False(t, stored.RetryAvailable)
}

func TestClearQueue_RemovesEverything(t *testing.T) {
	ctx := context.Background()
	c, local, _, _ := newTestCoordinator(t, newFakeRemote(), false, fastRetry())

	for i, id := range []string{"a", "b", "c"} {
		_, err := c.Enqueue(ctx, models.OpCreate, "tasks", id, json.RawMessage(`{}`))
		require.NoError(t, err, "enqueue %d", i)
	}

	removed, err := c.ClearQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	ops, err := local.Queue().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)

	snap := c.Snapshot()
	assert.Zero(t, snap.Total)
	assert.Nil(t, snap.NextRetryAt)
}

func TestNew_RecoversInterruptedOperations(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	local := store.NewMemory(log)
	require.NoError(t, local.Connect(ctx))
	t.Cleanup(func() { _ = local.Close() })

	// an operation left running by a crashed drain
	op := models.SyncOperation{
		ID:         models.NewOpID(),
		Kind:       models.OpUpdate,
		Collection: "tasks",
		RecordID:   "t1",
		Payload:    json.RawMessage(`{"v":1}`),
		Status:     models.StatusPending,
		EnqueuedAt: time.Now(),
	}
	op, err := local.Queue().Append(ctx, op)
	require.NoError(t, err)
	started := time.Now()
	op.Status = models.StatusRunning
	op.StartedAt = &started
	require.NoError(t, local.Queue().Update(ctx, op))

	c, err := New(local.Records(), local.Queue(), newFakeRemote(), cache.New(config.Cache{}, log), netmon.NewManual(true, log), config.Sync{}, log)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	recovered, err := local.Queue().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, recovered.Status)
	assert.Nil(t, recovered.StartedAt)
	assert.True(t, recovered.RetryAvailable)

	assert.Equal(t, 1, c.Snapshot().Pending)
}

func TestAutoDrain_SkipsOfflineAndIdle(t *testing.T) {
	ctx := context.Background()

	t.Run("offline with pending work", func(t *testing.T) {
		remote := newFakeRemote()
		c, _, _, _ := newTestCoordinator(t, remote, false, fastRetry())
		_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
		require.NoError(t, err)

		c.AutoDrain(ctx)
		assert.Zero(t, remote.writeCount())
		assert.Equal(t, 1, c.Snapshot().Pending)
	})

	t.Run("online with empty queue", func(t *testing.T) {
		remote := newFakeRemote()
		c, _, _, _ := newTestCoordinator(t, remote, true, fastRetry())

		c.AutoDrain(ctx)
		assert.Zero(t, remote.writeCount())
		assert.Nil(t, c.Snapshot().NextRetryAt)
	})
}

func TestAutoDrain_DrainsPendingWork(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, _, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)

	c.AutoDrain(ctx)

	assert.Equal(t, 1, remote.writeCount())
	snap := c.Snapshot()
	assert.Zero(t, snap.Pending)
	assert.Nil(t, snap.NextRetryAt, "nothing left to schedule")
}

func TestAutoDrain_SchedulesRetryWhenWorkRemains(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failNext("tasks:t1", adapter.ErrInvalidPayload)
	c, _, _, _ := newTestCoordinator(t, remote, true, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, models.OpUpdate, "tasks", "t1", json.RawMessage(`{"v":2}`))
	require.NoError(t, err)

	c.AutoDrain(ctx)

	// the second write is blocked behind the failed lane, so it stays pending
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Pending)
	assert.NotNil(t, snap.NextRetryAt)
}

func TestOnlineTransitionSignalsDrain(t *testing.T) {
	ctx := context.Background()
	c, _, _, monitor := newTestCoordinator(t, newFakeRemote(), false, fastRetry())

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.False(t, drainSignalled(c))

	monitor.SetOnline(true)

	assert.True(t, drainSignalled(c), "coming online must nudge the drain worker")
}

func TestClose_StopsMonitorNotifications(t *testing.T) {
	c, _, _, monitor := newTestCoordinator(t, newFakeRemote(), false, fastRetry())

	c.Close()
	monitor.SetOnline(true)

	assert.False(t, drainSignalled(c))
}

func TestPruneSynced_DropsOldCompletedOperations(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	cfg := fastRetry()
	cfg.SyncedRetention = time.Nanosecond
	c, local, _, _ := newTestCoordinator(t, remote, true, cfg)

	_, err := c.Enqueue(ctx, models.OpCreate, "tasks", "t1", json.RawMessage(`{}`))
	require.NoError(t, err)
	_, err = c.ManualSync(ctx)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	pruned, err := c.PruneSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	ops, err := local.Queue().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Zero(t, c.Snapshot().Total)
}
