package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

func newConnectedMemory(t *testing.T) Local {
	t.Helper()

	s := NewMemory(logger.Nop())
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect memory store: %v", err)
	}

	return s
}

func TestMemory_NotConnectedBeforeConnect(t *testing.T) {
	s := NewMemory(logger.Nop())
	ctx := context.Background()

	if err := s.Records().Put(ctx, models.Record{Collection: "tasks", ID: "1"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Put: expected ErrNotConnected, got %v", err)
	}
	if _, err := s.Records().Get(ctx, "tasks", "1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Get: expected ErrNotConnected, got %v", err)
	}
	if _, err := s.Queue().Append(ctx, models.SyncOperation{ID: "op"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Append: expected ErrNotConnected, got %v", err)
	}
	if _, err := s.Queue().List(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("List: expected ErrNotConnected, got %v", err)
	}
}

func TestMemory_PutGetRoundtrip(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	record := models.Record{
		Collection: "sessions",
		ID:         "s1",
		Payload:    json.RawMessage(`{"goal":"8h","active":true}`),
		UpdatedAt:  time.Now(),
	}

	if err := s.Records().Put(ctx, record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Records().Get(ctx, "sessions", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got.Payload) != string(record.Payload) {
		t.Errorf("expected payload %s, got %s", record.Payload, got.Payload)
	}
	if !got.UpdatedAt.Equal(record.UpdatedAt) {
		t.Errorf("expected updated_at %v, got %v", record.UpdatedAt, got.UpdatedAt)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	s := newConnectedMemory(t)

	_, err := s.Records().Get(context.Background(), "sessions", "nope")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestMemory_GetReturnsTombstone(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	if err := s.Records().Delete(ctx, "tasks", "t1", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Records().Get(ctx, "tasks", "t1")
	if err != nil {
		t.Fatalf("expected tombstone to be found, got %v", err)
	}
	if !got.Deleted {
		t.Error("expected Deleted=true on tombstone")
	}
}

func TestMemory_ListSkipsDeletedAndOrdersNewestFirst(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()
	base := time.Now()

	records := []models.Record{
		{Collection: "tasks", ID: "old", Payload: json.RawMessage(`{}`), UpdatedAt: base.Add(-2 * time.Hour)},
		{Collection: "tasks", ID: "new", Payload: json.RawMessage(`{}`), UpdatedAt: base},
		{Collection: "tasks", ID: "mid", Payload: json.RawMessage(`{}`), UpdatedAt: base.Add(-time.Hour)},
		{Collection: "tasks", ID: "gone", Payload: json.RawMessage(`{}`), UpdatedAt: base, Deleted: true},
	}
	for _, r := range records {
		if err := s.Records().Put(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := s.Records().List(ctx, "tasks", models.RemoteQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"new", "mid", "old"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d records, got %d", len(wantOrder), len(got))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestMemory_ListFilterAndLimit(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()
	base := time.Now()

	for i, payload := range []string{
		`{"status":"done","points":3}`,
		`{"status":"open","points":3}`,
		`{"status":"done","points":5}`,
	} {
		record := models.Record{
			Collection: "tasks",
			ID:         string(rune('a' + i)),
			Payload:    json.RawMessage(payload),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Records().Put(ctx, record); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// filter values are Go-typed; the int must match the decoded JSON number
	got, err := s.Records().List(ctx, "tasks", models.RemoteQuery{
		Filter: map[string]any{"status": "done", "points": 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected exactly record a, got %+v", got)
	}

	limited, err := s.Records().List(ctx, "tasks", models.RemoteQuery{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records with limit, got %d", len(limited))
	}
}

func TestMemory_DeleteUnknownStoresTombstone(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()
	at := time.Now()

	if err := s.Records().Delete(ctx, "goals", "ghost", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Records().Get(ctx, "goals", "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Deleted || !got.UpdatedAt.Equal(at) {
		t.Errorf("expected tombstone at %v, got %+v", at, got)
	}
}

func TestMemory_AppendAssignsSequentialSeq(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		op, err := s.Queue().Append(ctx, models.SyncOperation{
			ID:         models.NewOpID(),
			Kind:       models.OpCreate,
			Collection: "tasks",
			RecordID:   "t1",
			EnqueuedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op.Seq != want {
			t.Errorf("expected seq %d, got %d", want, op.Seq)
		}
		if op.Status != models.StatusPending {
			t.Errorf("expected default status pending, got %s", op.Status)
		}
	}
}

func TestMemory_UpdatePreservesSeq(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	op, err := s.Queue().Append(ctx, models.SyncOperation{ID: "op-1", EnqueuedAt: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	op.Status = models.StatusSynced
	op.Seq = 999 // must be ignored
	if err := s.Queue().Update(ctx, op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Queue().Get(ctx, "op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Seq != 1 {
		t.Errorf("expected seq 1 after update, got %d", got.Seq)
	}
	if got.Status != models.StatusSynced {
		t.Errorf("expected status synced, got %s", got.Status)
	}
}

func TestMemory_UpdateMissingOperation(t *testing.T) {
	s := newConnectedMemory(t)

	err := s.Queue().Update(context.Background(), models.SyncOperation{ID: "nope"})
	if !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestMemory_DeleteOperation(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	if _, err := s.Queue().Append(ctx, models.SyncOperation{ID: "op-1", EnqueuedAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Queue().Delete(ctx, "op-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Queue().Delete(ctx, "op-1"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound on second delete, got %v", err)
	}
}

func TestMemory_ListByStatus(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	statuses := []models.OpStatus{models.StatusPending, models.StatusFailed, models.StatusSynced, models.StatusPending}
	for i, st := range statuses {
		op := models.SyncOperation{ID: string(rune('a' + i)), Status: st, EnqueuedAt: time.Now()}
		if _, err := s.Queue().Append(ctx, op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pending, err := s.Queue().List(ctx, models.StatusPending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending ops, got %d", len(pending))
	}
	if pending[0].Seq > pending[1].Seq {
		t.Error("expected pending ops in seq order")
	}

	all, err := s.Queue().List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 ops without status filter, got %d", len(all))
	}
}

func TestMemory_ResetRunning(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()
	started := time.Now()

	ops := []models.SyncOperation{
		{ID: "a", Status: models.StatusRunning, StartedAt: &started, EnqueuedAt: time.Now()},
		{ID: "b", Status: models.StatusPending, EnqueuedAt: time.Now()},
		{ID: "c", Status: models.StatusRunning, StartedAt: &started, EnqueuedAt: time.Now()},
	}
	for _, op := range ops {
		if _, err := s.Queue().Append(ctx, op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	reset, err := s.Queue().ResetRunning(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset != 2 {
		t.Fatalf("expected 2 reset ops, got %d", reset)
	}

	running, err := s.Queue().List(ctx, models.StatusRunning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(running) != 0 {
		t.Fatalf("expected no running ops after reset, got %d", len(running))
	}

	got, err := s.Queue().Get(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StartedAt != nil {
		t.Error("expected StartedAt cleared after reset")
	}
	if !got.RetryAvailable {
		t.Error("expected reset op marked retryable")
	}
}

func TestMemory_PruneSynced(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	ops := []models.SyncOperation{
		{ID: "old-synced", Status: models.StatusSynced, CompletedAt: &old, EnqueuedAt: old},
		{ID: "fresh-synced", Status: models.StatusSynced, CompletedAt: &fresh, EnqueuedAt: fresh},
		{ID: "old-failed", Status: models.StatusFailed, CompletedAt: &old, EnqueuedAt: old},
	}
	for _, op := range ops {
		if _, err := s.Queue().Append(ctx, op); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pruned, err := s.Queue().PruneSynced(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned op, got %d", pruned)
	}

	if _, err := s.Queue().Get(ctx, "old-synced"); !errors.Is(err, ErrOperationNotFound) {
		t.Errorf("expected old-synced removed, got %v", err)
	}
	if _, err := s.Queue().Get(ctx, "old-failed"); err != nil {
		t.Errorf("expected old-failed kept, got %v", err)
	}
}

func TestMemory_CloseDropsState(t *testing.T) {
	s := newConnectedMemory(t)
	ctx := context.Background()

	if err := s.Records().Put(ctx, models.Record{Collection: "tasks", ID: "t1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Records().Get(ctx, "tasks", "t1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after close, got %v", err)
	}

	if err := s.Connect(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Records().Get(ctx, "tasks", "t1"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected empty store after reconnect, got %v", err)
	}
}
