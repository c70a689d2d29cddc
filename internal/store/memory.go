// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// memoryStore keeps records and the sync queue in process memory. Nothing
// survives a restart, which is exactly what tests and throwaway sessions
// want. All state is guarded by a single mutex; contention is irrelevant at
// local-app scale.
type memoryStore struct {
	mu        sync.RWMutex
	connected bool

	records map[string]map[string]models.Record // collection -> id -> record
	queue   []models.SyncOperation
	nextSeq int64

	logger *logger.Logger
}

// NewMemory builds an in-memory store. Connect allocates the maps; Close
// drops all data.
func NewMemory(log *logger.Logger) Local {
	return &memoryStore{logger: log}
}

func (s *memoryStore) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	s.records = make(map[string]map[string]models.Record)
	s.queue = nil
	s.nextSeq = 0
	s.connected = true
	s.logger.Debug().Str("func", "memoryStore.Connect").Msg("in-memory store ready")

	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	s.records = nil
	s.queue = nil

	return nil
}

func (s *memoryStore) Records() Records { return &memoryRecords{s: s} }
func (s *memoryStore) Queue() Queue     { return &memoryQueue{s: s} }

// memoryRecords is the Records view over a memoryStore.
type memoryRecords struct {
	s *memoryStore
}

func (r *memoryRecords) Put(_ context.Context, record models.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.connected {
		return ErrNotConnected
	}

	coll := r.s.records[record.Collection]
	if coll == nil {
		coll = make(map[string]models.Record)
		r.s.records[record.Collection] = coll
	}

	record.Payload = clonePayload(record.Payload)
	coll[record.ID] = record

	return nil
}

func (r *memoryRecords) Get(_ context.Context, collection, id string) (models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if !r.s.connected {
		return models.Record{}, ErrNotConnected
	}

	record, ok := r.s.records[collection][id]
	if !ok {
		return models.Record{}, ErrRecordNotFound
	}

	record.Payload = clonePayload(record.Payload)

	return record, nil
}

func (r *memoryRecords) List(_ context.Context, collection string, query models.RemoteQuery) ([]models.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if !r.s.connected {
		return nil, ErrNotConnected
	}

	out := make([]models.Record, 0)
	for _, record := range r.s.records[collection] {
		if record.Deleted {
			continue
		}
		if !matchesFilter(record.Payload, query.Filter) {
			continue
		}
		record.Payload = clonePayload(record.Payload)
		out = append(out, record)
	}

	// Newest first; ID breaks timestamp ties so the order is stable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}

	return out, nil
}

func (r *memoryRecords) Delete(_ context.Context, collection, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.connected {
		return ErrNotConnected
	}

	coll := r.s.records[collection]
	if coll == nil {
		coll = make(map[string]models.Record)
		r.s.records[collection] = coll
	}

	record, ok := coll[id]
	if !ok {
		record = models.Record{Collection: collection, ID: id}
	}

	record.Deleted = true
	record.UpdatedAt = at
	coll[id] = record

	return nil
}

// memoryQueue is the Queue view over a memoryStore.
type memoryQueue struct {
	s *memoryStore
}

func (q *memoryQueue) Append(_ context.Context, op models.SyncOperation) (models.SyncOperation, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if !q.s.connected {
		return models.SyncOperation{}, ErrNotConnected
	}

	q.s.nextSeq++
	op.Seq = q.s.nextSeq
	if op.Status == "" {
		op.Status = models.StatusPending
	}
	op.Payload = clonePayload(op.Payload)
	q.s.queue = append(q.s.queue, op)

	return op, nil
}

func (q *memoryQueue) Update(_ context.Context, op models.SyncOperation) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if !q.s.connected {
		return ErrNotConnected
	}

	for i := range q.s.queue {
		if q.s.queue[i].ID == op.ID {
			op.Seq = q.s.queue[i].Seq // Seq is immutable once assigned
			op.Payload = clonePayload(op.Payload)
			q.s.queue[i] = op
			return nil
		}
	}

	return ErrOperationNotFound
}

func (q *memoryQueue) Delete(_ context.Context, opID string) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if !q.s.connected {
		return ErrNotConnected
	}

	for i := range q.s.queue {
		if q.s.queue[i].ID == opID {
			q.s.queue = append(q.s.queue[:i], q.s.queue[i+1:]...)
			return nil
		}
	}

	return ErrOperationNotFound
}

func (q *memoryQueue) Get(_ context.Context, opID string) (models.SyncOperation, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	if !q.s.connected {
		return models.SyncOperation{}, ErrNotConnected
	}

	for _, op := range q.s.queue {
		if op.ID == opID {
			op.Payload = clonePayload(op.Payload)
			return op, nil
		}
	}

	return models.SyncOperation{}, ErrOperationNotFound
}

func (q *memoryQueue) List(_ context.Context, statuses ...models.OpStatus) ([]models.SyncOperation, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()

	if !q.s.connected {
		return nil, ErrNotConnected
	}

	out := make([]models.SyncOperation, 0, len(q.s.queue))
	for _, op := range q.s.queue {
		if !statusMatches(op.Status, statuses) {
			continue
		}
		op.Payload = clonePayload(op.Payload)
		out = append(out, op)
	}

	return out, nil
}

func (q *memoryQueue) ResetRunning(_ context.Context) (int, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if !q.s.connected {
		return 0, ErrNotConnected
	}

	reset := 0
	for i := range q.s.queue {
		if q.s.queue[i].Status == models.StatusRunning {
			q.s.queue[i].Status = models.StatusPending
			q.s.queue[i].StartedAt = nil
			q.s.queue[i].RetryAvailable = true
			reset++
		}
	}

	return reset, nil
}

func (q *memoryQueue) PruneSynced(_ context.Context, olderThan time.Time) (int, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if !q.s.connected {
		return 0, ErrNotConnected
	}

	kept := q.s.queue[:0]
	pruned := 0
	for _, op := range q.s.queue {
		if op.Status == models.StatusSynced && op.CompletedAt != nil && op.CompletedAt.Before(olderThan) {
			pruned++
			continue
		}
		kept = append(kept, op)
	}
	q.s.queue = kept

	return pruned, nil
}

func statusMatches(status models.OpStatus, statuses []models.OpStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

// clonePayload copies a payload so stored state never aliases caller-owned
// byte slices.
func clonePayload(p []byte) []byte {
	if p == nil {
		return nil
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
