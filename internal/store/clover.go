// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ostafen/clover"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

const queueCollection = "sync_queue"

// recordCollection maps an application collection to its clover collection.
// The prefix keeps user collections from colliding with the queue.
func recordCollection(collection string) string {
	return "records_" + collection
}

// cloverStore implements Local on top of a CloverDB directory. Records keep
// their payload as a decoded document field; queue entries keep it as a raw
// JSON string because the queue never filters into payloads.
type cloverStore struct {
	path string

	mu      sync.RWMutex
	db      *clover.DB
	nextSeq atomic.Int64

	logger *logger.Logger
}

// NewClover builds a CloverDB-backed store rooted at the given directory.
func NewClover(path string, log *logger.Logger) Local {
	return &cloverStore{path: path, logger: log}
}

func (s *cloverStore) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := clover.Open(s.path)
	if err != nil {
		s.logger.Err(err).Str("func", "cloverStore.Connect").Str("path", s.path).Msg("error opening clover db")
		return fmt.Errorf("clover open: %w", err)
	}

	if err := ensureCollection(db, queueCollection); err != nil {
		db.Close()
		return err
	}

	// Seq continues where the persisted queue left off.
	docs, err := db.Query(queueCollection).
		Sort(clover.SortOption{Field: "seq", Direction: -1}).
		Limit(1).
		FindAll()
	if err != nil {
		db.Close()
		return fmt.Errorf("clover query: %w", err)
	}
	if len(docs) == 1 {
		s.nextSeq.Store(asInt64(docs[0].Get("seq")))
	} else {
		s.nextSeq.Store(0)
	}

	s.db = db
	s.logger.Debug().Str("func", "cloverStore.Connect").Str("path", s.path).Msg("clover store ready")

	return nil
}

func (s *cloverStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

func (s *cloverStore) Records() Records { return &cloverRecords{s: s} }
func (s *cloverStore) Queue() Queue     { return &cloverQueue{s: s} }

// handle returns the open database or ErrNotConnected.
func (s *cloverStore) handle() (*clover.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotConnected
	}

	return s.db, nil
}

func ensureCollection(db *clover.DB, name string) error {
	exists, err := db.HasCollection(name)
	if err != nil {
		return fmt.Errorf("clover collection check: %w", err)
	}
	if exists {
		return nil
	}
	if err := db.CreateCollection(name); err != nil {
		return fmt.Errorf("clover collection create: %w", err)
	}

	return nil
}

// cloverRecords is the Records view over a cloverStore.
type cloverRecords struct {
	s *cloverStore
}

func (r *cloverRecords) Put(_ context.Context, record models.Record) error {
	db, err := r.s.handle()
	if err != nil {
		return err
	}

	coll := recordCollection(record.Collection)
	if err := ensureCollection(db, coll); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"record_id":  record.ID,
		"payload":    decodePayload(record.Payload),
		"updated_at": record.UpdatedAt.UnixNano(),
		"deleted":    record.Deleted,
	}

	q := db.Query(coll).Where(clover.Field("record_id").Eq(record.ID))
	n, err := q.Count()
	if err != nil {
		return fmt.Errorf("clover query: %w", err)
	}
	if n > 0 {
		if err := q.Update(fields); err != nil {
			return fmt.Errorf("clover update: %w", err)
		}
		return nil
	}

	doc := clover.NewDocument()
	for k, v := range fields {
		doc.Set(k, v)
	}
	if err := db.Insert(coll, doc); err != nil {
		return fmt.Errorf("clover insert: %w", err)
	}

	return nil
}

func (r *cloverRecords) Get(_ context.Context, collection, id string) (models.Record, error) {
	db, err := r.s.handle()
	if err != nil {
		return models.Record{}, err
	}

	coll := recordCollection(collection)
	exists, err := db.HasCollection(coll)
	if err != nil {
		return models.Record{}, fmt.Errorf("clover collection check: %w", err)
	}
	if !exists {
		return models.Record{}, ErrRecordNotFound
	}

	docs, err := db.Query(coll).Where(clover.Field("record_id").Eq(id)).Limit(1).FindAll()
	if err != nil {
		return models.Record{}, fmt.Errorf("clover query: %w", err)
	}
	if len(docs) == 0 {
		return models.Record{}, ErrRecordNotFound
	}

	return decodeRecordDoc(collection, docs[0])
}

func (r *cloverRecords) List(_ context.Context, collection string, query models.RemoteQuery) ([]models.Record, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}

	coll := recordCollection(collection)
	exists, err := db.HasCollection(coll)
	if err != nil {
		return nil, fmt.Errorf("clover collection check: %w", err)
	}
	if !exists {
		return []models.Record{}, nil
	}

	docs, err := db.Query(coll).
		Where(clover.Field("deleted").Eq(false)).
		Sort(clover.SortOption{Field: "updated_at", Direction: -1}).
		FindAll()
	if err != nil {
		return nil, fmt.Errorf("clover query: %w", err)
	}

	out := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeRecordDoc(collection, doc)
		if err != nil {
			return nil, err
		}
		if !matchesFilter(record.Payload, query.Filter) {
			continue
		}
		out = append(out, record)
	}

	// Clover sorts by timestamp only; break ties by ID for a stable order.
	sort.SliceStable(out, func(i, j int) bool {
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

func (r *cloverRecords) Delete(_ context.Context, collection, id string, at time.Time) error {
	db, err := r.s.handle()
	if err != nil {
		return err
	}

	coll := recordCollection(collection)
	if err := ensureCollection(db, coll); err != nil {
		return err
	}

	q := db.Query(coll).Where(clover.Field("record_id").Eq(id))
	n, err := q.Count()
	if err != nil {
		return fmt.Errorf("clover query: %w", err)
	}
	if n > 0 {
		err := q.Update(map[string]interface{}{
			"deleted":    true,
			"updated_at": at.UnixNano(),
		})
		if err != nil {
			return fmt.Errorf("clover update: %w", err)
		}
		return nil
	}

	doc := clover.NewDocument()
	doc.Set("record_id", id)
	doc.Set("payload", nil)
	doc.Set("updated_at", at.UnixNano())
	doc.Set("deleted", true)
	if err := db.Insert(coll, doc); err != nil {
		return fmt.Errorf("clover insert: %w", err)
	}

	return nil
}

// cloverQueue is the Queue view over a cloverStore.
type cloverQueue struct {
	s *cloverStore
}

func (q *cloverQueue) Append(_ context.Context, op models.SyncOperation) (models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return models.SyncOperation{}, err
	}

	if op.Status == "" {
		op.Status = models.StatusPending
	}
	op.Seq = q.s.nextSeq.Add(1)

	doc := clover.NewDocument()
	doc.Set("seq", op.Seq)
	doc.Set("op_id", op.ID)
	doc.Set("kind", string(op.Kind))
	doc.Set("collection", op.Collection)
	doc.Set("record_id", op.RecordID)
	doc.Set("payload", string(op.Payload))
	doc.Set("status", string(op.Status))
	doc.Set("enqueued_at", op.EnqueuedAt.UnixNano())
	doc.Set("started_at", timePtrNano(op.StartedAt))
	doc.Set("completed_at", timePtrNano(op.CompletedAt))
	doc.Set("error", op.Error)
	doc.Set("retry_available", op.RetryAvailable)

	if err := db.Insert(queueCollection, doc); err != nil {
		return models.SyncOperation{}, fmt.Errorf("clover insert: %w", err)
	}

	return op, nil
}

func (q *cloverQueue) Update(_ context.Context, op models.SyncOperation) error {
	db, err := q.s.handle()
	if err != nil {
		return err
	}

	query := db.Query(queueCollection).Where(clover.Field("op_id").Eq(op.ID))
	n, err := query.Count()
	if err != nil {
		return fmt.Errorf("clover query: %w", err)
	}
	if n == 0 {
		return ErrOperationNotFound
	}

	err = query.Update(map[string]interface{}{
		"kind":            string(op.Kind),
		"collection":      op.Collection,
		"record_id":       op.RecordID,
		"payload":         string(op.Payload),
		"status":          string(op.Status),
		"enqueued_at":     op.EnqueuedAt.UnixNano(),
		"started_at":      timePtrNano(op.StartedAt),
		"completed_at":    timePtrNano(op.CompletedAt),
		"error":           op.Error,
		"retry_available": op.RetryAvailable,
	})
	if err != nil {
		return fmt.Errorf("clover update: %w", err)
	}

	return nil
}

func (q *cloverQueue) Delete(_ context.Context, opID string) error {
	db, err := q.s.handle()
	if err != nil {
		return err
	}

	query := db.Query(queueCollection).Where(clover.Field("op_id").Eq(opID))
	n, err := query.Count()
	if err != nil {
		return fmt.Errorf("clover query: %w", err)
	}
	if n == 0 {
		return ErrOperationNotFound
	}

	if err := query.Delete(); err != nil {
		return fmt.Errorf("clover delete: %w", err)
	}

	return nil
}

func (q *cloverQueue) Get(_ context.Context, opID string) (models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return models.SyncOperation{}, err
	}

	docs, err := db.Query(queueCollection).Where(clover.Field("op_id").Eq(opID)).Limit(1).FindAll()
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("clover query: %w", err)
	}
	if len(docs) == 0 {
		return models.SyncOperation{}, ErrOperationNotFound
	}

	return decodeQueueDoc(docs[0]), nil
}

func (q *cloverQueue) List(_ context.Context, statuses ...models.OpStatus) ([]models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return nil, err
	}

	docs, err := db.Query(queueCollection).
		Sort(clover.SortOption{Field: "seq", Direction: 1}).
		FindAll()
	if err != nil {
		return nil, fmt.Errorf("clover query: %w", err)
	}

	out := make([]models.SyncOperation, 0, len(docs))
	for _, doc := range docs {
		op := decodeQueueDoc(doc)
		if !statusMatches(op.Status, statuses) {
			continue
		}
		out = append(out, op)
	}

	return out, nil
}

func (q *cloverQueue) ResetRunning(_ context.Context) (int, error) {
	db, err := q.s.handle()
	if err != nil {
		return 0, err
	}

	query := db.Query(queueCollection).Where(clover.Field("status").Eq(string(models.StatusRunning)))
	n, err := query.Count()
	if err != nil {
		return 0, fmt.Errorf("clover query: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	err = query.Update(map[string]interface{}{
		"status":          string(models.StatusPending),
		"started_at":      int64(0),
		"retry_available": true,
	})
	if err != nil {
		return 0, fmt.Errorf("clover update: %w", err)
	}

	return n, nil
}

func (q *cloverQueue) PruneSynced(_ context.Context, olderThan time.Time) (int, error) {
	db, err := q.s.handle()
	if err != nil {
		return 0, err
	}

	docs, err := db.Query(queueCollection).
		Where(clover.Field("status").Eq(string(models.StatusSynced))).
		FindAll()
	if err != nil {
		return 0, fmt.Errorf("clover query: %w", err)
	}

	pruned := 0
	for _, doc := range docs {
		completed := asInt64(doc.Get("completed_at"))
		if completed == 0 || !time.Unix(0, completed).Before(olderThan) {
			continue
		}
		opID := asString(doc.Get("op_id"))
		err := db.Query(queueCollection).Where(clover.Field("op_id").Eq(opID)).Delete()
		if err != nil {
			return pruned, fmt.Errorf("clover delete: %w", err)
		}
		pruned++
	}

	return pruned, nil
}

func decodeRecordDoc(collection string, doc *clover.Document) (models.Record, error) {
	record := models.Record{
		Collection: collection,
		ID:         asString(doc.Get("record_id")),
		UpdatedAt:  time.Unix(0, asInt64(doc.Get("updated_at"))).UTC(),
		Deleted:    asBool(doc.Get("deleted")),
	}

	if v := doc.Get("payload"); v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return models.Record{}, fmt.Errorf("clover payload encode: %w", err)
		}
		record.Payload = raw
	}

	return record, nil
}

func decodeQueueDoc(doc *clover.Document) models.SyncOperation {
	op := models.SyncOperation{
		Seq:            asInt64(doc.Get("seq")),
		ID:             asString(doc.Get("op_id")),
		Kind:           models.OpKind(asString(doc.Get("kind"))),
		Collection:     asString(doc.Get("collection")),
		RecordID:       asString(doc.Get("record_id")),
		Status:         models.OpStatus(asString(doc.Get("status"))),
		EnqueuedAt:     time.Unix(0, asInt64(doc.Get("enqueued_at"))).UTC(),
		Error:          asString(doc.Get("error")),
		RetryAvailable: asBool(doc.Get("retry_available")),
	}

	if s := asString(doc.Get("payload")); s != "" {
		op.Payload = json.RawMessage(s)
	}
	if n := asInt64(doc.Get("started_at")); n != 0 {
		t := time.Unix(0, n).UTC()
		op.StartedAt = &t
	}
	if n := asInt64(doc.Get("completed_at")); n != 0 {
		t := time.Unix(0, n).UTC()
		op.CompletedAt = &t
	}

	return op
}

// decodePayload turns raw JSON into the value stored in a clover document.
// Decoded payloads keep object fields addressable should native queries ever
// be needed.
func decodePayload(payload json.RawMessage) interface{} {
	if len(payload) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	return v
}

func timePtrNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

// Clover hands numbers back in whatever width its codec chose, so the
// decoders normalize defensively.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}
