// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// sqliteQueue is the Queue view over an sqliteStore. Seq is the table's
// AUTOINCREMENT rowid, so insertion order survives restarts.
type sqliteQueue struct {
	s *sqliteStore
}

func (q *sqliteQueue) Append(ctx context.Context, op models.SyncOperation) (models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return models.SyncOperation{}, err
	}
	log := logger.FromContext(ctx)

	if op.Status == "" {
		op.Status = models.StatusPending
	}

	res, err := db.ExecContext(ctx, queryAppendOperation,
		op.ID,
		op.Kind,
		op.Collection,
		op.RecordID,
		[]byte(op.Payload),
		op.Status,
		op.EnqueuedAt,
		op.StartedAt,
		op.CompletedAt,
		op.Error,
		op.RetryAvailable,
	)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.Append").Str("op_id", op.ID).Msg("insert failed")
		return models.SyncOperation{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	op.Seq = seq

	return op, nil
}

func (q *sqliteQueue) Update(ctx context.Context, op models.SyncOperation) error {
	db, err := q.s.handle()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	res, err := db.ExecContext(ctx, queryUpdateOperation,
		op.Kind,
		op.Collection,
		op.RecordID,
		[]byte(op.Payload),
		op.Status,
		op.EnqueuedAt,
		op.StartedAt,
		op.CompletedAt,
		op.Error,
		op.RetryAvailable,
		op.ID,
	)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.Update").Str("op_id", op.ID).Msg("update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (q *sqliteQueue) Delete(ctx context.Context, opID string) error {
	db, err := q.s.handle()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	res, err := db.ExecContext(ctx, queryDeleteOperation, opID)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.Delete").Str("op_id", opID).Msg("delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return ErrOperationNotFound
	}

	return nil
}

func (q *sqliteQueue) Get(ctx context.Context, opID string) (models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return models.SyncOperation{}, err
	}
	log := logger.FromContext(ctx)

	row := db.QueryRowContext(ctx, queryGetOperation, opID)

	op, err := scanOperation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SyncOperation{}, ErrOperationNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.Get").Str("op_id", opID).Msg("lookup failed")
		return models.SyncOperation{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return op, nil
}

func (q *sqliteQueue) List(ctx context.Context, statuses ...models.OpStatus) ([]models.SyncOperation, error) {
	db, err := q.s.handle()
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	qb := sq.
		Select("seq", "op_id", "kind", "collection", "record_id", "payload", "status",
			"enqueued_at", "started_at", "completed_at", "error", "retry_available").
		From("sync_queue").
		OrderBy("seq ASC")
	if len(statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": statuses})
	}

	sqlText, args, err := qb.ToSql()
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.List").Msg("building list query failed")
		return nil, fmt.Errorf("error building sql query: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.List").Msg("list failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	out := make([]models.SyncOperation, 0)
	for rows.Next() {
		op, err := scanOperation(rows.Scan)
		if err != nil {
			log.Err(err).Str("func", "sqliteQueue.List").Msg("scanning operation row failed")
			return nil, fmt.Errorf("unexpected DB error: %w", err)
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return out, nil
}

func (q *sqliteQueue) ResetRunning(ctx context.Context) (int, error) {
	db, err := q.s.handle()
	if err != nil {
		return 0, err
	}
	log := logger.FromContext(ctx)

	res, err := db.ExecContext(ctx, queryResetRunning, models.StatusPending, models.StatusRunning)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.ResetRunning").Msg("reset failed")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return int(affected), nil
}

func (q *sqliteQueue) PruneSynced(ctx context.Context, olderThan time.Time) (int, error) {
	db, err := q.s.handle()
	if err != nil {
		return 0, err
	}
	log := logger.FromContext(ctx)

	res, err := db.ExecContext(ctx, queryPruneSynced, models.StatusSynced, olderThan)
	if err != nil {
		log.Err(err).Str("func", "sqliteQueue.PruneSynced").Msg("prune failed")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	return int(affected), nil
}

// scanOperation reads one sync_queue row. It accepts the Scan func of either
// sql.Row or sql.Rows.
func scanOperation(scan func(dest ...any) error) (models.SyncOperation, error) {
	var (
		op        models.SyncOperation
		kind      string
		status    string
		payload   []byte
		started   sql.NullTime
		completed sql.NullTime
	)

	err := scan(&op.Seq, &op.ID, &kind, &op.Collection, &op.RecordID, &payload, &status,
		&op.EnqueuedAt, &started, &completed, &op.Error, &op.RetryAvailable)
	if err != nil {
		return models.SyncOperation{}, err
	}

	op.Kind = models.OpKind(kind)
	op.Status = models.OpStatus(status)
	op.Payload = payload
	op.StartedAt = nullTimePtr(started)
	op.CompletedAt = nullTimePtr(completed)

	return op, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
