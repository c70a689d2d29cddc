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

// sqliteRecords is the Records view over an sqliteStore.
type sqliteRecords struct {
	s *sqliteStore
}

func (r *sqliteRecords) Put(ctx context.Context, record models.Record) error {
	db, err := r.s.handle()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	_, err = db.ExecContext(ctx, queryUpsertRecord,
		record.Collection,
		record.ID,
		[]byte(record.Payload),
		record.UpdatedAt,
		record.Deleted,
	)
	if err != nil {
		log.Err(err).Str("func", "sqliteRecords.Put").Str("key", record.Key()).Msg("upsert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (r *sqliteRecords) Get(ctx context.Context, collection, id string) (models.Record, error) {
	db, err := r.s.handle()
	if err != nil {
		return models.Record{}, err
	}
	log := logger.FromContext(ctx)

	row := db.QueryRowContext(ctx, queryGetRecord, collection, id)

	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "sqliteRecords.Get").Str("key", models.RecordKey(collection, id)).Msg("lookup failed")
		return models.Record{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return record, nil
}

func (r *sqliteRecords) List(ctx context.Context, collection string, query models.RemoteQuery) ([]models.Record, error) {
	db, err := r.s.handle()
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	qb := sq.
		Select("collection", "id", "payload", "updated_at", "deleted").
		From("records").
		Where(sq.Eq{"collection": collection, "deleted": false}).
		OrderBy("updated_at DESC", "id ASC")

	// Filters match top-level payload fields. The JSON path is bound as a
	// parameter, so field names never reach the SQL text.
	for field, value := range query.Filter {
		qb = qb.Where(sq.Expr("json_extract(payload, ?) = ?", "$."+field, value))
	}
	if query.Limit > 0 {
		qb = qb.Limit(uint64(query.Limit))
	}

	sqlText, args, err := qb.ToSql()
	if err != nil {
		log.Err(err).Str("func", "sqliteRecords.List").Msg("building list query failed")
		return nil, fmt.Errorf("error building sql query: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		log.Err(err).Str("func", "sqliteRecords.List").Str("collection", collection).Msg("list failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			log.Err(err).Str("func", "sqliteRecords.List").Msg("scanning record row failed")
			return nil, fmt.Errorf("unexpected DB error: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return out, nil
}

func (r *sqliteRecords) Delete(ctx context.Context, collection, id string, at time.Time) error {
	db, err := r.s.handle()
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	res, err := db.ExecContext(ctx, querySoftDeleteRecord, at, collection, id)
	if err != nil {
		log.Err(err).Str("func", "sqliteRecords.Delete").Str("key", models.RecordKey(collection, id)).Msg("soft delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Unknown key: store a bare tombstone so the deletion outlives any
	// stale read arriving later.
	tombstone := models.Record{
		Collection: collection,
		ID:         id,
		UpdatedAt:  at,
		Deleted:    true,
	}

	return r.Put(ctx, tombstone)
}

// scanRecord reads one records row. It accepts the Scan func of either
// sql.Row or sql.Rows.
func scanRecord(scan func(dest ...any) error) (models.Record, error) {
	var (
		record  models.Record
		payload []byte
	)

	err := scan(&record.Collection, &record.ID, &payload, &record.UpdatedAt, &record.Deleted)
	if err != nil {
		return models.Record{}, err
	}
	record.Payload = payload

	return record, nil
}
