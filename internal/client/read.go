// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/adapter"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/store"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// Read resolves one read key.
//
// Two key forms are accepted: "collection:id" resolves a single record,
// "collection?{...}" runs a collection query where the part after '?' is a
// JSON [models.RemoteQuery] (empty means every live record). The result is
// the record document as JSON, or a JSON array of documents for queries.
//
// Online, a cache miss goes through the request coordinator; the result is
// cached under the key and mirrored into the local store. Between the
// remote answer and an undrained local write, the newer copy wins, so a
// queued write is never shadowed by its own stale remote version. Offline,
// a cached value is served if present, otherwise the local copy; local
// reads are not cached. When the remote turns out unreachable mid-read the
// local path answers. A record absent everywhere returns
// [store.ErrRecordNotFound].
func (a *App) Read(ctx context.Context, key string) (json.RawMessage, error) {
	collection, rest, isQuery, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	var query models.RemoteQuery
	if isQuery && rest != "" {
		if err := json.Unmarshal([]byte(rest), &query); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
		}
	}

	if a.monitor.Online() {
		loader := a.recordLoader(collection, rest)
		if isQuery {
			loader = a.queryLoader(collection, query)
		}

		v, err := a.results.GetOrSet(ctx, key, loader, 0)
		if err == nil {
			return v.(json.RawMessage), nil
		}
		if !errors.Is(err, adapter.ErrNetworkUnavailable) {
			return nil, err
		}
		a.logger.Warn().Err(err).Str("key", key).Msg("remote read failed, serving local copy")
	} else if v, ok := a.results.Get(key); ok {
		return v.(json.RawMessage), nil
	}

	if isQuery {
		return a.localQuery(ctx, collection, query)
	}
	return a.localRecord(ctx, collection, rest)
}

// recordLoader fetches one record through the request coordinator and
// reconciles it with the local mirror.
func (a *App) recordLoader(collection, id string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		raw, err := a.requests.Do(ctx, models.EndpointRecordGet, models.RecordRef{Collection: collection, ID: id})
		if err != nil {
			return nil, err
		}

		records := a.local.Records()

		local, lerr := records.Get(ctx, collection, id)
		haveLocal := lerr == nil
		if lerr != nil && !errors.Is(lerr, store.ErrRecordNotFound) {
			return nil, lerr
		}

		if isNull(raw) {
			// the remote has never seen the record; a live local copy is an
			// undrained write and still answers
			if haveLocal && !local.Deleted {
				return encodeRecord(local)
			}
			return nil, fmt.Errorf("read %s: %w", models.RecordKey(collection, id), store.ErrRecordNotFound)
		}

		var remote models.Record
		if err := json.Unmarshal(raw, &remote); err != nil {
			return nil, fmt.Errorf("decode remote record: %w", err)
		}

		if haveLocal && local.UpdatedAt.After(remote.UpdatedAt) {
			if local.Deleted {
				return nil, fmt.Errorf("read %s: %w", models.RecordKey(collection, id), store.ErrRecordNotFound)
			}
			return encodeRecord(local)
		}

		if err := records.Put(ctx, remote); err != nil {
			return nil, fmt.Errorf("mirror remote record: %w", err)
		}
		return raw, nil
	}
}

// queryLoader fetches a collection query through the request coordinator
// and folds in undrained local writes.
func (a *App) queryLoader(collection string, query models.RemoteQuery) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		raw, err := a.requests.Do(ctx, models.EndpointRecordQuery, models.QueryRequest{Collection: collection, Query: query})
		if err != nil {
			return nil, err
		}

		var remote []models.Record
		if err := json.Unmarshal(raw, &remote); err != nil {
			return nil, fmt.Errorf("decode remote records: %w", err)
		}

		merged, err := a.reconcileQuery(ctx, collection, query, remote)
		if err != nil {
			return nil, err
		}

		b, err := json.Marshal(merged)
		if err != nil {
			return nil, fmt.Errorf("encode records: %w", err)
		}
		return json.RawMessage(b), nil
	}
}

// reconcileQuery merges a remote query result with the local mirror: a
// newer local copy replaces (or, when tombstoned, removes) its remote
// counterpart, remote records are mirrored locally, and records only the
// local store knows yet are appended after the remote order.
func (a *App) reconcileQuery(ctx context.Context, collection string, query models.RemoteQuery, remote []models.Record) ([]models.Record, error) {
	records := a.local.Records()

	merged := make([]models.Record, 0, len(remote))
	seen := make(map[string]struct{}, len(remote))
	for _, rr := range remote {
		seen[rr.ID] = struct{}{}

		local, err := records.Get(ctx, collection, rr.ID)
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil && local.UpdatedAt.After(rr.UpdatedAt) {
			if !local.Deleted {
				merged = append(merged, local)
			}
			continue
		}

		if err := records.Put(ctx, rr); err != nil {
			return nil, fmt.Errorf("mirror remote record: %w", err)
		}
		merged = append(merged, rr)
	}

	locals, err := records.List(ctx, collection, query)
	if err != nil {
		return nil, err
	}
	for _, lr := range locals {
		if _, ok := seen[lr.ID]; !ok {
			merged = append(merged, lr)
		}
	}

	if query.Limit > 0 && len(merged) > query.Limit {
		merged = merged[:query.Limit]
	}
	return merged, nil
}

// localRecord serves a point read from the local store.
func (a *App) localRecord(ctx context.Context, collection, id string) (json.RawMessage, error) {
	local, err := a.local.Records().Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	if local.Deleted {
		return nil, fmt.Errorf("read %s: %w", models.RecordKey(collection, id), store.ErrRecordNotFound)
	}
	return encodeRecord(local)
}

// localQuery serves a collection query from the local store.
func (a *App) localQuery(ctx context.Context, collection string, query models.RemoteQuery) (json.RawMessage, error) {
	locals, err := a.local.Records().List(ctx, collection, query)
	if err != nil {
		return nil, err
	}
	if locals == nil {
		locals = []models.Record{}
	}
	b, err := json.Marshal(locals)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}

// splitKey parses a read key into its collection and either a record ID or
// a raw query blob. The '?' form wins, so query JSON may contain colons.
func splitKey(key string) (collection, rest string, isQuery bool, err error) {
	if i := strings.IndexByte(key, '?'); i >= 0 {
		if i == 0 {
			return "", "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return key[:i], key[i+1:], true, nil
	}

	collection, id, ok := strings.Cut(key, ":")
	if !ok || collection == "" || id == "" {
		return "", "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return collection, id, false, nil
}

// isNull reports a JSON null, the batch get endpoint's answer for a record
// that does not exist.
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func encodeRecord(r models.Record) (json.RawMessage, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return b, nil
}
