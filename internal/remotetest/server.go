// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package remotetest implements an in-memory stand-in for the remote
// document store. It answers the same query/batch/write/ping HTTP API the
// adapter talks to, journals every accepted write for assertions, and can
// inject failures on demand, which makes it the far end of end-to-end tests
// and a zero-setup backend for local development.
//
// Records live in a map and are gone when the process exits; this is not a
// replication target. Writes follow last-writer-wins on the record's
// updated_at, replayed operation IDs are acknowledged without being applied
// twice, and query filters match top-level payload fields by equality.
package remotetest

import (
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/utils"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// Server holds the in-memory record set, the write journal and the
// fault-injection state. All exported methods are safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	records map[string]models.Record
	applied map[string]struct{}
	journal []models.WriteRequest

	failures    []int
	unavailable bool

	hashKey   string
	authToken string

	logger *logger.Logger
}

// NewServer builds a dev remote server from the same config section the
// adapter reads, so both ends of an in-process test agree on the auth token
// and the integrity hash key. An empty cfg.HashKey disables hash checking,
// an empty cfg.AuthToken disables auth.
func NewServer(cfg config.Remote, log *logger.Logger) *Server {
	utils.InitHasherPool(cfg.HashKey)

	log.Info().Msg("dev remote server created")

	return &Server{
		records:   make(map[string]models.Record),
		applied:   make(map[string]struct{}),
		hashKey:   cfg.HashKey,
		authToken: strings.TrimSpace(cfg.AuthToken),
		logger:    log.Component("remotetest"),
	}
}

// Seed stores records directly, bypassing the write pipeline and its
// conflict checks. Intended for test fixtures and dev bootstrap data.
func (s *Server) Seed(records ...models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		s.records[record.Key()] = record
	}
}

// Record returns the record stored under collection and id, tombstones
// included. The ok flag is false when the server has never seen the key.
func (s *Server) Record(collection, id string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[models.RecordKey(collection, id)]
	return record, ok
}

// Journal returns a copy of every accepted write request in arrival order.
// Replayed operation IDs are acknowledged without being journaled again.
func (s *Server) Journal() []models.WriteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.WriteRequest(nil), s.journal...)
}

// FailNext queues HTTP status codes to answer upcoming record requests
// with, one status per request, in order. Only the records endpoints
// consume the queue; ping stays healthy unless SetUnavailable is on.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, statuses...)
}

// SetUnavailable switches every endpoint, ping included, to answering
// 503 Service Unavailable. The sync core reads that as the remote being
// offline.
func (s *Server) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unavailable = unavailable
}

// Reset drops all records, the journal, the applied-operation set and any
// queued failures. The unavailable switch is cleared too.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]models.Record)
	s.applied = make(map[string]struct{})
	s.journal = nil
	s.failures = nil
	s.unavailable = false
}

func (s *Server) unavailableNow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unavailable
}

func (s *Server) takeFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.failures) == 0 {
		return 0, false
	}

	status := s.failures[0]
	s.failures = s.failures[1:]
	return status, true
}

// applyWrite commits one write request and reports the HTTP status the
// handler should answer with, plus a message for non-2xx outcomes.
func (s *Server) applyWrite(req models.WriteRequest) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.applied[req.OpID]; done {
		// replay of a committed operation: acknowledge, do not re-apply
		return http.StatusOK, ""
	}

	record := req.Record
	if record == nil {
		if req.Kind != models.OpDelete {
			return http.StatusBadRequest, "record body is required"
		}

		// a bare delete carries no body; tombstone the key as of now
		record = &models.Record{
			Collection: req.Collection,
			ID:         req.RecordID,
			UpdatedAt:  time.Now().UTC(),
			Deleted:    true,
		}
	}

	key := models.RecordKey(req.Collection, req.RecordID)
	if existing, ok := s.records[key]; ok && existing.UpdatedAt.After(record.UpdatedAt) {
		return http.StatusConflict, "stored record is newer"
	}

	s.records[key] = *record
	s.applied[req.OpID] = struct{}{}
	s.journal = append(s.journal, req)

	return http.StatusOK, ""
}

// queryRecords returns the live records of a collection matching the query,
// sorted by record ID. Tombstones never match.
func (s *Server) queryRecords(collection string, query models.RemoteQuery) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Record, 0)
	for _, record := range s.records {
		if record.Collection != collection || record.Deleted {
			continue
		}
		if !matchesFilter(record.Payload, query.Filter) {
			continue
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	return matched
}

// matchesFilter reports whether every filter entry equals the payload's
// top-level field of the same name. An empty filter matches everything; a
// payload that is not a JSON object matches nothing.
func matchesFilter(payload json.RawMessage, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return false
	}

	for key, want := range filter {
		got, ok := fields[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}

	return true
}
