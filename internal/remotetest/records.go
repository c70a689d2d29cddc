// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/utils"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// nullResult answers a batched point read for a record the server does not
// hold (or holds only as a tombstone).
var nullResult = json.RawMessage("null")

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Server.query").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.Collection == "" {
		log.Error().Str("func", "*Server.query").Msg("no collection was given")
		http.Error(w, "collection is required", http.StatusBadRequest)
		return
	}

	records := s.queryRecords(req.Collection, req.Query)

	response := models.QueryResponse{
		Records: records,
		Length:  len(records),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Server.batch").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.Length != len(req.Params) {
		log.Error().Str("func", "*Server.batch").
			Int("length", req.Length).
			Int("params", len(req.Params)).
			Msg("batch length does not match params")
		http.Error(w, "batch length does not match params", http.StatusBadRequest)
		return
	}

	results := make([]json.RawMessage, 0, len(req.Params))
	for _, param := range req.Params {
		result, err := s.resolveBatchParam(req.Endpoint, param)
		if err != nil {
			log.Err(err).Str("func", "*Server.batch").
				Str("endpoint", req.Endpoint).
				Msg("failed to resolve batch param")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		results = append(results, result)
	}

	response := models.BatchResponse{
		Results: results,
		Length:  len(results),
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

// resolveBatchParam answers one entry of a batch. Results align with params,
// so a miss yields a null result rather than an error.
func (s *Server) resolveBatchParam(endpoint string, param json.RawMessage) (json.RawMessage, error) {
	switch endpoint {
	case models.EndpointRecordGet:
		var ref models.RecordRef
		if err := json.Unmarshal(param, &ref); err != nil {
			return nil, fmt.Errorf("decode record ref: %w", err)
		}

		record, ok := s.Record(ref.Collection, ref.ID)
		if !ok || record.Deleted {
			return nullResult, nil
		}

		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		return data, nil

	case models.EndpointRecordQuery:
		var query models.QueryRequest
		if err := json.Unmarshal(param, &query); err != nil {
			return nil, fmt.Errorf("decode query: %w", err)
		}

		data, err := json.Marshal(s.queryRecords(query.Collection, query.Query))
		if err != nil {
			return nil, fmt.Errorf("encode records: %w", err)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unknown batch endpoint %q", endpoint)
	}
}

// write commits one replayed queue operation. Create and update both upsert;
// the distinction only matters to the client's queue. A replayed operation
// ID is acknowledged with 200 without being applied again, and a write older
// than the stored record is refused with 409.
func (s *Server) write(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.WriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Server.write").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.OpID == "" {
		http.Error(w, "operation id is required", http.StatusBadRequest)
		return
	}
	if req.Collection == "" || req.RecordID == "" {
		http.Error(w, "collection and record id are required", http.StatusBadRequest)
		return
	}

	switch req.Kind {
	case models.OpCreate, models.OpUpdate, models.OpDelete:
	default:
		http.Error(w, fmt.Sprintf("unknown operation kind %q", req.Kind), http.StatusBadRequest)
		return
	}

	status, message := s.applyWrite(req)
	if status != http.StatusOK {
		log.Error().Str("func", "*Server.write").
			Str("op_id", req.OpID).
			Str("key", models.RecordKey(req.Collection, req.RecordID)).
			Int("status", status).
			Msg(message)
		http.Error(w, message, status)
		return
	}

	log.Debug().Str("func", "*Server.write").
		Str("op_id", req.OpID).
		Str("key", models.RecordKey(req.Collection, req.RecordID)).
		Str("kind", string(req.Kind)).
		Msg("write applied")

	utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	if s.unavailableNow() {
		http.Error(w, "remote unavailable", http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
