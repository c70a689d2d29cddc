// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package remotetest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/utils"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

// withTraceID tags the request with a trace identifier: the incoming
// X-Trace-ID header when present, a fresh UUID otherwise. The ID is stored
// in the request context, attached to the request-scoped logger and echoed
// back in the response header, so client and server log entries for one
// request can be correlated.
func (s *Server) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		traceID := r.Header.Get(utils.TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := s.logger.With().Str("trace_id", traceID).Logger()
		ctx = utils.SetTraceID(l.WithContext(ctx), traceID)
		r = r.WithContext(ctx)

		w.Header().Set(utils.TraceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()

		uri := r.RequestURI
		method := r.Method

		lw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(lw, r)

		duration := time.Since(start)

		log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", lw.status).
			Dur("duration", duration).
			Int("size", lw.size).
			Send()
	})
}

// auth enforces the static bearer token when one is configured. An empty
// token on the server side disables the check, which is the dev default.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			log.Err(err).Msg("rejected request with malformed authorization header")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if token != s.authToken {
			log.Error().Msg("rejected request with unknown token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// faults answers queued injected failures before the request reaches a
// handler. The unavailable switch takes precedence and does not consume
// a queued failure.
func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.unavailableNow() {
			http.Error(w, "remote unavailable", http.StatusServiceUnavailable)
			return
		}

		if status, ok := s.takeFailure(); ok {
			logger.FromRequest(r).Debug().
				Int("status", status).
				Msg("answering injected failure")
			http.Error(w, "injected failure", status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeHashing verifies the integrity hash of a write request: the hash
// field must equal the HMAC of the serialized record. Skipped entirely when
// the server has no hash key configured.
func (s *Server) writeHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hashKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		// read bytes from body
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Server.writeHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req models.WriteRequest
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
			log.Err(err).Str("func", "*Server.writeHashing").Msg("failed to decode JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		payloadBytes, err := json.Marshal(req.Record)
		if err != nil {
			log.Err(err).Str("func", "*Server.writeHashing").Msg("failed to marshal record")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		hashedBody := hex.EncodeToString(utils.Hash(payloadBytes))
		if hashedBody != req.Hash {
			log.Error().Str("func", "*Server.writeHashing").
				Str("hash from request", req.Hash).
				Str("hashed body", hashedBody).
				Msg("hashes are not equal")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// batchHashing verifies the integrity hash of a batch request: the hash
// field must equal the HMAC of the serialized params slice. Skipped when no
// hash key is configured.
func (s *Server) batchHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hashKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Server.batchHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req models.BatchRequest
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
			log.Err(err).Str("func", "*Server.batchHashing").Msg("failed to decode JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		payloadBytes, err := json.Marshal(req.Params)
		if err != nil {
			log.Err(err).Str("func", "*Server.batchHashing").Msg("failed to marshal params")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		hashedBody := hex.EncodeToString(utils.Hash(payloadBytes))
		if hashedBody != req.Hash {
			log.Error().Str("func", "*Server.batchHashing").
				Str("hash from request", req.Hash).
				Str("hashed body", hashedBody).
				Msg("hashes are not equal")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter decorates http.ResponseWriter to capture the status code
// and body size for the request log. WriteHeader is forwarded once; a Write
// without an explicit WriteHeader records the implicit 200.
type responseWriter struct {
	http.ResponseWriter

	status      int
	size        int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader = true
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}
