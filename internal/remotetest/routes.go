// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package remotetest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router assembles the chi mux serving the remote store API. Mount it on an
// httptest.Server in tests or on a plain http.Server for local development.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.withTraceID)
	router.Use(s.withLogging)

	// health endpoint without auth: the prober must reach it before the
	// client holds a token
	router.Get("/api/ping", s.ping)

	router.Group(func(r chi.Router) {
		r.Use(s.auth)
		r.Use(s.faults)

		r.Post("/api/records/query", s.query)
		r.With(s.batchHashing).Post("/api/records/batch", s.batch)
		r.With(s.writeHashing).Post("/api/records/write", s.write)
	})

	router.MethodNotAllowed(checkHTTPMethod(router))

	return router
}

// checkHTTPMethod overrides chi's default 405 with a 404 when the matched
// route does not register the requested method, so probing with the wrong
// verb does not reveal which paths exist.
func checkHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var found chi.Route
		for _, route := range router.Routes() {
			if route.Pattern == r.URL.Path {
				found = route
				break
			}
		}

		if _, ok := found.Handlers[r.Method]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		router.ServeHTTP(w, r)
	}
}
