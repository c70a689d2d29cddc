// Package server runs the dev remote's HTTP transport.
//
// It owns the server lifecycle: startup, stop-signal handling, and graceful
// shutdown. The handler comes from the caller, so the same lifecycle hosts
// the record API and, when enabled, the metrics endpoint.
package server
