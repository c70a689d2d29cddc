// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package client

import "errors"

// Sentinel errors returned by the facade. Callers should use [errors.Is] to
// match against these values.
var (
	// ErrInvalidKey is returned by Read when the key is neither
	// "collection:id" nor "collection?{query}".
	ErrInvalidKey = errors.New("invalid read key")

	// ErrNotRunning is returned by queue operations before Run has opened
	// the local store and built the sync coordinator.
	ErrNotRunning = errors.New("app is not running")

	// ErrAlreadyRunning is returned by Run when the app has already been
	// started. The app runs once; build a fresh one to restart.
	ErrAlreadyRunning = errors.New("app is already running")

	// ErrClosed is returned by Run after Close.
	ErrClosed = errors.New("app is closed")
)
