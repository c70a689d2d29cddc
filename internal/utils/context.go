// Package utils provides general-purpose helper utilities
// used across different parts of the sync core.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, and other
// common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TraceIDCtxKey is the key used to store the request trace identifier in the
// context. The adapter forwards the stored value as the X-Trace-ID header so
// log entries on both sides of the wire can be correlated.
//
// Example of writing a value to the context:
//
//	ctx := utils.SetTraceID(ctx, uuid.NewString())
var TraceIDCtxKey = contextKey("traceID")

// SetTraceID returns a child context carrying traceID under TraceIDCtxKey.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDCtxKey, traceID)
}

// GetTraceIDFromContext retrieves the trace identifier from the context.
//
// Returns the trace ID and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
//
// Example usage:
//
//	traceID, ok := utils.GetTraceIDFromContext(ctx)
//	if !ok {
//	    // request carries no trace ID
//	}
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
