// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here to prevent
// typos and to make key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// SessionKey contains *identity.Session.
	// Set by: middleware.Auth (pkg/middleware/auth.go)
	// Required by: dashboard and other identity-scoped endpoints
	SessionKey Key = "identity_session"

	// RequestIDKey contains the request ID string (UUID).
	// Set by: HTTP middleware
	// Used by: request logging
	RequestIDKey Key = "request_id"
)

// WithRequestID stores a request id on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID retrieves the request id, or "" when unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}
