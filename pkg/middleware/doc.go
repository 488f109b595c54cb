// Package middleware provides HTTP middleware for authentication and
// rate limiting.
//
// The auth middleware resolves bearer tokens to identity sessions and
// places the session on the request context; handlers that need the
// signed-in caller read it back with GetSession. In optional mode,
// anonymous requests pass through without a session, which the intake
// wizard and pricing endpoints rely on.
package middleware
