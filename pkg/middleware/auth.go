package middleware

import (
	"context"
	"net/http"

	"github.com/pixelforge/studio/pkg/contextkeys"
	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/identity"
)

// SessionResolver maps a bearer token to an identity session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Session, error)
}

// AuthMiddleware resolves bearer tokens into identity sessions.
type AuthMiddleware struct {
	resolver SessionResolver
	optional bool // allow anonymous requests through
}

// NewAuthMiddleware creates an authentication middleware. With optional
// set, requests without a valid token proceed anonymously.
func NewAuthMiddleware(resolver SessionResolver, optional bool) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, optional: optional}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := httputil.BearerToken(r)
		if token == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		session, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextkeys.SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession returns the identity session on the request, or nil for
// anonymous requests.
func GetSession(r *http.Request) *identity.Session {
	if s, ok := r.Context().Value(contextkeys.SessionKey).(*identity.Session); ok {
		return s
	}
	return nil
}
