// Package auth provides the admin authentication context, token issuing and
// verification, and password hashing.
//
// Token and context handling are pure. Password hashing is CPU-bound but has
// no I/O.
package auth

import (
	"context"
	"strings"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context represents the authentication context of a request.
type Context struct {
	// AdminID is the authenticated admin's ID (token subject).
	AdminID string

	// Email, Name and Role are copied from the token claims.
	Email string
	Name  string
	Role  string

	// Authenticated indicates whether the request carried a valid token.
	Authenticated bool
}

// =============================================================================
// Header Parsing
// =============================================================================

// HeaderGetter is an interface for getting header values.
// This allows testing without requiring an http.Request.
type HeaderGetter interface {
	Get(key string) string
}

// MapHeaderGetter is a HeaderGetter backed by a map, used in tests.
type MapHeaderGetter map[string]string

// Get returns the value stored under key.
func (m MapHeaderGetter) Get(key string) string {
	return m[key]
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func BearerToken(headers HeaderGetter) string {
	value := strings.TrimSpace(headers.Get("Authorization"))
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Context{Authenticated: false}
}
