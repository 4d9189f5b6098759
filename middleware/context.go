package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/timetrackerpro/backend/rbac"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ScopeKey is the context key for the resolved actor scope
	ScopeKey contextKey = "actor_scope"
)

// GetRequestIDFromContext retrieves the request ID assigned by the router
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithScope adds the resolved actor scope to the context
func WithScope(ctx context.Context, scope rbac.Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// GetScopeFromContext retrieves the actor scope from context. The boolean is
// false when no authenticated scope has been resolved; callers must treat
// that as unauthenticated, never as any default role.
func GetScopeFromContext(ctx context.Context) (rbac.Scope, bool) {
	if val := ctx.Value(ScopeKey); val != nil {
		if scope, ok := val.(rbac.Scope); ok {
			return scope, true
		}
	}
	return rbac.Scope{}, false
}
