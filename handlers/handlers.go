package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/utils"
)

// decodeJSON decodes a request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// scopeFromRequest pulls the resolved actor scope out of the request context.
// Handlers sit behind RequireAuth, so a missing scope is a wiring error and is
// answered with 401, never a default role.
func scopeFromRequest(w http.ResponseWriter, r *http.Request) (rbac.Scope, bool) {
	scope, ok := middleware.GetScopeFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return rbac.Scope{}, false
	}
	return scope, true
}

// pathUUID parses a UUID path parameter
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// pagination parses limit/offset query parameters with sane defaults
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// clientIP extracts the remote address the router resolved (RealIP middleware
// has already folded in X-Forwarded-For where trusted).
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
