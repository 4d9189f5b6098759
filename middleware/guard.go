package middleware

import (
	"context"
	"net/http"

	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// Gate names which check decided a guard outcome, for the audit trail.
const (
	GateAuth       = "auth"
	GateRole       = "role"
	GatePermission = "permission"
)

// GuardSpec declares the checks a guarded route requires. Role and permission
// gates compose as a logical AND: a request must clear every declared check.
type GuardSpec struct {
	// RequiredRoles, when non-empty, is an allow-list the effective role
	// must be a member of.
	RequiredRoles []rbac.Role

	// BlockRoles, when non-empty, is a deny-list evaluated before the
	// allow-list; membership fails the role gate regardless of other checks.
	BlockRoles []rbac.Role

	// RequiredPermissions, when non-empty, must all be granted by the
	// effective role's permission set (any one suffices when AnyPermission).
	RequiredPermissions []rbac.Capability

	// AnyPermission switches the permission gate from all-of to any-of.
	AnyPermission bool
}

// DenialRecorder receives authorization denials for the audit trail.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, scope rbac.Scope, operation, gate string)
}

// Guard wraps a route with the authorization gates declared in spec,
// evaluated after RequireAuth in a fixed order: authentication, role,
// permission, short-circuiting on the first failure. A denied request is
// rendered as not-found so a disallowed role cannot probe for the existence
// of restricted resources.
func (m *AuthMiddleware) Guard(spec GuardSpec, recorder DenialRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			scope, ok := GetScopeFromContext(ctx)
			if !ok {
				// No resolved actor: fail closed, never assume a role.
				m.logger.Warn("guard reached without authenticated scope",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path))
				recordAuthzDecision(GateAuth, false)
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			role := scope.EffectiveRole()

			if role.HasAnyRole(spec.BlockRoles...) || (len(spec.RequiredRoles) > 0 && !role.HasAnyRole(spec.RequiredRoles...)) {
				m.deny(ctx, w, r, scope, recorder, GateRole)
				return
			}

			if len(spec.RequiredPermissions) > 0 {
				perms := scope.Permissions()
				allowed := perms.HasAll(spec.RequiredPermissions...)
				if spec.AnyPermission {
					allowed = perms.HasAny(spec.RequiredPermissions...)
				}
				if !allowed {
					m.deny(ctx, w, r, scope, recorder, GatePermission)
					return
				}
			}

			recordAuthzDecision("allowed", true)
			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) deny(ctx context.Context, w http.ResponseWriter, r *http.Request, scope rbac.Scope, recorder DenialRecorder, gate string) {
	operation := r.Method + " " + r.URL.Path
	m.logger.Warn("access denied",
		zap.String("request_id", GetRequestIDFromContext(ctx)),
		zap.String("actor_id", scope.UserID.String()),
		zap.String("actor_role", string(scope.EffectiveRole())),
		zap.String("operation", operation),
		zap.String("deciding_gate", gate))
	if recorder != nil {
		recorder.RecordDenial(ctx, scope, operation, gate)
	}
	recordAuthzDecision(gate, false)
	_ = utils.WriteNotFound(w, "")
}
