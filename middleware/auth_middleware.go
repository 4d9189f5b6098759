package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/auth"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating session tokens
type TokenValidator interface {
	// ValidateToken validates a session token and returns its claims
	ValidateToken(ctx context.Context, token string) (*auth.SessionClaims, error)
}

// ActorSource loads the current identity record backing a session. The role
// returned here is the persisted one, read fresh on every request: a role
// change must be observable on the next request, so nothing about the actor
// is cached across requests.
type ActorSource interface {
	// LoadActor returns the user's current role/active flag and the
	// department of the linked employee profile (empty when unlinked).
	LoadActor(ctx context.Context, userID uuid.UUID) (ActorRecord, error)
}

// ActorRecord is the snapshot of actor state an authorization decision uses.
type ActorRecord struct {
	UserID         uuid.UUID
	Email          string
	Role           string
	IsActive       bool
	Department     string
	OrganizationID uuid.UUID
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	actors    ActorSource
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, actors ActorSource, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		actors:    actors,
		logger:    logger,
	}
}

// sessionCookieName is the cookie set at login (Authorization header takes precedence)
const sessionCookieName = "session"

// RequireAuth authenticates the request and resolves the actor scope.
// The scope is computed fresh from the persisted user record, so permission
// checks never run against a stale or partially-loaded actor state.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		actor, err := m.actors.LoadActor(ctx, claims.UserID)
		if err != nil {
			m.logger.Warn("actor lookup failed",
				zap.String("request_id", requestID),
				zap.String("user_id", claims.UserID.String()),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}
		if !actor.IsActive {
			m.logger.Warn("inactive account rejected",
				zap.String("request_id", requestID),
				zap.String("user_id", actor.UserID.String()))
			_ = utils.WriteUnauthorized(w, "Account is deactivated")
			return
		}

		role, known := rbac.ParseRole(actor.Role)
		if !known {
			// Fail closed to employee capabilities; the stored value is an anomaly.
			m.logger.Error("unrecognized role on user record, treating as employee",
				zap.String("request_id", requestID),
				zap.String("user_id", actor.UserID.String()),
				zap.String("stored_role", actor.Role))
		}

		scope := rbac.Scope{
			UserID:         actor.UserID,
			Email:          actor.Email,
			Role:           role,
			Department:     actor.Department,
			OrganizationID: actor.OrganizationID,
		}
		// Impersonation claim only applies while the real role is still admin.
		if claims.ActingRole != "" {
			scope = scope.ActAs(claims.ActingRole)
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", actor.UserID.String()),
			zap.String("role", string(scope.EffectiveRole())))

		next.ServeHTTP(w, r.WithContext(WithScope(ctx, scope)))
	})
}

// extractToken extracts the session token from the Authorization header
// ("Bearer TOKEN") or the session cookie. The header takes precedence.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
