package handlers

import (
	"net/http"
	"time"

	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/services/sessions"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// AuthHandler handles login, logout, identity, and impersonation requests
type AuthHandler struct {
	sessions *sessions.Service
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions *sessions.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SessionResponse carries a session token plus the resolved identity
type SessionResponse struct {
	Token       string             `json:"token"`
	User        *models.User       `json:"user"`
	Role        rbac.Role          `json:"role"`
	ActingRole  rbac.Role          `json:"acting_role,omitempty"`
	Permissions rbac.PermissionSet `json:"permissions"`
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	requestID := middleware.GetRequestIDFromContext(r.Context())
	session, err := h.sessions.Login(r.Context(), req.Email, requestID, clientIP(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	setSessionCookie(w, session.Token)
	_ = utils.WriteOK(w, SessionResponse{
		Token:       session.Token,
		User:        session.User,
		Role:        session.User.Role,
		Permissions: rbac.PermissionsFor(session.User.Role),
	})
}

// HandleLogout handles POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	requestID := middleware.GetRequestIDFromContext(r.Context())
	h.sessions.Logout(r.Context(), scope, requestID, clientIP(r))

	clearSessionCookie(w)
	utils.WriteNoContent(w)
}

// MeResponse is the body of GET /auth/me
type MeResponse struct {
	User        *models.User       `json:"user"`
	Role        rbac.Role          `json:"role"`
	ActingRole  rbac.Role          `json:"acting_role,omitempty"`
	Permissions rbac.PermissionSet `json:"permissions"`
}

// HandleMe handles GET /auth/me. The permission set echoes the effective
// role, so an admin acting as viewer sees the viewer's capabilities.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	user, perms, err := h.sessions.Me(r.Context(), scope)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, MeResponse{
		User:        user,
		Role:        scope.EffectiveRole(),
		ActingRole:  scope.ActingRole,
		Permissions: perms,
	})
}

// ActAsRequest is the body of POST /auth/act-as
type ActAsRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandleActAs handles POST /auth/act-as. Issues a session whose effective
// role is the requested one; the caller's persisted role never changes, and a
// fresh login (or HandleLogin) returns to full admin capability.
func (h *AuthHandler) HandleActAs(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req ActAsRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	role, known := rbac.ParseRole(req.Role)
	if !known {
		_ = utils.WriteBadRequest(w, "Unknown role", map[string]interface{}{"role": req.Role})
		return
	}

	session, err := h.sessions.ActAs(r.Context(), scope, role)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	setSessionCookie(w, session.Token)
	_ = utils.WriteOK(w, SessionResponse{
		Token:       session.Token,
		User:        session.User,
		Role:        session.User.Role,
		ActingRole:  role,
		Permissions: rbac.PermissionsFor(role),
	})
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
