package handlers

import (
	"net/http"

	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/services/users"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// UserHandler handles user account HTTP requests
type UserHandler struct {
	users  *users.Service
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *users.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	list, err := h.users.List(r.Context(), scope)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user id", nil)
		return
	}

	user, err := h.users.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

// HandleCreate handles POST /users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
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

	user, err := h.users.Create(r.Context(), scope, req.Email, role)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, user)
}

// ChangeRoleRequest is the body of PUT /users/{id}/role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandleChangeRole handles PUT /users/{id}/role. An unknown role tag is
// rejected before any write; the stored role is unchanged on failure.
func (h *UserHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user id", nil)
		return
	}

	var req ChangeRoleRequest
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

	user, err := h.users.ChangeRole(r.Context(), scope, id, role)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// SetActiveRequest is the body of PUT /users/{id}/active
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// HandleSetActive handles PUT /users/{id}/active
func (h *UserHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user id", nil)
		return
	}

	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Active == nil {
		_ = utils.WriteBadRequest(w, "active is required", nil)
		return
	}

	if err := h.users.SetActive(r.Context(), scope, id, *req.Active); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
