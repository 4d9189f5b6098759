package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/services/employees"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// EmployeeHandler handles employee profile HTTP requests
type EmployeeHandler struct {
	employees *employees.Service
	logger    *zap.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employees *employees.Service, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		logger:    logger,
	}
}

// HandleList handles GET /employees, with an optional department filter
func (h *EmployeeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var (
		list []*models.Employee
		err  error
	)
	if dept := r.URL.Query().Get("department"); dept != "" {
		list, err = h.employees.ListByDepartment(r.Context(), scope, dept)
	} else {
		list, err = h.employees.List(r.Context(), scope)
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Employee{}
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /employees/{id}
func (h *EmployeeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid employee id", nil)
		return
	}

	employee, err := h.employees.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, employee)
}

// EmployeeRequest is the body of POST /employees and PUT /employees/{id}
type EmployeeRequest struct {
	FirstName  string     `json:"first_name" validate:"required,min=1,max=255"`
	LastName   string     `json:"last_name" validate:"required,min=1,max=255"`
	Email      string     `json:"email" validate:"required,email"`
	Department string     `json:"department" validate:"max=255"`
	Position   string     `json:"position" validate:"max=255"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

func (req EmployeeRequest) toInput() employees.Input {
	return employees.Input{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
		HireDate:   req.HireDate,
	}
}

// HandleCreate handles POST /employees
func (h *EmployeeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	employee, err := h.employees.Create(r.Context(), scope, req.toInput())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, employee)
}

// HandleUpdate handles PUT /employees/{id}
func (h *EmployeeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid employee id", nil)
		return
	}

	var req EmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	employee, err := h.employees.Update(r.Context(), scope, id, req.toInput())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, employee)
}

// LinkUserRequest is the body of PUT /employees/{id}/user
type LinkUserRequest struct {
	UserID *uuid.UUID `json:"user_id"`
}

// HandleLinkUser handles PUT /employees/{id}/user. A null user_id clears
// the link.
func (h *EmployeeHandler) HandleLinkUser(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid employee id", nil)
		return
	}

	var req LinkUserRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.employees.LinkUser(r.Context(), scope, id, req.UserID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleDelete handles DELETE /employees/{id}
func (h *EmployeeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid employee id", nil)
		return
	}

	if err := h.employees.Delete(r.Context(), scope, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
