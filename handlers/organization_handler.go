package handlers

import (
	"net/http"

	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/services/organizations"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// OrganizationHandler handles organization and department HTTP requests
type OrganizationHandler struct {
	orgs   *organizations.Service
	logger *zap.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgs *organizations.Service, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgs:   orgs,
		logger: logger,
	}
}

// HandleList handles GET /organizations
func (h *OrganizationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	list, err := h.orgs.List(r.Context(), scope)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Organization{}
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /organizations/{id}
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization id", nil)
		return
	}

	org, err := h.orgs.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, org)
}

// OrganizationRequest is the body of POST /organizations and PUT /organizations/{id}
type OrganizationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Slug string `json:"slug" validate:"required,min=1,max=100"`
}

// HandleCreate handles POST /organizations
func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req OrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	org, err := h.orgs.Create(r.Context(), scope, organizations.Input{Name: req.Name, Slug: req.Slug})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, org)
}

// HandleUpdate handles PUT /organizations/{id}
func (h *OrganizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization id", nil)
		return
	}

	var req OrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	org, err := h.orgs.Update(r.Context(), scope, id, organizations.Input{Name: req.Name, Slug: req.Slug})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, org)
}

// HandleDelete handles DELETE /organizations/{id}
func (h *OrganizationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization id", nil)
		return
	}

	if err := h.orgs.Delete(r.Context(), scope, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// DepartmentRequest is the body of POST /organizations/{id}/departments
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// HandleCreateDepartment handles POST /organizations/{id}/departments
func (h *OrganizationHandler) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	orgID, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization id", nil)
		return
	}

	var req DepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	dept, err := h.orgs.CreateDepartment(r.Context(), scope, orgID, req.Name)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, dept)
}

// HandleListDepartments handles GET /organizations/{id}/departments
func (h *OrganizationHandler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	orgID, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid organization id", nil)
		return
	}

	list, err := h.orgs.ListDepartments(r.Context(), scope, orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Department{}
	}

	_ = utils.WriteOK(w, list)
}

// HandleDeleteDepartment handles DELETE /departments/{id}
func (h *OrganizationHandler) HandleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid department id", nil)
		return
	}

	if err := h.orgs.DeleteDepartment(r.Context(), scope, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
