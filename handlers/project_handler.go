package handlers

import (
	"net/http"
	"time"

	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/services/projects"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projects *projects.Service
	logger   *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *projects.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger,
	}
}

// ProjectCapabilities echoes what the actor may do with projects, so clients
// can hide controls. Hiding is cosmetic; the server re-checks every mutation.
type ProjectCapabilities struct {
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// ProjectListResponse is the body of GET /projects
type ProjectListResponse struct {
	Projects []*models.Project   `json:"projects"`
	Can      ProjectCapabilities `json:"can"`
}

func projectCapabilities(scope rbac.Scope) ProjectCapabilities {
	return ProjectCapabilities{
		Create: scope.CanCreateProject(),
		Edit:   scope.CanEditProject(),
		Delete: scope.CanDeleteProject(),
	}
}

// HandleList handles GET /projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	list, err := h.projects.List(r.Context(), scope)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Project{}
	}

	_ = utils.WriteOK(w, ProjectListResponse{
		Projects: list,
		Can:      projectCapabilities(scope),
	})
}

// HandleGet handles GET /projects/{id}
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	project, err := h.projects.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, project)
}

// ProjectRequest is the body of POST /projects and PUT /projects/{id}
type ProjectRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=4000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (req ProjectRequest) toInput() projects.Input {
	return projects.Input{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
}

// HandleCreate handles POST /projects
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	project, err := h.projects.Create(r.Context(), scope, req.toInput())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, project)
}

// HandleUpdate handles PUT /projects/{id}
func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	project, err := h.projects.Update(r.Context(), scope, id, req.toInput())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, project)
}

// HandleDelete handles DELETE /projects/{id}
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	if err := h.projects.Delete(r.Context(), scope, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
