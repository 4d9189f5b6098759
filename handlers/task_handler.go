package handlers

import (
	"net/http"

	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/services/tasks"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	tasks  *tasks.Service
	logger *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks *tasks.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// HandleListByProject handles GET /projects/{id}/tasks. Archived tasks are
// omitted unless include_archived=true is passed.
func (h *TaskHandler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	projectID, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"

	list, err := h.tasks.ListByProject(r.Context(), scope, projectID, includeArchived)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Task{}
	}

	_ = utils.WriteOK(w, list)
}

// TaskRequest is the body of POST /projects/{id}/tasks and PUT /tasks/{id}
type TaskRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

// HandleCreate handles POST /projects/{id}/tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	projectID, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid project id", nil)
		return
	}

	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	task, err := h.tasks.Create(r.Context(), scope, projectID, tasks.Input{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, task)
}

// HandleGet handles GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid task id", nil)
		return
	}

	task, err := h.tasks.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, task)
}

// HandleUpdate handles PUT /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid task id", nil)
		return
	}

	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	task, err := h.tasks.Update(r.Context(), scope, id, tasks.Input{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, task)
}

// TaskStatusRequest is the body of PUT /tasks/{id}/status
type TaskStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleSetStatus handles PUT /tasks/{id}/status
func (h *TaskHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid task id", nil)
		return
	}

	var req TaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	task, err := h.tasks.SetStatus(r.Context(), scope, id, models.TaskStatus(req.Status))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, task)
}
