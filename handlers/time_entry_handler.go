package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services/timeentries"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// TimeEntryHandler handles time entry HTTP requests
type TimeEntryHandler struct {
	entries *timeentries.Service
	logger  *zap.Logger
}

// NewTimeEntryHandler creates a new TimeEntryHandler
func NewTimeEntryHandler(entries *timeentries.Service, logger *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		entries: entries,
		logger:  logger,
	}
}

const dateLayout = "2006-01-02"

// HandleList handles GET /time-entries. Filters narrow within the actor's
// visible set; an employee filtering on another user's id simply gets nothing.
func (h *TimeEntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	filter := repositories.TimeEntryFilter{}
	filter.Limit, filter.Offset = pagination(r)

	q := r.URL.Query()
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid user_id format", nil)
			return
		}
		filter.UserID = &id
	}
	if v := q.Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid project_id format", nil)
			return
		}
		filter.ProjectID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid from date, expected YYYY-MM-DD", nil)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid to date, expected YYYY-MM-DD", nil)
			return
		}
		filter.To = &t
	}

	list, err := h.entries.List(r.Context(), scope, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.TimeEntry{}
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /time-entries/{id}
func (h *TimeEntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid time entry id", nil)
		return
	}

	entry, err := h.entries.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, entry)
}

// TimeEntryRequest is the body of POST /time-entries and PUT /time-entries/{id}.
// No duration field: the server derives duration from the clock times.
type TimeEntryRequest struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	ProjectID   uuid.UUID  `json:"project_id" validate:"required"`
	TaskID      uuid.UUID  `json:"task_id" validate:"required"`
	Date        string     `json:"date" validate:"required"`
	StartTime   string     `json:"start_time" validate:"required"`
	EndTime     string     `json:"end_time" validate:"required"`
	Description string     `json:"description" validate:"max=4000"`
}

func (req TimeEntryRequest) parse() (time.Time, error) {
	if err := utils.ValidateClock(req.StartTime); err != nil {
		return time.Time{}, err
	}
	if err := utils.ValidateClock(req.EndTime); err != nil {
		return time.Time{}, err
	}
	return time.Parse(dateLayout, req.Date)
}

// HandleCreate handles POST /time-entries
func (h *TimeEntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	var req TimeEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	date, err := req.parse()
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	input := timeentries.CreateInput{
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	}
	if req.UserID != nil {
		input.UserID = *req.UserID
	}

	entry, err := h.entries.Create(r.Context(), scope, input)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, entry)
}

// HandleUpdate handles PUT /time-entries/{id}
func (h *TimeEntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid time entry id", nil)
		return
	}

	var req TimeEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	date, err := req.parse()
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	entry, err := h.entries.Update(r.Context(), scope, id, timeentries.UpdateInput{
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, entry)
}

// HandleDelete handles DELETE /time-entries/{id}
func (h *TimeEntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid time entry id", nil)
		return
	}

	if err := h.entries.Delete(r.Context(), scope, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
