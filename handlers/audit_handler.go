package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	audits *audit.AuditService
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audits *audit.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		audits: audits,
		logger: logger,
	}
}

// HandleList handles GET /audit-logs, optionally filtered by actor_id
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)

	var (
		list []*models.AuditLog
		err  error
	)
	if v := r.URL.Query().Get("actor_id"); v != "" {
		actorID, parseErr := uuid.Parse(v)
		if parseErr != nil {
			_ = utils.WriteBadRequest(w, "Invalid actor_id format", nil)
			return
		}
		list, err = h.audits.ListByActor(r.Context(), scope, actorID, limit, offset)
	} else {
		list, err = h.audits.List(r.Context(), scope, limit, offset)
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.AuditLog{}
	}

	_ = utils.WriteOK(w, list)
}

// HandleGet handles GET /audit-logs/{id}
func (h *AuditHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid audit log id", nil)
		return
	}

	log, err := h.audits.Get(r.Context(), scope, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, log)
}
