package handlers

import (
	"net/http"

	"github.com/timetrackerpro/backend/services/dashboard"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboard *dashboard.Service
	logger    *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard *dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// HandleStats handles GET /dashboard. The numbers cover exactly the records
// the actor's list endpoints return, whatever the effective role.
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), scope)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, stats)
}
