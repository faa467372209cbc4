package admin

import (
	"net/http"

	"github.com/partnerdesk/platform/internal/handler"
	"github.com/partnerdesk/platform/internal/service"
)

// ReportsHandler handles admin report generation.
type ReportsHandler struct {
	dashboard *service.DashboardService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(dashboard *service.DashboardService) *ReportsHandler {
	return &ReportsHandler{dashboard: dashboard}
}

// GetOverview handles GET /admin/reports/overview.
func (h *ReportsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, overview)
}
