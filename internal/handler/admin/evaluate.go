package admin

import (
	"net/http"

	"github.com/partnerdesk/platform/internal/handler"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/partnerdesk/platform/internal/upstream"
)

// EvaluateHandler runs the metrics engine over a posted snapshot without
// touching storage.
type EvaluateHandler struct {
	tiers policy.TierTable
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(tiers policy.TierTable) *EvaluateHandler {
	return &EvaluateHandler{tiers: tiers}
}

// Evaluate handles POST /admin/evaluate.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var snap upstream.Snapshot
	if err := handler.DecodeJSON(r, &snap); err != nil {
		handler.RespondInvalidBody(w)
		return
	}
	eval, err := service.Evaluate(h.tiers, &snap)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, eval)
}

// ListTiers handles GET /admin/tiers.
func (h *EvaluateHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	handler.RespondJSON(w, http.StatusOK, h.tiers.Tiers())
}
