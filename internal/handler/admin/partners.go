package admin

import (
	"net/http"

	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/guard"
	"github.com/partnerdesk/platform/internal/handler"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/partnerdesk/platform/internal/upstream"
)

const defaultPartnerLimit = 100

// PartnerAdminHandler handles admin partner management.
type PartnerAdminHandler struct {
	partners  *service.PartnerService
	clients   *service.ClientService
	levels    *service.LevelService
	dashboard *service.DashboardService
	refreshRL *guard.RateLimiter
}

// NewPartnerAdminHandler creates a new PartnerAdminHandler. refreshRL bounds
// manual level refreshes per partner.
func NewPartnerAdminHandler(partners *service.PartnerService, clients *service.ClientService, levels *service.LevelService, dashboard *service.DashboardService, refreshRL *guard.RateLimiter) *PartnerAdminHandler {
	return &PartnerAdminHandler{
		partners:  partners,
		clients:   clients,
		levels:    levels,
		dashboard: dashboard,
		refreshRL: refreshRL,
	}
}

// ListPartners handles GET /admin/partners?status=active&level=gold&limit=N.
func (h *PartnerAdminHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	limit, err := handler.QueryInt(r, "limit", defaultPartnerLimit)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	filter := domain.PartnerFilter{Level: r.URL.Query().Get("level"), Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.PartnerStatus(raw)
		if !status.Valid() {
			handler.RespondError(w, domain.ErrValidation("unknown status: "+raw))
			return
		}
		filter.Status = &status
	}

	partners, err := h.partners.List(r.Context(), filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if partners == nil {
		partners = []domain.Partner{}
	}
	handler.RespondJSON(w, http.StatusOK, partners)
}

// CreatePartner handles POST /admin/partners.
func (h *PartnerAdminHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var input service.CreatePartnerInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}

	p, err := h.partners.Create(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, p)
}

// GetPartner handles GET /admin/partners/{id}.
func (h *PartnerAdminHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	p, err := h.partners.Get(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}

// UpdatePartner handles PATCH /admin/partners/{id}.
func (h *PartnerAdminHandler) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input service.UpdatePartnerInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}

	p, err := h.partners.Update(r.Context(), id, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}

// UpdatePartnerStatus handles PATCH /admin/partners/{id}/status.
func (h *PartnerAdminHandler) UpdatePartnerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Status domain.PartnerStatus `json:"status"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}
	if !input.Status.Valid() {
		handler.RespondError(w, domain.ErrValidation("unknown status: "+string(input.Status)))
		return
	}

	p, err := h.partners.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, p)
}

// GetLevel handles GET /admin/partners/{id}/level.
func (h *PartnerAdminHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	summary, err := h.levels.Compute(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, summary)
}

// RefreshLevel handles POST /admin/partners/{id}/level/refresh.
func (h *PartnerAdminHandler) RefreshLevel(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if res := h.refreshRL.Check(r.Context(), id.String()); !res.Allowed {
		handler.RespondError(w, domain.ErrRateLimited(res.Reason))
		return
	}

	change, err := h.levels.Refresh(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, change)
}

// GetDashboard handles GET /admin/partners/{id}/dashboard.
func (h *PartnerAdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	dash, err := h.dashboard.PartnerStats(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, dash)
}

// ListClients handles GET /admin/partners/{id}/clients.
func (h *PartnerAdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	clients, err := h.clients.ListByPartner(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	handler.RespondJSON(w, http.StatusOK, clients)
}

// CreateClient handles POST /admin/partners/{id}/clients.
func (h *PartnerAdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input service.CreateClientInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}

	c, err := h.clients.Create(r.Context(), id, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, c)
}

// ImportClients handles POST /admin/partners/{id}/import with an upstream
// snapshot body.
func (h *PartnerAdminHandler) ImportClients(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var snap upstream.Snapshot
	if err := handler.DecodeJSON(r, &snap); err != nil {
		handler.RespondInvalidBody(w)
		return
	}

	res, err := h.clients.ImportSnapshot(r.Context(), id, &snap)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, res)
}
