package handler

import (
	"net/http"

	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/service"
)

const defaultNotificationLimit = 50

// PartnerHandler serves the partner portal. Every route runs behind
// auth.AuthenticatePartner, which puts the partner on the context.
type PartnerHandler struct {
	clients       *service.ClientService
	levels        *service.LevelService
	dashboard     *service.DashboardService
	notifications *service.NotificationService
}

// NewPartnerHandler creates a new PartnerHandler.
func NewPartnerHandler(clients *service.ClientService, levels *service.LevelService, dashboard *service.DashboardService, notifications *service.NotificationService) *PartnerHandler {
	return &PartnerHandler{clients: clients, levels: levels, dashboard: dashboard, notifications: notifications}
}

func currentPartner(w http.ResponseWriter, r *http.Request) *domain.Partner {
	p := auth.PartnerFromContext(r.Context())
	if p == nil {
		RespondError(w, domain.ErrUnauthorized("no partner context"))
	}
	return p
}

// GetMe handles GET /partner/me.
func (h *PartnerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// GetDashboard handles GET /partner/me/dashboard.
func (h *PartnerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	dash, err := h.dashboard.PartnerStats(r.Context(), p.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, dash)
}

// ListClients handles GET /partner/me/clients.
func (h *PartnerHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	clients, err := h.clients.ListByPartner(r.Context(), p.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, clients)
}

// GetLevel handles GET /partner/me/level.
func (h *PartnerHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	summary, err := h.levels.Compute(r.Context(), p.ID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, summary)
}

// ListNotifications handles GET /partner/me/notifications?unread=true&limit=N.
func (h *PartnerHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	limit, err := QueryInt(r, "limit", defaultNotificationLimit)
	if err != nil {
		RespondError(w, err)
		return
	}
	unread := r.URL.Query().Get("unread") == "true"

	items, err := h.notifications.List(r.Context(), p.ID, unread, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	RespondJSON(w, http.StatusOK, items)
}

// MarkNotificationRead handles POST /partner/me/notifications/{id}/read.
func (h *PartnerHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	p := currentPartner(w, r)
	if p == nil {
		return
	}
	id, err := URLParamUUID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), p.ID, id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
