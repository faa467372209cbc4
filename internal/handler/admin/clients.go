package admin

import (
	"net/http"
	"strings"

	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/handler"
	"github.com/partnerdesk/platform/internal/service"
)

// ClientAdminHandler handles admin client and payment endpoints.
type ClientAdminHandler struct {
	clients  *service.ClientService
	payments *service.PaymentService
}

// NewClientAdminHandler creates a new ClientAdminHandler.
func NewClientAdminHandler(clients *service.ClientService, payments *service.PaymentService) *ClientAdminHandler {
	return &ClientAdminHandler{clients: clients, payments: payments}
}

// GetClient handles GET /admin/clients/{id}.
func (h *ClientAdminHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, c)
}

// RecordPayment handles POST /admin/clients/{id}/payments. An Idempotency-Key
// header makes retries safe: the original payment is returned with 200.
func (h *ClientAdminHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input service.RecordPaymentInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}
	input.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.payments.Record(r.Context(), id, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	handler.RespondJSON(w, status, res)
}

// UpdatePaymentStatus handles PATCH /admin/payments/{id}/status.
func (h *ClientAdminHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLParamUUID(r, "id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	var input struct {
		Status domain.PaymentStatus `json:"status"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondInvalidBody(w)
		return
	}
	if !input.Status.Valid() {
		handler.RespondError(w, domain.ErrValidation("unknown status: "+string(input.Status)))
		return
	}

	res, err := h.payments.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, res)
}
