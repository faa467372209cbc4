package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is an end customer referred by a partner.
type Client struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Payments may be nil; nil is the same as no payments.
	Payments []Payment `json:"payments"`
}

// HasCompletedPayment reports whether at least one payment is completed.
func (c Client) HasCompletedPayment() bool {
	for _, p := range c.Payments {
		if p.Status == PaymentStatusCompleted {
			return true
		}
	}
	return false
}
