package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks the payment lifecycle. Only completed payments count
// toward partner metrics.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusCancelled:
		return true
	}
	return false
}

// Payment represents a payments table row. Amounts are in minor units (cents).
type Payment struct {
	ID               uuid.UUID     `json:"id"`
	ClientID         uuid.UUID     `json:"client_id"`
	Amount           int64         `json:"amount"`
	CommissionAmount int64         `json:"commission_amount"`
	Currency         string        `json:"currency"`
	Status           PaymentStatus `json:"status"`
	IdempotencyKey   *string       `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
