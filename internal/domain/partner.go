package domain

import (
	"time"

	"github.com/google/uuid"
)

// PartnerStatus tracks the partner account lifecycle.
type PartnerStatus string

const (
	PartnerStatusPending   PartnerStatus = "pending"
	PartnerStatusActive    PartnerStatus = "active"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

// Valid reports whether s is a known partner status.
func (s PartnerStatus) Valid() bool {
	switch s {
	case PartnerStatusPending, PartnerStatusActive, PartnerStatusSuspended:
		return true
	}
	return false
}

// Partner is an account that refers clients and earns commission.
type Partner struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Company      string        `json:"company,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Status       PartnerStatus `json:"status"`
	Level        string        `json:"level"` // last persisted tier name
	ReferralCode string        `json:"referral_code"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PartnerFilter narrows partner listings.
type PartnerFilter struct {
	Status *PartnerStatus
	Level  string
	Limit  int
}
