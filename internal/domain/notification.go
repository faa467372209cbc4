package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind enumerates partner notification types.
type NotificationKind string

const (
	NotificationLevelChanged     NotificationKind = "level_changed"
	NotificationPaymentCompleted NotificationKind = "payment_completed"
)

// Notification is a message shown in the partner portal.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	PartnerID uuid.UUID        `json:"partner_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
