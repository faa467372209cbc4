package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventPartnerCreated       EventType = "partner.created"
	EventPartnerStatusChanged EventType = "partner.status.changed"
	EventPartnerLevelChanged  EventType = "partner.level.changed"
	EventPaymentRecorded      EventType = "partner.payment.recorded"
	EventPaymentStatusChanged EventType = "partner.payment.status.changed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregatePartner AggregateType = "partner"
	AggregatePayment AggregateType = "payment"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// OutboxRow is an unpublished outbox entry together with its sequence id.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}

func newDraft(aggType AggregateType, aggID string, evtType EventType, partitionKey string, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggType,
		AggregateID:   aggID,
		EventType:     evtType,
		PartitionKey:  partitionKey,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewPartnerCreatedEvent creates a partner lifecycle event.
func NewPartnerCreatedEvent(p *Partner) OutboxDraft {
	return newDraft(AggregatePartner, p.ID.String(), EventPartnerCreated, p.ID.String(), map[string]string{
		"partner_id":    p.ID.String(),
		"email":         p.Email,
		"referral_code": p.ReferralCode,
		"level":         p.Level,
	})
}

// NewPartnerStatusChangedEvent records an admin status change.
func NewPartnerStatusChangedEvent(partnerID uuid.UUID, from, to PartnerStatus) OutboxDraft {
	return newDraft(AggregatePartner, partnerID.String(), EventPartnerStatusChanged, partnerID.String(), map[string]string{
		"partner_id": partnerID.String(),
		"from":       string(from),
		"to":         string(to),
	})
}

// NewPartnerLevelChangedEvent is emitted when a refresh persists a different tier.
func NewPartnerLevelChangedEvent(change LevelChange) OutboxDraft {
	return newDraft(AggregatePartner, change.PartnerID, EventPartnerLevelChanged, change.PartnerID, change)
}

// NewPaymentRecordedEvent is emitted for every new payment, keyed by partner so
// consumers see a partner's payments in order.
func NewPaymentRecordedEvent(partnerID uuid.UUID, p *Payment) OutboxDraft {
	return newDraft(AggregatePayment, p.ID.String(), EventPaymentRecorded, partnerID.String(), map[string]interface{}{
		"partner_id":        partnerID.String(),
		"client_id":         p.ClientID.String(),
		"payment_id":        p.ID.String(),
		"amount":            p.Amount,
		"commission_amount": p.CommissionAmount,
		"currency":          p.Currency,
		"status":            p.Status,
	})
}

// NewPaymentStatusChangedEvent records a payment status transition.
func NewPaymentStatusChangedEvent(partnerID uuid.UUID, paymentID uuid.UUID, from, to PaymentStatus) OutboxDraft {
	return newDraft(AggregatePayment, paymentID.String(), EventPaymentStatusChanged, partnerID.String(), map[string]string{
		"partner_id": partnerID.String(),
		"payment_id": paymentID.String(),
		"from":       string(from),
		"to":         string(to),
	})
}
