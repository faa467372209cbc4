package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "partner@example.com", false, ""},
		{"valid email with plus", "partner+eu@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "partnerexample.com", true, "invalid email format"},
		{"no tld", "partner@example", true, "invalid email format"},
		{"spaces", "partner @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePayment(t *testing.T) {
	valid := Payment{Amount: 10_000, CommissionAmount: 1_000, Currency: "EUR", Status: PaymentStatusCompleted}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidatePayment(valid))
	})

	t.Run("zero amounts are allowed", func(t *testing.T) {
		p := valid
		p.Amount, p.CommissionAmount = 0, 0
		require.NoError(t, ValidatePayment(p))
	})

	t.Run("negative amount", func(t *testing.T) {
		p := valid
		p.Amount = -1
		err := ValidatePayment(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount must not be negative")
	})

	t.Run("negative commission", func(t *testing.T) {
		p := valid
		p.CommissionAmount = -5
		err := ValidatePayment(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commission_amount")
	})

	t.Run("unknown status", func(t *testing.T) {
		p := valid
		p.Status = "refunded"
		err := ValidatePayment(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown payment status")
	})

	t.Run("bad currency", func(t *testing.T) {
		p := valid
		p.Currency = "eur"
		assert.Error(t, ValidatePayment(p))
	})
}

func TestStatusValid(t *testing.T) {
	assert.True(t, PaymentStatusPending.Valid())
	assert.True(t, PaymentStatusCompleted.Valid())
	assert.True(t, PaymentStatusCancelled.Valid())
	assert.False(t, PaymentStatus("failed").Valid())

	assert.True(t, PartnerStatusActive.Valid())
	assert.False(t, PartnerStatus("deleted").Valid())
}

func TestClientHasCompletedPayment(t *testing.T) {
	assert.False(t, Client{}.HasCompletedPayment())
	assert.False(t, Client{Payments: []Payment{{Status: PaymentStatusPending}}}.HasCompletedPayment())
	assert.True(t, Client{Payments: []Payment{
		{Status: PaymentStatusCancelled},
		{Status: PaymentStatusCompleted},
	}}.HasCompletedPayment())
}

// --- AppError Tests ---

func TestAppError(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrInternal("load snapshot", cause)

	assert.Equal(t, 500, err.Status)
	assert.Equal(t, "INTERNAL_ERROR: load snapshot: connection reset", err.Error())
	assert.True(t, errors.Is(err, cause))

	nf := ErrNotFound("partner", "abc")
	assert.Equal(t, 404, nf.Status)
	assert.Equal(t, "NOT_FOUND: partner abc not found", nf.Error())

	assert.Equal(t, 429, ErrRateLimited("slow down").Status)
	assert.Equal(t, 409, ErrDuplicateRequest("k1").Status)
}

// --- Event Tests ---

func TestNewPartnerLevelChangedEvent(t *testing.T) {
	partnerID := uuid.New()
	change := LevelChange{
		PartnerID:    partnerID.String(),
		PreviousTier: "bronze",
		Level:        PartnerLevel{Tier: "silver", QualifyingClientCount: 5, TotalCommission: 12_500},
		Changed:      true,
		Direction:    "up",
	}

	draft := NewPartnerLevelChangedEvent(change)
	assert.Equal(t, AggregatePartner, draft.AggregateType)
	assert.Equal(t, EventPartnerLevelChanged, draft.EventType)
	assert.Equal(t, partnerID.String(), draft.AggregateID)
	assert.Equal(t, partnerID.String(), draft.PartitionKey)
	assert.NotEqual(t, uuid.Nil, draft.EventID)
	assert.False(t, draft.OccurredAt.IsZero())

	var payload LevelChange
	require.NoError(t, json.Unmarshal(draft.Payload, &payload))
	assert.Equal(t, "silver", payload.Level.Tier)
	assert.Equal(t, "up", payload.Direction)
}

func TestNewPaymentRecordedEvent_PartitionedByPartner(t *testing.T) {
	partnerID := uuid.New()
	p := &Payment{ID: uuid.New(), ClientID: uuid.New(), Amount: 500, CommissionAmount: 50, Currency: "EUR", Status: PaymentStatusPending}

	draft := NewPaymentRecordedEvent(partnerID, p)
	assert.Equal(t, AggregatePayment, draft.AggregateType)
	assert.Equal(t, p.ID.String(), draft.AggregateID)
	assert.Equal(t, partnerID.String(), draft.PartitionKey)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(draft.Payload, &payload))
	assert.Equal(t, "pending", payload["status"])
	assert.EqualValues(t, 50, payload["commission_amount"])
}
