package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/guard"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/repository"
	"github.com/shopspring/decimal"
)

// PaymentService records client payments and keeps the owning partner's
// level current.
type PaymentService struct {
	st          Stores
	levels      *LevelService
	idempotency *guard.IdempotencyGuard
	logger      *slog.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(st Stores, levels *LevelService, idempotency *guard.IdempotencyGuard, logger *slog.Logger) *PaymentService {
	return &PaymentService{st: st, levels: levels, idempotency: idempotency, logger: logger}
}

// RecordPaymentInput holds a new payment. Amounts are minor units.
type RecordPaymentInput struct {
	Amount           int64                `json:"amount"`
	CommissionAmount int64                `json:"commission_amount"`
	Currency         string               `json:"currency"`
	Status           domain.PaymentStatus `json:"status"`
	IdempotencyKey   string               `json:"-"`
}

// PaymentResult is returned by every payment write.
type PaymentResult struct {
	Payment  *domain.Payment     `json:"payment"`
	Level    *domain.LevelChange `json:"level,omitempty"`
	Replayed bool                `json:"replayed,omitempty"`
}

// allowedTransitions lists the status moves an admin may make.
var allowedTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentStatusPending:   {domain.PaymentStatusCompleted, domain.PaymentStatusCancelled},
	domain.PaymentStatusCompleted: {domain.PaymentStatusCancelled},
}

// Record stores a payment for a client and refreshes the partner's level in
// the same transaction. A repeated idempotency key returns the original
// payment instead of recording a second one.
func (s *PaymentService) Record(ctx context.Context, clientID uuid.UUID, input RecordPaymentInput) (*PaymentResult, error) {
	p := domain.Payment{
		ID:               uuid.New(),
		ClientID:         clientID,
		Amount:           input.Amount,
		CommissionAmount: input.CommissionAmount,
		Currency:         strings.ToUpper(strings.TrimSpace(input.Currency)),
		Status:           input.Status,
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Status == "" {
		p.Status = domain.PaymentStatusPending
	}
	if err := domain.ValidatePayment(p); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		if verdict := s.idempotency.Check(ctx, key); !verdict.Allowed {
			return nil, domain.ErrDuplicateRequest(key)
		}
		defer s.idempotency.Release(key)

		if replay, err := s.replay(ctx, clientID, key); err != nil || replay != nil {
			return replay, err
		}
		p.IdempotencyKey = &key
	}

	db := s.st.Tx.Conn()
	client, err := s.st.Clients.FindByID(ctx, db, clientID)
	if err != nil {
		return nil, domain.ErrInternal("find client", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound("client", clientID.String())
	}

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	var change *domain.LevelChange
	err = s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.st.Payments.Create(ctx, tx, &p); err != nil {
			return err
		}
		if err := s.st.Outbox.Insert(ctx, tx, domain.NewPaymentRecordedEvent(client.PartnerID, &p)); err != nil {
			return err
		}
		if p.Status == domain.PaymentStatusCompleted {
			if err := s.st.Notifications.Create(ctx, tx, paymentNotification(client, &p, now)); err != nil {
				return err
			}
		}
		var refreshErr error
		change, refreshErr = s.levels.refreshTx(ctx, tx, client.PartnerID)
		return refreshErr
	})
	if err != nil {
		// Another instance may have committed the same key first.
		if key != "" && repository.IsUniqueViolation(err) {
			if replay, rerr := s.replay(ctx, clientID, key); rerr != nil || replay != nil {
				return replay, rerr
			}
		}
		return nil, asAppError("record payment", err)
	}

	s.levels.afterRefresh(ctx, change)
	infra.PaymentsRecorded.WithLabelValues(string(p.Status)).Inc()
	s.logger.Info("payment recorded",
		"payment_id", p.ID,
		"client_id", clientID,
		"partner_id", client.PartnerID,
		"status", p.Status,
		"amount", p.Amount,
	)
	return &PaymentResult{Payment: &p, Level: change}, nil
}

func (s *PaymentService) replay(ctx context.Context, clientID uuid.UUID, key string) (*PaymentResult, error) {
	existing, err := s.st.Payments.FindByIdempotencyKey(ctx, s.st.Tx.Conn(), key)
	if err != nil {
		return nil, domain.ErrInternal("find payment by idempotency key", err)
	}
	if existing == nil {
		return nil, nil
	}
	if existing.ClientID != clientID {
		return nil, domain.ErrConflict("idempotency key was used for a different client")
	}
	return &PaymentResult{Payment: existing, Replayed: true}, nil
}

// UpdateStatus moves a payment to a new status and refreshes the partner's
// level. Setting the current status again is a no-op.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) (*PaymentResult, error) {
	if !status.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown payment status %q", status))
	}

	var (
		out    *domain.Payment
		change *domain.LevelChange
	)
	err := s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		p, err := s.st.Payments.LockForUpdate(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound("payment", paymentID.String())
		}
		out = p
		if p.Status == status {
			return nil
		}
		if !transitionAllowed(p.Status, status) {
			return domain.ErrConflict(fmt.Sprintf("payment cannot move from %s to %s", p.Status, status))
		}

		client, err := s.st.Clients.FindByID(ctx, tx, p.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrNotFound("client", p.ClientID.String())
		}

		if err := s.st.Payments.UpdateStatus(ctx, tx, paymentID, status); err != nil {
			return err
		}
		if err := s.st.Outbox.Insert(ctx, tx, domain.NewPaymentStatusChangedEvent(client.PartnerID, paymentID, p.Status, status)); err != nil {
			return err
		}
		now := time.Now().UTC()
		if status == domain.PaymentStatusCompleted {
			if err := s.st.Notifications.Create(ctx, tx, paymentNotification(client, p, now)); err != nil {
				return err
			}
		}
		out.Status = status
		out.UpdatedAt = now

		change, err = s.levels.refreshTx(ctx, tx, client.PartnerID)
		return err
	})
	if err != nil {
		return nil, asAppError("update payment status", err)
	}

	if change != nil {
		s.levels.afterRefresh(ctx, change)
	}
	return &PaymentResult{Payment: out, Level: change}, nil
}

func transitionAllowed(from, to domain.PaymentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func paymentNotification(client *domain.Client, p *domain.Payment, now time.Time) *domain.Notification {
	return &domain.Notification{
		ID:        uuid.New(),
		PartnerID: client.PartnerID,
		Kind:      domain.NotificationPaymentCompleted,
		Title:     "Payment completed",
		Message: fmt.Sprintf("%s completed a payment of %s %s; your commission is %s %s.",
			client.Name, formatMinor(p.Amount), p.Currency, formatMinor(p.CommissionAmount), p.Currency),
		CreatedAt: now,
	}
}

// formatMinor renders minor units as a major-unit amount with two decimals.
func formatMinor(v int64) string {
	return decimal.New(v, -2).StringFixed(2)
}
