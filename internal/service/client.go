package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/repository"
	"github.com/partnerdesk/platform/internal/upstream"
)

const defaultCurrency = "EUR"

// ClientService manages partner rosters.
type ClientService struct {
	st     Stores
	levels *LevelService
	logger *slog.Logger
}

// NewClientService creates a ClientService.
func NewClientService(st Stores, levels *LevelService, logger *slog.Logger) *ClientService {
	return &ClientService{st: st, levels: levels, logger: logger}
}

// CreateClientInput holds the fields for a new client.
type CreateClientInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Create adds a client to a partner's roster. A client without payments does
// not change the partner's level, so no refresh runs here.
func (s *ClientService) Create(ctx context.Context, partnerID uuid.UUID, input CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if err := domain.ValidateEmail(email); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}

	db := s.st.Tx.Conn()
	partner, err := s.st.Partners.FindByID(ctx, db, partnerID)
	if err != nil {
		return nil, domain.ErrInternal("find partner", err)
	}
	if partner == nil {
		return nil, domain.ErrNotFound("partner", partnerID.String())
	}

	c := &domain.Client{
		ID:        uuid.New(),
		PartnerID: partnerID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: time.Now().UTC(),
		Payments:  []domain.Payment{},
	}
	if err := s.st.Clients.Create(ctx, db, c); err != nil {
		return nil, domain.ErrInternal("create client", err)
	}
	return c, nil
}

// Get returns a client with its payments.
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	db := s.st.Tx.Conn()
	c, err := s.st.Clients.FindByID(ctx, db, id)
	if err != nil {
		return nil, domain.ErrInternal("find client", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("client", id.String())
	}
	c.Payments, err = s.st.Payments.ListByClient(ctx, db, id)
	if err != nil {
		return nil, domain.ErrInternal("list payments", err)
	}
	return c, nil
}

// ListByPartner returns the partner's roster with payments.
func (s *ClientService) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Client, error) {
	db := s.st.Tx.Conn()
	partner, err := s.st.Partners.FindByID(ctx, db, partnerID)
	if err != nil {
		return nil, domain.ErrInternal("find partner", err)
	}
	if partner == nil {
		return nil, domain.ErrNotFound("partner", partnerID.String())
	}
	clients, err := s.st.Clients.ListWithPayments(ctx, db, partnerID)
	if err != nil {
		return nil, domain.ErrInternal("list clients", err)
	}
	return clients, nil
}

// ImportResult reports what an import wrote. KeptStatus lists payments whose
// stored status was kept because the export asked for a transition that
// UpdateStatus would refuse.
type ImportResult struct {
	Clients    int                 `json:"clients"`
	Payments   int                 `json:"payments"`
	Unchanged  int                 `json:"unchanged_payments"`
	KeptStatus []string            `json:"kept_status,omitempty"`
	Level      *domain.LevelChange `json:"level"`
}

// Import upserts a normalised roster for a partner and refreshes the level in
// the same transaction. Ids are stable across exports, so importing the same
// snapshot twice writes no payment rows the second time. Status changes follow
// the same transitions as UpdateStatus and emit the same event and
// notification; a disallowed one keeps the stored status.
func (s *ClientService) Import(ctx context.Context, partnerID uuid.UUID, clients []domain.Client) (*ImportResult, error) {
	for _, c := range clients {
		if c.PartnerID != uuid.Nil && c.PartnerID != partnerID {
			return nil, domain.ErrValidation(fmt.Sprintf("client %s belongs to another partner", c.ID))
		}
	}

	result := &ImportResult{}
	now := time.Now().UTC()
	err := s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		for _, c := range clients {
			c.PartnerID = partnerID
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if c.Name == "" {
				c.Name = c.ID.String()
			}
			ok, err := s.st.Clients.Upsert(ctx, tx, &c)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrConflict(fmt.Sprintf("client %s belongs to another partner", c.ID))
			}
			result.Clients++

			for _, p := range c.Payments {
				p.ClientID = c.ID
				if p.Currency == "" {
					p.Currency = defaultCurrency
				}
				if p.CreatedAt.IsZero() {
					p.CreatedAt = now
				}
				p.UpdatedAt = now
				if err := domain.ValidatePayment(p); err != nil {
					return domain.ErrValidation(fmt.Sprintf("payment %s: %v", p.ID, err))
				}
				existing, err := s.st.Payments.LockForUpdate(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				var moved bool
				if existing != nil {
					if existing.ClientID != c.ID {
						return domain.ErrConflict(fmt.Sprintf("payment %s belongs to another client", p.ID))
					}
					if existing.Status != p.Status {
						if transitionAllowed(existing.Status, p.Status) {
							moved = true
						} else {
							s.logger.Warn("import kept stored payment status",
								"payment_id", p.ID,
								"stored", existing.Status,
								"imported", p.Status,
							)
							result.KeptStatus = append(result.KeptStatus, p.ID.String())
							p.Status = existing.Status
						}
					}
				}

				written, err := s.st.Payments.Upsert(ctx, tx, &p)
				if err != nil {
					return err
				}
				result.Payments++
				if !written {
					result.Unchanged++
					continue
				}
				if !moved {
					continue
				}
				if err := s.st.Outbox.Insert(ctx, tx, domain.NewPaymentStatusChangedEvent(partnerID, p.ID, existing.Status, p.Status)); err != nil {
					return err
				}
				if p.Status == domain.PaymentStatusCompleted {
					if err := s.st.Notifications.Create(ctx, tx, paymentNotification(&c, &p, now)); err != nil {
						return err
					}
				}
			}
		}

		change, err := s.levels.refreshTx(ctx, tx, partnerID)
		if err != nil {
			return err
		}
		result.Level = change
		return nil
	})
	if err != nil {
		return nil, asAppError("import roster", err)
	}

	s.levels.afterRefresh(ctx, result.Level)
	s.logger.Info("roster imported",
		"partner_id", partnerID,
		"clients", result.Clients,
		"payments", result.Payments,
		"tier", result.Level.Level.Tier,
	)
	return result, nil
}

// ImportSnapshot normalises an upstream snapshot and imports it for partnerID.
// A snapshot that names a different partner is rejected.
func (s *ClientService) ImportSnapshot(ctx context.Context, partnerID uuid.UUID, snap *upstream.Snapshot) (*ImportResult, error) {
	if owner := snap.ResolvedPartnerID(); owner != uuid.Nil && owner != partnerID {
		return nil, domain.ErrValidation(fmt.Sprintf("snapshot belongs to partner %s", owner))
	}
	clients, err := upstream.NormalizeClients(snap.Clients)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return s.Import(ctx, partnerID, clients)
}
