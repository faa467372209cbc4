package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/partnerdesk/platform/internal/repository"
)

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PartnerService manages partner accounts.
type PartnerService struct {
	st          Stores
	tiers       policy.TierTable
	newReferral func() string
	logger      *slog.Logger
}

// NewPartnerService creates a PartnerService. New partners start at the
// table's base tier.
func NewPartnerService(st Stores, tiers policy.TierTable, logger *slog.Logger) (*PartnerService, error) {
	gen, err := nanoid.CustomASCII(referralAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("referral code generator: %w", err)
	}
	return &PartnerService{st: st, tiers: tiers, newReferral: gen, logger: logger}, nil
}

// CreatePartnerInput holds the fields an admin supplies for a new partner.
type CreatePartnerInput struct {
	Email   string               `json:"email"`
	Name    string               `json:"name"`
	Company string               `json:"company,omitempty"`
	Phone   string               `json:"phone,omitempty"`
	Status  domain.PartnerStatus `json:"status,omitempty"`
}

// UpdatePartnerInput holds editable profile fields; nil fields are left unchanged.
type UpdatePartnerInput struct {
	Email   *string `json:"email,omitempty"`
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// Create registers a partner and emits partner.created.
func (s *PartnerService) Create(ctx context.Context, input CreatePartnerInput) (*domain.Partner, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	status := input.Status
	if status == "" {
		status = domain.PartnerStatusPending
	}
	if !status.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown partner status %q", status))
	}

	existing, err := s.st.Partners.FindByEmail(ctx, s.st.Tx.Conn(), email)
	if err != nil {
		return nil, domain.ErrInternal("find partner by email", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("a partner with this email already exists")
	}

	now := time.Now().UTC()
	p := &domain.Partner{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		Company:      strings.TrimSpace(input.Company),
		Phone:        strings.TrimSpace(input.Phone),
		Status:       status,
		Level:        s.tiers.Base().Name,
		ReferralCode: s.newReferral(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		if err := s.st.Partners.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.st.Outbox.Insert(ctx, tx, domain.NewPartnerCreatedEvent(p))
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("a partner with this email already exists")
		}
		return nil, domain.ErrInternal("create partner", err)
	}

	s.logger.Info("partner created", "partner_id", p.ID, "referral_code", p.ReferralCode)
	return p, nil
}

// Get returns a partner or a NOT_FOUND error.
func (s *PartnerService) Get(ctx context.Context, id uuid.UUID) (*domain.Partner, error) {
	p, err := s.st.Partners.FindByID(ctx, s.st.Tx.Conn(), id)
	if err != nil {
		return nil, domain.ErrInternal("find partner", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("partner", id.String())
	}
	return p, nil
}

// List returns partners matching the filter.
func (s *PartnerService) List(ctx context.Context, filter domain.PartnerFilter) ([]domain.Partner, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown partner status %q", *filter.Status))
	}
	if filter.Level != "" && s.tiers.Rank(filter.Level) < 0 {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown tier %q", filter.Level))
	}
	partners, err := s.st.Partners.List(ctx, s.st.Tx.Conn(), filter)
	if err != nil {
		return nil, domain.ErrInternal("list partners", err)
	}
	return partners, nil
}

// Update changes profile fields.
func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, input UpdatePartnerInput) (*domain.Partner, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := domain.ValidateEmail(email); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		p.Email = email
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrValidation("name must not be empty")
		}
		p.Name = name
	}
	if input.Company != nil {
		p.Company = strings.TrimSpace(*input.Company)
	}
	if input.Phone != nil {
		p.Phone = strings.TrimSpace(*input.Phone)
	}

	updated, err := s.st.Partners.Update(ctx, s.st.Tx.Conn(), p)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrConflict("a partner with this email already exists")
		}
		return nil, domain.ErrInternal("update partner", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("partner", id.String())
	}
	return updated, nil
}

// UpdateStatus moves a partner between pending, active and suspended.
func (s *PartnerService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PartnerStatus) (*domain.Partner, error) {
	if !status.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("unknown partner status %q", status))
	}

	var out *domain.Partner
	err := s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		p, err := s.st.Partners.LockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound("partner", id.String())
		}
		out = p
		if p.Status == status {
			return nil
		}
		if err := s.st.Partners.UpdateStatus(ctx, tx, id, status); err != nil {
			return err
		}
		if err := s.st.Outbox.Insert(ctx, tx, domain.NewPartnerStatusChangedEvent(id, p.Status, status)); err != nil {
			return err
		}
		s.logger.Info("partner status changed", "partner_id", id, "from", p.Status, "to", status)
		out.Status = status
		return nil
	})
	if err != nil {
		return nil, asAppError("update partner status", err)
	}
	return out, nil
}
