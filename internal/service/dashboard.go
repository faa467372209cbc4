package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/policy"
)

// DashboardService builds the partner dashboard and the admin overview.
type DashboardService struct {
	st     Stores
	tiers  policy.TierTable
	logger *slog.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(st Stores, tiers policy.TierTable, logger *slog.Logger) *DashboardService {
	return &DashboardService{st: st, tiers: tiers, logger: logger}
}

// PartnerStats aggregates a partner's roster into dashboard figures. Level and
// progress are computed from the same roster read, so they always agree with
// the stats.
func (s *DashboardService) PartnerStats(ctx context.Context, partnerID uuid.UUID) (*domain.PartnerDashboard, error) {
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
		return nil, domain.ErrInternal("load roster", err)
	}

	level := policy.EvaluatePartner(s.tiers, clients)
	return &domain.PartnerDashboard{
		Partner:  partner,
		Stats:    policy.SummarizeClients(clients),
		Level:    level,
		Progress: policy.TierProgressFor(s.tiers, level.QualifyingClientCount),
	}, nil
}

// Overview returns platform-wide totals for the admin reports page.
// PartnersByTier reflects persisted tiers; every configured tier is listed,
// with zero when no partner holds it.
func (s *DashboardService) Overview(ctx context.Context) (*domain.Overview, error) {
	db := s.st.Tx.Conn()

	byStatus, err := s.st.Partners.CountByStatus(ctx, db)
	if err != nil {
		return nil, domain.ErrInternal("count partners by status", err)
	}
	byLevel, err := s.st.Partners.CountByLevel(ctx, db)
	if err != nil {
		return nil, domain.ErrInternal("count partners by level", err)
	}
	clients, err := s.st.Clients.Count(ctx, db)
	if err != nil {
		return nil, domain.ErrInternal("count clients", err)
	}
	commission, pending, err := s.st.Payments.Totals(ctx, db)
	if err != nil {
		return nil, domain.ErrInternal("payment totals", err)
	}

	for _, st := range []domain.PartnerStatus{domain.PartnerStatusPending, domain.PartnerStatusActive, domain.PartnerStatusSuspended} {
		if _, ok := byStatus[string(st)]; !ok {
			byStatus[string(st)] = 0
		}
	}
	for _, tier := range s.tiers.Tiers() {
		if _, ok := byLevel[tier.Name]; !ok {
			byLevel[tier.Name] = 0
		}
	}

	return &domain.Overview{
		PartnersByStatus: byStatus,
		PartnersByTier:   byLevel,
		TotalClients:     clients,
		TotalCommission:  commission,
		PendingPayments:  pending,
	}, nil
}
