package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/infra"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/partnerdesk/platform/internal/projection"
	"github.com/partnerdesk/platform/internal/repository"
)

// LevelService derives partner tiers from stored rosters and keeps the
// persisted tier in step with them.
type LevelService struct {
	st       Stores
	tiers    policy.TierTable
	cache    projection.Store
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewLevelService creates a LevelService. cache may be nil to disable caching.
func NewLevelService(st Stores, tiers policy.TierTable, cache projection.Store, cacheTTL time.Duration, logger *slog.Logger) *LevelService {
	return &LevelService{
		st:       st,
		tiers:    tiers,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Tiers returns the configured tier table.
func (s *LevelService) Tiers() policy.TierTable { return s.tiers }

// Compute returns the partner's current level without persisting anything.
// Results are cached until the next refresh or the cache TTL.
func (s *LevelService) Compute(ctx context.Context, partnerID uuid.UUID) (*domain.LevelSummary, error) {
	if s.cache != nil {
		cached, err := projection.GetLevel(ctx, s.cache, partnerID.String())
		if err != nil {
			s.logger.Warn("level cache read failed", "partner_id", partnerID, "error", err)
		} else if cached != nil {
			infra.LevelCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		infra.LevelCacheLookups.WithLabelValues("miss").Inc()
	}

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

	summary := s.summarize(partner, clients)
	if s.cache != nil {
		if err := projection.PutLevel(ctx, s.cache, summary, s.cacheTTL); err != nil {
			s.logger.Warn("level cache write failed", "partner_id", partnerID, "error", err)
		}
	}
	return &summary, nil
}

func (s *LevelService) summarize(partner *domain.Partner, clients []domain.Client) domain.LevelSummary {
	level := policy.EvaluatePartner(s.tiers, clients)
	return domain.LevelSummary{
		PartnerID:  partner.ID.String(),
		Level:      level,
		Progress:   policy.TierProgressFor(s.tiers, level.QualifyingClientCount),
		StoredTier: partner.Level,
		ComputedAt: s.now().UTC(),
	}
}

// Refresh recomputes the partner's tier and persists it when it moved.
func (s *LevelService) Refresh(ctx context.Context, partnerID uuid.UUID) (*domain.LevelChange, error) {
	var change *domain.LevelChange
	err := s.st.Tx.WithinTx(ctx, func(tx repository.DBTX) error {
		var err error
		change, err = s.refreshTx(ctx, tx, partnerID)
		return err
	})
	if err != nil {
		infra.LevelRefreshTotal.WithLabelValues("error").Inc()
		return nil, asAppError("refresh level", err)
	}
	s.afterRefresh(ctx, change)
	return change, nil
}

// refreshTx runs inside the caller's transaction. The partner row is locked
// first so concurrent refreshes of one partner serialise and the persisted
// tier always matches the last roster read.
func (s *LevelService) refreshTx(ctx context.Context, tx repository.DBTX, partnerID uuid.UUID) (*domain.LevelChange, error) {
	partner, err := s.st.Partners.LockForUpdate(ctx, tx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, domain.ErrNotFound("partner", partnerID.String())
	}

	clients, err := s.st.Clients.ListWithPayments(ctx, tx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	level := policy.EvaluatePartner(s.tiers, clients)
	change := &domain.LevelChange{
		PartnerID:    partnerID.String(),
		PreviousTier: partner.Level,
		Level:        level,
		Changed:      partner.Level != level.Tier,
	}
	infra.QualifyingClients.Observe(float64(level.QualifyingClientCount))
	if !change.Changed {
		return change, nil
	}

	change.Direction = policy.CompareTiers(s.tiers, partner.Level, level.Tier)
	if err := s.st.Partners.UpdateLevel(ctx, tx, partnerID, level.Tier); err != nil {
		return nil, err
	}
	if err := s.st.Outbox.Insert(ctx, tx, domain.NewPartnerLevelChangedEvent(*change)); err != nil {
		return nil, err
	}
	if err := s.st.Notifications.Create(ctx, tx, levelNotification(partnerID, *change, s.now())); err != nil {
		return nil, err
	}
	return change, nil
}

// afterRefresh runs once the refresh transaction has committed.
func (s *LevelService) afterRefresh(ctx context.Context, change *domain.LevelChange) {
	outcome := "unchanged"
	if change.Changed {
		outcome = change.Direction
		if outcome == "" {
			outcome = "reset"
		}
		s.logger.Info("partner level changed",
			"partner_id", change.PartnerID,
			"from", change.PreviousTier,
			"to", change.Level.Tier,
			"direction", change.Direction,
			"qualifying_clients", change.Level.QualifyingClientCount,
		)
	}
	infra.LevelRefreshTotal.WithLabelValues(outcome).Inc()

	if s.cache != nil {
		if err := projection.InvalidateLevel(ctx, s.cache, change.PartnerID); err != nil {
			s.logger.Warn("level cache invalidation failed", "partner_id", change.PartnerID, "error", err)
		}
	}
}

// RefreshReport summarises a RefreshAll run.
type RefreshReport struct {
	Checked  int                  `json:"checked"`
	Changed  []domain.LevelChange `json:"changed"`
	Failures map[string]string    `json:"failures,omitempty"`
}

// RefreshAll refreshes every active partner. A failure for one partner is
// recorded and the walk continues.
func (s *LevelService) RefreshAll(ctx context.Context) (*RefreshReport, error) {
	ids, err := s.st.Partners.ListIDsByStatus(ctx, s.st.Tx.Conn(), domain.PartnerStatusActive)
	if err != nil {
		return nil, domain.ErrInternal("list active partners", err)
	}

	report := &RefreshReport{Changed: []domain.LevelChange{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		change, err := s.Refresh(ctx, id)
		if err != nil {
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[id.String()] = err.Error()
			s.logger.Error("level refresh failed", "partner_id", id, "error", err)
			continue
		}
		if change.Changed {
			report.Changed = append(report.Changed, *change)
		}
	}
	return report, nil
}

func levelNotification(partnerID uuid.UUID, change domain.LevelChange, now time.Time) *domain.Notification {
	title := "Your partner level changed"
	switch change.Direction {
	case "up":
		title = "You reached a new partner level"
	case "down":
		title = "Your partner level was lowered"
	}
	return &domain.Notification{
		ID:        uuid.New(),
		PartnerID: partnerID,
		Kind:      domain.NotificationLevelChanged,
		Title:     title,
		Message: fmt.Sprintf("Your level is now %s (was %s) with %d qualifying clients.",
			change.Level.Tier, change.PreviousTier, change.Level.QualifyingClientCount),
		CreatedAt: now.UTC(),
	}
}
