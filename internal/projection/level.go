package projection

import (
	"context"
	"errors"
	"time"

	"github.com/partnerdesk/platform/internal/domain"
)

func levelKey(partnerID string) string {
	return "projection:level:" + partnerID
}

// PutLevel caches a computed level summary.
func PutLevel(ctx context.Context, store Store, s domain.LevelSummary, ttl time.Duration) error {
	return SetJSON(ctx, store, levelKey(s.PartnerID), s, ttl)
}

// GetLevel returns the cached summary for a partner. A miss is reported as
// (nil, nil); other errors come from the store.
func GetLevel(ctx context.Context, store Store, partnerID string) (*domain.LevelSummary, error) {
	var s domain.LevelSummary
	if err := GetJSON(ctx, store, levelKey(partnerID), &s); err != nil {
		if errors.Is(err, ErrMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// InvalidateLevel removes a partner's cached summary.
func InvalidateLevel(ctx context.Context, store Store, partnerID string) error {
	return store.Delete(ctx, levelKey(partnerID))
}
