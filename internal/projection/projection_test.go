package projection

import (
	"context"
	"testing"
	"time"

	"github.com/partnerdesk/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SetAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	err := store.Set(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)
}

func TestInMemoryStore_KeyNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), 0)
	_ = store.Delete(ctx, "k1")

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Set(ctx, "k1", []byte("data"), time.Minute)
	_, err := store.Get(ctx, "k1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLevelProjection_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	summary := domain.LevelSummary{
		PartnerID: "p-1",
		Level: domain.PartnerLevel{
			Tier:                  "silver",
			QualifyingClientCount: 5,
			TotalCommission:       12_500,
		},
		Progress:   domain.TierProgress{CurrentTier: "silver", NextTier: "gold", NextThreshold: 10, ClientsNeeded: 5},
		StoredTier: "bronze",
		ComputedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, PutLevel(ctx, store, summary, time.Minute))

	got, err := GetLevel(ctx, store, "p-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, summary, *got)
}

func TestLevelProjection_MissIsNil(t *testing.T) {
	got, err := GetLevel(context.Background(), NewInMemoryStore(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLevelProjection_Invalidate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_ = PutLevel(ctx, store, domain.LevelSummary{PartnerID: "p-1"}, 0)
	require.NoError(t, InvalidateLevel(ctx, store, "p-1"))

	got, err := GetLevel(ctx, store, "p-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
