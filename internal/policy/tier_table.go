package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/partnerdesk/platform/internal/domain"
)

// TierTable is a validated, ascending list of tier thresholds. The first tier
// always starts at zero so every non-negative count maps to a tier.
type TierTable struct {
	tiers []domain.Tier
}

// NewTierTable sorts a copy of tiers by threshold and validates it: at least
// one tier, unique non-empty names, strictly increasing thresholds, and a base
// tier at zero.
func NewTierTable(tiers []domain.Tier) (TierTable, error) {
	if len(tiers) == 0 {
		return TierTable{}, fmt.Errorf("tier table is empty")
	}

	sorted := make([]domain.Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinClients < sorted[j].MinClients })

	seen := make(map[string]bool, len(sorted))
	for i, t := range sorted {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return TierTable{}, fmt.Errorf("tier %d has an empty name", i)
		}
		if seen[name] {
			return TierTable{}, fmt.Errorf("duplicate tier name %q", name)
		}
		seen[name] = true
		sorted[i].Name = name

		if t.MinClients < 0 {
			return TierTable{}, fmt.Errorf("tier %q has negative threshold %d", name, t.MinClients)
		}
		if i > 0 && t.MinClients == sorted[i-1].MinClients {
			return TierTable{}, fmt.Errorf("tiers %q and %q share threshold %d", sorted[i-1].Name, name, t.MinClients)
		}
	}
	if sorted[0].MinClients != 0 {
		return TierTable{}, fmt.Errorf("lowest tier %q starts at %d, want 0", sorted[0].Name, sorted[0].MinClients)
	}

	return TierTable{tiers: sorted}, nil
}

// MustTierTable is NewTierTable for fixtures; it panics on an invalid table.
func MustTierTable(tiers ...domain.Tier) TierTable {
	t, err := NewTierTable(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTierSpec parses the compact "name:min,name:min" form used by the
// PARTNER_TIERS variable.
func ParseTierSpec(spec string) (TierTable, error) {
	var tiers []domain.Tier
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, minStr, ok := strings.Cut(part, ":")
		if !ok {
			return TierTable{}, fmt.Errorf("tier %q: want name:min_clients", part)
		}
		min, err := strconv.Atoi(strings.TrimSpace(minStr))
		if err != nil {
			return TierTable{}, fmt.Errorf("tier %q: parse threshold: %w", part, err)
		}
		tiers = append(tiers, domain.Tier{Name: name, MinClients: min})
	}
	return NewTierTable(tiers)
}

// Tiers returns a copy of the table in ascending order.
func (t TierTable) Tiers() []domain.Tier {
	out := make([]domain.Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Len returns the number of tiers.
func (t TierTable) Len() int { return len(t.tiers) }

// Base returns the lowest tier, or the zero Tier for an empty table.
func (t TierTable) Base() domain.Tier {
	if len(t.tiers) == 0 {
		return domain.Tier{}
	}
	return t.tiers[0]
}

// Rank returns the position of the named tier, or -1 if unknown.
func (t TierTable) Rank(name string) int {
	for i, tier := range t.tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// String renders the table in ParseTierSpec form.
func (t TierTable) String() string {
	parts := make([]string, len(t.tiers))
	for i, tier := range t.tiers {
		parts[i] = fmt.Sprintf("%s:%d", tier.Name, tier.MinClients)
	}
	return strings.Join(parts, ",")
}

// indexFor returns the index of the highest tier whose threshold is <= count.
func (t TierTable) indexFor(count int) int {
	i := sort.Search(len(t.tiers), func(i int) bool { return t.tiers[i].MinClients > count })
	if i == 0 {
		return 0
	}
	return i - 1
}
