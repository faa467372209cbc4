package policy

import "github.com/partnerdesk/platform/internal/domain"

// QualifyingClientCount returns how many clients have at least one completed
// payment. Each client counts once regardless of how many payments it has.
func QualifyingClientCount(clients []domain.Client) int {
	n := 0
	for _, c := range clients {
		if c.HasCompletedPayment() {
			n++
		}
	}
	return n
}

// TotalCommission sums the commission of every completed payment across all
// clients. Pending and cancelled payments contribute nothing.
func TotalCommission(clients []domain.Client) int64 {
	var total int64
	for _, c := range clients {
		for _, p := range c.Payments {
			if p.Status == domain.PaymentStatusCompleted {
				total += p.CommissionAmount
			}
		}
	}
	return total
}

// CalculatePartnerLevel maps a qualifying client count to a tier. Thresholds
// are inclusive lower bounds, so a count equal to a threshold belongs to the
// higher tier. Negative counts fall into the base tier. The returned level
// carries no commission; EvaluatePartner fills it in.
func CalculatePartnerLevel(table TierTable, count int) domain.PartnerLevel {
	if count < 0 {
		count = 0
	}
	level := domain.PartnerLevel{QualifyingClientCount: count}
	if table.Len() == 0 {
		return level
	}
	level.Tier = table.tiers[table.indexFor(count)].Name
	return level
}

// EvaluatePartner derives the full level of a partner from a snapshot of its
// clients and their payments.
func EvaluatePartner(table TierTable, clients []domain.Client) domain.PartnerLevel {
	level := CalculatePartnerLevel(table, QualifyingClientCount(clients))
	level.TotalCommission = TotalCommission(clients)
	return level
}

// TierProgressFor reports the next tier and how many more qualifying clients
// are needed to reach it.
func TierProgressFor(table TierTable, count int) domain.TierProgress {
	if count < 0 {
		count = 0
	}
	if table.Len() == 0 {
		return domain.TierProgress{}
	}
	i := table.indexFor(count)
	progress := domain.TierProgress{CurrentTier: table.tiers[i].Name}
	if i+1 < table.Len() {
		next := table.tiers[i+1]
		progress.NextTier = next.Name
		progress.NextThreshold = next.MinClients
		progress.ClientsNeeded = next.MinClients - count
	}
	return progress
}

// CompareTiers returns the direction of a move from one tier to another:
// "up", "down", or "" when unchanged or the target is unknown. An unknown
// source tier (e.g. one removed from the table) counts as below every tier.
func CompareTiers(table TierTable, from, to string) string {
	a, b := table.Rank(from), table.Rank(to)
	switch {
	case b < 0 || a == b:
		return ""
	case b > a:
		return "up"
	default:
		return "down"
	}
}
