package policy

import "github.com/partnerdesk/platform/internal/domain"

// SummarizeClients aggregates a roster for the dashboard. ActiveClients and
// TotalCommission agree with QualifyingClientCount and TotalCommission.
func SummarizeClients(clients []domain.Client) domain.DashboardStats {
	stats := domain.DashboardStats{TotalClients: len(clients)}
	for _, c := range clients {
		qualifies := false
		for _, p := range c.Payments {
			stats.TotalPayments++
			switch p.Status {
			case domain.PaymentStatusCompleted:
				qualifies = true
				stats.CompletedPayments++
				stats.TotalRevenue += p.Amount
				stats.TotalCommission += p.CommissionAmount
			case domain.PaymentStatusPending:
				stats.PendingPayments++
				stats.PendingCommission += p.CommissionAmount
			case domain.PaymentStatusCancelled:
				stats.CancelledPayments++
			}
		}
		if qualifies {
			stats.ActiveClients++
		}
	}
	return stats
}
