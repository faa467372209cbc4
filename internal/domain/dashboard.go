package domain

// DashboardStats aggregates a partner's client roster for the dashboard.
type DashboardStats struct {
	TotalClients      int   `json:"total_clients"`
	ActiveClients     int   `json:"active_clients"`
	TotalPayments     int   `json:"total_payments"`
	CompletedPayments int   `json:"completed_payments"`
	PendingPayments   int   `json:"pending_payments"`
	CancelledPayments int   `json:"cancelled_payments"`
	TotalRevenue      int64 `json:"total_revenue"`
	TotalCommission   int64 `json:"total_commission"`
	PendingCommission int64 `json:"pending_commission"`
}

// PartnerDashboard is the payload of the partner dashboard endpoints.
type PartnerDashboard struct {
	Partner  *Partner       `json:"partner"`
	Stats    DashboardStats `json:"stats"`
	Level    PartnerLevel   `json:"level"`
	Progress TierProgress   `json:"progress"`
}

// Overview holds admin-wide report totals.
type Overview struct {
	PartnersByStatus map[string]int `json:"partners_by_status"`
	PartnersByTier   map[string]int `json:"partners_by_tier"`
	TotalClients     int            `json:"total_clients"`
	TotalCommission  int64          `json:"total_commission"`
	PendingPayments  int            `json:"pending_payments"`
}

// GuardResult is the verdict of a request guard.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked
}
