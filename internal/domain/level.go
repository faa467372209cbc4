package domain

import "time"

// Tier is one row of the tier threshold table. MinClients is an inclusive
// lower bound on the qualifying client count.
type Tier struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	MinClients int    `json:"min_clients" yaml:"min_clients" toml:"min_clients"`
}

// PartnerLevel is the derived tier and metrics of a partner.
type PartnerLevel struct {
	Tier                  string `json:"tier"`
	QualifyingClientCount int    `json:"qualifying_client_count"`
	TotalCommission       int64  `json:"total_commission"`
}

// TierProgress describes the distance to the next tier. NextTier is empty at
// the top tier.
type TierProgress struct {
	CurrentTier   string `json:"current_tier"`
	NextTier      string `json:"next_tier,omitempty"`
	NextThreshold int    `json:"next_threshold,omitempty"`
	ClientsNeeded int    `json:"clients_needed"`
}

// LevelSummary is what the level endpoints and the cache hold.
type LevelSummary struct {
	PartnerID  string       `json:"partner_id"`
	Level      PartnerLevel `json:"level"`
	Progress   TierProgress `json:"progress"`
	StoredTier string       `json:"stored_tier"`
	ComputedAt time.Time    `json:"computed_at"`
}

// LevelChange is the outcome of a level refresh.
type LevelChange struct {
	PartnerID    string       `json:"partner_id"`
	PreviousTier string       `json:"previous_tier"`
	Level        PartnerLevel `json:"level"`
	Changed      bool         `json:"changed"`
	Direction    string       `json:"direction,omitempty"` // up, down
}
