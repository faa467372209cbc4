package service

import (
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/policy"
	"github.com/partnerdesk/platform/internal/upstream"
)

// Evaluation is the result of running the metrics engine over a snapshot.
type Evaluation struct {
	Level    domain.PartnerLevel   `json:"level"`
	Progress domain.TierProgress   `json:"progress"`
	Stats    domain.DashboardStats `json:"stats"`
	Tiers    []domain.Tier         `json:"tiers"`
}

// Evaluate normalises an upstream snapshot and runs the engine over it without
// touching storage.
func Evaluate(tiers policy.TierTable, snap *upstream.Snapshot) (*Evaluation, error) {
	clients, err := upstream.NormalizeClients(snap.Clients)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	return EvaluateClients(tiers, clients), nil
}

// EvaluateClients runs the engine over an already normalised roster.
func EvaluateClients(tiers policy.TierTable, clients []domain.Client) *Evaluation {
	level := policy.EvaluatePartner(tiers, clients)
	return &Evaluation{
		Level:    level,
		Progress: policy.TierProgressFor(tiers, level.QualifyingClientCount),
		Stats:    policy.SummarizeClients(clients),
		Tiers:    tiers.Tiers(),
	}
}
