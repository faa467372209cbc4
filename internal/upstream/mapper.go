// Package upstream maps partner roster snapshots from the legacy partner API
// into domain values. The legacy API served two record shapes, so most fields
// may arrive in snake_case, camelCase or both.
package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	nsClient  = "client"
	nsPayment = "payment"
	nsPartner = "partner"
)

// maxMinorUnits matches the numeric(15,0) money columns.
var maxMinorUnits = decimal.New(999_999_999_999_999, 0)

// Snapshot is one partner's roster as exported by the legacy API.
type Snapshot struct {
	PartnerID      string      `json:"partner_id"`
	PartnerIDCamel string      `json:"partnerId"`
	Clients        []RawClient `json:"clients"`
}

// RawClient is a client record in either upstream shape.
type RawClient struct {
	ID             string       `json:"id"`
	PartnerID      string       `json:"partner_id"`
	PartnerIDCamel string       `json:"partnerId"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	CreatedAt      *time.Time   `json:"created_at"`
	CreatedAtCamel *time.Time   `json:"createdAt"`
	Payments       []RawPayment `json:"payments"`
}

// RawPayment is a payment record in either upstream shape. Amounts are major
// units and may be JSON numbers or strings.
type RawPayment struct {
	ID                    string              `json:"id"`
	ClientID              string              `json:"client_id"`
	ClientIDCamel         string              `json:"clientId"`
	Amount                decimal.NullDecimal `json:"amount"`
	CommissionAmount      decimal.NullDecimal `json:"commission_amount"`
	CommissionAmountCamel decimal.NullDecimal `json:"commissionAmount"`
	Currency              string              `json:"currency"`
	Status                string              `json:"status"`
	CreatedAt             *time.Time          `json:"created_at"`
	CreatedAtCamel        *time.Time          `json:"createdAt"`
}

// ValidationError lists every record that violated the data contract.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid upstream snapshot: " + strings.Join(e.Problems, "; ")
}

// ParseSnapshot decodes a snapshot document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// ResolvedPartnerID returns the snapshot's partner id, or uuid.Nil when absent.
func (s *Snapshot) ResolvedPartnerID() uuid.UUID {
	raw := pickString(s.PartnerID, s.PartnerIDCamel)
	if raw == "" {
		return uuid.Nil
	}
	return resolveID(nsPartner, raw)
}

// NormalizeClients maps raw records into canonical clients. Every client gets
// a non-nil Payments slice. All problems are collected before failing so one
// bad export can be fixed in a single pass.
func NormalizeClients(raw []RawClient) ([]domain.Client, error) {
	var problems []string
	clients := make([]domain.Client, 0, len(raw))
	seen := make(map[uuid.UUID]int, len(raw))

	for i, rc := range raw {
		where := fmt.Sprintf("clients[%d]", i)
		if strings.TrimSpace(rc.ID) == "" {
			problems = append(problems, where+": missing id")
			continue
		}

		c := domain.Client{
			ID:        resolveID(nsClient, rc.ID),
			Name:      strings.TrimSpace(rc.Name),
			Email:     strings.TrimSpace(rc.Email),
			Phone:     strings.TrimSpace(rc.Phone),
			CreatedAt: pickTime(rc.CreatedAt, rc.CreatedAtCamel),
			Payments:  make([]domain.Payment, 0, len(rc.Payments)),
		}
		if pid := pickString(rc.PartnerID, rc.PartnerIDCamel); pid != "" {
			c.PartnerID = resolveID(nsPartner, pid)
		}
		if first, dup := seen[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate of clients[%d] (id %s)", where, first, rc.ID))
			continue
		}
		seen[c.ID] = i

		for j, rp := range rc.Payments {
			p, err := normalizePayment(rc.ID, c.ID, rp)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s.payments[%d]: %v", where, j, err))
				continue
			}
			c.Payments = append(c.Payments, p)
		}
		clients = append(clients, c)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return clients, nil
}

func normalizePayment(rawClientID string, clientID uuid.UUID, rp RawPayment) (domain.Payment, error) {
	if strings.TrimSpace(rp.ID) == "" {
		return domain.Payment{}, fmt.Errorf("missing id")
	}
	if owner := pickString(rp.ClientID, rp.ClientIDCamel); owner != "" && owner != rawClientID {
		return domain.Payment{}, fmt.Errorf("belongs to client %q, not %q", owner, rawClientID)
	}

	status := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(rp.Status)))
	if !status.Valid() {
		return domain.Payment{}, fmt.Errorf("unknown status %q", rp.Status)
	}

	amount, err := toMinorUnits("amount", rp.Amount)
	if err != nil {
		return domain.Payment{}, err
	}
	commission, err := toMinorUnits("commission_amount", pickDecimal(rp.CommissionAmount, rp.CommissionAmountCamel))
	if err != nil {
		return domain.Payment{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(rp.Currency))
	if currency != "" {
		if err := domain.ValidateCurrency(currency); err != nil {
			return domain.Payment{}, err
		}
	}

	created := pickTime(rp.CreatedAt, rp.CreatedAtCamel)
	return domain.Payment{
		ID:               resolveID(nsPayment, rp.ID),
		ClientID:         clientID,
		Amount:           amount,
		CommissionAmount: commission,
		Currency:         currency,
		Status:           status,
		CreatedAt:        created,
		UpdatedAt:        created,
	}, nil
}

// toMinorUnits converts a major-unit amount to cents, rounding half away from
// zero. A missing amount is zero.
func toMinorUnits(field string, d decimal.NullDecimal) (int64, error) {
	if !d.Valid {
		return 0, nil
	}
	if d.Decimal.IsNegative() {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, d.Decimal.String())
	}
	minor := d.Decimal.Shift(2).Round(0)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%s %s is out of range", field, d.Decimal.String())
	}
	return minor.IntPart(), nil
}

// pickString prefers the snake_case value when both shapes are present.
func pickString(snake, camel string) string {
	if s := strings.TrimSpace(snake); s != "" {
		return s
	}
	return strings.TrimSpace(camel)
}

func pickDecimal(snake, camel decimal.NullDecimal) decimal.NullDecimal {
	if snake.Valid {
		return snake
	}
	return camel
}

func pickTime(snake, camel *time.Time) time.Time {
	switch {
	case snake != nil:
		return snake.UTC()
	case camel != nil:
		return camel.UTC()
	default:
		return time.Time{}
	}
}
