package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/infra"
)

type clientRepo struct{}

// NewClientRepository returns a pgx-backed ClientRepository.
func NewClientRepository() ClientRepository {
	return &clientRepo{}
}

func (r *clientRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := db.QueryRow(ctx, `
		SELECT id, partner_id, name, email, phone, created_at
		FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.PartnerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.Payments = []domain.Payment{}
	return &c, nil
}

func (r *clientRepo) Create(ctx context.Context, db DBTX, c *domain.Client) error {
	_, err := db.Exec(ctx, `
		INSERT INTO clients (id, partner_id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PartnerID, c.Name, c.Email, c.Phone, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *clientRepo) Upsert(ctx context.Context, db DBTX, c *domain.Client) (bool, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO clients (id, partner_id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		  SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone
		  WHERE clients.partner_id = EXCLUDED.partner_id
		RETURNING id`,
		c.ID, c.PartnerID, c.Name, c.Email, c.Phone, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("upsert client: %w", err)
	}
	return true, nil
}

// ListWithPayments reads the roster in one LEFT JOIN and folds payment rows
// into their client, keeping the clients in created_at DESC order.
func (r *clientRepo) ListWithPayments(ctx context.Context, db DBTX, partnerID uuid.UUID) ([]domain.Client, error) {
	rows, err := db.Query(ctx, `
		SELECT c.id, c.partner_id, c.name, c.email, c.phone, c.created_at,
		       p.id, p.amount, p.commission_amount, p.currency, p.status, p.created_at, p.updated_at
		FROM clients c
		LEFT JOIN payments p ON p.client_id = c.id
		WHERE c.partner_id = $1
		ORDER BY c.created_at DESC, c.id, p.created_at DESC`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			c                      domain.Client
			payID                  pgtype.UUID
			amount, commission     pgtype.Numeric
			currency, status       pgtype.Text
			payCreated, payUpdated pgtype.Timestamptz
		)
		err := rows.Scan(&c.ID, &c.PartnerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
			&payID, &amount, &commission, &currency, &status, &payCreated, &payUpdated)
		if err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}

		i, seen := index[c.ID]
		if !seen {
			c.Payments = []domain.Payment{}
			clients = append(clients, c)
			i = len(clients) - 1
			index[c.ID] = i
		}
		if !payID.Valid {
			continue
		}

		p := domain.Payment{
			ID:        uuid.UUID(payID.Bytes),
			ClientID:  c.ID,
			Currency:  currency.String,
			Status:    domain.PaymentStatus(status.String),
			CreatedAt: timestampOrZero(payCreated),
			UpdatedAt: timestampOrZero(payUpdated),
		}
		if p.Amount, err = infra.NumericToInt64(amount); err != nil {
			return nil, fmt.Errorf("convert amount: %w", err)
		}
		if p.CommissionAmount, err = infra.NumericToInt64(commission); err != nil {
			return nil, fmt.Errorf("convert commission_amount: %w", err)
		}
		clients[i].Payments = append(clients[i].Payments, p)
	}
	return clients, rows.Err()
}

func (r *clientRepo) Count(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func timestampOrZero(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
