package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/infra"
)

const paymentColumns = `id, client_id, amount, commission_amount, currency, status, idempotency_key, created_at, updated_at`

type paymentRepo struct{}

// NewPaymentRepository returns a pgx-backed PaymentRepository.
func NewPaymentRepository() PaymentRepository {
	return &paymentRepo{}
}

func (r *paymentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Payment, error) {
	row := db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	return scanPayment(row)
}

func (r *paymentRepo) FindByIdempotencyKey(ctx context.Context, db DBTX, key string) (*domain.Payment, error) {
	row := db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE idempotency_key = $1`, key)
	return scanPayment(row)
}

func (r *paymentRepo) LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Payment, error) {
	row := db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
	return scanPayment(row)
}

func (r *paymentRepo) Create(ctx context.Context, db DBTX, p *domain.Payment) error {
	_, err := db.Exec(ctx, `
		INSERT INTO payments (id, client_id, amount, commission_amount, currency, status, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID,
		p.ClientID,
		infra.Int64ToNumeric(p.Amount),
		infra.Int64ToNumeric(p.CommissionAmount),
		p.Currency,
		string(p.Status),
		p.IdempotencyKey,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *paymentRepo) Upsert(ctx context.Context, db DBTX, p *domain.Payment) (bool, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `
		INSERT INTO payments (id, client_id, amount, commission_amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		  SET amount = EXCLUDED.amount,
		      commission_amount = EXCLUDED.commission_amount,
		      currency = EXCLUDED.currency,
		      status = EXCLUDED.status,
		      updated_at = now()
		  WHERE payments.client_id = EXCLUDED.client_id
		    AND (payments.amount, payments.commission_amount, payments.currency, payments.status)
		        IS DISTINCT FROM (EXCLUDED.amount, EXCLUDED.commission_amount, EXCLUDED.currency, EXCLUDED.status)
		RETURNING id`,
		p.ID,
		p.ClientID,
		infra.Int64ToNumeric(p.Amount),
		infra.Int64ToNumeric(p.CommissionAmount),
		p.Currency,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("upsert payment: %w", err)
	}
	return true, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.PaymentStatus) error {
	_, err := db.Exec(ctx, `UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func (r *paymentRepo) ListByClient(ctx context.Context, db DBTX, clientID uuid.UUID) ([]domain.Payment, error) {
	rows, err := db.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE client_id = $1
		ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepo) Totals(ctx context.Context, db DBTX) (int64, int, error) {
	var commission pgtype.Numeric
	var pending int
	err := db.QueryRow(ctx, `
		SELECT
			SUM(commission_amount) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'pending')
		FROM payments`,
	).Scan(&commission, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("payment totals: %w", err)
	}
	total, err := infra.SumToInt64(commission)
	if err != nil {
		return 0, 0, fmt.Errorf("convert commission total: %w", err)
	}
	return total, pending, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var amountNum, commissionNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.ClientID, &amountNum, &commissionNum, &p.Currency, &p.Status,
		&p.IdempotencyKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	var convErr error
	p.Amount, convErr = infra.NumericToInt64(amountNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	p.CommissionAmount, convErr = infra.NumericToInt64(commissionNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert commission_amount: %w", convErr)
	}

	return &p, nil
}
