package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/partnerdesk/platform/internal/domain"
)

const partnerColumns = `id, email, name, company, phone, status, level, referral_code, created_at, updated_at`

type partnerRepo struct{}

// NewPartnerRepository returns a pgx-backed PartnerRepository.
func NewPartnerRepository() PartnerRepository {
	return &partnerRepo{}
}

func (r *partnerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Partner, error) {
	row := db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
	return scanPartner(row)
}

func (r *partnerRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Partner, error) {
	row := db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE email = $1`, email)
	return scanPartner(row)
}

func (r *partnerRepo) LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Partner, error) {
	row := db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1 FOR UPDATE`, id)
	return scanPartner(row)
}

func (r *partnerRepo) Create(ctx context.Context, db DBTX, p *domain.Partner) error {
	_, err := db.Exec(ctx, `
		INSERT INTO partners (id, email, name, company, phone, status, level, referral_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Email, p.Name, p.Company, p.Phone, string(p.Status), p.Level, p.ReferralCode, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (r *partnerRepo) Update(ctx context.Context, db DBTX, p *domain.Partner) (*domain.Partner, error) {
	row := db.QueryRow(ctx, `
		UPDATE partners SET email = $2, name = $3, company = $4, phone = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+partnerColumns,
		p.ID, p.Email, p.Name, p.Company, p.Phone,
	)
	return scanPartner(row)
}

func (r *partnerRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.PartnerStatus) error {
	_, err := db.Exec(ctx, `UPDATE partners SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update partner status: %w", err)
	}
	return nil
}

func (r *partnerRepo) UpdateLevel(ctx context.Context, db DBTX, id uuid.UUID, level string) error {
	_, err := db.Exec(ctx, `UPDATE partners SET level = $2, updated_at = now() WHERE id = $1`, id, level)
	if err != nil {
		return fmt.Errorf("update partner level: %w", err)
	}
	return nil
}

// List builds its WHERE clause from the non-empty filter fields.
func (r *partnerRepo) List(ctx context.Context, db DBTX, filter domain.PartnerFilter) ([]domain.Partner, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		where = append(where, fmt.Sprintf("level = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT ` + partnerColumns + ` FROM partners`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	partners := []domain.Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

func (r *partnerRepo) ListIDsByStatus(ctx context.Context, db DBTX, status domain.PartnerStatus) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `SELECT id FROM partners WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list partner ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan partner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *partnerRepo) CountByStatus(ctx context.Context, db DBTX) (map[string]int, error) {
	return countGrouped(ctx, db, `SELECT status, count(*) FROM partners GROUP BY status`)
}

func (r *partnerRepo) CountByLevel(ctx context.Context, db DBTX) (map[string]int, error) {
	return countGrouped(ctx, db, `SELECT level, count(*) FROM partners GROUP BY level`)
}

func countGrouped(ctx context.Context, db DBTX, query string) (map[string]int, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count partners: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan partner count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	var p domain.Partner
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Company, &p.Phone, &p.Status, &p.Level,
		&p.ReferralCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan partner: %w", err)
	}
	return &p, nil
}
