package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/partnerdesk/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PartnerRepository provides access to partners.
type PartnerRepository interface {
	// FindByID returns a partner by ID, or nil if it does not exist.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Partner, error)

	// FindByEmail returns a partner by email (case-insensitive).
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Partner, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the partner.
	// Must be called inside a transaction.
	LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Partner, error)

	// Create inserts a new partner.
	Create(ctx context.Context, db DBTX, partner *domain.Partner) error

	// Update writes the editable profile fields and returns the stored row.
	Update(ctx context.Context, db DBTX, partner *domain.Partner) (*domain.Partner, error)

	// UpdateStatus sets the partner status.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.PartnerStatus) error

	// UpdateLevel persists the derived tier name.
	UpdateLevel(ctx context.Context, db DBTX, id uuid.UUID, level string) error

	// List returns partners matching the filter, newest first.
	List(ctx context.Context, db DBTX, filter domain.PartnerFilter) ([]domain.Partner, error)

	// ListIDsByStatus returns the IDs of all partners in the given status.
	ListIDsByStatus(ctx context.Context, db DBTX, status domain.PartnerStatus) ([]uuid.UUID, error)

	// CountByStatus and CountByLevel feed the admin overview.
	CountByStatus(ctx context.Context, db DBTX) (map[string]int, error)
	CountByLevel(ctx context.Context, db DBTX) (map[string]int, error)
}

// ClientRepository provides access to clients.
type ClientRepository interface {
	// FindByID returns a client without its payments, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Client, error)

	// Create inserts a new client.
	Create(ctx context.Context, db DBTX, client *domain.Client) error

	// Upsert inserts a client or updates its contact fields. Returns false when
	// the id already belongs to another partner.
	Upsert(ctx context.Context, db DBTX, client *domain.Client) (bool, error)

	// ListWithPayments returns the partner's roster with every client's payments
	// attached. Clients without payments have an empty, non-nil slice.
	ListWithPayments(ctx context.Context, db DBTX, partnerID uuid.UUID) ([]domain.Client, error)

	// Count returns the number of clients across all partners.
	Count(ctx context.Context, db DBTX) (int, error)
}

// PaymentRepository provides access to payments.
type PaymentRepository interface {
	// FindByID returns a payment by ID, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Payment, error)

	// FindByIdempotencyKey returns the payment recorded under key, or nil.
	FindByIdempotencyKey(ctx context.Context, db DBTX, key string) (*domain.Payment, error)

	// LockForUpdate locks a payment row inside a transaction.
	LockForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Payment, error)

	// Create inserts a new payment.
	Create(ctx context.Context, db DBTX, payment *domain.Payment) error

	// Upsert inserts a payment or overwrites its amounts and status. Returns
	// false when nothing was written: the id belongs to another client or the
	// row already holds these values.
	Upsert(ctx context.Context, db DBTX, payment *domain.Payment) (bool, error)

	// UpdateStatus sets the payment status.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.PaymentStatus) error

	// ListByClient returns a client's payments, newest first.
	ListByClient(ctx context.Context, db DBTX, clientID uuid.UUID) ([]domain.Payment, error)

	// Totals returns the completed commission sum and the pending payment count
	// across all partners.
	Totals(ctx context.Context, db DBTX) (completedCommission int64, pendingCount int, err error)
}

// NotificationRepository provides access to partner_notifications.
type NotificationRepository interface {
	// Create inserts a notification.
	Create(ctx context.Context, db DBTX, n *domain.Notification) error

	// ListByPartner returns a partner's notifications, newest first.
	ListByPartner(ctx context.Context, db DBTX, partnerID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error)

	// MarkRead stamps read_at on a notification owned by the partner; already
	// read notifications keep their first timestamp. Returns false when no such
	// notification exists.
	MarkRead(ctx context.Context, db DBTX, partnerID, id uuid.UUID) (bool, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in sequence order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished stamps publishedAt on the given rows.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
