package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
)

type notificationRepo struct{}

// NewNotificationRepository returns a pgx-backed NotificationRepository.
func NewNotificationRepository() NotificationRepository {
	return &notificationRepo{}
}

func (r *notificationRepo) Create(ctx context.Context, db DBTX, n *domain.Notification) error {
	_, err := db.Exec(ctx, `
		INSERT INTO partner_notifications (id, partner_id, kind, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.PartnerID, string(n.Kind), n.Title, n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListByPartner(ctx context.Context, db DBTX, partnerID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT id, partner_id, kind, title, message, read_at, created_at
		FROM partner_notifications
		WHERE partner_id = $1 AND ($2 = false OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3`, partnerID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.PartnerID, &n.Kind, &n.Title, &n.Message, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) MarkRead(ctx context.Context, db DBTX, partnerID, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE partner_notifications SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND partner_id = $2`, id, partnerID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
