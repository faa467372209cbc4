package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
)

// NotificationService serves the partner portal inbox.
type NotificationService struct {
	st Stores
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(st Stores) *NotificationService {
	return &NotificationService{st: st}
}

// List returns the partner's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, partnerID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	items, err := s.st.Notifications.ListByPartner(ctx, s.st.Tx.Conn(), partnerID, unreadOnly, limit)
	if err != nil {
		return nil, domain.ErrInternal("list notifications", err)
	}
	return items, nil
}

// MarkRead marks one of the partner's notifications as read. Marking an
// already read notification succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, partnerID, id uuid.UUID) error {
	ok, err := s.st.Notifications.MarkRead(ctx, s.st.Tx.Conn(), partnerID, id)
	if err != nil {
		return domain.ErrInternal("mark notification read", err)
	}
	if !ok {
		return domain.ErrNotFound("notification", id.String())
	}
	return nil
}
