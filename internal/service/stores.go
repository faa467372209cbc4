package service

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partnerdesk/platform/internal/repository"
)

// Stores bundles the transaction runner and the repositories shared by the services.
type Stores struct {
	Tx            repository.Transactor
	Partners      repository.PartnerRepository
	Clients       repository.ClientRepository
	Payments      repository.PaymentRepository
	Notifications repository.NotificationRepository
	Outbox        repository.OutboxRepository
}

// NewStores returns pgx-backed stores over pool.
func NewStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Tx:            repository.NewTransactor(pool),
		Partners:      repository.NewPartnerRepository(),
		Clients:       repository.NewClientRepository(),
		Payments:      repository.NewPaymentRepository(),
		Notifications: repository.NewNotificationRepository(),
		Outbox:        repository.NewOutboxRepository(),
	}
}
