package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/repository"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var errInjected = errors.New("injected failure")

// memDB is an in-memory stand-in for Postgres. WithinTx snapshots the state
// and restores it when fn fails, so rollback behaviour can be asserted.
type memDB struct {
	partners      map[uuid.UUID]domain.Partner
	clients       map[uuid.UUID]domain.Client
	payments      map[uuid.UUID]domain.Payment
	notifications []domain.Notification
	outbox        []domain.OutboxDraft

	failOutbox bool
	txCount    int
}

func newMemDB() *memDB {
	return &memDB{
		partners: make(map[uuid.UUID]domain.Partner),
		clients:  make(map[uuid.UUID]domain.Client),
		payments: make(map[uuid.UUID]domain.Payment),
	}
}

func (m *memDB) stores() Stores {
	return Stores{
		Tx:            m,
		Partners:      memPartners{m},
		Clients:       memClients{m},
		Payments:      memPayments{m},
		Notifications: memNotifications{m},
		Outbox:        memOutbox{m},
	}
}

func (m *memDB) Conn() repository.DBTX { return nil }

func (m *memDB) WithinTx(_ context.Context, fn func(tx repository.DBTX) error) error {
	m.txCount++
	saved := m.snapshot()
	if err := fn(nil); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

type memState struct {
	partners      map[uuid.UUID]domain.Partner
	clients       map[uuid.UUID]domain.Client
	payments      map[uuid.UUID]domain.Payment
	notifications []domain.Notification
	outbox        []domain.OutboxDraft
}

func (m *memDB) snapshot() memState {
	s := memState{
		partners:      make(map[uuid.UUID]domain.Partner, len(m.partners)),
		clients:       make(map[uuid.UUID]domain.Client, len(m.clients)),
		payments:      make(map[uuid.UUID]domain.Payment, len(m.payments)),
		notifications: append([]domain.Notification(nil), m.notifications...),
		outbox:        append([]domain.OutboxDraft(nil), m.outbox...),
	}
	for k, v := range m.partners {
		s.partners[k] = v
	}
	for k, v := range m.clients {
		s.clients[k] = v
	}
	for k, v := range m.payments {
		s.payments[k] = v
	}
	return s
}

func (m *memDB) restore(s memState) {
	m.partners, m.clients, m.payments = s.partners, s.clients, s.payments
	m.notifications, m.outbox = s.notifications, s.outbox
}

func (m *memDB) eventsOfType(t domain.EventType) []domain.OutboxDraft {
	var out []domain.OutboxDraft
	for _, e := range m.outbox {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

// addPartner seeds an active partner at the given stored tier.
func (m *memDB) addPartner(level string) domain.Partner {
	p := domain.Partner{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		Name:         "Partner",
		Status:       domain.PartnerStatusActive,
		Level:        level,
		ReferralCode: "REF" + uuid.NewString()[:6],
		CreatedAt:    time.Now().UTC(),
	}
	m.partners[p.ID] = p
	return p
}

// addClient seeds a client with payments of the given statuses, each carrying
// a commission of 100.
func (m *memDB) addClient(partnerID uuid.UUID, statuses ...domain.PaymentStatus) domain.Client {
	c := domain.Client{ID: uuid.New(), PartnerID: partnerID, Name: "Client", CreatedAt: time.Now().UTC()}
	m.clients[c.ID] = c
	for _, st := range statuses {
		p := domain.Payment{
			ID: uuid.New(), ClientID: c.ID, Amount: 1000, CommissionAmount: 100,
			Currency: "EUR", Status: st, CreatedAt: time.Now().UTC(),
		}
		m.payments[p.ID] = p
	}
	return c
}

type memPartners struct{ m *memDB }

func (r memPartners) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Partner, error) {
	p, ok := r.m.partners[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPartners) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.Partner, error) {
	for _, p := range r.m.partners {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPartners) LockForUpdate(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Partner, error) {
	return r.FindByID(ctx, db, id)
}

func (r memPartners) Create(_ context.Context, _ repository.DBTX, p *domain.Partner) error {
	r.m.partners[p.ID] = *p
	return nil
}

func (r memPartners) Update(_ context.Context, _ repository.DBTX, p *domain.Partner) (*domain.Partner, error) {
	if _, ok := r.m.partners[p.ID]; !ok {
		return nil, nil
	}
	r.m.partners[p.ID] = *p
	return p, nil
}

func (r memPartners) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.PartnerStatus) error {
	p := r.m.partners[id]
	p.Status = status
	r.m.partners[id] = p
	return nil
}

func (r memPartners) UpdateLevel(_ context.Context, _ repository.DBTX, id uuid.UUID, level string) error {
	p := r.m.partners[id]
	p.Level = level
	r.m.partners[id] = p
	return nil
}

func (r memPartners) List(_ context.Context, _ repository.DBTX, f domain.PartnerFilter) ([]domain.Partner, error) {
	out := []domain.Partner{}
	for _, p := range r.m.partners {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Level != "" && p.Level != f.Level {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r memPartners) ListIDsByStatus(_ context.Context, _ repository.DBTX, status domain.PartnerStatus) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, p := range r.m.partners {
		if p.Status == status {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r memPartners) CountByStatus(context.Context, repository.DBTX) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range r.m.partners {
		out[string(p.Status)]++
	}
	return out, nil
}

func (r memPartners) CountByLevel(context.Context, repository.DBTX) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range r.m.partners {
		out[p.Level]++
	}
	return out, nil
}

type memClients struct{ m *memDB }

func (r memClients) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Client, error) {
	c, ok := r.m.clients[id]
	if !ok {
		return nil, nil
	}
	c.Payments = []domain.Payment{}
	return &c, nil
}

func (r memClients) Create(_ context.Context, _ repository.DBTX, c *domain.Client) error {
	stored := *c
	stored.Payments = nil
	r.m.clients[c.ID] = stored
	return nil
}

func (r memClients) Upsert(_ context.Context, _ repository.DBTX, c *domain.Client) (bool, error) {
	if existing, ok := r.m.clients[c.ID]; ok && existing.PartnerID != c.PartnerID {
		return false, nil
	}
	stored := *c
	stored.Payments = nil
	r.m.clients[c.ID] = stored
	return true, nil
}

func (r memClients) ListWithPayments(_ context.Context, _ repository.DBTX, partnerID uuid.UUID) ([]domain.Client, error) {
	out := []domain.Client{}
	for _, c := range r.m.clients {
		if c.PartnerID != partnerID {
			continue
		}
		c.Payments = []domain.Payment{}
		for _, p := range r.m.payments {
			if p.ClientID == c.ID {
				c.Payments = append(c.Payments, p)
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r memClients) Count(context.Context, repository.DBTX) (int, error) {
	return len(r.m.clients), nil
}

type memPayments struct{ m *memDB }

func (r memPayments) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Payment, error) {
	p, ok := r.m.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPayments) FindByIdempotencyKey(_ context.Context, _ repository.DBTX, key string) (*domain.Payment, error) {
	for _, p := range r.m.payments {
		if p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPayments) LockForUpdate(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Payment, error) {
	return r.FindByID(ctx, db, id)
}

func (r memPayments) Create(_ context.Context, _ repository.DBTX, p *domain.Payment) error {
	r.m.payments[p.ID] = *p
	return nil
}

func (r memPayments) Upsert(_ context.Context, _ repository.DBTX, p *domain.Payment) (bool, error) {
	if existing, ok := r.m.payments[p.ID]; ok {
		if existing.ClientID != p.ClientID {
			return false, nil
		}
		if existing.Amount == p.Amount && existing.CommissionAmount == p.CommissionAmount &&
			existing.Currency == p.Currency && existing.Status == p.Status {
			return false, nil
		}
	}
	r.m.payments[p.ID] = *p
	return true, nil
}

func (r memPayments) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.PaymentStatus) error {
	p := r.m.payments[id]
	p.Status = status
	r.m.payments[id] = p
	return nil
}

func (r memPayments) ListByClient(_ context.Context, _ repository.DBTX, clientID uuid.UUID) ([]domain.Payment, error) {
	out := []domain.Payment{}
	for _, p := range r.m.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPayments) Totals(context.Context, repository.DBTX) (int64, int, error) {
	var commission int64
	var pending int
	for _, p := range r.m.payments {
		switch p.Status {
		case domain.PaymentStatusCompleted:
			commission += p.CommissionAmount
		case domain.PaymentStatusPending:
			pending++
		}
	}
	return commission, pending, nil
}

type memNotifications struct{ m *memDB }

func (r memNotifications) Create(_ context.Context, _ repository.DBTX, n *domain.Notification) error {
	r.m.notifications = append(r.m.notifications, *n)
	return nil
}

func (r memNotifications) ListByPartner(_ context.Context, _ repository.DBTX, partnerID uuid.UUID, unreadOnly bool, _ int) ([]domain.Notification, error) {
	out := []domain.Notification{}
	for _, n := range r.m.notifications {
		if n.PartnerID != partnerID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, _ repository.DBTX, partnerID, id uuid.UUID) (bool, error) {
	for i, n := range r.m.notifications {
		if n.ID == id && n.PartnerID == partnerID {
			if n.ReadAt == nil {
				now := time.Now()
				r.m.notifications[i].ReadAt = &now
			}
			return true, nil
		}
	}
	return false, nil
}

type memOutbox struct{ m *memDB }

func (r memOutbox) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	if r.m.failOutbox {
		return errInjected
	}
	r.m.outbox = append(r.m.outbox, d)
	return nil
}

func (r memOutbox) FetchUnpublished(context.Context, repository.DBTX, int) ([]domain.OutboxRow, error) {
	return nil, nil
}

func (r memOutbox) MarkPublished(context.Context, repository.DBTX, []int64) error {
	return nil
}
