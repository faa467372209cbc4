package infra

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/domain"
	"github.com/partnerdesk/platform/internal/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSource struct {
	rows    []domain.OutboxRow
	fetches int
	marked  []int64
}

func (s *fakeSource) FetchUnpublished(_ context.Context, limit int) ([]domain.OutboxRow, error) {
	s.fetches++
	var out []domain.OutboxRow
	for _, r := range s.rows {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeSource) MarkPublished(_ context.Context, ids []int64) error {
	s.marked = append(s.marked, ids...)
	done := make(map[int64]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	kept := s.rows[:0]
	for _, r := range s.rows {
		if !done[r.SeqID] {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return nil
}

type fakePublisher struct {
	failOn    map[uuid.UUID]bool
	published []domain.EventType
}

func (p *fakePublisher) PublishEvent(_ context.Context, d domain.OutboxDraft) error {
	if p.failOn[d.EventID] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, d.EventType)
	return nil
}

func outboxRow(seq int64, evt domain.EventType) domain.OutboxRow {
	return domain.OutboxRow{SeqID: seq, OutboxDraft: domain.OutboxDraft{EventID: uuid.New(), EventType: evt}}
}

func TestOutboxPoller_PublishesInOrder(t *testing.T) {
	src := &fakeSource{rows: []domain.OutboxRow{
		outboxRow(1, domain.EventPartnerCreated),
		outboxRow(2, domain.EventPaymentRecorded),
		outboxRow(3, domain.EventPartnerLevelChanged),
	}}
	pub := &fakePublisher{}
	p := NewOutboxPoller(src, pub, guard.NewCircuitBreaker(3, time.Minute), time.Second, 10, discardLogger)

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, src.marked)
	assert.Equal(t, []domain.EventType{
		domain.EventPartnerCreated,
		domain.EventPaymentRecorded,
		domain.EventPartnerLevelChanged,
	}, pub.published)

	n, err = p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxPoller_StopsAtFirstFailure(t *testing.T) {
	rows := []domain.OutboxRow{
		outboxRow(1, domain.EventPartnerCreated),
		outboxRow(2, domain.EventPaymentRecorded),
		outboxRow(3, domain.EventPartnerLevelChanged),
	}
	src := &fakeSource{rows: rows}
	pub := &fakePublisher{failOn: map[uuid.UUID]bool{rows[1].EventID: true}}
	p := NewOutboxPoller(src, pub, guard.NewCircuitBreaker(3, time.Minute), time.Second, 10, discardLogger)

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, src.marked)
	require.Len(t, src.rows, 2)
	assert.Equal(t, int64(2), src.rows[0].SeqID)
}

func TestOutboxPoller_BreakerPausesPublishing(t *testing.T) {
	row := outboxRow(7, domain.EventPaymentRecorded)
	src := &fakeSource{rows: []domain.OutboxRow{row}}
	pub := &fakePublisher{failOn: map[uuid.UUID]bool{row.EventID: true}}
	breaker := guard.NewCircuitBreaker(2, time.Hour)
	p := NewOutboxPoller(src, pub, breaker, time.Second, 10, discardLogger)

	for i := 0; i < 2; i++ {
		_, err := p.PollOnce(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, guard.CircuitOpen, breaker.State(outboxCircuitKey))

	n, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, src.fetches, "open breaker skips the fetch")
}

func TestOutboxPoller_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	p := NewOutboxPoller(src, &fakePublisher{}, guard.NewCircuitBreaker(3, time.Minute), 5*time.Millisecond, 10, discardLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestKafkaProducer_Disabled(t *testing.T) {
	p := NewKafkaProducer("", true, "partnerdesk", discardLogger)
	d := domain.OutboxDraft{EventType: domain.EventPartnerLevelChanged}

	assert.Equal(t, "partnerdesk.partner.level.changed", p.TopicFor(d))
	assert.NoError(t, p.PublishEvent(context.Background(), d))
	assert.NoError(t, p.Close())

	bare := NewKafkaProducer("localhost:9092", false, "", discardLogger)
	assert.Equal(t, "partner.level.changed", bare.TopicFor(d))
}
