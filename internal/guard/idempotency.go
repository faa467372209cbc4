package guard

import (
	"context"
	"sync"

	"github.com/partnerdesk/platform/internal/domain"
)

// IdempotencyGuard rejects a request while another request carrying the same
// idempotency key is still in flight. Completed keys are answered from the
// payments table, so callers Release the key once their transaction ends.
type IdempotencyGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewIdempotencyGuard creates a new in-memory idempotency guard.
func NewIdempotencyGuard() *IdempotencyGuard {
	return &IdempotencyGuard{
		inFlight: make(map[string]struct{}),
	}
}

// Check claims the key. An empty key is always allowed and never claimed.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	if _, busy := ig.inFlight[key]; busy {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: idempotency key is being processed",
			Guard:   "idempotency",
		}
	}

	ig.inFlight[key] = struct{}{}
	return domain.GuardResult{Allowed: true}
}

// Release frees a key claimed by Check.
func (ig *IdempotencyGuard) Release(key string) {
	if key == "" {
		return
	}
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.inFlight, key)
}

// InFlight reports how many keys are currently claimed.
func (ig *IdempotencyGuard) InFlight() int {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	return len(ig.inFlight)
}
