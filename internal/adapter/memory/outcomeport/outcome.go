// Package outcomeport keeps recent execution unit outcomes in process memory.
package outcomeport

import (
	"context"
	"sync"

	"gitlab.com/otp-2025.net/internal/core/ports/secondary"
	"gitlab.com/otp-2025.net/internal/domain"
)

var _ secondary.OutcomeRepository = (*OutcomeRepository)(nil)

// OutcomeRepository is a bounded ring of outcomes plus lifetime counters
type OutcomeRepository struct {
	mu       sync.RWMutex
	ring     []*domain.UnitOutcome
	next     int
	filled   bool
	counters domain.OutcomeStats
}

// NewOutcomeRepository keeps at most capacity recent outcomes
func NewOutcomeRepository(capacity int) *OutcomeRepository {
	if capacity <= 0 {
		capacity = 1
	}
	return &OutcomeRepository{ring: make([]*domain.UnitOutcome, capacity)}
}

// SaveOutcome stores a copy of outcome
func (r *OutcomeRepository) SaveOutcome(_ context.Context, outcome *domain.UnitOutcome) error {
	cp := *outcome

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ring[r.next] = &cp
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.filled = true
	}
	r.counters.Add(cp.Status, 1)
	return nil
}

// RecentOutcomes returns up to limit outcomes, newest first
func (r *OutcomeRepository) RecentOutcomes(_ context.Context, limit int) ([]*domain.UnitOutcome, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.filled {
		size = len(r.ring)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	outcomes := make([]*domain.UnitOutcome, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.ring)) % len(r.ring)
		cp := *r.ring[idx]
		outcomes = append(outcomes, &cp)
	}
	return outcomes, nil
}

// Stats returns lifetime counters, including evicted outcomes
func (r *OutcomeRepository) Stats(_ context.Context) (domain.OutcomeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters, nil
}
