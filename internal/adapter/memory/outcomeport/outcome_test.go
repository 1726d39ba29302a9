package outcomeport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"gitlab.com/otp-2025.net/internal/domain"
)

func TestRecentOutcomesNewestFirst(t *testing.T) {
	repo := NewOutcomeRepository(3)
	ctx := context.Background()

	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		status := domain.UnitStatusCompleted
		if i%2 == 1 {
			status = domain.UnitStatusFailed
		}
		if err := repo.SaveOutcome(ctx, &domain.UnitOutcome{UnitID: ids[i], Status: status}); err != nil {
			t.Fatalf("SaveOutcome: %v", err)
		}
	}

	got, err := repo.RecentOutcomes(ctx, 10)
	if err != nil {
		t.Fatalf("RecentOutcomes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	for i, want := range []uuid.UUID{ids[4], ids[3], ids[2]} {
		if got[i].UnitID != want {
			t.Fatalf("outcome %d: expected %s, got %s", i, want, got[i].UnitID)
		}
	}

	got, _ = repo.RecentOutcomes(ctx, 1)
	if len(got) != 1 || got[0].UnitID != ids[4] {
		t.Fatalf("expected only the newest outcome, got %v", got)
	}

	stats, _ := repo.Stats(ctx)
	if stats.Completed != 3 || stats.Failed != 2 || stats.Total() != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRecentOutcomesPartiallyFilled(t *testing.T) {
	repo := NewOutcomeRepository(4)
	ctx := context.Background()

	got, _ := repo.RecentOutcomes(ctx, 0)
	if len(got) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(got))
	}

	out := &domain.UnitOutcome{UnitID: uuid.New(), Status: domain.UnitStatusRejected}
	_ = repo.SaveOutcome(ctx, out)
	out.Status = domain.UnitStatusCompleted

	got, _ = repo.RecentOutcomes(ctx, 0)
	if len(got) != 1 || got[0].Status != domain.UnitStatusRejected {
		t.Fatalf("stored outcome should be a copy, got %+v", got)
	}
}
