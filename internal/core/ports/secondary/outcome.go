package secondary

import (
	"context"

	"gitlab.com/otp-2025.net/internal/domain"
)

type OutcomeRepository interface {
	// SaveOutcome stores the outcome of a finished execution unit
	SaveOutcome(ctx context.Context, outcome *domain.UnitOutcome) error

	// RecentOutcomes returns up to limit outcomes, newest first
	RecentOutcomes(ctx context.Context, limit int) ([]*domain.UnitOutcome, error)

	// Stats returns outcome counts per status
	Stats(ctx context.Context) (domain.OutcomeStats, error)
}
