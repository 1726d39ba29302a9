package outcome

import (
	"context"

	"gitlab.com/otp-2025.net/internal/domain"
)

// IOutcomeService records and reports what happened to execution units
type IOutcomeService interface {
	// Record stores outcome in every configured repository. Failures are
	// logged; they never reach the execution unit.
	Record(ctx context.Context, outcome *domain.UnitOutcome)

	// Recent returns up to limit outcomes, newest first
	Recent(ctx context.Context, limit int) ([]*domain.UnitOutcome, error)

	// Stats returns outcome counts per status
	Stats(ctx context.Context) (domain.OutcomeStats, error)
}
