package outcome

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/ports/secondary"
	"gitlab.com/otp-2025.net/internal/domain"
)

var _ IOutcomeService = &OutcomeService{}

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
	saveTimeout        = 2 * time.Second
)

// OutcomeService fans outcomes out to a set of repositories. Reads go to
// the first repository.
type OutcomeService struct {
	repos  []secondary.OutcomeRepository
	logger primary.Logger
}

// NewOutcomeService creates a new outcome service; at least one repository is required
func NewOutcomeService(logger primary.Logger, primaryRepo secondary.OutcomeRepository, others ...secondary.OutcomeRepository) *OutcomeService {
	return &OutcomeService{
		repos:  append([]secondary.OutcomeRepository{primaryRepo}, others...),
		logger: logger,
	}
}

// Record stores outcome in every repository
func (s *OutcomeService) Record(ctx context.Context, outcome *domain.UnitOutcome) {
	for _, repo := range s.repos {
		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := repo.SaveOutcome(saveCtx, outcome)
		cancel()
		if err != nil {
			s.logger.Error("Failed to save unit outcome", "unitID", outcome.UnitID, "repository", fmt.Sprintf("%T", repo), "error", err)
		}
	}
}

// Recent returns up to limit outcomes, newest first
func (s *OutcomeService) Recent(ctx context.Context, limit int) ([]*domain.UnitOutcome, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	outcomes, err := s.repos[0].RecentOutcomes(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get recent outcomes", "error", err)
		return nil, fmt.Errorf("failed to get recent outcomes: %w", err)
	}
	return outcomes, nil
}

// Stats returns outcome counts per status
func (s *OutcomeService) Stats(ctx context.Context) (domain.OutcomeStats, error) {
	stats, err := s.repos[0].Stats(ctx)
	if err != nil {
		s.logger.Error("Failed to get outcome stats", "error", err)
		return domain.OutcomeStats{}, errors.Join(errors.New("failed to get outcome stats"), err)
	}
	return stats, nil
}
