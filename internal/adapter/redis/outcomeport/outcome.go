package outcomeport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/ports/secondary"
	"gitlab.com/otp-2025.net/internal/domain"
)

const (
	recentKey        = "outcomes:recent"
	countKeyPrefix   = "outcomes:count:"
	outcomeKeyPrefix = "outcome:"
	outcomeTTL       = 24 * time.Hour
)

var _ secondary.OutcomeRepository = (*OutcomeRepository)(nil)

// OutcomeRepository implements the OutcomeRepository interface with Redis
type OutcomeRepository struct {
	redisClient *redis.Client
	keyPrefix   string
	recentLimit int64
	logger      primary.Logger
}

// NewOutcomeRepository creates a new Redis outcome repository. Every key is
// prefixed with keyPrefix; at most recentLimit outcomes are kept in the
// recent list.
func NewOutcomeRepository(redisClient *redis.Client, keyPrefix string, recentLimit int64, logger primary.Logger) *OutcomeRepository {
	if recentLimit <= 0 {
		recentLimit = 100
	}
	return &OutcomeRepository{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// NewClient opens a Redis client and checks the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *OutcomeRepository) key(parts ...string) string {
	k := r.keyPrefix
	for _, p := range parts {
		k += p
	}
	return k
}

// SaveOutcome saves the outcome, pushes it onto the recent list and bumps
// the status counter in one transaction
func (r *OutcomeRepository) SaveOutcome(ctx context.Context, outcome *domain.UnitOutcome) error {
	// Serialize outcome
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		r.logger.Error("Failed to marshal unit outcome", "error", err)
		return fmt.Errorf("failed to marshal unit outcome: %w", err)
	}

	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(outcomeKeyPrefix, outcome.UnitID.String()), outcomeJSON, outcomeTTL)
		pipe.LPush(ctx, r.key(recentKey), outcomeJSON)
		pipe.LTrim(ctx, r.key(recentKey), 0, r.recentLimit-1)
		pipe.Incr(ctx, r.key(countKeyPrefix, string(outcome.Status)))
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save unit outcome", "error", err)
		return fmt.Errorf("failed to save unit outcome: %w", err)
	}

	return nil
}

// GetOutcome retrieves a single outcome by unit ID; nil when it expired or never existed
func (r *OutcomeRepository) GetOutcome(ctx context.Context, unitID string) (*domain.UnitOutcome, error) {
	data, err := r.redisClient.Get(ctx, r.key(outcomeKeyPrefix, unitID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit outcome: %w", err)
	}

	var outcome domain.UnitOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unit outcome: %w", err)
	}
	return &outcome, nil
}

// RecentOutcomes returns up to limit outcomes, newest first
func (r *OutcomeRepository) RecentOutcomes(ctx context.Context, limit int) ([]*domain.UnitOutcome, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}

	items, err := r.redisClient.LRange(ctx, r.key(recentKey), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent outcomes: %w", err)
	}

	outcomes := make([]*domain.UnitOutcome, 0, len(items))
	for _, item := range items {
		var outcome domain.UnitOutcome
		if err := json.Unmarshal([]byte(item), &outcome); err != nil {
			return nil, fmt.Errorf("failed to unmarshal unit outcome: %w", err)
		}
		outcomes = append(outcomes, &outcome)
	}
	return outcomes, nil
}

// Stats reads every status counter at once
func (r *OutcomeRepository) Stats(ctx context.Context) (domain.OutcomeStats, error) {
	statuses := []domain.UnitStatus{domain.UnitStatusCompleted, domain.UnitStatusRejected, domain.UnitStatusFailed}
	keys := make([]string, len(statuses))
	for i, status := range statuses {
		keys[i] = r.key(countKeyPrefix, string(status))
	}

	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return domain.OutcomeStats{}, fmt.Errorf("failed to read outcome counters: %w", err)
	}

	var stats domain.OutcomeStats
	for i, value := range values {
		if value == nil {
			continue
		}
		var n int64
		if _, err := fmt.Sscan(value.(string), &n); err != nil {
			return domain.OutcomeStats{}, fmt.Errorf("invalid counter %s: %w", keys[i], err)
		}
		stats.Add(statuses[i], n)
	}
	return stats, nil
}
