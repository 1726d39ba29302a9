// Package outcomerepository stores execution unit outcomes in PostgreSQL.
package outcomerepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/otp-2025.net/internal/core/ports/primary"
	"gitlab.com/otp-2025.net/internal/core/ports/secondary"
	"gitlab.com/otp-2025.net/internal/domain"
	querybuilder "gitlab.com/otp-2025.net/internal/utils"
)

var _ secondary.OutcomeRepository = (*OutcomeRepository)(nil)

// OutcomeRepository implements the OutcomeRepository interface with PostgreSQL
type OutcomeRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// Open connects to PostgreSQL and checks the connection
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// New creates a new PostgreSQL outcome repository
func New(db *sqlx.DB, logger primary.Logger, schema string) *OutcomeRepository {
	if schema == "" {
		schema = "public"
	}
	return &OutcomeRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func (r *OutcomeRepository) createTableQuery() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			unit_id UUID PRIMARY KEY,
			direction VARCHAR(16) NOT NULL,
			remote_addr VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			text_length INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			finished_at TIMESTAMP WITH TIME ZONE NOT NULL
		)
	`, r.schema, domain.GetUnitOutcomeTable().Name())
}

// EnsureTableExists creates the outcome table when missing
func (r *OutcomeRepository) EnsureTableExists(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.createTableQuery()); err != nil {
		r.logger.Error("Failed to create unit_outcomes table", "error", err)
		return fmt.Errorf("failed to create unit_outcomes table: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) insertQuery(outcome *domain.UnitOutcome) (string, []any, error) {
	tbl := domain.GetUnitOutcomeTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.Columns()...).
		Into(tbl.Name()).
		Values(
			outcome.UnitID, outcome.Direction, outcome.RemoteAddr, outcome.Status,
			outcome.Error, outcome.TextLength, outcome.StartedAt, outcome.FinishedAt,
		).
		OnConflictDoNothing(tbl.UnitID).
		Build()
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

func (r *OutcomeRepository) recentQuery(limit int) (string, []any, error) {
	tbl := domain.GetUnitOutcomeTable()
	query, args, err := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Columns()...).
		From(tbl.Name()).
		OrderBy(tbl.FinishedAt, false).
		Limit(limit).
		Build()
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

func (r *OutcomeRepository) statsQuery() (string, []any, error) {
	tbl := domain.GetUnitOutcomeTable()
	return querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Status, "COUNT(*) AS total").
		From(tbl.Name()).
		GroupBy(tbl.Status).
		Build()
}

// SaveOutcome inserts the outcome; saving the same unit twice is a no-op
func (r *OutcomeRepository) SaveOutcome(ctx context.Context, outcome *domain.UnitOutcome) error {
	query, args, err := r.insertQuery(outcome)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save unit outcome", "error", err)
		return fmt.Errorf("failed to save unit outcome: %w", err)
	}
	return nil
}

// RecentOutcomes returns up to limit outcomes, newest first
func (r *OutcomeRepository) RecentOutcomes(ctx context.Context, limit int) ([]*domain.UnitOutcome, error) {
	query, args, err := r.recentQuery(limit)
	if err != nil {
		return nil, err
	}

	var outcomes []*domain.UnitOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get recent outcomes: %w", err)
	}
	return outcomes, nil
}

// Stats counts stored outcomes per status
func (r *OutcomeRepository) Stats(ctx context.Context) (domain.OutcomeStats, error) {
	query, args, err := r.statsQuery()
	if err != nil {
		return domain.OutcomeStats{}, err
	}

	var rows []struct {
		Status domain.UnitStatus `db:"status"`
		Total  int64             `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return domain.OutcomeStats{}, fmt.Errorf("failed to count outcomes: %w", err)
	}

	var stats domain.OutcomeStats
	for _, row := range rows {
		stats.Add(row.Status, row.Total)
	}
	return stats, nil
}
