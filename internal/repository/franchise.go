package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type FranchiseStatsRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewFranchiseStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *FranchiseStatsRepository {
	return &FranchiseStatsRepository{db: sqlDB, logger: logger}
}

func (r *FranchiseStatsRepository) WithTx(tx *sql.Tx) *FranchiseStatsRepository {
	return &FranchiseStatsRepository{db: tx, logger: r.logger}
}

// Get returns the franchise stats row, zeroed when absent.
func (r *FranchiseStatsRepository) Get(ctx context.Context, franchise string) (*domain.FranchiseStats, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT franchise, weekly_points, monthly_points, last_negative_date,
		        best_rank_duration, no_negative_since, updated_at
		 FROM franchise_stats WHERE franchise = ?`, franchise)

	var s domain.FranchiseStats
	err := row.Scan(&s.Franchise, &s.WeeklyPoints, &s.MonthlyPoints, &s.LastNegativeDate,
		&s.BestRankDuration, &s.NoNegativeSince, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("franchise", franchise).Msg("franchise stats row missing, returning zeroed stats")
		return &domain.FranchiseStats{Franchise: franchise}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get franchise stats: %w", err)
	}
	return &s, nil
}

func (r *FranchiseStatsRepository) Upsert(ctx context.Context, s *domain.FranchiseStats) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO franchise_stats (franchise, weekly_points, monthly_points, last_negative_date,
		                              best_rank_duration, no_negative_since, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (franchise) DO UPDATE SET
		   weekly_points = excluded.weekly_points,
		   monthly_points = excluded.monthly_points,
		   last_negative_date = excluded.last_negative_date,
		   best_rank_duration = excluded.best_rank_duration,
		   no_negative_since = excluded.no_negative_since,
		   updated_at = excluded.updated_at`,
		s.Franchise, s.WeeklyPoints, s.MonthlyPoints, s.LastNegativeDate,
		s.BestRankDuration, s.NoNegativeSince, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert franchise stats: %w", err)
	}
	return nil
}

// IncrementBestRankDuration bumps the #1-rank observation counter for the
// franchise currently leading the ranking.
func (r *FranchiseStatsRepository) IncrementBestRankDuration(ctx context.Context, franchise string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE franchise_stats SET best_rank_duration = best_rank_duration + 1, updated_at = ?
		 WHERE franchise = ?`, time.Now(), franchise)
	if err != nil {
		return fmt.Errorf("failed to increment rank duration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return r.Upsert(ctx, &domain.FranchiseStats{Franchise: franchise, BestRankDuration: 1})
	}
	return nil
}

// ResetWeeklyPoints zeroes every franchise's weekly counter.
func (r *FranchiseStatsRepository) ResetWeeklyPoints(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE franchise_stats SET weekly_points = 0, updated_at = ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to reset weekly points: %w", err)
	}
	return nil
}

// ResetMonthlyPoints zeroes every franchise's monthly counter.
func (r *FranchiseStatsRepository) ResetMonthlyPoints(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE franchise_stats SET monthly_points = 0, updated_at = ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to reset monthly points: %w", err)
	}
	return nil
}
