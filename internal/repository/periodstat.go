package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type PeriodStatRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewPeriodStatRepository(sqlDB *sql.DB, logger zerolog.Logger) *PeriodStatRepository {
	return &PeriodStatRepository{db: sqlDB, logger: logger}
}

func (r *PeriodStatRepository) WithTx(tx *sql.Tx) *PeriodStatRepository {
	return &PeriodStatRepository{db: tx, logger: r.logger}
}

// Apply folds one event into the (player, period_type, period_start) bucket.
// Negative points and a negative countDelta reverse a previously applied
// event. The caller guarantees exactly one call per period type per event.
func (r *PeriodStatRepository) Apply(ctx context.Context, playerName string, periodType domain.PeriodType, periodStart time.Time, category domain.Category, points, countDelta int) error {
	var sport, academic int
	switch category {
	case domain.CategorySport:
		sport = points
	case domain.CategoryAcademic:
		academic = points
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO period_stats (player_name, period_type, period_start, sport_points, academic_points, total_points, action_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_name, period_type, period_start) DO UPDATE SET
		   sport_points = sport_points + excluded.sport_points,
		   academic_points = academic_points + excluded.academic_points,
		   total_points = total_points + excluded.total_points,
		   action_count = action_count + excluded.action_count`,
		playerName, string(periodType), periodStart, sport, academic, points, countDelta)
	if err != nil {
		return fmt.Errorf("failed to apply period stat: %w", err)
	}
	return nil
}

// Get returns the bucket for one player and period instance, zeroed when
// absent.
func (r *PeriodStatRepository) Get(ctx context.Context, playerName string, periodType domain.PeriodType, periodStart time.Time) (*domain.PeriodStat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT player_name, period_type, period_start, sport_points, academic_points, total_points, action_count
		 FROM period_stats WHERE player_name = ? AND period_type = ? AND period_start = ?`,
		playerName, string(periodType), periodStart)

	var s domain.PeriodStat
	var pt string
	err := row.Scan(&s.PlayerName, &pt, &s.PeriodStart, &s.SportPoints, &s.AcademicPoints, &s.TotalPoints, &s.ActionCount)
	if err == sql.ErrNoRows {
		return &domain.PeriodStat{PlayerName: playerName, PeriodType: periodType, PeriodStart: periodStart}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get period stat: %w", err)
	}
	s.PeriodType = domain.PeriodType(pt)
	return &s, nil
}

// ListByPlayer returns all buckets for a player, newest period first.
func (r *PeriodStatRepository) ListByPlayer(ctx context.Context, playerName string) ([]domain.PeriodStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_name, period_type, period_start, sport_points, academic_points, total_points, action_count
		 FROM period_stats WHERE player_name = ? ORDER BY period_start DESC, period_type ASC`, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to list period stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PeriodStat
	for rows.Next() {
		var s domain.PeriodStat
		var pt string
		if err := rows.Scan(&s.PlayerName, &pt, &s.PeriodStart, &s.SportPoints, &s.AcademicPoints, &s.TotalPoints, &s.ActionCount); err != nil {
			return nil, fmt.Errorf("failed to scan period stat: %w", err)
		}
		s.PeriodType = domain.PeriodType(pt)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
