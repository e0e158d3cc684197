package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type StatsRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{db: sqlDB, logger: logger}
}

func (r *StatsRepository) WithTx(tx *sql.Tx) *StatsRepository {
	return &StatsRepository{db: tx, logger: r.logger}
}

// Get returns the player's stats row. A missing row for an existing player is
// treated as an internal inconsistency and recovered by returning a zeroed
// struct rather than failing.
func (r *StatsRepository) Get(ctx context.Context, playerName string) (*domain.PlayerStats, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT player_name, current_streak, max_streak, lowest_score, consecutive_days,
		        felicitations_count, hardworker_count, hardworker_dates,
		        weekly_actions, monthly_actions, was_bottom_two, updated_at
		 FROM player_stats WHERE player_name = ?`, playerName)

	var s domain.PlayerStats
	var days, dates string
	err := row.Scan(&s.PlayerName, &s.CurrentStreak, &s.MaxStreak, &s.LowestScore, &days,
		&s.FelicitationsCount, &s.HardworkerCount, &dates,
		&s.WeeklyActions, &s.MonthlyActions, &s.WasBottomTwo, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("player", playerName).Msg("stats row missing, returning zeroed stats")
		return &domain.PlayerStats{PlayerName: playerName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	if err := json.Unmarshal([]byte(days), &s.ConsecutiveDays); err != nil {
		return nil, fmt.Errorf("failed to decode consecutive days: %w", err)
	}
	if err := json.Unmarshal([]byte(dates), &s.HardworkerDates); err != nil {
		return nil, fmt.Errorf("failed to decode hardworker dates: %w", err)
	}
	return &s, nil
}

// Upsert writes the full stats row.
func (r *StatsRepository) Upsert(ctx context.Context, s *domain.PlayerStats) error {
	days, err := json.Marshal(s.ConsecutiveDays)
	if err != nil {
		return fmt.Errorf("failed to encode consecutive days: %w", err)
	}
	dates, err := json.Marshal(s.HardworkerDates)
	if err != nil {
		return fmt.Errorf("failed to encode hardworker dates: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO player_stats (player_name, current_streak, max_streak, lowest_score, consecutive_days,
		                           felicitations_count, hardworker_count, hardworker_dates,
		                           weekly_actions, monthly_actions, was_bottom_two, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (player_name) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   max_streak = excluded.max_streak,
		   lowest_score = excluded.lowest_score,
		   consecutive_days = excluded.consecutive_days,
		   felicitations_count = excluded.felicitations_count,
		   hardworker_count = excluded.hardworker_count,
		   hardworker_dates = excluded.hardworker_dates,
		   weekly_actions = excluded.weekly_actions,
		   monthly_actions = excluded.monthly_actions,
		   was_bottom_two = excluded.was_bottom_two,
		   updated_at = excluded.updated_at`,
		s.PlayerName, s.CurrentStreak, s.MaxStreak, s.LowestScore, string(days),
		s.FelicitationsCount, s.HardworkerCount, string(dates),
		s.WeeklyActions, s.MonthlyActions, s.WasBottomTwo, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert player stats: %w", err)
	}
	return nil
}

// ResetWeeklyActions zeroes every player's weekly action counter.
func (r *StatsRepository) ResetWeeklyActions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE player_stats SET weekly_actions = 0, updated_at = ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to reset weekly actions: %w", err)
	}
	return nil
}

// ResetMonthlyActions zeroes every player's monthly action counter.
func (r *StatsRepository) ResetMonthlyActions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE player_stats SET monthly_actions = 0, updated_at = ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to reset monthly actions: %w", err)
	}
	return nil
}
