package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/repository"
)

// RankingService runs the scheduled jobs: the hourly ranking observation and
// the weekly/monthly counter resets.
type RankingService struct {
	db            *sql.DB
	playerRepo    *repository.PlayerRepository
	statsRepo     *repository.StatsRepository
	franchiseRepo *repository.FranchiseStatsRepository
	badges        *BadgeEngine
	logger        zerolog.Logger
}

func NewRankingService(
	db *sql.DB,
	playerRepo *repository.PlayerRepository,
	statsRepo *repository.StatsRepository,
	franchiseRepo *repository.FranchiseStatsRepository,
	badges *BadgeEngine,
	logger zerolog.Logger,
) *RankingService {
	return &RankingService{
		db:            db,
		playerRepo:    playerRepo,
		statsRepo:     statsRepo,
		franchiseRepo: franchiseRepo,
		badges:        badges,
		logger:        logger,
	}
}

// RunRankingCheck records one ranking observation window: the leading
// franchise's rank-duration counter is bumped, players currently in the
// bottom two are flagged for the comeback badge, and the collective catalog
// is re-evaluated for every franchise.
func (s *RankingService) RunRankingCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	franchises, err := s.playerRepo.Franchises(ctx)
	if err != nil {
		return fmt.Errorf("failed to rank franchises: %w", err)
	}
	if len(franchises) == 0 {
		s.logger.Debug().Msg("ranking check skipped, no franchises")
		return nil
	}

	leader := franchises[0]
	if err := s.franchiseRepo.IncrementBestRankDuration(ctx, leader); err != nil {
		return fmt.Errorf("failed to record rank observation: %w", err)
	}
	s.logger.Info().Str("franchise", leader).Msg("ranking observation recorded")

	if err := s.flagBottomPlayers(ctx); err != nil {
		return err
	}

	now := time.Now()
	for _, franchise := range franchises {
		if _, err := s.badges.EvaluateFranchise(ctx, franchise, now); err != nil {
			s.logger.Warn().Err(err).Str("franchise", franchise).Msg("franchise badge evaluation failed during ranking check")
		}
	}

	return nil
}

// flagBottomPlayers marks players observed in the bottom two of the overall
// ranking. The flag is consumed by the comeback badge when the player later
// reaches the top three.
func (s *RankingService) flagBottomPlayers(ctx context.Context) error {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to rank players: %w", err)
	}
	if len(players) <= constants.BottomRankCount+constants.TopRankCount {
		return nil
	}

	for _, p := range players[len(players)-constants.BottomRankCount:] {
		stats, err := s.statsRepo.Get(ctx, p.Name)
		if err != nil {
			return fmt.Errorf("failed to load stats for %s: %w", p.Name, err)
		}
		if stats.WasBottomTwo {
			continue
		}
		stats.WasBottomTwo = true
		if err := s.statsRepo.Upsert(ctx, stats); err != nil {
			return fmt.Errorf("failed to flag %s: %w", p.Name, err)
		}
		s.logger.Debug().Str("player", p.Name).Msg("player flagged in bottom two")
	}
	return nil
}

// ResetWeeklyCounters zeroes per-player weekly action counts and per-
// franchise weekly points. Invoked by the scheduler on week boundaries.
func (s *RankingService) ResetWeeklyCounters(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin weekly reset: %w", err)
	}
	defer tx.Rollback()

	if err := s.statsRepo.WithTx(tx).ResetWeeklyActions(ctx); err != nil {
		return err
	}
	if err := s.franchiseRepo.WithTx(tx).ResetWeeklyPoints(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit weekly reset: %w", err)
	}

	s.logger.Info().Msg("weekly counters reset")
	return nil
}

// ResetMonthlyCounters zeroes per-player monthly action counts and per-
// franchise monthly points.
func (s *RankingService) ResetMonthlyCounters(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin monthly reset: %w", err)
	}
	defer tx.Rollback()

	if err := s.statsRepo.WithTx(tx).ResetMonthlyActions(ctx); err != nil {
		return err
	}
	if err := s.franchiseRepo.WithTx(tx).ResetMonthlyPoints(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit monthly reset: %w", err)
	}

	s.logger.Info().Msg("monthly counters reset")
	return nil
}
