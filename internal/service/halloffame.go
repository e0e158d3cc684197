package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/repository"
)

// HallOfFameService tracks milestone firsts and the all-time high score.
type HallOfFameService struct {
	db      *sql.DB
	hofRepo *repository.HallOfFameRepository
	logger  zerolog.Logger
}

func NewHallOfFameService(db *sql.DB, hofRepo *repository.HallOfFameRepository, logger zerolog.Logger) *HallOfFameService {
	return &HallOfFameService{db: db, hofRepo: hofRepo, logger: logger}
}

// UpdateForScore claims any milestone thresholds the new score reaches and
// rolls the high-score record forward when beaten. Milestones are
// first-come: a claim that loses the unique-index race is simply not
// recorded again.
func (s *HallOfFameService) UpdateForScore(ctx context.Context, playerName string, newScore int, at time.Time) error {
	for _, threshold := range constants.MilestoneThresholds {
		if newScore < threshold {
			break
		}
		claimed, err := s.hofRepo.ClaimMilestone(ctx, playerName, threshold, at)
		if err != nil {
			return fmt.Errorf("failed to claim milestone %d: %w", threshold, err)
		}
		if claimed {
			s.logger.Info().
				Str("player", playerName).
				Int("threshold", threshold).
				Msg("milestone claimed")
		}
	}

	return s.rollHighScore(ctx, playerName, newScore, at)
}

// rollHighScore reads the standing record and supersedes it in one
// transaction, so a failure mid-update never leaves the table without a
// current row.
func (s *HallOfFameService) rollHighScore(ctx context.Context, playerName string, newScore int, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin high score transaction: %w", err)
	}
	defer tx.Rollback()

	hofRepo := s.hofRepo.WithTx(tx)
	record, err := hofRepo.CurrentHighScore(ctx)
	if err != nil {
		return fmt.Errorf("failed to read high score: %w", err)
	}
	if record != nil && newScore <= record.Value {
		return tx.Commit()
	}

	if err := hofRepo.SetHighScore(ctx, playerName, newScore, at); err != nil {
		return fmt.Errorf("failed to set high score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit high score transaction: %w", err)
	}

	s.logger.Info().
		Str("player", playerName).
		Int("score", newScore).
		Msg("new all-time high score")
	return nil
}

// List returns every hall-of-fame record, newest first.
func (s *HallOfFameService) List(ctx context.Context) ([]domain.HallOfFameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.hofRepo.List(ctx)
}
