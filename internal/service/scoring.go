package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/repository"
)

// DefaultTeacher attributes events submitted without a teacher name.
const DefaultTeacher = "Anonyme"

// ScoreResult is the outcome of a scoring action. Degraded is set when the
// core transaction committed but the follow-up badge or hall-of-fame step
// failed; the score mutation stands either way.
type ScoreResult struct {
	NewScore      int
	AwardedBadges []catalog.Badge
	Degraded      bool
}

// ScoringService owns the scoring and undo flows: it appends events, keeps
// derived stats and period aggregates in step inside one transaction, and
// triggers badge evaluation and hall-of-fame updates after commit.
type ScoringService struct {
	db            *sql.DB
	cfg           *config.Config
	playerRepo    *repository.PlayerRepository
	eventRepo     *repository.EventRepository
	statsRepo     *repository.StatsRepository
	franchiseRepo *repository.FranchiseStatsRepository
	periodRepo    *repository.PeriodStatRepository
	badges        *BadgeEngine
	hallOfFame    *HallOfFameService
	locks         *playerLocks
	logger        zerolog.Logger
}

func NewScoringService(
	db *sql.DB,
	cfg *config.Config,
	playerRepo *repository.PlayerRepository,
	eventRepo *repository.EventRepository,
	statsRepo *repository.StatsRepository,
	franchiseRepo *repository.FranchiseStatsRepository,
	periodRepo *repository.PeriodStatRepository,
	badges *BadgeEngine,
	hallOfFame *HallOfFameService,
	logger zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		db:            db,
		cfg:           cfg,
		playerRepo:    playerRepo,
		eventRepo:     eventRepo,
		statsRepo:     statsRepo,
		franchiseRepo: franchiseRepo,
		periodRepo:    periodRepo,
		badges:        badges,
		hallOfFame:    hallOfFame,
		locks:         newPlayerLocks(),
		logger:        logger,
	}
}

// ApplyScoringEvent records a scoring action for a player. The event, score
// update, stat update, period aggregates and franchise counters land in one
// transaction; badge evaluation and hall-of-fame updates follow best-effort.
func (s *ScoringService) ApplyScoringEvent(ctx context.Context, playerName string, points int, action, teacher string) (*ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	playerName = strings.TrimSpace(playerName)
	action = strings.TrimSpace(action)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is empty", domain.ErrValidation)
	}
	if action == "" {
		return nil, fmt.Errorf("%w: action is empty", domain.ErrValidation)
	}
	if teacher = strings.TrimSpace(teacher); teacher == "" {
		teacher = DefaultTeacher
	}

	lock := s.locks.get(playerName)
	lock.Lock()
	defer lock.Unlock()

	s.logger.Info().
		Str("player", playerName).
		Int("points", points).
		Str("action", action).
		Str("teacher", teacher).
		Msg("applying scoring event")

	now := time.Now()
	event := &domain.ScoringEvent{
		PlayerName: playerName,
		Action:     action,
		Points:     points,
		Category:   domain.CategorizeWithFallback(action, s.cfg.CategoryDefault),
		Timestamp:  now,
		Teacher:    teacher,
	}

	newScore, err := s.commitEvent(ctx, event)
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{NewScore: newScore}

	awarded, err := s.badges.EvaluateForEvent(ctx, playerName, now)
	if err != nil {
		s.logger.Error().Err(err).Str("player", playerName).Msg("badge evaluation failed after commit")
		result.Degraded = true
	}
	result.AwardedBadges = awarded

	if points > 0 {
		// Bonuses credited during badge evaluation count toward records.
		finalScore := newScore
		if player, err := s.playerRepo.GetByName(ctx, playerName); err == nil {
			finalScore = player.Score
		}
		if err := s.hallOfFame.UpdateForScore(ctx, playerName, finalScore, now); err != nil {
			s.logger.Error().Err(err).Str("player", playerName).Msg("hall of fame update failed after commit")
			result.Degraded = true
		}
	}

	s.logger.Info().
		Str("player", playerName).
		Int("new_score", result.NewScore).
		Int("badges_awarded", len(result.AwardedBadges)).
		Bool("degraded", result.Degraded).
		Msg("scoring event applied")
	return result, nil
}

// UndoLastEvent removes the player's most recently inserted event (insertion
// order, not timestamp), reverts score, stats and aggregates, then recomputes
// the predicate badge set against post-undo state.
func (s *ScoringService) UndoLastEvent(ctx context.Context, playerName string) (*ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is empty", domain.ErrValidation)
	}

	lock := s.locks.get(playerName)
	lock.Lock()
	defer lock.Unlock()

	s.logger.Info().Str("player", playerName).Msg("undoing last event")

	newScore, err := s.revertLastEvent(ctx, playerName)
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{NewScore: newScore}

	if err := s.badges.RecomputePredicates(ctx, playerName); err != nil {
		s.logger.Error().Err(err).Str("player", playerName).Msg("badge recompute failed after undo")
		result.Degraded = true
	}

	s.logger.Info().
		Str("player", playerName).
		Int("new_score", newScore).
		Bool("degraded", result.Degraded).
		Msg("last event undone")
	return result, nil
}

func (s *ScoringService) commitEvent(ctx context.Context, event *domain.ScoringEvent) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin scoring transaction: %w", err)
	}
	defer tx.Rollback()

	playerRepo := s.playerRepo.WithTx(tx)
	player, err := playerRepo.GetByName(ctx, event.PlayerName)
	if err != nil {
		return 0, err
	}

	newScore, err := playerRepo.AddScore(ctx, event.PlayerName, event.Points)
	if err != nil {
		return 0, err
	}
	event.NewTotal = newScore

	if err := s.eventRepo.WithTx(tx).Insert(ctx, event); err != nil {
		return 0, err
	}

	statsRepo := s.statsRepo.WithTx(tx)
	stats, err := statsRepo.Get(ctx, event.PlayerName)
	if err != nil {
		return 0, err
	}
	applyEventToStats(stats, event.Points, event.Action, event.Timestamp, newScore)
	if err := statsRepo.Upsert(ctx, stats); err != nil {
		return 0, err
	}

	periodRepo := s.periodRepo.WithTx(tx)
	for periodType, start := range domain.PeriodStarts(event.Timestamp) {
		if err := periodRepo.Apply(ctx, event.PlayerName, periodType, start, event.Category, event.Points, 1); err != nil {
			return 0, err
		}
	}

	franchiseRepo := s.franchiseRepo.WithTx(tx)
	franchiseStats, err := franchiseRepo.Get(ctx, player.Franchise)
	if err != nil {
		return 0, err
	}
	applyEventToFranchise(franchiseStats, event.Points, event.Timestamp)
	if err := franchiseRepo.Upsert(ctx, franchiseStats); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scoring transaction: %w", err)
	}
	return newScore, nil
}

func (s *ScoringService) revertLastEvent(ctx context.Context, playerName string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin undo transaction: %w", err)
	}
	defer tx.Rollback()

	playerRepo := s.playerRepo.WithTx(tx)
	player, err := playerRepo.GetByName(ctx, playerName)
	if err != nil {
		return 0, err
	}

	eventRepo := s.eventRepo.WithTx(tx)
	last, err := eventRepo.Last(ctx, playerName)
	if err != nil {
		return 0, err
	}

	newScore, err := playerRepo.AddScore(ctx, playerName, -last.Points)
	if err != nil {
		return 0, err
	}

	if err := eventRepo.Delete(ctx, last.ID); err != nil {
		return 0, err
	}

	// Synthetic bonus events never fed stats, period buckets or franchise
	// counters when they were appended, so undoing one reverses the score
	// and the history row only.
	if last.Teacher == SystemTeacher {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit undo transaction: %w", err)
		}
		return newScore, nil
	}

	statsRepo := s.statsRepo.WithTx(tx)
	stats, err := statsRepo.Get(ctx, playerName)
	if err != nil {
		return 0, err
	}
	revertEventFromStats(stats, last.Points, last.Action)
	if err := statsRepo.Upsert(ctx, stats); err != nil {
		return 0, err
	}

	periodRepo := s.periodRepo.WithTx(tx)
	for periodType, start := range domain.PeriodStarts(last.Timestamp) {
		if err := periodRepo.Apply(ctx, playerName, periodType, start, last.Category, -last.Points, -1); err != nil {
			return 0, err
		}
	}

	franchiseRepo := s.franchiseRepo.WithTx(tx)
	franchiseStats, err := franchiseRepo.Get(ctx, player.Franchise)
	if err != nil {
		return 0, err
	}
	revertEventFromFranchise(franchiseStats, last.Points)
	if err := franchiseRepo.Upsert(ctx, franchiseStats); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit undo transaction: %w", err)
	}
	return newScore, nil
}
