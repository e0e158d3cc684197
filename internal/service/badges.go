package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/api"
	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/repository"
)

// SystemTeacher attributes synthetic bonus events appended on badge awards.
const SystemTeacher = "System"

// BadgeEngine evaluates the badge catalog against current player and
// franchise state. Evaluation runs after the scoring transaction commits and
// is best-effort: a missing subject is a silent no-op, failures are reported
// but never roll back scoring.
type BadgeEngine struct {
	db            *sql.DB
	registry      *catalog.Registry
	playerRepo    *repository.PlayerRepository
	statsRepo     *repository.StatsRepository
	franchiseRepo *repository.FranchiseStatsRepository
	eventRepo     *repository.EventRepository
	badgeRepo     *repository.BadgeRepository
	announcer     *api.Announcer
	logger        zerolog.Logger
}

func NewBadgeEngine(
	db *sql.DB,
	registry *catalog.Registry,
	playerRepo *repository.PlayerRepository,
	statsRepo *repository.StatsRepository,
	franchiseRepo *repository.FranchiseStatsRepository,
	eventRepo *repository.EventRepository,
	badgeRepo *repository.BadgeRepository,
	announcer *api.Announcer,
	logger zerolog.Logger,
) *BadgeEngine {
	return &BadgeEngine{
		db:            db,
		registry:      registry,
		playerRepo:    playerRepo,
		statsRepo:     statsRepo,
		franchiseRepo: franchiseRepo,
		eventRepo:     eventRepo,
		badgeRepo:     badgeRepo,
		announcer:     announcer,
		logger:        logger,
	}
}

// EvaluateForEvent runs the full catalog for the player and their franchise
// after a scoring event. eventTime is the event's own timestamp; time-window
// conditions are judged against it, never against the wall clock.
func (e *BadgeEngine) EvaluateForEvent(ctx context.Context, playerName string, eventTime time.Time) ([]catalog.Badge, error) {
	player, err := e.playerRepo.GetByName(ctx, playerName)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		e.logger.Debug().Str("player", playerName).Msg("badge evaluation skipped, player missing")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player for badge evaluation: %w", err)
	}

	stats, err := e.statsRepo.Get(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for badge evaluation: %w", err)
	}

	var awarded []catalog.Badge

	for _, badge := range e.registry.PlayerBadges() {
		if badge.Bespoke() {
			continue
		}
		if !badge.PlayerPredicate(*stats, *player) {
			continue
		}
		created, err := e.awardPlayer(ctx, player, badge, eventTime)
		if err != nil {
			return awarded, err
		}
		if created {
			awarded = append(awarded, badge)
		}
	}

	bespoke, err := e.evaluateBespokePlayer(ctx, player, stats, eventTime)
	if err != nil {
		return awarded, err
	}
	awarded = append(awarded, bespoke...)

	franchiseAwarded, err := e.EvaluateFranchise(ctx, player.Franchise, eventTime)
	if err != nil {
		return awarded, err
	}
	awarded = append(awarded, franchiseAwarded...)

	return awarded, nil
}

// EvaluateFranchise runs the collective catalog for one franchise.
func (e *BadgeEngine) EvaluateFranchise(ctx context.Context, franchise string, eventTime time.Time) ([]catalog.Badge, error) {
	roster, err := e.playerRepo.ListByFranchise(ctx, franchise)
	if err != nil {
		return nil, fmt.Errorf("failed to load franchise roster: %w", err)
	}
	if len(roster) == 0 {
		e.logger.Debug().Str("franchise", franchise).Msg("badge evaluation skipped, franchise empty")
		return nil, nil
	}

	stats, err := e.franchiseRepo.Get(ctx, franchise)
	if err != nil {
		return nil, fmt.Errorf("failed to load franchise stats: %w", err)
	}

	var awarded []catalog.Badge

	for _, badge := range e.registry.FranchiseBadges() {
		if badge.Bespoke() {
			continue
		}
		if !badge.FranchisePredicate(*stats, roster) {
			continue
		}
		created, err := e.badgeRepo.AwardFranchise(ctx, franchise, string(badge.ID), eventTime)
		if err != nil {
			return awarded, fmt.Errorf("failed to award franchise badge %s: %w", badge.ID, err)
		}
		if created {
			e.logger.Info().Str("franchise", franchise).Str("badge", string(badge.ID)).Msg("franchise badge awarded")
			e.announce(franchise, badge, eventTime)
			awarded = append(awarded, badge)
		}
	}

	ironWall, err := e.evaluateIronWall(ctx, franchise, stats, eventTime)
	if err != nil {
		return awarded, err
	}
	awarded = append(awarded, ironWall...)

	return awarded, nil
}

// RecomputePredicates repairs the predicate-badge set after an undo: every
// predicate badge is deleted and re-evaluated against post-undo state, and
// matches are re-inserted without a fresh bonus (the original credit stays in
// the score history). Bespoke badges are deliberately left untouched.
func (e *BadgeEngine) RecomputePredicates(ctx context.Context, playerName string) error {
	player, err := e.playerRepo.GetByName(ctx, playerName)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load player for badge recompute: %w", err)
	}

	stats, err := e.statsRepo.Get(ctx, playerName)
	if err != nil {
		return fmt.Errorf("failed to load stats for badge recompute: %w", err)
	}

	var predicateIDs []string
	for _, badge := range e.registry.PlayerBadges() {
		if !badge.Bespoke() {
			predicateIDs = append(predicateIDs, string(badge.ID))
		}
	}

	if err := e.badgeRepo.DeletePlayerBadges(ctx, playerName, predicateIDs); err != nil {
		return fmt.Errorf("failed to clear predicate badges: %w", err)
	}

	now := time.Now()
	for _, badge := range e.registry.PlayerBadges() {
		if badge.Bespoke() {
			continue
		}
		if !badge.PlayerPredicate(*stats, *player) {
			continue
		}
		if _, err := e.badgeRepo.AwardPlayer(ctx, playerName, string(badge.ID), now); err != nil {
			return fmt.Errorf("failed to restore badge %s: %w", badge.ID, err)
		}
	}

	e.logger.Info().Str("player", playerName).Msg("predicate badges recomputed")
	return nil
}

func (e *BadgeEngine) evaluateBespokePlayer(ctx context.Context, player *domain.Player, stats *domain.PlayerStats, eventTime time.Time) ([]catalog.Badge, error) {
	var awarded []catalog.Badge

	// On Fire: repeated Hardworker actions inside a trailing window, judged
	// from the event log rather than the stats row.
	count, err := e.eventRepo.CountActionSince(ctx, player.Name, hardworkerLabel,
		eventTime.Add(-constants.HardworkerWindow), eventTime)
	if err != nil {
		return awarded, fmt.Errorf("failed to evaluate on_fire: %w", err)
	}
	if count >= 2 {
		badge, _ := e.registry.Get(catalog.BadgeOnFire)
		created, err := e.awardPlayer(ctx, player, badge, eventTime)
		if err != nil {
			return awarded, err
		}
		if created {
			awarded = append(awarded, badge)
		}
	}

	// Comeback Kid: previously observed in the bottom two of the overall
	// ranking, now in the top three. The flag is set by the ranking check
	// and here, and cleared when the badge fires.
	rank, total, err := e.playerRank(ctx, player.Name)
	if err != nil {
		return awarded, err
	}
	if total > constants.BottomRankCount+constants.TopRankCount {
		if rank > total-constants.BottomRankCount && !stats.WasBottomTwo {
			stats.WasBottomTwo = true
			if err := e.statsRepo.Upsert(ctx, stats); err != nil {
				return awarded, fmt.Errorf("failed to persist bottom-two flag: %w", err)
			}
		}
		if stats.WasBottomTwo && rank <= constants.TopRankCount {
			badge, _ := e.registry.Get(catalog.BadgeComebackKid)
			created, err := e.awardPlayer(ctx, player, badge, eventTime)
			if err != nil {
				return awarded, err
			}
			if created {
				stats.WasBottomTwo = false
				if err := e.statsRepo.Upsert(ctx, stats); err != nil {
					return awarded, fmt.Errorf("failed to clear bottom-two flag: %w", err)
				}
				awarded = append(awarded, badge)
			}
		}
	}

	// Père Noël: the event lands in the end-of-year window and the player
	// was active in the trailing week.
	if eventTime.Month() == time.December && eventTime.Day() >= 22 {
		active, err := e.eventRepo.HasPositiveSince(ctx, player.Name,
			eventTime.Add(-constants.SantaTrailingWindow), eventTime)
		if err != nil {
			return awarded, fmt.Errorf("failed to evaluate santa: %w", err)
		}
		if active {
			badge, _ := e.registry.Get(catalog.BadgeSanta)
			created, err := e.awardPlayer(ctx, player, badge, eventTime)
			if err != nil {
				return awarded, err
			}
			if created {
				awarded = append(awarded, badge)
			}
		}
	}

	return awarded, nil
}

// evaluateIronWall runs the single-interval state machine for the iron-wall
// badge: the window start is set by scoring, cleared by any negative event,
// and fires once the elapsed time reaches the threshold. Firing resets the
// window.
func (e *BadgeEngine) evaluateIronWall(ctx context.Context, franchise string, stats *domain.FranchiseStats, eventTime time.Time) ([]catalog.Badge, error) {
	if stats.NoNegativeSince == nil {
		return nil, nil
	}
	if eventTime.Sub(*stats.NoNegativeSince) < constants.IronWallDuration {
		return nil, nil
	}

	badge, _ := e.registry.Get(catalog.BadgeIronWall)
	created, err := e.badgeRepo.AwardFranchise(ctx, franchise, string(badge.ID), eventTime)
	if err != nil {
		return nil, fmt.Errorf("failed to award iron_wall: %w", err)
	}
	if !created {
		return nil, nil
	}

	stats.NoNegativeSince = nil
	if err := e.franchiseRepo.Upsert(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to reset iron_wall window: %w", err)
	}

	e.logger.Info().Str("franchise", franchise).Str("badge", string(badge.ID)).Msg("franchise badge awarded")
	e.announce(franchise, badge, eventTime)
	return []catalog.Badge{badge}, nil
}

// awardPlayer inserts the badge row and, on first award, credits the bonus
// and appends a synthetic history event, all in one transaction. Returns
// true only for a first award.
func (e *BadgeEngine) awardPlayer(ctx context.Context, player *domain.Player, badge catalog.Badge, at time.Time) (bool, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin award transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := e.badgeRepo.WithTx(tx).AwardPlayer(ctx, player.Name, string(badge.ID), at)
	if err != nil {
		return false, fmt.Errorf("failed to award badge %s: %w", badge.ID, err)
	}
	if !created {
		return false, tx.Commit()
	}

	if badge.Bonus > 0 {
		newScore, err := e.playerRepo.WithTx(tx).AddScore(ctx, player.Name, badge.Bonus)
		if err != nil {
			return false, fmt.Errorf("failed to credit badge bonus: %w", err)
		}
		player.Score = newScore

		bonusEvent := &domain.ScoringEvent{
			PlayerName: player.Name,
			Action:     fmt.Sprintf("Badge: %s", badge.Name),
			Points:     badge.Bonus,
			Category:   domain.CategoryGeneral,
			Timestamp:  at,
			NewTotal:   newScore,
			Teacher:    SystemTeacher,
		}
		if err := e.eventRepo.WithTx(tx).Insert(ctx, bonusEvent); err != nil {
			return false, fmt.Errorf("failed to append bonus event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit badge award: %w", err)
	}

	e.logger.Info().
		Str("player", player.Name).
		Str("badge", string(badge.ID)).
		Int("bonus", badge.Bonus).
		Msg("badge awarded")
	e.announce(player.Name, badge, at)
	return true, nil
}

// playerRank returns the player's 1-based rank in the overall score ordering
// and the total player count.
func (e *BadgeEngine) playerRank(ctx context.Context, playerName string) (int, int, error) {
	players, err := e.playerRepo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to rank players: %w", err)
	}
	for i, p := range players {
		if p.Name == playerName {
			return i + 1, len(players), nil
		}
	}
	return 0, len(players), nil
}

func (e *BadgeEngine) announce(subject string, badge catalog.Badge, at time.Time) {
	if err := e.announcer.Announce(subject, badge, at); err != nil {
		e.logger.Warn().Err(err).Str("subject", subject).Str("badge", string(badge.ID)).Msg("badge announcement failed")
	}
}
