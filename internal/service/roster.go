package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/repository"
)

// initialFranchises seeds a fresh database when SEED_ROSTER is enabled.
var initialFranchises = map[string][]string{
	"Minotaurs":  {"Leny", "Lyam", "Augustin", "Lino", "Lina D", "Djilane", "Talia"},
	"Krakens":    {"Swan", "Nolann", "Enery", "Marie", "Seyma Nur", "Willow"},
	"Phoenix":    {"Mahé", "Narcisse", "Daniella", "Matis.B", "Jamila"},
	"Werewolves": {"Assia", "Ethaniel", "Russy", "Youssef", "Lisa L", "Noa", "Lenny K"},
}

// RosterService covers player lifecycle and read-side queries: roster CRUD,
// history, stats and badge listings.
type RosterService struct {
	playerRepo    *repository.PlayerRepository
	eventRepo     *repository.EventRepository
	statsRepo     *repository.StatsRepository
	franchiseRepo *repository.FranchiseStatsRepository
	periodRepo    *repository.PeriodStatRepository
	badgeRepo     *repository.BadgeRepository
	logger        zerolog.Logger
}

func NewRosterService(
	playerRepo *repository.PlayerRepository,
	eventRepo *repository.EventRepository,
	statsRepo *repository.StatsRepository,
	franchiseRepo *repository.FranchiseStatsRepository,
	periodRepo *repository.PeriodStatRepository,
	badgeRepo *repository.BadgeRepository,
	logger zerolog.Logger,
) *RosterService {
	return &RosterService{
		playerRepo:    playerRepo,
		eventRepo:     eventRepo,
		statsRepo:     statsRepo,
		franchiseRepo: franchiseRepo,
		periodRepo:    periodRepo,
		badgeRepo:     badgeRepo,
		logger:        logger,
	}
}

// Seed creates the initial roster when the players table is empty.
func (s *RosterService) Seed(ctx context.Context) error {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check roster: %w", err)
	}
	if len(players) > 0 {
		return nil
	}

	for franchise, names := range initialFranchises {
		for _, name := range names {
			if _, err := s.playerRepo.Create(ctx, name, franchise); err != nil {
				return fmt.Errorf("failed to seed %s: %w", name, err)
			}
		}
	}

	s.logger.Info().Int("franchises", len(initialFranchises)).Msg("initial roster seeded")
	return nil
}

func (s *RosterService) AddStudent(ctx context.Context, name, franchise string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	franchise = strings.TrimSpace(franchise)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", domain.ErrValidation)
	}
	if franchise == "" {
		return nil, fmt.Errorf("%w: franchise is empty", domain.ErrValidation)
	}

	player, err := s.playerRepo.Create(ctx, name, franchise)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("player", name).Str("franchise", franchise).Msg("student added")
	return player, nil
}

// RemoveStudent deletes a player; history, stats, period stats and badges
// cascade with the row.
func (s *RosterService) RemoveStudent(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.playerRepo.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info().Str("player", name).Msg("student removed")
	return nil
}

func (s *RosterService) ChangeFranchise(ctx context.Context, name, franchise string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	franchise = strings.TrimSpace(franchise)
	if franchise == "" {
		return fmt.Errorf("%w: franchise is empty", domain.ErrValidation)
	}

	if err := s.playerRepo.SetFranchise(ctx, name, franchise); err != nil {
		return err
	}
	s.logger.Info().Str("player", name).Str("franchise", franchise).Msg("franchise changed")
	return nil
}

func (s *RosterService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.playerRepo.List(ctx)
}

func (s *RosterService) GetPlayer(ctx context.Context, name string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.playerRepo.GetByName(ctx, name)
}

func (s *RosterService) GetHistory(ctx context.Context, name string) ([]domain.ScoringEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.eventRepo.ListByPlayer(ctx, name)
}

// GetPlayerStats returns the stats row, zeroed when none exists yet.
func (s *RosterService) GetPlayerStats(ctx context.Context, name string) (*domain.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.statsRepo.Get(ctx, name)
}

func (s *RosterService) GetFranchiseStats(ctx context.Context, franchise string) (*domain.FranchiseStats, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.requireFranchise(ctx, franchise); err != nil {
		return nil, err
	}
	return s.franchiseRepo.Get(ctx, franchise)
}

func (s *RosterService) GetPeriodStats(ctx context.Context, name string) ([]domain.PeriodStat, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.periodRepo.ListByPlayer(ctx, name)
}

func (s *RosterService) ListPlayerBadges(ctx context.Context, name string) ([]domain.AwardedBadge, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.badgeRepo.ListPlayer(ctx, name)
}

func (s *RosterService) ListFranchiseBadges(ctx context.Context, franchise string) ([]domain.AwardedBadge, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.requireFranchise(ctx, franchise); err != nil {
		return nil, err
	}
	return s.badgeRepo.ListFranchise(ctx, franchise)
}

// requireFranchise resolves a franchise by its current roster. A franchise
// with no players does not exist as far as the read API is concerned.
func (s *RosterService) requireFranchise(ctx context.Context, franchise string) error {
	roster, err := s.playerRepo.ListByFranchise(ctx, franchise)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrFranchiseNotFound, franchise)
	}
	return nil
}
