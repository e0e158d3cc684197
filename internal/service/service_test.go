package service

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"classroom-tracker/internal/api"
	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
	"classroom-tracker/internal/database"
	"classroom-tracker/internal/domain"
	"classroom-tracker/internal/repository"
)

// testEnv wires the full service stack against an in-memory database with
// the production schema applied.
type testEnv struct {
	db         *sql.DB
	scoring    *ScoringService
	engine     *BadgeEngine
	ranking    *RankingService
	roster     *RosterService
	hallOfFame *HallOfFameService
	registry   *catalog.Registry

	players    *repository.PlayerRepository
	events     *repository.EventRepository
	stats      *repository.StatsRepository
	franchises *repository.FranchiseStatsRepository
	periods    *repository.PeriodStatRepository
	badges     *repository.BadgeRepository
	hofRepo    *repository.HallOfFameRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	log := zerolog.Nop()
	if err := database.Migrate(db, log); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		TeacherPassword: "secret",
		CategoryDefault: domain.CategoryGeneral,
	}

	env := &testEnv{
		db:         db,
		registry:   catalog.Default(),
		players:    repository.NewPlayerRepository(db, log),
		events:     repository.NewEventRepository(db, log),
		stats:      repository.NewStatsRepository(db, log),
		franchises: repository.NewFranchiseStatsRepository(db, log),
		periods:    repository.NewPeriodStatRepository(db, log),
		badges:     repository.NewBadgeRepository(db, log),
		hofRepo:    repository.NewHallOfFameRepository(db, log),
	}

	announcer := api.NewAnnouncer(cfg, log)
	env.engine = NewBadgeEngine(db, env.registry, env.players, env.stats, env.franchises, env.events, env.badges, announcer, log)
	env.hallOfFame = NewHallOfFameService(db, env.hofRepo, log)
	env.scoring = NewScoringService(db, cfg, env.players, env.events, env.stats, env.franchises, env.periods, env.engine, env.hallOfFame, log)
	env.ranking = NewRankingService(db, env.players, env.stats, env.franchises, env.engine, log)
	env.roster = NewRosterService(env.players, env.events, env.stats, env.franchises, env.periods, env.badges, log)

	return env
}

func (env *testEnv) addPlayer(t *testing.T, name, franchise string) {
	t.Helper()
	if _, err := env.players.Create(context.Background(), name, franchise); err != nil {
		t.Fatalf("failed to create player %s: %v", name, err)
	}
}

func (env *testEnv) apply(t *testing.T, name string, points int, action string) *ScoreResult {
	t.Helper()
	result, err := env.scoring.ApplyScoringEvent(context.Background(), name, points, action, "M. Dupont")
	if err != nil {
		t.Fatalf("failed to apply event for %s: %v", name, err)
	}
	if result.Degraded {
		t.Fatalf("scoring for %s reported a degraded result", name)
	}
	return result
}

func (env *testEnv) playerScore(t *testing.T, name string) int {
	t.Helper()
	player, err := env.players.GetByName(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to get player %s: %v", name, err)
	}
	return player.Score
}

func (env *testEnv) playerBadgeCount(t *testing.T, name string, badgeID catalog.BadgeID) int {
	t.Helper()
	badges, err := env.badges.ListPlayer(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to list badges for %s: %v", name, err)
	}
	count := 0
	for _, b := range badges {
		if b.BadgeID == string(badgeID) {
			count++
		}
	}
	return count
}

func (env *testEnv) franchiseBadgeCount(t *testing.T, franchise string, badgeID catalog.BadgeID) int {
	t.Helper()
	badges, err := env.badges.ListFranchise(context.Background(), franchise)
	if err != nil {
		t.Fatalf("failed to list badges for %s: %v", franchise, err)
	}
	count := 0
	for _, b := range badges {
		if b.BadgeID == string(badgeID) {
			count++
		}
	}
	return count
}

func (env *testEnv) bonusEventCount(t *testing.T, name, badgeName string) int {
	t.Helper()
	history, err := env.events.ListByPlayer(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to list history for %s: %v", name, err)
	}
	count := 0
	for _, e := range history {
		if e.Teacher == SystemTeacher && e.Action == "Badge: "+badgeName {
			count++
		}
	}
	return count
}
