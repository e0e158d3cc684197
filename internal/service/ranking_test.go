package service

import (
	"context"
	"errors"
	"testing"

	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
)

func TestRunRankingCheck_DynastyAfterSustainedLead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPlayer(t, "Leny", "Minotaurs")
	env.addPlayer(t, "Swan", "Krakens")
	if _, err := env.players.AddScore(ctx, "Leny", 50); err != nil {
		t.Fatalf("failed to seed score: %v", err)
	}

	for i := 0; i < constants.DynastyRankWindows; i++ {
		if err := env.ranking.RunRankingCheck(ctx); err != nil {
			t.Fatalf("ranking check %d failed: %v", i, err)
		}
	}

	stats, err := env.franchises.Get(ctx, "Minotaurs")
	if err != nil {
		t.Fatalf("failed to get franchise stats: %v", err)
	}
	if stats.BestRankDuration != constants.DynastyRankWindows {
		t.Errorf("best rank duration = %d, want %d", stats.BestRankDuration, constants.DynastyRankWindows)
	}

	if n := env.franchiseBadgeCount(t, "Minotaurs", catalog.BadgeDynasty); n != 1 {
		t.Errorf("dynasty rows = %d, want 1", n)
	}
	if n := env.franchiseBadgeCount(t, "Krakens", catalog.BadgeDynasty); n != 0 {
		t.Errorf("trailing franchise must not earn dynasty, rows = %d", n)
	}
}

func TestResetWeeklyCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPlayer(t, "Marie", "Krakens")
	env.apply(t, "Marie", 10, "Bon travail")

	stats, err := env.stats.Get(ctx, "Marie")
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.WeeklyActions == 0 {
		t.Fatal("expected weekly actions before reset")
	}

	if err := env.ranking.ResetWeeklyCounters(ctx); err != nil {
		t.Fatalf("weekly reset failed: %v", err)
	}

	stats, err = env.stats.Get(ctx, "Marie")
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.WeeklyActions != 0 {
		t.Errorf("weekly actions after reset = %d, want 0", stats.WeeklyActions)
	}
	if stats.MonthlyActions == 0 {
		t.Error("weekly reset must not touch monthly actions")
	}

	fstats, err := env.franchises.Get(ctx, "Krakens")
	if err != nil {
		t.Fatalf("failed to get franchise stats: %v", err)
	}
	if fstats.WeeklyPoints != 0 {
		t.Errorf("franchise weekly points after reset = %d, want 0", fstats.WeeklyPoints)
	}
	if fstats.MonthlyPoints == 0 {
		t.Error("weekly reset must not touch franchise monthly points")
	}
}

func TestResetMonthlyCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPlayer(t, "Marie", "Krakens")
	env.apply(t, "Marie", 10, "Bon travail")

	if err := env.ranking.ResetMonthlyCounters(ctx); err != nil {
		t.Fatalf("monthly reset failed: %v", err)
	}

	stats, err := env.stats.Get(ctx, "Marie")
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.MonthlyActions != 0 {
		t.Errorf("monthly actions after reset = %d, want 0", stats.MonthlyActions)
	}

	fstats, err := env.franchises.Get(ctx, "Krakens")
	if err != nil {
		t.Fatalf("failed to get franchise stats: %v", err)
	}
	if fstats.MonthlyPoints != 0 {
		t.Errorf("franchise monthly points after reset = %d, want 0", fstats.MonthlyPoints)
	}
}

func TestRosterLifecycle_CascadesOnRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.roster.AddStudent(ctx, "Ethaniel", "Werewolves"); err != nil {
		t.Fatalf("add student failed: %v", err)
	}
	env.apply(t, "Ethaniel", 10, "Bon travail")

	if err := env.roster.RemoveStudent(ctx, "Ethaniel"); err != nil {
		t.Fatalf("remove student failed: %v", err)
	}

	if _, err := env.roster.GetPlayer(ctx, "Ethaniel"); err == nil {
		t.Fatal("removed player should not resolve")
	}

	history, err := env.events.ListByPlayer(ctx, "Ethaniel")
	if err != nil {
		t.Fatalf("history query failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history rows after cascade = %d, want 0", len(history))
	}

	badges, err := env.badges.ListPlayer(ctx, "Ethaniel")
	if err != nil {
		t.Fatalf("badge query failed: %v", err)
	}
	if len(badges) != 0 {
		t.Errorf("badge rows after cascade = %d, want 0", len(badges))
	}
}

func TestChangeFranchise_MovesPlayer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPlayer(t, "Lisa L", "Werewolves")
	if err := env.roster.ChangeFranchise(ctx, "Lisa L", "Krakens"); err != nil {
		t.Fatalf("change franchise failed: %v", err)
	}

	player, err := env.roster.GetPlayer(ctx, "Lisa L")
	if err != nil {
		t.Fatalf("get player failed: %v", err)
	}
	if player.Franchise != "Krakens" {
		t.Errorf("franchise = %s, want Krakens", player.Franchise)
	}

	if err := env.roster.ChangeFranchise(ctx, "Personne", "Krakens"); !isNotFound(err) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestFranchiseReads_UnknownFranchise(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPlayer(t, "Djilane", "Minotaurs")

	if _, err := env.roster.GetFranchiseStats(ctx, "Minotaurs"); err != nil {
		t.Fatalf("stats for a known franchise failed: %v", err)
	}
	if _, err := env.roster.GetFranchiseStats(ctx, "Chimères"); !errors.Is(err, domain.ErrFranchiseNotFound) {
		t.Errorf("expected ErrFranchiseNotFound, got %v", err)
	}
	if _, err := env.roster.ListFranchiseBadges(ctx, "Chimères"); !errors.Is(err, domain.ErrFranchiseNotFound) {
		t.Errorf("expected ErrFranchiseNotFound, got %v", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrPlayerNotFound)
}
