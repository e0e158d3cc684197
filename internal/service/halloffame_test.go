package service

import (
	"context"
	"testing"
	"time"

	"classroom-tracker/internal/repository"
)

func TestHallOfFame_MilestonesFirstClaimOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.hallOfFame.UpdateForScore(ctx, "Leny", 120, time.Now()); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// A later player passing the same thresholds claims nothing.
	if err := env.hallOfFame.UpdateForScore(ctx, "Swan", 130, time.Now()); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	records, err := env.hallOfFame.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	milestones := map[int]string{}
	for _, r := range records {
		if r.Kind == repository.HallOfFameMilestone {
			milestones[r.Value] = r.PlayerName
		}
	}

	if len(milestones) != 2 {
		t.Fatalf("milestones = %v, want thresholds 50 and 100 only", milestones)
	}
	for _, threshold := range []int{50, 100} {
		if milestones[threshold] != "Leny" {
			t.Errorf("milestone %d attributed to %q, want Leny", threshold, milestones[threshold])
		}
	}
}

func TestHallOfFame_HighScoreSupersession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.hallOfFame.UpdateForScore(ctx, "Leny", 40, time.Now()); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := env.hallOfFame.UpdateForScore(ctx, "Swan", 45, time.Now()); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// A lower score never takes the record.
	if err := env.hallOfFame.UpdateForScore(ctx, "Marie", 30, time.Now()); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	current, err := env.hofRepo.CurrentHighScore(ctx)
	if err != nil {
		t.Fatalf("failed to get high score: %v", err)
	}
	if current == nil || current.PlayerName != "Swan" || current.Value != 45 {
		t.Fatalf("current record = %+v, want Swan at 45", current)
	}

	records, err := env.hallOfFame.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var highRows, currentRows int
	for _, r := range records {
		if r.Kind == repository.HallOfFameHighScore {
			highRows++
			if r.Current {
				currentRows++
			}
		}
	}
	if highRows != 2 {
		t.Errorf("high score rows = %d, want superseded record retained (2)", highRows)
	}
	if currentRows != 1 {
		t.Errorf("current rows = %d, want exactly 1", currentRows)
	}
}
