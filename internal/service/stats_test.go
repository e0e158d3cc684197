package service

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"classroom-tracker/internal/domain"
)

func ts(day int) time.Time {
	return time.Date(2026, time.January, day, 10, 0, 0, 0, time.UTC)
}

func TestApplyEvent_StreakMatchesTrailingRun(t *testing.T) {
	points := []int{5, 3, -2, 4, 4, 4, 0, 1}
	s := &domain.PlayerStats{PlayerName: "Leny"}

	total := 0
	run := 0
	for i, p := range points {
		total += p
		applyEventToStats(s, p, "Action", ts(i+1), total)

		if p > 0 {
			run++
		} else {
			run = 0
		}
		if s.CurrentStreak != run {
			t.Fatalf("after event %d: streak = %d, want trailing run %d", i, s.CurrentStreak, run)
		}
	}
}

func TestApplyEvent_MaxStreakMonotonic(t *testing.T) {
	s := &domain.PlayerStats{}
	for i := 0; i < 4; i++ {
		applyEventToStats(s, 1, "Action", ts(i+1), i+1)
	}
	if s.MaxStreak != 4 {
		t.Fatalf("max streak = %d, want 4", s.MaxStreak)
	}

	applyEventToStats(s, -1, "Action", ts(5), 3)
	if s.CurrentStreak != 0 {
		t.Errorf("streak should reset on non-positive event, got %d", s.CurrentStreak)
	}
	if s.MaxStreak != 4 {
		t.Errorf("max streak should survive a reset, got %d", s.MaxStreak)
	}
}

func TestApplyEvent_ZeroPointsResetsStreak(t *testing.T) {
	s := &domain.PlayerStats{CurrentStreak: 3, MaxStreak: 3}
	applyEventToStats(s, 0, "Action", ts(1), 10)
	if s.CurrentStreak != 0 {
		t.Errorf("zero-point event should reset streak, got %d", s.CurrentStreak)
	}
}

func TestApplyEvent_LowestScoreUnconditional(t *testing.T) {
	s := &domain.PlayerStats{LowestScore: -10}
	applyEventToStats(s, 2, "Action", ts(1), -15)
	if s.LowestScore != -15 {
		t.Errorf("lowest score should track a new low even on a positive event, got %d", s.LowestScore)
	}

	applyEventToStats(s, 2, "Action", ts(2), -13)
	if s.LowestScore != -15 {
		t.Errorf("lowest score should never rise, got %d", s.LowestScore)
	}
}

func TestApplyEvent_SpecialLabelsSubstringMatch(t *testing.T) {
	s := &domain.PlayerStats{}
	applyEventToStats(s, 5, "Félicitations du directeur", ts(1), 5)
	applyEventToStats(s, 5, "Hardworker en maths", ts(2), 10)
	applyEventToStats(s, 5, "hardworker", ts(3), 15) // case-sensitive, no match

	if s.FelicitationsCount != 1 {
		t.Errorf("felicitations count = %d, want 1", s.FelicitationsCount)
	}
	if s.HardworkerCount != 1 {
		t.Errorf("hardworker count = %d, want 1", s.HardworkerCount)
	}
	if len(s.HardworkerDates) != 1 || !s.HardworkerDates[0].Equal(ts(2)) {
		t.Errorf("hardworker dates = %v, want [%v]", s.HardworkerDates, ts(2))
	}
}

func TestApplyEvent_ConsecutiveDaysCappedAndSorted(t *testing.T) {
	s := &domain.PlayerStats{}
	for day := 1; day <= 9; day++ {
		applyEventToStats(s, 1, "Action", ts(day), day)
	}
	// Same day twice must not duplicate.
	applyEventToStats(s, 1, "Action", ts(9), 10)

	want := []string{
		"2026-01-03", "2026-01-04", "2026-01-05", "2026-01-06",
		"2026-01-07", "2026-01-08", "2026-01-09",
	}
	if diff := cmp.Diff(want, s.ConsecutiveDays); diff != "" {
		t.Errorf("consecutive days mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEvent_OutOfOrderDayEvictsOldest(t *testing.T) {
	s := &domain.PlayerStats{}
	for day := 2; day <= 8; day++ {
		applyEventToStats(s, 1, "Action", ts(day), day)
	}
	// A backdated event must not evict a newer day.
	applyEventToStats(s, 1, "Action", ts(1), 8)

	if len(s.ConsecutiveDays) != 7 {
		t.Fatalf("day list length = %d, want 7", len(s.ConsecutiveDays))
	}
	if s.ConsecutiveDays[0] != "2026-01-02" {
		t.Errorf("oldest kept day = %s, want 2026-01-02", s.ConsecutiveDays[0])
	}
}

func TestRevertEvent_FlooredDecrements(t *testing.T) {
	s := &domain.PlayerStats{}
	revertEventFromStats(s, 5, "Hardworker")
	if s.CurrentStreak != 0 || s.HardworkerCount != 0 || s.WeeklyActions != 0 {
		t.Errorf("reverting with zeroed stats should not go negative: %+v", s)
	}
}

func TestRevertEvent_PopsHardworkerDate(t *testing.T) {
	s := &domain.PlayerStats{}
	applyEventToStats(s, 5, "Hardworker", ts(1), 5)
	applyEventToStats(s, 5, "Hardworker", ts(2), 10)

	revertEventFromStats(s, 5, "Hardworker")
	if s.HardworkerCount != 1 {
		t.Errorf("hardworker count = %d, want 1", s.HardworkerCount)
	}
	if len(s.HardworkerDates) != 1 || !s.HardworkerDates[0].Equal(ts(1)) {
		t.Errorf("hardworker dates = %v, want the first date only", s.HardworkerDates)
	}
}

func TestRevertEvent_NonPositiveLeavesStreak(t *testing.T) {
	s := &domain.PlayerStats{CurrentStreak: 0, MaxStreak: 6}
	revertEventFromStats(s, -3, "Action")
	// Undoing the streak-breaking event cannot restore the prior streak;
	// the incremental patch leaves it at zero.
	if s.CurrentStreak != 0 {
		t.Errorf("streak = %d, want 0", s.CurrentStreak)
	}
}

func TestFranchiseStats_ApplyAndRevert(t *testing.T) {
	s := &domain.FranchiseStats{Franchise: "Krakens"}

	applyEventToFranchise(s, 10, ts(1))
	if s.WeeklyPoints != 10 || s.MonthlyPoints != 10 {
		t.Fatalf("positive points not counted: %+v", s)
	}
	if s.NoNegativeSince == nil || !s.NoNegativeSince.Equal(ts(1)) {
		t.Fatalf("iron-wall window should start on first positive event: %v", s.NoNegativeSince)
	}

	applyEventToFranchise(s, 5, ts(2))
	if !s.NoNegativeSince.Equal(ts(1)) {
		t.Errorf("window start should not move on later positives")
	}

	applyEventToFranchise(s, -3, ts(3))
	if s.NoNegativeSince != nil {
		t.Errorf("negative event should clear the window")
	}
	if s.LastNegativeDate == nil || !s.LastNegativeDate.Equal(ts(3)) {
		t.Errorf("last negative date = %v, want %v", s.LastNegativeDate, ts(3))
	}
	if s.WeeklyPoints != 15 {
		t.Errorf("negative points must not reduce weekly sum, got %d", s.WeeklyPoints)
	}

	revertEventFromFranchise(s, 10)
	if s.WeeklyPoints != 5 || s.MonthlyPoints != 5 {
		t.Errorf("revert should subtract positive points: %+v", s)
	}
}
