package service

import (
	"sort"
	"strings"
	"time"

	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
)

// Action label fragments with dedicated counters. Substring match is
// deliberate: near-variant labels ("Félicitations du prof") still count.
const (
	felicitationsLabel = "Félicitations"
	hardworkerLabel    = "Hardworker"
)

const dayFormat = "2006-01-02"

// applyEventToStats folds one scoring event into a player's stats row.
// newTotal is the running score after the event.
func applyEventToStats(s *domain.PlayerStats, points int, action string, ts time.Time, newTotal int) {
	if points > 0 {
		s.CurrentStreak++
		if s.CurrentStreak > s.MaxStreak {
			s.MaxStreak = s.CurrentStreak
		}
		recordActiveDay(s, ts)
	} else {
		s.CurrentStreak = 0
	}

	if strings.Contains(action, felicitationsLabel) {
		s.FelicitationsCount++
	}
	if strings.Contains(action, hardworkerLabel) {
		s.HardworkerCount++
		s.HardworkerDates = append(s.HardworkerDates, ts)
	}

	s.WeeklyActions++
	s.MonthlyActions++

	if newTotal < s.LowestScore {
		s.LowestScore = newTotal
	}
}

// revertEventFromStats undoes the incremental effect of an event. This is an
// approximation, not a replay: the pre-event streak value is unknown, so the
// streak is decremented with a floor at zero, and lowest_score, max_streak
// and the active-day list are left as recorded.
func revertEventFromStats(s *domain.PlayerStats, points int, action string) {
	if points > 0 && s.CurrentStreak > 0 {
		s.CurrentStreak--
	}

	if strings.Contains(action, felicitationsLabel) && s.FelicitationsCount > 0 {
		s.FelicitationsCount--
	}
	if strings.Contains(action, hardworkerLabel) {
		if s.HardworkerCount > 0 {
			s.HardworkerCount--
		}
		if n := len(s.HardworkerDates); n > 0 {
			s.HardworkerDates = s.HardworkerDates[:n-1]
		}
	}

	if s.WeeklyActions > 0 {
		s.WeeklyActions--
	}
	if s.MonthlyActions > 0 {
		s.MonthlyActions--
	}
}

// recordActiveDay appends the event's calendar day if not already present,
// keeping at most the most recent days. The list is sorted before truncation
// so a non-chronological insert never evicts the wrong day.
func recordActiveDay(s *domain.PlayerStats, ts time.Time) {
	day := ts.Format(dayFormat)
	for _, d := range s.ConsecutiveDays {
		if d == day {
			return
		}
	}

	s.ConsecutiveDays = append(s.ConsecutiveDays, day)
	sort.Strings(s.ConsecutiveDays)
	if len(s.ConsecutiveDays) > constants.ConsecutiveDaysCap {
		s.ConsecutiveDays = s.ConsecutiveDays[len(s.ConsecutiveDays)-constants.ConsecutiveDaysCap:]
	}
}

// applyEventToFranchise folds one event into the franchise stats row.
// Negative events break the iron-wall window; positive events start it when
// unset.
func applyEventToFranchise(s *domain.FranchiseStats, points int, ts time.Time) {
	if points > 0 {
		s.WeeklyPoints += points
		s.MonthlyPoints += points
		if s.NoNegativeSince == nil {
			t := ts
			s.NoNegativeSince = &t
		}
		return
	}

	if points < 0 {
		t := ts
		s.LastNegativeDate = &t
		s.NoNegativeSince = nil
	}
}

// revertEventFromFranchise undoes the counter effect of an event. The
// iron-wall window and last-negative markers are left as recorded, matching
// the incremental-patch undo policy.
func revertEventFromFranchise(s *domain.FranchiseStats, points int) {
	if points > 0 {
		s.WeeklyPoints -= points
		if s.WeeklyPoints < 0 {
			s.WeeklyPoints = 0
		}
		s.MonthlyPoints -= points
		if s.MonthlyPoints < 0 {
			s.MonthlyPoints = 0
		}
	}
}
