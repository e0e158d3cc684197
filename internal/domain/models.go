package domain

import (
	"time"
)

type Player struct {
	ID        int64
	Name      string
	Franchise string
	Score     int
	Drafted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ScoringEvent struct {
	ID         int64 // insertion order, authoritative
	PlayerName string
	Action     string
	Points     int
	Category   Category
	Timestamp  time.Time
	NewTotal   int // running score after the event
	Teacher    string
}

type PlayerStats struct {
	PlayerName         string
	CurrentStreak      int
	MaxStreak          int
	LowestScore        int
	ConsecutiveDays    []string // calendar days (YYYY-MM-DD), at most 7, oldest first
	FelicitationsCount int
	HardworkerCount    int
	HardworkerDates    []time.Time
	WeeklyActions      int
	MonthlyActions     int
	WasBottomTwo       bool
	UpdatedAt          time.Time
}

type FranchiseStats struct {
	Franchise        string
	WeeklyPoints     int
	MonthlyPoints    int
	LastNegativeDate *time.Time
	BestRankDuration int // observation windows spent at rank #1
	NoNegativeSince  *time.Time
	UpdatedAt        time.Time
}

type PeriodType string

const (
	PeriodWeek      PeriodType = "week"
	PeriodMonth     PeriodType = "month"
	PeriodTrimester PeriodType = "trimester"
)

type PeriodStat struct {
	PlayerName     string
	PeriodType     PeriodType
	PeriodStart    time.Time
	SportPoints    int
	AcademicPoints int
	TotalPoints    int
	ActionCount    int
}

// AwardedBadge is a badge attributed to a player or a franchise. Subject is
// the player name or franchise name depending on which table the row lives in.
type AwardedBadge struct {
	ID        string // nanoid
	Subject   string
	BadgeID   string
	AwardedAt time.Time
}

type HallOfFameRecord struct {
	ID         string // nanoid
	Kind       string // "milestone" or "high_score"
	PlayerName string
	Value      int    // milestone threshold or record score
	Current    bool   // false once superseded
	RecordedAt time.Time
}
