package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	AnnounceTimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Scheduler intervals. Weekly and monthly resets also run hourly and detect
// period boundaries themselves, so a restart never skips a reset.
const (
	RankingCheckInterval = 1 * time.Hour
	ResetCheckInterval   = 1 * time.Hour
)

// Stat tracking bounds.
const (
	ConsecutiveDaysCap  = 7
	HardworkerWindow    = 14 * 24 * time.Hour
	SantaTrailingWindow = 7 * 24 * time.Hour
	IronWallDuration    = 2 * 30 * 24 * time.Hour // two months, fixed-length
)

// Ranking thresholds for the comeback badge.
const (
	BottomRankCount = 2
	TopRankCount    = 3
)

// DynastyRankWindows is how many hourly ranking checks a franchise must spend
// at #1 before the dynasty badge fires.
const DynastyRankWindows = 8

// Hall of fame milestone thresholds, ascending.
var MilestoneThresholds = []int{50, 100, 200}
