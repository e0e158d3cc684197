package catalog

import (
	"classroom-tracker/internal/constants"
	"classroom-tracker/internal/domain"
)

type BadgeID string

const (
	// Individual, predicate.
	BadgeFirstBlood  BadgeID = "first_blood"
	BadgeHalfCentury BadgeID = "half_century"
	BadgeCenturion   BadgeID = "centurion"
	BadgeHotStreak   BadgeID = "hot_streak"
	BadgeMarathon    BadgeID = "marathon"
	BadgePhoenix     BadgeID = "phoenix"
	BadgeTeachersPet BadgeID = "teachers_pet"
	BadgeRegular     BadgeID = "regular"
	BadgeWorkhorse   BadgeID = "workhorse"

	// Individual, bespoke (evaluated outside the generic predicate loop).
	BadgeOnFire      BadgeID = "on_fire"
	BadgeComebackKid BadgeID = "comeback_kid"
	BadgeSanta       BadgeID = "santa"

	// Franchise, predicate.
	BadgeTeamSpirit BadgeID = "team_spirit"
	BadgeDynasty    BadgeID = "dynasty"
	BadgeFullHouse  BadgeID = "full_house"

	// Franchise, bespoke.
	BadgeIronWall BadgeID = "iron_wall"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// PlayerPredicate is a pure condition over a player's stats row and record.
type PlayerPredicate func(stats domain.PlayerStats, player domain.Player) bool

// FranchisePredicate is a pure condition over a franchise's stats row and its
// current roster.
type FranchisePredicate func(stats domain.FranchiseStats, roster []domain.Player) bool

// Badge is a static catalog entry. Exactly one of PlayerPredicate and
// FranchisePredicate is set for predicate badges; both are nil for bespoke
// badges, which the engine evaluates with dedicated logic keyed by ID.
type Badge struct {
	ID                 BadgeID
	Name               string
	Rarity             Rarity
	Bonus              int
	PlayerPredicate    PlayerPredicate
	FranchisePredicate FranchisePredicate
}

// Bespoke reports whether the badge has no generic predicate.
func (b Badge) Bespoke() bool {
	return b.PlayerPredicate == nil && b.FranchisePredicate == nil
}

// Registry is an immutable badge catalog. Construct with Default; never
// mutate after construction, the engine shares one instance across requests.
type Registry struct {
	player    []Badge
	franchise []Badge
	byID      map[BadgeID]Badge
}

func Default() *Registry {
	player := []Badge{
		{ID: BadgeFirstBlood, Name: "First Blood", Rarity: RarityCommon, Bonus: 1,
			PlayerPredicate: func(_ domain.PlayerStats, p domain.Player) bool { return p.Score >= 1 }},
		{ID: BadgeHalfCentury, Name: "Half Century", Rarity: RarityCommon, Bonus: 5,
			PlayerPredicate: func(_ domain.PlayerStats, p domain.Player) bool { return p.Score >= 50 }},
		{ID: BadgeCenturion, Name: "Centurion", Rarity: RarityRare, Bonus: 10,
			PlayerPredicate: func(_ domain.PlayerStats, p domain.Player) bool { return p.Score >= 100 }},
		{ID: BadgeHotStreak, Name: "Hot Streak", Rarity: RarityRare, Bonus: 5,
			PlayerPredicate: func(s domain.PlayerStats, _ domain.Player) bool { return s.CurrentStreak >= 5 }},
		{ID: BadgeMarathon, Name: "Marathon", Rarity: RarityEpic, Bonus: 10,
			PlayerPredicate: func(s domain.PlayerStats, _ domain.Player) bool { return s.MaxStreak >= 10 }},
		{ID: BadgePhoenix, Name: "Phoenix", Rarity: RarityLegendary, Bonus: 20,
			PlayerPredicate: func(s domain.PlayerStats, p domain.Player) bool {
				return s.LowestScore <= -50 && p.Score >= 50
			}},
		{ID: BadgeTeachersPet, Name: "Chouchou", Rarity: RarityRare, Bonus: 5,
			PlayerPredicate: func(s domain.PlayerStats, _ domain.Player) bool { return s.FelicitationsCount >= 3 }},
		{ID: BadgeRegular, Name: "Regular", Rarity: RarityRare, Bonus: 5,
			PlayerPredicate: func(s domain.PlayerStats, _ domain.Player) bool { return len(s.ConsecutiveDays) >= 5 }},
		{ID: BadgeWorkhorse, Name: "Workhorse", Rarity: RarityEpic, Bonus: 10,
			PlayerPredicate: func(s domain.PlayerStats, _ domain.Player) bool { return s.MonthlyActions >= 20 }},
		{ID: BadgeOnFire, Name: "On Fire", Rarity: RarityEpic, Bonus: 10},
		{ID: BadgeComebackKid, Name: "Comeback Kid", Rarity: RarityLegendary, Bonus: 15},
		{ID: BadgeSanta, Name: "Père Noël", Rarity: RarityEpic, Bonus: 10},
	}

	franchise := []Badge{
		{ID: BadgeTeamSpirit, Name: "Team Spirit", Rarity: RarityRare, Bonus: 0,
			FranchisePredicate: func(s domain.FranchiseStats, _ []domain.Player) bool {
				return s.WeeklyPoints >= 100
			}},
		{ID: BadgeDynasty, Name: "Dynasty", Rarity: RarityLegendary, Bonus: 0,
			FranchisePredicate: func(s domain.FranchiseStats, _ []domain.Player) bool {
				return s.BestRankDuration >= constants.DynastyRankWindows
			}},
		{ID: BadgeFullHouse, Name: "Full House", Rarity: RarityEpic, Bonus: 0,
			FranchisePredicate: func(_ domain.FranchiseStats, roster []domain.Player) bool {
				if len(roster) == 0 {
					return false
				}
				for _, p := range roster {
					if p.Score <= 0 {
						return false
					}
				}
				return true
			}},
		{ID: BadgeIronWall, Name: "Iron Wall", Rarity: RarityLegendary, Bonus: 0},
	}

	byID := make(map[BadgeID]Badge, len(player)+len(franchise))
	for _, b := range player {
		byID[b.ID] = b
	}
	for _, b := range franchise {
		byID[b.ID] = b
	}

	return &Registry{player: player, franchise: franchise, byID: byID}
}

// PlayerBadges returns the individual badge definitions in catalog order.
func (r *Registry) PlayerBadges() []Badge {
	return r.player
}

// FranchiseBadges returns the collective badge definitions in catalog order.
func (r *Registry) FranchiseBadges() []Badge {
	return r.franchise
}

// Get looks up a badge definition by id.
func (r *Registry) Get(id BadgeID) (Badge, bool) {
	b, ok := r.byID[id]
	return b, ok
}
