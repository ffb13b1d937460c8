package tournament

import "time"

// PlayerStatus indicates whether a player currently counts toward leaderboards.
type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "active"
	PlayerInactive  PlayerStatus = "inactive"
	PlayerSuspended PlayerStatus = "suspended"
)

// MatchStatus tracks the administrative state of a recorded match. Only
// completed matches count toward statistics.
type MatchStatus string

const (
	MatchCompleted MatchStatus = "completed"
	MatchDisputed  MatchStatus = "disputed"
	MatchCancelled MatchStatus = "cancelled"
)

// GameMode is the game variant a match was played under.
type GameMode string

const (
	ModeFFA    GameMode = "FFA"
	ModeTeam   GameMode = "Team"
	ModeWonder GameMode = "Wonder"
)

// PhaseStatus tracks the lifecycle of a tournament phase.
type PhaseStatus string

const (
	PhaseUpcoming  PhaseStatus = "upcoming"
	PhaseActive    PhaseStatus = "active"
	PhaseCompleted PhaseStatus = "completed"
	PhaseCancelled PhaseStatus = "cancelled"
)

// PhaseFormat is the competition format of a phase.
type PhaseFormat string

const (
	FormatLeague      PhaseFormat = "league"
	FormatElimination PhaseFormat = "elimination"
	FormatGroupStage  PhaseFormat = "group_stage"
	FormatFinals      PhaseFormat = "finals"
)

// Category is one of the four fixed skill dimensions scored per match.
type Category string

const (
	CategoryMilitary   Category = "military"
	CategoryEconomy    Category = "economy"
	CategoryTechnology Category = "technology"
	CategorySociety    Category = "society"
)

// Categories lists the four categories in their canonical order.
var Categories = []Category{CategoryMilitary, CategoryEconomy, CategoryTechnology, CategorySociety}

// CategoryScores holds the four per-category scores of one participant in
// one match.
type CategoryScores struct {
	Military   int `json:"military"`
	Economy    int `json:"economy"`
	Technology int `json:"technology"`
	Society    int `json:"society"`
}

// Total returns the sum of the four category scores.
func (s CategoryScores) Total() int {
	return s.Military + s.Economy + s.Technology + s.Society
}

// Get returns the score for a single category.
func (s CategoryScores) Get(c Category) int {
	switch c {
	case CategoryMilitary:
		return s.Military
	case CategoryEconomy:
		return s.Economy
	case CategoryTechnology:
		return s.Technology
	case CategorySociety:
		return s.Society
	}
	return 0
}

// CategoryStats is the running worst/average/best triple for one category.
// Worst uses 0 as the "no score recorded yet" sentinel; the first recorded
// score sets all three fields.
type CategoryStats struct {
	Worst   int     `json:"worst"`
	Average float64 `json:"average"`
	Best    int     `json:"best"`
}

// CategoryStatsSet holds the running stats for all four categories.
type CategoryStatsSet struct {
	Military   CategoryStats `json:"military"`
	Economy    CategoryStats `json:"economy"`
	Technology CategoryStats `json:"technology"`
	Society    CategoryStats `json:"society"`
}

// stat returns a mutable pointer to the stats for a single category.
func (s *CategoryStatsSet) stat(c Category) *CategoryStats {
	switch c {
	case CategoryMilitary:
		return &s.Military
	case CategoryEconomy:
		return &s.Economy
	case CategoryTechnology:
		return &s.Technology
	case CategorySociety:
		return &s.Society
	}
	return nil
}

// Get returns the stats for a single category by value.
func (s CategoryStatsSet) Get(c Category) CategoryStats {
	return *(&s).stat(c)
}

// HistoryEntry is a compact summary of one match from a single player's
// perspective, kept most-recent-first on the player record.
type HistoryEntry struct {
	MatchID      string         `json:"matchId"`
	Date         time.Time      `json:"date"`
	Map          string         `json:"map"`
	Duration     int            `json:"duration"`
	Position     int            `json:"position"`
	TotalPlayers int            `json:"totalPlayers"`
	Scores       CategoryScores `json:"scores"`
	TotalScore   int            `json:"totalScore"`
	Opponents    []string       `json:"opponents"`
}

// Player is a registered tournament participant with cumulative statistics.
type Player struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Avatar               string           `json:"avatar,omitempty"`
	FavoriteStrategy     string           `json:"favoriteStrategy,omitempty"`
	FavoriteCivilization string           `json:"favoriteCivilization,omitempty"`
	Status               PlayerStatus     `json:"status"`
	JoinDate             string           `json:"joinDate,omitempty"`
	Matches              int              `json:"matches"`
	Wins                 int              `json:"wins"`
	Points               int              `json:"points"`
	CategoryStats        CategoryStatsSet `json:"categoryStats"`
	MatchHistory         []HistoryEntry   `json:"matchHistory"`

	// Version guards against lost updates when two match ingestions share a
	// player. Incremented on every stats write.
	Version int64 `json:"-"`
}

// Losses is the number of matches the player did not win.
func (p *Player) Losses() int {
	return p.Matches - p.Wins
}

// WinRatio returns the win percentage (0-100).
func (p *Player) WinRatio() float64 {
	if p.Matches == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Matches) * 100
}

// TotalAverage is the mean of the four category running averages.
func (p *Player) TotalAverage() float64 {
	s := p.CategoryStats
	return (s.Military.Average + s.Economy.Average + s.Technology.Average + s.Society.Average) / 4
}

// MatchPlayer is one participant's record inside a match: a snapshot of the
// player's name and scores at submission time, decoupled from later profile
// edits.
type MatchPlayer struct {
	PlayerID      string         `json:"playerId"`
	PlayerName    string         `json:"playerName"`
	Scores        CategoryScores `json:"scores"`
	TotalScore    int            `json:"totalScore"`
	FinalPosition int            `json:"finalPosition"`
	PointsEarned  int            `json:"pointsEarned"`
}

// Winner is the cached snapshot of the participant who finished first.
type Winner struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// Match is a single recorded game.
type Match struct {
	ID           string        `json:"id"`
	PhaseID      string        `json:"phaseId"`
	Date         time.Time     `json:"date"`
	Duration     int           `json:"duration"`
	Map          string        `json:"map"`
	GameMode     GameMode      `json:"gameMode"`
	TotalPlayers int           `json:"totalPlayers"`
	Players      []MatchPlayer `json:"players"`
	Winner       Winner        `json:"winner"`
	Status       MatchStatus   `json:"status"`
	Notes        string        `json:"notes,omitempty"`
	AdminNotes   string        `json:"adminNotes,omitempty"`
	CreatedBy    string        `json:"createdBy,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Phase is a named sub-period of the tournament used to group matches.
type Phase struct {
	ID               string      `json:"phaseId"`
	Name             string      `json:"name"`
	Description      string      `json:"description,omitempty"`
	StartDate        time.Time   `json:"startDate"`
	EndDate          *time.Time  `json:"endDate,omitempty"`
	Status           PhaseStatus `json:"status"`
	Rules            string      `json:"rules,omitempty"`
	MaxPlayers       int         `json:"maxPlayers,omitempty"`
	Format           PhaseFormat `json:"format"`
	PointsMultiplier float64     `json:"pointsMultiplier"`
}

// IsActive reports whether the phase is currently running.
func (p *Phase) IsActive(now time.Time) bool {
	if p.Status != PhaseActive {
		return false
	}
	if p.StartDate.After(now) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(now)
}
