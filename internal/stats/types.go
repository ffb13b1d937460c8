package stats

import (
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// Store defines the read operations the aggregation engine needs.
type Store interface {
	GetPlayer(id string) (*tournament.Player, error)
	ListPlayers(filter store.PlayerFilter) ([]*tournament.Player, error)
	CountPlayers(filter store.PlayerFilter) (int, error)
	ListMatches(filter store.MatchFilter) ([]*tournament.Match, error)
	CountMatches(filter store.MatchFilter) (int, error)
	GetPhase(id string) (*tournament.Phase, error)
}

// Engine computes tournament-wide derived views. It holds no state of its
// own; every read goes to the store and is folded on demand.
type Engine struct {
	store Store
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank             int                           `json:"rank"`
	PlayerID         string                        `json:"playerId"`
	Name             string                        `json:"name"`
	Avatar           string                        `json:"avatar,omitempty"`
	Points           int                           `json:"points"`
	Wins             int                           `json:"wins"`
	Matches          int                           `json:"matches"`
	Losses           int                           `json:"losses"`
	WinRatio         float64                       `json:"winRatio"`
	TotalAverage     float64                       `json:"totalAverage"`
	CategoryAverages map[tournament.Category]float64 `json:"categoryAverages"`
}

// PhaseLeaderboardEntry is one row of a per-phase leaderboard, folded from
// that phase's completed matches only.
type PhaseLeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Matches    int     `json:"matches"`
	Wins       int     `json:"wins"`
	Points     int     `json:"points"`
	TotalScore int     `json:"totalScore"`
	WinRatio   float64 `json:"winRatio"`
	AvgScore   int     `json:"avgScore"`
}

// CategoryLeader is the active player with the highest best score in one
// category.
type CategoryLeader struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Value    int    `json:"value"`
}

// RatioLeader is the active player with the best win ratio.
type RatioLeader struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Ratio    float64 `json:"ratio"`
}

// MapStats aggregates completed matches played on one map.
type MapStats struct {
	Map          string `json:"map"`
	TotalMatches int    `json:"totalMatches"`
	AvgDuration  int    `json:"avgDuration"`
	AvgScore     int    `json:"avgScore"`
}

// MatchRef is a compact reference to a single match used in summaries.
type MatchRef struct {
	MatchID  string `json:"matchId"`
	Map      string `json:"map"`
	Duration int    `json:"duration"`
}

// DurationStats summarizes completed match durations.
type DurationStats struct {
	TotalMatches    int       `json:"totalMatches"`
	LongestMatch    *MatchRef `json:"longestMatch,omitempty"`
	ShortestMatch   *MatchRef `json:"shortestMatch,omitempty"`
	AverageDuration float64   `json:"averageDuration"`
}

// LeaderRef is a compact leader snapshot for the tournament summary.
type LeaderRef struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Wins     int    `json:"wins"`
	Matches  int    `json:"matches"`
}

// Summary is the composite tournament-wide read.
type Summary struct {
	TotalPlayers     int                                     `json:"totalPlayers"`
	TotalMatches     int                                     `json:"totalMatches"`
	Leader           *LeaderRef                              `json:"leader"`
	BestRatioPlayer  *RatioLeader                            `json:"bestRatioPlayer"`
	BestInCategories map[tournament.Category]*CategoryLeader `json:"bestInCategories"`
	MatchStats       DurationStats                           `json:"matchStats"`
}

// ActivityDetails carries the human-facing fields of one activity entry.
type ActivityDetails struct {
	Map      string `json:"map"`
	Duration string `json:"duration"`
	Players  int    `json:"players"`
	Winner   string `json:"winner"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Details     ActivityDetails `json:"details"`
}

// PlayerBasicStats is the headline block of a player's detailed stats.
type PlayerBasicStats struct {
	Matches      int     `json:"matches"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Points       int     `json:"points"`
	WinRatio     float64 `json:"winRatio"`
	TotalAverage float64 `json:"totalAverage"`
}

// PlayerPerformance singles out a player's strongest and weakest matches.
type PlayerPerformance struct {
	BestMatch  *tournament.HistoryEntry `json:"bestMatch"`
	WorstMatch *tournament.HistoryEntry `json:"worstMatch"`
}

// PlayerDetails is the full detailed-stats read for one player.
type PlayerDetails struct {
	Basic         PlayerBasicStats           `json:"basic"`
	Categories    tournament.CategoryStatsSet `json:"categories"`
	RecentMatches []tournament.HistoryEntry  `json:"recentMatches"`
	Performance   PlayerPerformance          `json:"performance"`
}
