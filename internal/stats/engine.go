package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// New creates a new aggregation Engine.
func New(s Store) *Engine {
	return &Engine{store: s}
}

// recentHistorySize caps how many history entries a detailed player read returns.
const recentHistorySize = 10

// Leaderboard returns the global ranking of active players ordered by points
// desc, then wins desc, then matches asc (fewer matches ranks higher on equal
// points and wins).
func (e *Engine) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	players, err := e.store.ListPlayers(store.PlayerFilter{
		Status: tournament.PlayerActive,
		SortBy: "points",
		Order:  "desc",
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			PlayerID:     p.ID,
			Name:         p.Name,
			Avatar:       p.Avatar,
			Points:       p.Points,
			Wins:         p.Wins,
			Matches:      p.Matches,
			Losses:       p.Losses(),
			WinRatio:     round1(p.WinRatio()),
			TotalAverage: p.TotalAverage(),
			CategoryAverages: map[tournament.Category]float64{
				tournament.CategoryMilitary:   p.CategoryStats.Military.Average,
				tournament.CategoryEconomy:    p.CategoryStats.Economy.Average,
				tournament.CategoryTechnology: p.CategoryStats.Technology.Average,
				tournament.CategorySociety:    p.CategoryStats.Society.Average,
			},
		})
	}
	return entries, nil
}

// PhaseLeaderboard folds all completed matches of a phase into a transient
// per-player accumulator and ranks the result by points desc, wins desc.
func (e *Engine) PhaseLeaderboard(phaseID string, limit int) ([]PhaseLeaderboardEntry, error) {
	if _, err := e.store.GetPhase(phaseID); err != nil {
		return nil, err
	}

	matches, err := e.store.ListMatches(store.MatchFilter{
		PhaseID: phaseID,
		Status:  tournament.MatchCompleted,
	})
	if err != nil {
		return nil, err
	}

	acc := make(map[string]*PhaseLeaderboardEntry)
	for _, m := range matches {
		for _, p := range m.Players {
			entry, ok := acc[p.PlayerID]
			if !ok {
				entry = &PhaseLeaderboardEntry{PlayerID: p.PlayerID, PlayerName: p.PlayerName}
				acc[p.PlayerID] = entry
			}
			entry.Matches++
			entry.Points += p.PointsEarned
			entry.TotalScore += p.TotalScore
			if p.FinalPosition == 1 {
				entry.Wins++
			}
		}
	}

	leaderboard := make([]PhaseLeaderboardEntry, 0, len(acc))
	for _, entry := range acc {
		leaderboard = append(leaderboard, *entry)
	}
	sort.Slice(leaderboard, func(i, j int) bool {
		a, b := leaderboard[i], leaderboard[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.PlayerID < b.PlayerID
	})

	if limit > 0 && len(leaderboard) > limit {
		leaderboard = leaderboard[:limit]
	}
	for i := range leaderboard {
		entry := &leaderboard[i]
		entry.Rank = i + 1
		if entry.Matches > 0 {
			entry.WinRatio = round1(float64(entry.Wins) / float64(entry.Matches) * 100)
			entry.AvgScore = int(math.Round(float64(entry.TotalScore) / float64(entry.Matches)))
		}
	}
	return leaderboard, nil
}

// CategoryLeaders returns, for each category, the active player with the
// highest running best in it. Ties resolve to the lexicographically smaller
// player id so repeated reads agree.
func (e *Engine) CategoryLeaders() (map[tournament.Category]*CategoryLeader, error) {
	players, err := e.store.ListPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	if err != nil {
		return nil, err
	}

	leaders := make(map[tournament.Category]*CategoryLeader, len(tournament.Categories))
	for _, c := range tournament.Categories {
		var best *tournament.Player
		for _, p := range players {
			if best == nil {
				best = p
				continue
			}
			pv, bv := p.CategoryStats.Get(c).Best, best.CategoryStats.Get(c).Best
			if pv > bv || (pv == bv && p.ID < best.ID) {
				best = p
			}
		}
		if best == nil {
			leaders[c] = nil
			continue
		}
		leaders[c] = &CategoryLeader{
			PlayerID: best.ID,
			Name:     best.Name,
			Value:    best.CategoryStats.Get(c).Best,
		}
	}
	return leaders, nil
}

// BestRatioPlayer returns the active player with at least one match who
// maximizes wins/matches, ties broken by smaller player id.
func (e *Engine) BestRatioPlayer() (*RatioLeader, error) {
	players, err := e.store.ListPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	if err != nil {
		return nil, err
	}

	var best *tournament.Player
	for _, p := range players {
		if p.Matches == 0 {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		pr, br := p.WinRatio(), best.WinRatio()
		if pr > br || (pr == br && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, nil
	}
	return &RatioLeader{
		PlayerID: best.ID,
		Name:     best.Name,
		Ratio:    round1(best.WinRatio()),
	}, nil
}

// MapStatistics groups completed matches by map and reports count, average
// duration and the average of each match's average total score, ordered by
// match count descending.
func (e *Engine) MapStatistics() ([]MapStats, error) {
	matches, err := e.store.ListMatches(store.MatchFilter{Status: tournament.MatchCompleted})
	if err != nil {
		return nil, err
	}

	type mapAcc struct {
		count         int
		totalDuration int
		scoreSum      float64
	}
	acc := make(map[string]*mapAcc)
	for _, m := range matches {
		a, ok := acc[m.Map]
		if !ok {
			a = &mapAcc{}
			acc[m.Map] = a
		}
		a.count++
		a.totalDuration += m.Duration
		if len(m.Players) > 0 {
			var total int
			for _, p := range m.Players {
				total += p.TotalScore
			}
			a.scoreSum += float64(total) / float64(len(m.Players))
		}
	}

	result := make([]MapStats, 0, len(acc))
	for name, a := range acc {
		result = append(result, MapStats{
			Map:          name,
			TotalMatches: a.count,
			AvgDuration:  int(math.Round(float64(a.totalDuration) / float64(a.count))),
			AvgScore:     int(math.Round(a.scoreSum / float64(a.count))),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalMatches != result[j].TotalMatches {
			return result[i].TotalMatches > result[j].TotalMatches
		}
		return result[i].Map < result[j].Map
	})
	return result, nil
}

// TournamentSummary combines the headline aggregates into one composite read.
func (e *Engine) TournamentSummary() (*Summary, error) {
	totalPlayers, err := e.store.CountPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	if err != nil {
		return nil, err
	}
	totalMatches, err := e.store.CountMatches(store.MatchFilter{Status: tournament.MatchCompleted})
	if err != nil {
		return nil, err
	}

	var leader *LeaderRef
	top, err := e.Leaderboard(1)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		leader = &LeaderRef{
			PlayerID: top[0].PlayerID,
			Name:     top[0].Name,
			Points:   top[0].Points,
			Wins:     top[0].Wins,
			Matches:  top[0].Matches,
		}
	}

	bestRatio, err := e.BestRatioPlayer()
	if err != nil {
		return nil, err
	}
	categoryLeaders, err := e.CategoryLeaders()
	if err != nil {
		return nil, err
	}
	durationStats, err := e.durationStats(totalMatches)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalPlayers:     totalPlayers,
		TotalMatches:     totalMatches,
		Leader:           leader,
		BestRatioPlayer:  bestRatio,
		BestInCategories: categoryLeaders,
		MatchStats:       durationStats,
	}, nil
}

func (e *Engine) durationStats(totalMatches int) (DurationStats, error) {
	matches, err := e.store.ListMatches(store.MatchFilter{Status: tournament.MatchCompleted})
	if err != nil {
		return DurationStats{}, err
	}

	stats := DurationStats{TotalMatches: totalMatches}
	if len(matches) == 0 {
		return stats, nil
	}

	longest, shortest := matches[0], matches[0]
	var sum int
	for _, m := range matches {
		sum += m.Duration
		if m.Duration > longest.Duration {
			longest = m
		}
		if m.Duration < shortest.Duration {
			shortest = m
		}
	}
	stats.LongestMatch = &MatchRef{MatchID: longest.ID, Map: longest.Map, Duration: longest.Duration}
	stats.ShortestMatch = &MatchRef{MatchID: shortest.ID, Map: shortest.Map, Duration: shortest.Duration}
	stats.AverageDuration = float64(sum) / float64(len(matches))
	return stats, nil
}

// RecentActivity returns the latest completed matches as a human-readable
// feed, newest first.
func (e *Engine) RecentActivity(limit int) ([]ActivityEntry, error) {
	matches, err := e.store.ListMatches(store.MatchFilter{
		Status: tournament.MatchCompleted,
		SortBy: "created_at",
		Order:  "desc",
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	activity := make([]ActivityEntry, 0, len(matches))
	for _, m := range matches {
		activity = append(activity, ActivityEntry{
			Type:        "match",
			Date:        m.Date.Format("2006-01-02T15:04:05Z07:00"),
			Description: fmt.Sprintf("Match on %s - Winner: %s", m.Map, m.Winner.PlayerName),
			Details: ActivityDetails{
				Map:      m.Map,
				Duration: fmt.Sprintf("%d min", m.Duration),
				Players:  m.TotalPlayers,
				Winner:   m.Winner.PlayerName,
			},
		})
	}
	return activity, nil
}

// PlayerDetails assembles the detailed statistics read for one player.
func (e *Engine) PlayerDetails(playerID string) (*PlayerDetails, error) {
	p, err := e.store.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	recent := p.MatchHistory
	if len(recent) > recentHistorySize {
		recent = recent[:recentHistorySize]
	}

	var bestMatch, worstMatch *tournament.HistoryEntry
	for i := range p.MatchHistory {
		entry := &p.MatchHistory[i]
		if bestMatch == nil || entry.TotalScore > bestMatch.TotalScore {
			bestMatch = entry
		}
		if worstMatch == nil || entry.TotalScore < worstMatch.TotalScore {
			worstMatch = entry
		}
	}

	log.Debug("Assembled player details", "playerID", playerID, "historySize", len(p.MatchHistory))
	return &PlayerDetails{
		Basic: PlayerBasicStats{
			Matches:      p.Matches,
			Wins:         p.Wins,
			Losses:       p.Losses(),
			Points:       p.Points,
			WinRatio:     round1(p.WinRatio()),
			TotalAverage: p.TotalAverage(),
		},
		Categories:    p.CategoryStats,
		RecentMatches: recent,
		Performance:   PlayerPerformance{BestMatch: bestMatch, WorstMatch: worstMatch},
	}, nil
}

// round1 rounds to one decimal, matching how win ratios are presented.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
