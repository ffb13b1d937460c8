package notifier

import (
	"sync"

	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct{ Match *tournament.Match }
	SendLeaderboardCalls        []struct {
		Entries []stats.LeaderboardEntry
		DryRun  bool
	}
	SendPlayerStatsCalls []struct {
		Player *tournament.Player
		DryRun bool
	}
	SendPlayerNotFoundCalls []struct {
		Query  string
		DryRun bool
	}

	// Spies
	SendResultNotificationFunc func(match *tournament.Match, dryRun bool) (string, error)

	// Spies for format functions
	FormatLeaderboardResponseFunc    func(entries []stats.LeaderboardEntry) (any, error)
	FormatPlayerStatsResponseFunc    func(player *tournament.Player) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	// Call records for format functions
	LastLeaderboardResponse    any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendPlayerStatsCalls = nil
	m.SendPlayerNotFoundCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendResultNotification(match *tournament.Match, dryRun bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct{ Match *tournament.Match }{match})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return "", nil
}

func (m *Mock) SendLeaderboard(entries []stats.LeaderboardEntry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		Entries []stats.LeaderboardEntry
		DryRun  bool
	}{entries, dryRun})
	return nil
}

func (m *Mock) SendPlayerStats(player *tournament.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerStatsCalls = append(m.SendPlayerStatsCalls, struct {
		Player *tournament.Player
		DryRun bool
	}{player, dryRun})
	return nil
}

func (m *Mock) SendPlayerNotFound(query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerNotFoundCalls = append(m.SendPlayerNotFoundCalls, struct {
		Query  string
		DryRun bool
	}{query, dryRun})
	return nil
}

func (m *Mock) FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(entries)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(player *tournament.Player) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(player)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}
