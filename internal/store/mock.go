package store

import (
	"sync"

	"github.com/stokkerdev/agetracker/internal/tournament"
)

// MockStore is a mock implementation of the TournamentStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetPlayerFunc            func(id string) (*tournament.Player, error)
	ListPlayersFunc          func(filter PlayerFilter) ([]*tournament.Player, error)
	CountPlayersFunc         func(filter PlayerFilter) (int, error)
	CreatePlayerFunc         func(p *tournament.Player) error
	UpdatePlayerFunc         func(p *tournament.Player) error
	DeletePlayerFunc         func(id string) error
	CountExistingPlayersFunc func(ids []string) (int, error)
	CreateMatchFunc          func(m *tournament.Match) error
	GetMatchFunc             func(id string) (*tournament.Match, error)
	ListMatchesFunc          func(filter MatchFilter) ([]*tournament.Match, error)
	CountMatchesFunc         func(filter MatchFilter) (int, error)
	UpdateMatchAdminFunc     func(id string, status tournament.MatchStatus, notes, adminNotes string) (*tournament.Match, error)
	DeleteMatchFunc          func(id string) error
	GetPhaseFunc             func(id string) (*tournament.Phase, error)
	ListPhasesFunc           func(filter PhaseFilter) ([]*tournament.Phase, error)
	UpsertPhaseFunc          func(p *tournament.Phase) error

	// Call records
	CreateMatchCalls  []*tournament.Match
	UpdatePlayerCalls []*tournament.Player
	CreatePlayerCalls []*tournament.Player
	DeleteMatchCalls  []string
	ClearCalls        int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateMatchCalls = nil
	m.UpdatePlayerCalls = nil
	m.CreatePlayerCalls = nil
	m.DeleteMatchCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) GetPlayer(id string) (*tournament.Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListPlayers(filter PlayerFilter) ([]*tournament.Player, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(filter)
	}
	return nil, nil
}

func (m *MockStore) CountPlayers(filter PlayerFilter) (int, error) {
	if m.CountPlayersFunc != nil {
		return m.CountPlayersFunc(filter)
	}
	return 0, nil
}

func (m *MockStore) CreatePlayer(p *tournament.Player) error {
	m.mu.Lock()
	m.CreatePlayerCalls = append(m.CreatePlayerCalls, p)
	m.mu.Unlock()
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(p)
	}
	return nil
}

func (m *MockStore) UpdatePlayer(p *tournament.Player) error {
	m.mu.Lock()
	m.UpdatePlayerCalls = append(m.UpdatePlayerCalls, p)
	m.mu.Unlock()
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(p)
	}
	return nil
}

func (m *MockStore) DeletePlayer(id string) error {
	if m.DeletePlayerFunc != nil {
		return m.DeletePlayerFunc(id)
	}
	return nil
}

func (m *MockStore) CountExistingPlayers(ids []string) (int, error) {
	if m.CountExistingPlayersFunc != nil {
		return m.CountExistingPlayersFunc(ids)
	}
	return len(ids), nil
}

func (m *MockStore) CreateMatch(match *tournament.Match) error {
	m.mu.Lock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, match)
	m.mu.Unlock()
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(id string) (*tournament.Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListMatches(filter MatchFilter) ([]*tournament.Match, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(filter)
	}
	return nil, nil
}

func (m *MockStore) CountMatches(filter MatchFilter) (int, error) {
	if m.CountMatchesFunc != nil {
		return m.CountMatchesFunc(filter)
	}
	return 0, nil
}

func (m *MockStore) UpdateMatchAdmin(id string, status tournament.MatchStatus, notes, adminNotes string) (*tournament.Match, error) {
	if m.UpdateMatchAdminFunc != nil {
		return m.UpdateMatchAdminFunc(id, status, notes, adminNotes)
	}
	return nil, nil
}

func (m *MockStore) DeleteMatch(id string) error {
	m.mu.Lock()
	m.DeleteMatchCalls = append(m.DeleteMatchCalls, id)
	m.mu.Unlock()
	if m.DeleteMatchFunc != nil {
		return m.DeleteMatchFunc(id)
	}
	return nil
}

func (m *MockStore) GetPhase(id string) (*tournament.Phase, error) {
	if m.GetPhaseFunc != nil {
		return m.GetPhaseFunc(id)
	}
	return nil, nil
}

func (m *MockStore) ListPhases(filter PhaseFilter) ([]*tournament.Phase, error) {
	if m.ListPhasesFunc != nil {
		return m.ListPhasesFunc(filter)
	}
	return nil, nil
}

func (m *MockStore) UpsertPhase(p *tournament.Phase) error {
	if m.UpsertPhaseFunc != nil {
		return m.UpsertPhaseFunc(p)
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	m.ClearCalls++
	m.mu.Unlock()
}
