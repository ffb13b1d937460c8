package store

import "github.com/stokkerdev/agetracker/internal/tournament"

// TournamentStore defines the persistence operations the rest of the
// application depends on. It is injected everywhere so tests can substitute
// the mock.
type TournamentStore interface {
	// Players
	GetPlayer(id string) (*tournament.Player, error)
	ListPlayers(filter PlayerFilter) ([]*tournament.Player, error)
	CountPlayers(filter PlayerFilter) (int, error)
	CreatePlayer(p *tournament.Player) error
	UpdatePlayer(p *tournament.Player) error
	DeletePlayer(id string) error
	CountExistingPlayers(ids []string) (int, error)

	// Matches
	CreateMatch(m *tournament.Match) error
	GetMatch(id string) (*tournament.Match, error)
	ListMatches(filter MatchFilter) ([]*tournament.Match, error)
	CountMatches(filter MatchFilter) (int, error)
	UpdateMatchAdmin(id string, status tournament.MatchStatus, notes, adminNotes string) (*tournament.Match, error)
	DeleteMatch(id string) error

	// Phases
	GetPhase(id string) (*tournament.Phase, error)
	ListPhases(filter PhaseFilter) ([]*tournament.Phase, error)
	UpsertPhase(p *tournament.Phase) error

	Clear()
}
