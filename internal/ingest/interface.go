package ingest

import "github.com/stokkerdev/agetracker/internal/tournament"

// Store defines the persistence operations the ingestor needs.
type Store interface {
	GetPlayer(id string) (*tournament.Player, error)
	UpdatePlayer(p *tournament.Player) error
	CountExistingPlayers(ids []string) (int, error)
	CreateMatch(m *tournament.Match) error
	GetPhase(id string) (*tournament.Phase, error)
}

// Notifier defines the notifications the ingestor sends.
type Notifier interface {
	SendResultNotification(match *tournament.Match, dryRun bool) (string, error)
}
