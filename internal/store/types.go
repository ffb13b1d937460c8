package store

import (
	"database/sql"
	"sync"

	"github.com/stokkerdev/agetracker/internal/tournament"
)

// store handles all database operations for the tournament.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerFilter narrows and orders player list queries.
type PlayerFilter struct {
	Status tournament.PlayerStatus
	SortBy string // points, name, wins, matches (defaults to points)
	Order  string // asc or desc (defaults to desc)
	Limit  int
	Offset int
}

// MatchFilter narrows and orders match list queries.
type MatchFilter struct {
	Status   tournament.MatchStatus
	PhaseID  string
	PlayerID string // only matches this player participated in
	Map      string // case-insensitive substring match
	SortBy   string // date, duration, created_at (defaults to date)
	Order    string // asc or desc (defaults to desc)
	Limit    int
	Offset   int
}

// PhaseFilter narrows and orders phase list queries.
type PhaseFilter struct {
	Status tournament.PhaseStatus
	SortBy string // start_date, name (defaults to start_date)
	Order  string // asc or desc (defaults to asc)
}
