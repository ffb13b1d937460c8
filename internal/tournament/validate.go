package tournament

import (
	"fmt"
	"sort"
	"time"

	apperr "github.com/stokkerdev/agetracker/internal/errors"
)

const (
	MinDuration = 10
	MaxDuration = 300
	MinPlayers  = 4
	MaxPlayers  = 8
	maxMapLen   = 50
	maxNotesLen = 500
)

// SubmissionPlayer is one participant entry in a proposed match submission.
type SubmissionPlayer struct {
	PlayerID      string         `json:"playerId"`
	PlayerName    string         `json:"playerName"`
	Scores        CategoryScores `json:"scores"`
	TotalScore    int            `json:"totalScore"`
	FinalPosition int            `json:"finalPosition"`
}

// Submission is a candidate match as submitted by a caller, before any
// validation or persistence.
type Submission struct {
	PhaseID    string             `json:"phaseId,omitempty"`
	Date       time.Time          `json:"date"`
	Duration   int                `json:"duration"`
	Map        string             `json:"map"`
	GameMode   GameMode           `json:"gameMode,omitempty"`
	Players    []SubmissionPlayer `json:"players"`
	Notes      string             `json:"notes,omitempty"`
	AdminNotes string             `json:"adminNotes,omitempty"`
	CreatedBy  string             `json:"createdBy,omitempty"`
}

// ValidateSubmission checks a proposed match for structural and semantic
// correctness. It has no side effects and is deterministic; callers still
// need to resolve participant ids against the store separately. Checks run
// in a fixed order so the first failure reported is stable.
func ValidateSubmission(sub *Submission) error {
	if sub.Date.IsZero() {
		return apperr.NewValidationError("date is required")
	}
	if sub.Duration < MinDuration || sub.Duration > MaxDuration {
		return apperr.NewValidationError(fmt.Sprintf("duration must be between %d and %d minutes", MinDuration, MaxDuration))
	}
	if len(sub.Map) < 2 || len(sub.Map) > maxMapLen {
		return apperr.NewValidationError("map name must be between 2 and 50 characters")
	}
	switch sub.GameMode {
	case ModeFFA, ModeTeam, ModeWonder:
	default:
		return apperr.NewValidationError(fmt.Sprintf("unknown game mode %q", sub.GameMode))
	}
	if len(sub.Players) < MinPlayers || len(sub.Players) > MaxPlayers {
		return apperr.NewValidationError(fmt.Sprintf("a match needs between %d and %d players, got %d", MinPlayers, MaxPlayers, len(sub.Players)))
	}
	if len(sub.Notes) > maxNotesLen {
		return apperr.NewValidationError("notes must not exceed 500 characters")
	}

	for i, p := range sub.Players {
		if p.PlayerID == "" {
			return apperr.NewValidationError(fmt.Sprintf("player %d is missing a playerId", i+1))
		}
		if p.PlayerName == "" {
			return apperr.NewValidationError(fmt.Sprintf("player %q is missing a name", p.PlayerID))
		}
		for _, c := range Categories {
			if p.Scores.Get(c) < 0 {
				return apperr.NewValidationError(fmt.Sprintf("%s has a negative %s score", p.PlayerName, c))
			}
		}
		if p.FinalPosition < 1 {
			return apperr.NewValidationError(fmt.Sprintf("%s has an invalid final position", p.PlayerName))
		}
	}

	for _, p := range sub.Players {
		if p.TotalScore != p.Scores.Total() {
			return apperr.NewValidationError(fmt.Sprintf("total score for %s does not match the sum of their category scores", p.PlayerName))
		}
	}

	seen := make(map[int]bool, len(sub.Players))
	for _, p := range sub.Players {
		if seen[p.FinalPosition] {
			return apperr.NewValidationError("final positions must be unique")
		}
		seen[p.FinalPosition] = true
	}

	positions := make([]int, 0, len(sub.Players))
	for _, p := range sub.Players {
		positions = append(positions, p.FinalPosition)
	}
	sort.Ints(positions)
	for i, pos := range positions {
		if pos != i+1 {
			return apperr.NewValidationError("final positions must be consecutive from 1 to N")
		}
	}

	return nil
}

// ValidatePlayerID enforces the handle rules for registration: lowercase
// alphanumeric, 3-30 characters.
func ValidatePlayerID(id string) error {
	if len(id) < 3 || len(id) > 30 {
		return apperr.NewValidationError("player id must be between 3 and 30 characters")
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return apperr.NewValidationError("player id must be lowercase alphanumeric")
		}
	}
	return nil
}

// ValidatePlayerProfile checks the mutable profile fields shared by
// registration and updates.
func ValidatePlayerProfile(name, avatar, strategy, civilization string) error {
	if len(name) < 2 || len(name) > 50 {
		return apperr.NewValidationError("player name must be between 2 and 50 characters")
	}
	if len(avatar) > 200 {
		return apperr.NewValidationError("avatar URI must not exceed 200 characters")
	}
	if len(strategy) > 100 {
		return apperr.NewValidationError("favorite strategy must not exceed 100 characters")
	}
	if len(civilization) > 50 {
		return apperr.NewValidationError("favorite civilization must not exceed 50 characters")
	}
	return nil
}
