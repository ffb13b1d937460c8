package notifier

import (
	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For completed matches
	SendResultNotification(match *tournament.Match, dryRun bool) (string, error)
	// For slash commands
	SendLeaderboard(entries []stats.LeaderboardEntry, dryRun bool) error
	SendPlayerStats(player *tournament.Player, dryRun bool) error
	SendPlayerNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error)
	FormatPlayerStatsResponse(player *tournament.Player) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
