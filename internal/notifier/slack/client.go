package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, counters metrics.MetricsStore) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		counters:  counters,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, counters metrics.MetricsStore) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		counters:  counters,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.counters.Increment(counterMessagesFailed)
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", fmt.Errorf("failed to post message: %w", err)
	}

	s.counters.Increment(counterMessagesSent)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *tournament.Match, dryRun bool) (string, error) {
	msg := s.formatResultNotification(match)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) SendLeaderboard(entries []stats.LeaderboardEntry, dryRun bool) error {
	msg := s.formatLeaderboard(entries)
	_, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerStats(player *tournament.Player, dryRun bool) error {
	msg := s.formatPlayerStats(player)
	_, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPlayerNotFound(query string, dryRun bool) error {
	msg := s.formatPlayerNotFound(query)
	_, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(entries []stats.LeaderboardEntry) (any, error) {
	return s.formatLeaderboard(entries), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(player *tournament.Player) (any, error) {
	return s.formatPlayerStats(player), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}
