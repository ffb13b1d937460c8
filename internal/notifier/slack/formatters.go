package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

func medalFor(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatResultNotification creates the Slack message for a recorded match using Block Kit.
func (s *Notifier) formatResultNotification(match *tournament.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏰 Match finished! 🏰", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	detailsText := fmt.Sprintf("Map: %s\nMode: %s\nDuration: %d min\nPlayed: %s",
		match.Map,
		match.GameMode,
		match.Duration,
		match.Date.Format("Monday 02 Jan, 15:04"),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Podium, participants are already ordered by final position.
	var lines []string
	for _, p := range match.Players {
		lines = append(lines, fmt.Sprintf("%d. %s %s (%d pts, +%d)",
			p.FinalPosition,
			medalFor(p.FinalPosition),
			p.PlayerName,
			p.TotalScore,
			p.PointsEarned,
		))
	}
	if len(lines) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))
	}

	// Context
	var contextElements []slack.MixedElement
	if match.Winner.PlayerName != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s takes the crown!", match.Winner.PlayerName), true, false))
	}
	if match.Notes != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", match.Notes, true, false))
	}
	if len(contextElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the tournament leaderboard.
func (s *Notifier) formatLeaderboard(entries []stats.LeaderboardEntry) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Tournament Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, entry := range entries {
		playerText := fmt.Sprintf("%d. %s %s\n> Points: %d | Win %%: %.1f%% (%d/%d) | Avg Score: %.1f",
			entry.Rank,
			medalFor(entry.Rank),
			entry.Name,
			entry.Points,
			entry.WinRatio,
			entry.Wins,
			entry.Matches,
			entry.TotalAverage,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(player *tournament.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", player.Name)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Points*: %d\n> *Win %%*: %.1f%% (%d/%d)\n> *Avg Score*: %.1f",
		player.Points,
		player.WinRatio(),
		player.Wins,
		player.Matches,
		player.TotalAverage(),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	categoriesText := fmt.Sprintf("> ⚔️ Military: %.1f | 💰 Economy: %.1f | 🔬 Technology: %.1f | 🏛️ Society: %.1f",
		player.CategoryStats.Military.Average,
		player.CategoryStats.Economy.Average,
		player.CategoryStats.Technology.Average,
		player.CategoryStats.Society.Average,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", categoriesText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player is not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
