package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

// mockCounters records durable counter increments in memory.
type mockCounters struct {
	counts map[string]int
}

func newMockCounters() *mockCounters {
	return &mockCounters{counts: make(map[string]int)}
}

func (m *mockCounters) Increment(key string) {
	m.counts[key]++
}

func (m *mockCounters) GetAll() (map[string]int, error) {
	return m.counts, nil
}

func TestSendMessage_DryRun(t *testing.T) {
	counters := newMockCounters()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", counters)

	message := slackapi.NewBlockMessage()
	_, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, counters.counts[counterMessagesSent])
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	counters := newMockCounters()
	notifier := NewNotifierWithAPI(api, "C123", counters)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	ts, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, "ts123", ts)
	assert.Equal(t, 1, counters.counts[counterMessagesSent])
	assert.Equal(t, 0, counters.counts[counterMessagesFailed])
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	counters := newMockCounters()
	notifier := NewNotifierWithAPI(api, "C123", counters)

	message := slackapi.NewBlockMessage()
	_, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, counters.counts[counterMessagesSent])
	assert.Equal(t, 1, counters.counts[counterMessagesFailed])
}

func testMatch() *tournament.Match {
	return &tournament.Match{
		ID:           "m1",
		Map:          "Arabia",
		GameMode:     tournament.ModeFFA,
		Duration:     45,
		Date:         time.Date(2025, 7, 9, 20, 0, 0, 0, time.UTC),
		TotalPlayers: 4,
		Players: []tournament.MatchPlayer{
			{PlayerID: "thrall", PlayerName: "Thrall", TotalScore: 100, FinalPosition: 1, PointsEarned: 3},
			{PlayerID: "jaina", PlayerName: "Jaina", TotalScore: 80, FinalPosition: 2, PointsEarned: 2},
			{PlayerID: "arthas", PlayerName: "Arthas", TotalScore: 60, FinalPosition: 3, PointsEarned: 1},
			{PlayerID: "uther", PlayerName: "Uther", TotalScore: 40, FinalPosition: 4, PointsEarned: 0},
		},
		Winner: tournament.Winner{PlayerID: "thrall", PlayerName: "Thrall"},
		Status: tournament.MatchCompleted,
		Notes:  "Close game until the castle age",
	}
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendResultNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	notifier := NewNotifierWithAPI(api, "C123", newMockCounters())

	_, err := notifier.SendResultNotification(testMatch(), false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendResultNotification")
}

func TestFormatResultNotification(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(testMatch())
	require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks")

	// 1. Header Block
	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Match finished")

	// 2. Details Block
	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, details.Text.Text, "Arabia")
	assert.Contains(t, details.Text.Text, "45 min")

	// 3. Podium Block
	podium, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, podium.Text.Text, "1. 🥇 Thrall (100 pts, +3)")
	assert.Contains(t, podium.Text.Text, "4.  Uther (40 pts, +0)")

	// 4. Context Block
	contextBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
	require.True(t, ok)
	require.NotEmpty(t, contextBlock.ContextElements.Elements)
	first, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Contains(t, first.Text, "Thrall takes the crown")
}

func TestFormatLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	entries := []stats.LeaderboardEntry{
		{Rank: 1, PlayerID: "thrall", Name: "Thrall", Points: 25, Wins: 5, Matches: 10, WinRatio: 50, TotalAverage: 72.5},
		{Rank: 2, PlayerID: "jaina", Name: "Jaina", Points: 20, Wins: 4, Matches: 10, WinRatio: 40, TotalAverage: 68.1},
	}
	msg := client.formatLeaderboard(entries)
	require.Len(t, msg.Blocks.BlockSet, 3)

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "1. 🥇 Thrall")
	assert.Contains(t, first.Text.Text, "Points: 25")
	assert.Contains(t, first.Text.Text, "50.0% (5/10)")
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatLeaderboard(nil)
	require.Len(t, msg.Blocks.BlockSet, 2)

	empty, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, empty.Text.Text, "No stats available yet")
}

func TestFormatPlayerStats(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	player := &tournament.Player{
		ID:      "thrall",
		Name:    "Thrall",
		Points:  25,
		Wins:    5,
		Matches: 10,
		CategoryStats: tournament.CategoryStatsSet{
			Military:   tournament.CategoryStats{Average: 80},
			Economy:    tournament.CategoryStats{Average: 70},
			Technology: tournament.CategoryStats{Average: 60},
			Society:    tournament.CategoryStats{Average: 50},
		},
	}

	msg := client.formatPlayerStats(player)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Thrall")

	categories, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, categories.Text.Text, "Military: 80.0")
}
