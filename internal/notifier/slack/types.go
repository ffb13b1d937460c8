package slack

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending tournament notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	counters  metrics.MetricsStore
}

// Durable counter keys, persisted across restarts.
const (
	counterMessagesSent   = "slack_messages_sent"
	counterMessagesFailed = "slack_messages_failed"
)
