package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventMatchIngested is published after a match submission has been
	// validated and persisted, carrying the full match record.
	EventMatchIngested EventType = "match-ingested"
	// EventPlayerStatsUpdated is published after a player's cumulative
	// statistics changed.
	EventPlayerStatsUpdated EventType = "player-stats-updated"
)
