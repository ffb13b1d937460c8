package ingest

import (
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/pubsub"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// Ingestor handles the business logic of recording a match: validation,
// persistence, player statistics and downstream notifications.
type Ingestor struct {
	store          Store
	pubsub         pubsub.PubSubClient
	notifier       Notifier
	metrics        metrics.Metrics
	defaultPhaseID string
}

// Result reports what a submission produced. PlayersUpdated may be lower
// than the participant count when a partial failure occurred after the
// match itself was stored.
type Result struct {
	Match          *tournament.Match `json:"match"`
	PlayersUpdated int               `json:"playersUpdated"`
}
