package http

import (
	"net/http"

	"github.com/stokkerdev/agetracker/internal/config"
	"github.com/stokkerdev/agetracker/internal/ingest"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/notifier"
	"github.com/stokkerdev/agetracker/internal/pubsub"
	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/store"
)

type Server struct {
	Store          store.TournamentStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Ingestor       *ingest.Ingestor
	Stats          *stats.Engine
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// pagination describes the window of a list response.
type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// envelope is the uniform JSON response wrapper.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    any         `json:"details,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}
