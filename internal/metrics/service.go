package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_matches_ingested_total",
			Help: "The total number of match submissions accepted and persisted.",
		}),
		MatchesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_matches_rejected_total",
			Help: "The total number of match submissions rejected by validation.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tournament_match_ingest_duration_seconds",
			Help:    "The duration of individual match ingestions.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PlayerStatsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_player_stats_updates_total",
			Help: "The total number of per-player statistic updates performed.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tournament_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tournament_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesIngested,
		s.MatchesRejected,
		s.IngestDuration,
		s.PlayerStatsUpdated,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesIngested() {
	s.MatchesIngested.Inc()
}

func (s *Service) IncMatchesRejected() {
	s.MatchesRejected.Inc()
}

func (s *Service) ObserveIngestDuration(duration float64) {
	s.IngestDuration.Observe(duration)
}

func (s *Service) IncPlayerStatsUpdated() {
	s.PlayerStatsUpdated.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
