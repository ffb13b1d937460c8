package metrics

import "sync"

// MockMetrics is a thread-safe mock for the Metrics interface.
type MockMetrics struct {
	mu sync.Mutex

	MatchesIngestedCount    int
	MatchesRejectedCount    int
	IngestDurations         []float64
	PlayerStatsUpdatedCount int
	NotifSentCount          int
	NotifFailedCount        int
	StartupTime             float64
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncMatchesIngested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesIngestedCount++
}

func (m *MockMetrics) IncMatchesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesRejectedCount++
}

func (m *MockMetrics) ObserveIngestDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IngestDurations = append(m.IngestDurations, duration)
}

func (m *MockMetrics) IncPlayerStatsUpdated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerStatsUpdatedCount++
}

func (m *MockMetrics) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *MockMetrics) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *MockMetrics) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = duration
}
