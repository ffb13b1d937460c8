package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stokkerdev/agetracker/internal/database"
	"github.com/stokkerdev/agetracker/internal/metrics"
)

func TestMetricsStore_IncrementAndGetAll(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	s := metrics.New(db)

	s.Increment("notifications_sent")
	s.Increment("notifications_sent")
	s.Increment("notifications_failed")

	all, err := s.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, all["notifications_sent"])
	assert.Equal(t, 1, all["notifications_failed"])
}
