package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	models "github.com/CodeAndHammer/mysterybox/internal/models"
)

func TestMetrics_Observe(t *testing.T) {
	m := New("mysterybox", prometheus.NewRegistry())

	m.ObserveRegistration(false)
	m.ObserveRegistration(true)
	m.ObserveRegistration(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("true")))

	m.ObserveSelection(models.SelectionOutcome{Status: models.SelectionResolved, Won: true, RewardsLeft: 4})
	m.ObserveSelection(models.SelectionOutcome{Status: models.SelectionResolved, RewardsLeft: 4})
	m.ObserveSelection(models.SelectionOutcome{Status: models.SelectionDuplicate, RewardsLeft: 4})
	m.ObserveSelection(models.SelectionOutcome{Status: models.SelectionUnregistered})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("won")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("no_reward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("unregistered")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RewardsLeft))

	m.ObserveReset()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resets))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RewardsLeft))

	m.ObserveFailure("select")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("select")))
}

func TestMetrics_SyncState(t *testing.T) {
	m := New("mysterybox", prometheus.NewRegistry())
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RewardsLeft))

	m.SyncState(&models.GameState{ClaimedRewards: 3})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RewardsLeft))

	m.SyncState(&models.GameState{ClaimedRewards: 7})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RewardsLeft))
}
