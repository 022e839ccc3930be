package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	constants "github.com/CodeAndHammer/mysterybox/internal/constants"
	models "github.com/CodeAndHammer/mysterybox/internal/models"
)

type Metrics struct {
	Registrations *prometheus.CounterVec
	Selections    *prometheus.CounterVec
	Resets        prometheus.Counter
	Failures      *prometheus.CounterVec
	RewardsLeft   prometheus.Gauge
}

// New builds the collectors and registers them on reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Register calls, split by whether the username already existed",
		}, []string{"existing"}),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Box selections by outcome",
		}, []string{"outcome"}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Number of game resets",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Operations that failed with a server error",
		}, []string{"operation"}),
		RewardsLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rewards_left",
			Help:      "Rewards still available in the pool",
		}),
	}

	reg.MustRegister(
		m.Registrations,
		m.Selections,
		m.Resets,
		m.Failures,
		m.RewardsLeft,
	)
	m.RewardsLeft.Set(constants.MaxRewards)

	return m
}

func (m *Metrics) ObserveRegistration(alreadyRegistered bool) {
	if alreadyRegistered {
		m.Registrations.WithLabelValues("true").Inc()
		return
	}
	m.Registrations.WithLabelValues("false").Inc()
}

func (m *Metrics) ObserveSelection(outcome models.SelectionOutcome) {
	label := outcome.Status.String()
	if outcome.Status == models.SelectionResolved {
		if outcome.Won {
			label = "won"
		} else {
			label = "no_reward"
		}
	}
	m.Selections.WithLabelValues(label).Inc()
	if outcome.Status != models.SelectionUnregistered {
		m.RewardsLeft.Set(float64(outcome.RewardsLeft))
	}
}

func (m *Metrics) ObserveReset() {
	m.Resets.Inc()
	m.RewardsLeft.Set(constants.MaxRewards)
}

// SyncState sets the gauges from a loaded state, so a restart reports the
// persisted pool instead of a full one.
func (m *Metrics) SyncState(state *models.GameState) {
	m.RewardsLeft.Set(float64(max(constants.MaxRewards-state.ClaimedRewards, 0)))
}

func (m *Metrics) ObserveFailure(operation string) {
	m.Failures.WithLabelValues(operation).Inc()
}
