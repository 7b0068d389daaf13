package server

import (
	"errors"

	"github.com/piwi3910/LayCut/internal/engine"
	"github.com/piwi3910/LayCut/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for planning requests.
type Metrics struct {
	plans  *prometheus.CounterVec
	errors *prometheus.CounterVec
	cuts   prometheus.Histogram
	waste  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laycut_plans_total",
			Help: "Cutting plans computed, by priority.",
		}, []string{"priority"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "laycut_plan_errors_total",
			Help: "Planning requests that failed, by error kind.",
		}, []string{"kind"}),
		cuts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "laycut_plan_cuts",
			Help:    "Number of cuts per computed plan.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		waste: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "laycut_plan_waste_total",
			Help: "Excess garments produced across all computed plans.",
		}),
	}
	reg.MustRegister(m.plans, m.errors, m.cuts, m.waste)
	return m
}

func (m *Metrics) observePlan(plan model.PlanResponse) {
	m.plans.WithLabelValues(string(plan.Priority)).Inc()
	m.cuts.Observe(float64(plan.TotalCuts))
	m.waste.Add(float64(plan.TotalWaste))
}

func (m *Metrics) observeError(err error) {
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, engine.ErrNonConvergence):
		return "non_convergence"
	case errors.Is(err, engine.ErrShortfallDetected):
		return "shortfall"
	default:
		return "internal"
	}
}
