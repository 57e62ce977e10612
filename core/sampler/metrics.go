package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal         *prometheus.CounterVec
	actionsTotal       *prometheus.CounterVec
	evaluationSeconds  prometheus.Histogram
	trackedExperiments prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge) {
	ticks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampler_ticks_total",
			Help: "Scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)
	actions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampler_actions_total",
			Help: "Actions taken on experiments",
		},
		[]string{"action"},
	)
	eval := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sampler_evaluation_seconds",
			Help:    "Duration of full evaluation passes",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
	tracked := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sampler_tracked_experiments",
			Help: "Experiments tracked on the active vessel",
		},
	)
	return ticks, actions, eval, tracked
}

func init() {
	ticksTotal, actionsTotal, evaluationSeconds, trackedExperiments = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers sampler metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ticksTotal, actionsTotal, evaluationSeconds, trackedExperiments)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	ticksTotal, actionsTotal, evaluationSeconds, trackedExperiments = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
