package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/autosampler/core/events"
	coremetrics "github.com/kilianp07/autosampler/core/metrics"
)

// PromSink records sampler actions in Prometheus metrics.
type PromSink struct {
	actions  *prometheus.CounterVec
	values   *prometheus.HistogramVec
	subjects *prometheus.GaugeVec
	ticks    prometheus.Histogram
}

// NewPromSink registers the sink's metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "experiment_actions_total",
		Help: "Actions taken per vessel, experiment and action",
	}, []string{"vessel_id", "experiment_id", "action"})
	values := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "experiment_run_value",
		Help:    "Estimated value of deployed experiments",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"experiment_id"})
	subjects := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vessel_subjects_tracked",
		Help: "Distinct subjects held aboard after the last rebuild",
	}, []string{"vessel_id"})
	ticks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sampler_pass_seconds",
		Help:    "Duration of full evaluation passes",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	var err error
	if actions, err = register(reg, actions); err != nil {
		return nil, err
	}
	if values, err = register(reg, values); err != nil {
		return nil, err
	}
	if subjects, err = register(reg, subjects); err != nil {
		return nil, err
	}
	if ticks, err = register(reg, ticks); err != nil {
		return nil, err
	}
	return &PromSink{actions: actions, values: values, subjects: subjects, ticks: ticks}, nil
}

// register adds c to reg, reusing an identical collector already present.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAction counts the action and observes run values.
func (s *PromSink) RecordAction(rec coremetrics.ActionRecord) error {
	s.actions.WithLabelValues(rec.VesselID, rec.ExperimentID, rec.Action).Inc()
	if rec.Action == string(events.ActionRun) {
		s.values.WithLabelValues(rec.ExperimentID).Observe(rec.Value)
	}
	return nil
}

// RecordRebuild sets the subject gauge for the vessel.
func (s *PromSink) RecordRebuild(rec coremetrics.RebuildRecord) error {
	s.subjects.WithLabelValues(rec.VesselID).Set(float64(rec.Subjects))
	return nil
}

// RecordTick observes the duration of a full pass.
func (s *PromSink) RecordTick(d time.Duration) error {
	s.ticks.Observe(d.Seconds())
	return nil
}
