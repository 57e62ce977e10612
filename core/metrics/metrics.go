package metrics

import "time"

// ActionRecord is one decision taken on an experiment.
type ActionRecord struct {
	Time         time.Time
	VesselID     string
	ExperimentID string
	Action       string
	SubjectID    string
	Value        float64
	Error        string
}

// MetricsSink records sampler actions for observability purposes.
type MetricsSink interface {
	RecordAction(rec ActionRecord) error
}

// RebuildRecord captures the size of the tracked vessel after a rebuild.
type RebuildRecord struct {
	Time        time.Time
	VesselID    string
	Experiments int
	Holders     int
	Subjects    int
}

// RebuildRecorder is implemented by sinks able to record rebuilds.
type RebuildRecorder interface {
	RecordRebuild(rec RebuildRecord) error
}

// TickRecorder is implemented by sinks able to record evaluation pass durations.
type TickRecorder interface {
	RecordTick(d time.Duration) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAction(ActionRecord) error   { return nil }
func (NopSink) RecordRebuild(RebuildRecord) error { return nil }
func (NopSink) RecordTick(time.Duration) error    { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAction forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAction(rec ActionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAction(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordRebuild forwards rebuilds to the sinks supporting them.
func (m *MultiSink) RecordRebuild(rec RebuildRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RebuildRecorder); ok {
			if err := r.RecordRebuild(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTick forwards pass durations to the sinks supporting them.
func (m *MultiSink) RecordTick(d time.Duration) error {
	for _, s := range m.Sinks {
		if r, ok := s.(TickRecorder); ok {
			if err := r.RecordTick(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks holding resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
