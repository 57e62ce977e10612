package metrics

import (
	"context"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/logger"
	coremetrics "github.com/kilianp07/autosampler/core/metrics"
	"github.com/kilianp07/autosampler/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records sampler events
// on sink. It stops when the context is canceled or the bus is closed; the
// returned channel is closed once it has.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Errorf("metrics error: %v", err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.ActionEvent:
		rec := coremetrics.ActionRecord{
			Time:         e.Time,
			VesselID:     e.VesselID,
			ExperimentID: e.ExperimentID,
			Action:       string(e.Action),
			SubjectID:    e.SubjectID,
			Value:        e.Value,
		}
		if e.Err != nil {
			rec.Error = e.Err.Error()
		}
		return sink.RecordAction(rec)
	case events.RebuildEvent:
		if r, ok := sink.(coremetrics.RebuildRecorder); ok {
			return r.RecordRebuild(coremetrics.RebuildRecord{
				Time:        e.Time,
				VesselID:    e.VesselID,
				Experiments: e.Experiments,
				Holders:     e.Holders,
				Subjects:    e.Subjects,
			})
		}
	case events.TickEvent:
		if r, ok := sink.(coremetrics.TickRecorder); ok {
			return r.RecordTick(e.Duration)
		}
	}
	return nil
}
