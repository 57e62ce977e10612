package sampler

import (
	"fmt"
	"time"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/monitoring"
	"github.com/kilianp07/autosampler/core/strategy"
)

// Outcome tells what a tick did.
type Outcome string

const (
	OutcomeNotReady   Outcome = "not_ready"
	OutcomeCompressed Outcome = "compressed"
	OutcomeArmed      Outcome = "armed"
	OutcomeWaiting    Outcome = "waiting"
	OutcomeEvaluated  Outcome = "evaluated"
	// OutcomeWarpStop means time compression was dropped for an experiment
	// that can run.
	OutcomeWarpStop Outcome = "warp_stop"
)

// Tick runs one iteration of the decision loop.
func (s *Sampler) Tick() Outcome {
	s.advanceIcon()

	compressed := s.flight.WarpRateIndex() > 0
	if reason, ok := s.ready(); !ok {
		s.debug.Debugf("not ready: %s", reason)
		return s.outcome(OutcomeNotReady)
	}
	if compressed && !s.settings.InterruptTimeWarp {
		s.debug.Debugf("time compressed, waiting")
		return s.outcome(OutcomeCompressed)
	}

	now := s.flight.UniversalTime()
	if s.nextUpdate == 0 {
		s.nextUpdate = now + s.settings.RefreshTime
		s.rebuild()
		return s.outcome(OutcomeArmed)
	}
	if now < s.nextUpdate {
		return s.outcome(OutcomeWaiting)
	}
	s.nextUpdate = now + s.settings.RefreshTime

	start := time.Now()
	n, stopped := s.evaluate(compressed)
	elapsed := time.Since(start)
	evaluationSeconds.Observe(elapsed.Seconds())
	if bus, _, _ := s.collaborators(); bus != nil {
		bus.Publish(events.TickEvent{Time: start, VesselID: s.vesselID, Evaluated: n, Duration: elapsed})
	}
	s.debug.Debugf("evaluated %d experiments in %s", n, elapsed)
	if stopped {
		return s.outcome(OutcomeWarpStop)
	}
	return s.outcome(OutcomeEvaluated)
}

func (s *Sampler) outcome(o Outcome) Outcome {
	ticksTotal.WithLabelValues(string(o)).Inc()
	return o
}

// ready reports whether the tracked vessel may be evaluated, with the first
// failed condition otherwise.
func (s *Sampler) ready() (string, bool) {
	if !s.shipReady {
		return "vessel bookkeeping not built", false
	}
	if !s.flight.Ready() {
		return "host not ready", false
	}
	v := s.flight.ActiveVessel()
	if v == nil {
		return "no active vessel", false
	}
	if s.craft == nil {
		s.resolveCraft()
	}
	switch {
	case !s.craft.RunAutoScience:
		return "automation off", false
	case v.Packed() && !s.settings.InterruptTimeWarp:
		return "vessel packed", false
	case !v.Controllable():
		return "vessel not controllable", false
	case !s.evaReady(v):
		return "EVA not grounded", false
	}
	return "", true
}

// evaReady holds back a crew member on EVA next to a grounded vessel until
// they stand on the ground themselves.
func (s *Sampler) evaReady(v model.Vessel) bool {
	if !v.IsEVA() || !s.craft.EVAOnlyIfGroundedWhenLanded {
		return true
	}
	if !model.Grounded(s.parent) {
		return true
	}
	return !v.OnLadder() && model.Grounded(v)
}

// evaluate walks the tracked experiments in rebuild order. It returns how
// many were inspected and whether time compression was dropped.
func (s *Sampler) evaluate(compressed bool) (int, bool) {
	n := 0
	for _, e := range s.experiments {
		n++
		stop, err := s.step(e, compressed)
		if err != nil {
			s.fail(e, actionOf(err), err)
		}
		if stop {
			return n, true
		}
	}
	return n, false
}

// actionError ties an error to the action that raised it.
type actionError struct {
	action events.Action
	err    error
}

func (e *actionError) Error() string { return fmt.Sprintf("%s: %v", e.action, e.err) }
func (e *actionError) Unwrap() error { return e.err }

func actionOf(err error) events.Action {
	if ae, ok := err.(*actionError); ok {
		return ae.action
	}
	return events.ActionError
}

// step applies at most one action to e.
func (s *Sampler) step(e model.Experiment, compressed bool) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if e != nil {
				id = e.ID()
			}
			monitoring.CapturePanic(r, s.tags(id, events.ActionError))
			stop, err = false, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()

	strat, err := s.registry.Bind(e)
	if err != nil {
		return false, err
	}
	subj, err := strat.Subject()
	if err != nil {
		return false, fmt.Errorf("subject: %w", err)
	}
	if subj == nil {
		s.debug.Debugf("no subject for %s, skipping", e.ID())
		return false, nil
	}
	value := strat.Value(s.table, subj)
	s.debug.Debugw("experiment checked", map[string]any{
		"experiment": e.ID(),
		"subject":    subj.ID,
		"value":      value,
		"strategy":   strat.Name(),
	})

	if compressed {
		if !strat.CanRun(value) {
			return false, nil
		}
		s.log.Infof("dropping time compression for %s", e.ID())
		s.flight.SetWarpRate(0)
		s.record(events.ActionEvent{
			PartID:       e.PartName(),
			ExperimentID: e.ID(),
			Action:       events.ActionWarpStop,
			SubjectID:    subj.ID,
			Value:        value,
		})
		return true, nil
	}
	return false, s.act(strat, subj, value)
}

// act applies the first applicable action in run, transfer, reset order.
func (s *Sampler) act(strat strategy.Bound, subj *model.Subject, value float64) error {
	e := strat.Experiment()
	ev := events.ActionEvent{
		PartID:       e.PartName(),
		ExperimentID: e.ID(),
		SubjectID:    subj.ID,
		Value:        value,
	}
	if strat.CanRun(value) {
		if err := strat.Deploy(); err != nil {
			return &actionError{events.ActionRun, err}
		}
		s.table.Add(subj.ID)
		s.log.Infof("deployed %s on %s for %.2f (%s)", e.ID(), e.PartName(), value, subj.ID)
		ev.Action = events.ActionRun
		s.record(ev)
		return nil
	}
	if target, ok := s.transferTarget(); ok && strat.CanTransfer(target) {
		if err := strat.Transfer(target); err != nil {
			return &actionError{events.ActionTransfer, err}
		}
		s.log.Infof("moved data of %s to %s", e.ID(), target.Title())
		ev.Action = events.ActionTransfer
		ev.Target = target.Title()
		s.record(ev)
		return nil
	}
	if s.craft.ResetExperiments && strat.CanReset() {
		if err := strat.Reset(); err != nil {
			return &actionError{events.ActionReset, err}
		}
		s.log.Infof("reset %s", e.ID())
		ev.Action = events.ActionReset
		s.record(ev)
	}
	return nil
}

// transferTarget returns the selected holder if it is still aboard the
// tracked vessel.
func (s *Sampler) transferTarget() (model.Holder, bool) {
	i := s.craft.CurrentContainer
	if i <= 0 || i > len(s.holders) {
		return nil, false
	}
	h := s.holders[i-1]
	v := s.flight.ActiveVessel()
	if v == nil || h.VesselID() != v.ID() {
		return nil, false
	}
	return h, true
}
