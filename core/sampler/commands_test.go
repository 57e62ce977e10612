package sampler

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/settings"
	"github.com/kilianp07/autosampler/internal/eventbus"
	"github.com/kilianp07/autosampler/simulator"
)

func TestCommandApply(t *testing.T) {
	f := newFixture(t, nil)
	f.box("box", "Science Jr")
	f.s.OnVesselChange()

	require.NoError(t, Command{Name: "threshold", Value: "5"}.Apply(f.s))
	assert.Equal(t, 5.0, f.s.Settings().Threshold)

	require.NoError(t, Command{Name: "toggle"}.Apply(f.s))
	assert.False(t, f.s.Settings().RunAutoScience)

	require.NoError(t, Command{Name: "transfer_target", Value: "1"}.Apply(f.s))
	assert.Equal(t, 1, f.s.Settings().CurrentContainer)

	require.NoError(t, Command{Name: "sprite_fps", Value: "0"}.Apply(f.s))
	assert.Equal(t, 1.0, f.s.Global().SpriteFPS)

	require.NoError(t, Command{Name: "debug", Value: "true"}.Apply(f.s))
	assert.True(t, f.s.Global().Debug)

	assert.ErrorIs(t, Command{Name: "warp_drive", Value: "true"}.Apply(f.s), ErrUnknownCommand)
	assert.ErrorIs(t, Command{Name: "transfer_target", Value: "4"}.Apply(f.s), ErrNoTarget)
	assert.Error(t, Command{Name: "interrupt_time_warp", Value: "maybe"}.Apply(f.s))

	saved, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, 5.0, saved.Crafts[settings.SingleKey].Threshold)
	assert.True(t, saved.Debug)
	assert.Equal(t, 5, f.store.Saves())
}

func TestCommandBeforeAnyVessel(t *testing.T) {
	o := simulator.NewOracle(nil, nil)
	s, err := New(simulator.NewFlight(o), o, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, Command{Name: "threshold", Value: "1"}.Apply(s), ErrNoVessel)
}

func TestSetPerVehicleScopingReresolves(t *testing.T) {
	f := newFixture(t, nil)
	f.s.OnVesselChange()
	require.Equal(t, settings.SingleKey, f.s.Settings().Key)

	require.NoError(t, f.s.SetPerVehicleScoping(true))
	assert.Equal(t, "ship", f.s.Settings().Key)
	assert.False(t, f.s.Settings().RunAutoScience, "new records start with defaults")

	require.NoError(t, f.s.SetPerVehicleScoping(false))
	assert.True(t, f.s.Settings().RunAutoScience)
}

func TestSettingEventsPublished(t *testing.T) {
	f := newFixture(t, nil)
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()
	f.s.SetBus(bus)
	f.s.OnVesselChange()
	<-sub // rebuild

	require.NoError(t, f.s.SetDumpDuplicates(true))
	ev := (<-sub).(events.SettingEvent)
	assert.Equal(t, events.SettingEvent{CraftKey: settings.SingleKey, Setting: "dump_duplicates", Value: "true"}, ev)
}

func TestSelectTransferTargetHighlights(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, nil)
	f.box("a", "Science Jr")
	f.box("b", "Science Jr")
	f.s.OnVesselChange()

	require.NoError(t, f.s.SelectTransferTarget(1))
	assert.True(t, f.flight.Highlighted("a"))

	require.NoError(t, f.s.SelectTransferTarget(2))
	assert.False(t, f.flight.Highlighted("a"), "pending highlight cancelled")
	assert.True(t, f.flight.Highlighted("b"))

	require.Eventually(t, func() bool { return !f.flight.Highlighted("b") },
		time.Second, 10*time.Millisecond)

	require.NoError(t, f.s.SelectTransferTarget(0))
	assert.Equal(t, 0, f.s.Settings().CurrentContainer)
	assert.ErrorIs(t, f.s.SelectTransferTarget(-1), ErrNoTarget)
}

func TestStaleUnhighlightKeepsReselectedHolder(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, nil)
	a := f.box("a", "Science Jr")
	f.s.OnVesselChange()

	require.NoError(t, f.s.SelectTransferTarget(1))
	first := f.s.highlightGen
	require.NoError(t, f.s.SelectTransferTarget(1))
	require.True(t, f.flight.Highlighted("a"))

	// The first timer fires after the second selection already switched a on.
	f.s.clearHighlight(f.flight, a, first)
	assert.True(t, f.flight.Highlighted("a"))

	f.s.clearHighlight(f.flight, a, f.s.highlightGen)
	assert.False(t, f.flight.Highlighted("a"))
	f.s.Close()
}

func TestCurrentContainerCommandIsRangeChecked(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, nil)
	f.box("a", "Science Jr")
	f.s.OnVesselChange()

	assert.ErrorIs(t, Command{Name: "current_container", Value: "7"}.Apply(f.s), ErrNoTarget)
	assert.Equal(t, 0, f.s.Settings().CurrentContainer)

	require.NoError(t, Command{Name: "current_container", Value: "1"}.Apply(f.s))
	assert.Equal(t, 1, f.s.Settings().CurrentContainer)
	assert.True(t, f.flight.Highlighted("a"))
	f.s.Close()
}

func TestCloseClearsHighlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t, nil)
	f.box("a", "Science Jr")
	f.s.OnVesselChange()
	require.NoError(t, f.s.SelectTransferTarget(1))

	f.s.Close()
	assert.False(t, f.flight.Highlighted("a"))
}

func TestIconAnimation(t *testing.T) {
	f := newFixture(t, nil)
	f.s.OnVesselChange()
	assert.True(t, f.s.Icon().Animating)

	f.flight.Advance(0.1)
	f.s.Tick()
	assert.Equal(t, 3, f.s.Icon().Frame)

	f.flight.Advance(1.8)
	f.s.Tick()
	assert.Equal(t, 0, f.s.Icon().Frame, "wraps past the last frame")

	_, err := f.s.ToggleAutomation()
	require.NoError(t, err)
	f.flight.Advance(0.1)
	f.s.Tick()
	assert.Equal(t, 0, f.s.Icon().Frame)
	assert.False(t, f.s.Icon().Animating)
}

func TestMetricsRecorded(t *testing.T) {
	f := newFixture(t, nil)
	f.goo("goo", simulator.ExperimentSpec{Rerunnable: true})
	f.prime(t)
	f.s.Tick()
	f.s.Tick()

	assert.Equal(t, 1.0, testutil.ToFloat64(ticksTotal.WithLabelValues(string(OutcomeArmed))))
	assert.Equal(t, 1.0, testutil.ToFloat64(ticksTotal.WithLabelValues(string(OutcomeEvaluated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(ticksTotal.WithLabelValues(string(OutcomeWaiting))))
	assert.Equal(t, 1.0, testutil.ToFloat64(actionsTotal.WithLabelValues("run")))
	assert.Equal(t, 1.0, testutil.ToFloat64(trackedExperiments))
	assert.Equal(t, 1, testutil.CollectAndCount(evaluationSeconds))
}
