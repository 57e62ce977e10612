package universalstorage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/settings"
	"github.com/kilianp07/autosampler/core/strategy"
	"github.com/kilianp07/autosampler/simulator"
)

type env struct {
	flight *simulator.Flight
	craft  *settings.CraftSettings
}

func (e *env) Settings() *settings.CraftSettings { return e.craft }
func (e *env) ActiveVessel() model.Vessel        { return e.flight.ActiveVessel() }
func (e *env) ParentVessel() model.Vessel        { return nil }
func (e *env) Oracle() model.ScienceOracle       { return e.flight.Oracle }
func (e *env) Logger() logger.Logger             { return nil }

func newAdvanced(t *testing.T, configured string) (*env, *simulator.AdvancedExperiment) {
	t.Helper()
	o := simulator.NewOracle(simulator.DefaultBodies(), nil)
	fl := simulator.NewFlight(o)
	v := simulator.NewVessel(simulator.VesselState{ID: "ship", Body: "Kerbin", Controllable: true, Altitude: 100000})
	fl.AddVessel(v)

	own, _ := o.Definition("mysteryGoo")
	adv := simulator.NewAdvancedExperiment(simulator.NewExperiment(simulator.ExperimentSpec{ID: "us", Rerunnable: true}, own), true)
	if configured != "" {
		def, ok := o.Definition(configured)
		require.True(t, ok)
		adv.SetConfigured(def)
	}
	v.AddExperiment(adv)

	craft := settings.NewCraftSettings(settings.SingleKey)
	craft.Threshold = 0
	return &env{flight: fl, craft: craft}, adv
}

func TestSubjectAndValueFollowConfiguredExperiment(t *testing.T) {
	e, adv := newAdvanced(t, "crewReport")
	s, err := New(e)
	require.NoError(t, err)

	subj, err := s.Subject(adv)
	require.NoError(t, err)
	assert.Equal(t, simulator.SubjectID("crewReport", model.InSpaceLow, "Kerbin", ""), subj.ID)

	table := ledger.New()
	assert.Equal(t, 5.0, s.Value(adv, table, subj))
	table.Add(subj.ID)
	assert.Equal(t, 2.5, s.Value(adv, table, subj))
}

func TestCanRunConsultsConductCheck(t *testing.T) {
	e, adv := newAdvanced(t, "")
	s, err := New(e)
	require.NoError(t, err)

	assert.True(t, s.CanRun(adv, 10))

	adv.SetConductable(false)
	assert.False(t, s.CanRun(adv, 10))

	adv.ConductErr = errors.New("no such method")
	assert.True(t, s.CanRun(adv, 10), "a failing check does not block")

	e.craft.Threshold = 20
	assert.False(t, s.CanRun(adv, 10), "default rules still apply")
}

func TestDeployGathersSilentlyWhenDialogHidden(t *testing.T) {
	e, adv := newAdvanced(t, "crewReport")
	s, err := New(e)
	require.NoError(t, err)

	require.NoError(t, s.Deploy(adv))
	assert.Equal(t, 1, adv.Gathers)
	assert.True(t, adv.LastSilent)
	assert.Zero(t, adv.StagingRuns+adv.DialogRuns)
	require.Len(t, adv.Data(), 1)
	assert.Equal(t, simulator.SubjectID("crewReport", model.InSpaceLow, "Kerbin", ""), adv.Data()[0].SubjectID)

	adv.ClearData()
	e.craft.HideScienceDialog = false
	require.NoError(t, s.Deploy(adv))
	assert.False(t, adv.LastSilent)
}

func TestFactoryBuildsAdaptedStrategy(t *testing.T) {
	e, adv := newAdvanced(t, "")
	s, err := Factory{}.NewStrategy(e)
	require.NoError(t, err)
	assert.Equal(t, Name, s.Name())
	require.Len(t, s.ValidTypes(), 1)

	reg := strategy.NewRegistry(e, nil)
	assert.Equal(t, 1, reg.Register(s))
	got, err := reg.Resolve(adv)
	require.NoError(t, err)
	assert.Equal(t, Name, got.Name())

	_, err = Factory{}.NewStrategy(nil)
	assert.Error(t, err)
}
