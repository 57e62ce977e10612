package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autosampler/core/model"
)

func testFlight(t *testing.T) (*Flight, *Vessel, *Experiment, *Container) {
	t.Helper()
	f := NewFlight(NewOracle(DefaultBodies(), nil))
	v := NewVessel(VesselState{ID: "v1", Name: "Probe", Body: "Kerbin", Landed: true, LandedAt: "KSC_Launch Pad", Controllable: true})
	def, ok := FindDefinition(DefaultDefinitions(), "temperatureScan")
	require.True(t, ok)
	e := NewExperiment(ExperimentSpec{ID: "thermo"}, def)
	c := NewContainer("box", "Storage")
	v.AddExperiment(e)
	v.AddContainer(c)
	f.AddVessel(v)
	return f, v, e, c
}

func TestOracleSituation(t *testing.T) {
	o := NewOracle(DefaultBodies(), nil)
	v := NewVessel(VesselState{Body: "Kerbin"})
	cases := []struct {
		alt  float64
		want model.Situation
	}{
		{100, model.FlyingLow},
		{20000, model.FlyingHigh},
		{80000, model.InSpaceLow},
		{300000, model.InSpaceHigh},
	}
	for _, c := range cases {
		v.State.Altitude = c.alt
		assert.Equal(t, c.want, o.Situation(v), "altitude %v", c.alt)
	}
	v.State.Splashed = true
	assert.Equal(t, model.SrfSplashed, o.Situation(v))
	v.State.Landed = true
	assert.Equal(t, model.SrfLanded, o.Situation(v))
}

func TestOracleValues(t *testing.T) {
	o := NewOracle(DefaultBodies(), []string{"electronics"})
	def, _ := FindDefinition(DefaultDefinitions(), "mysteryGoo")
	subj := o.Subject(def, model.InSpaceHigh, "Kerbin", "")
	require.NotNil(t, subj)
	assert.Equal(t, "mysteryGoo@KerbinInSpaceHigh", subj.ID)

	base := o.BaseValue(def, subj)
	assert.InDelta(t, 15, base, 1e-9)
	assert.InDelta(t, 7.5, o.Diminish(subj, base, 1), 1e-9)
	assert.InDelta(t, 3.75, o.Diminish(subj, base, 2), 1e-9)

	o.Recover(subj.ID, 15)
	assert.InDelta(t, 4.5, o.BaseValue(def, subj), 1e-9)

	seismic, _ := FindDefinition(DefaultDefinitions(), "seismicScan")
	sample, _ := FindDefinition(DefaultDefinitions(), "surfaceSample")
	assert.True(t, o.Unlocked(seismic))
	assert.False(t, o.Unlocked(sample))
	assert.False(t, o.Available(sample, model.FlyingLow, "Kerbin"))
	assert.False(t, o.Available(sample, model.SrfLanded, "Eeloo"))
	assert.Equal(t, "KSCLaunchPad", o.LandedAtBiome("KSC_Launch Pad"))
	assert.Equal(t, "Tundra", o.Biome("Kerbin", 60, 0))
}

func TestExperimentRunAndTransfer(t *testing.T) {
	_, _, e, c := testFlight(t)
	e.OnActive()
	require.Len(t, e.Data(), 1)
	assert.Equal(t, "temperatureScan@KerbinSrfLandedKSCLaunchPad", e.Data()[0].SubjectID)
	assert.True(t, e.Deployed())

	require.NoError(t, c.StoreData(e, false))
	assert.Empty(t, e.Data())
	assert.True(t, e.Inoperable(), "one-shot experiment is spent once emptied")
	assert.Len(t, c.Data(), 1)

	e.ResetExperiment()
	assert.False(t, e.Inoperable())
	assert.False(t, e.Deployed())
}

func TestContainerDuplicates(t *testing.T) {
	_, _, e, c := testFlight(t)
	e.rerunnable = true
	e.OnActive()
	require.NoError(t, c.StoreData(e, false))
	e.OnActive()
	err := c.StoreData(e, false)
	assert.ErrorIs(t, err, ErrDuplicateData)
	assert.Len(t, e.Data(), 1, "rejected transfer keeps the source intact")

	require.NoError(t, c.StoreData(e, true))
	assert.Empty(t, e.Data())
	assert.Len(t, c.Data(), 1)
}

func TestContainerCapacityAndFail(t *testing.T) {
	_, _, e, c := testFlight(t)
	c.Capacity = 1
	c.data = []model.ScienceData{{SubjectID: "other"}}
	e.OnActive()
	assert.ErrorIs(t, c.StoreData(e, false), ErrContainerFull)

	c.Capacity = 0
	c.Fail = assert.AnError
	assert.ErrorIs(t, c.StoreData(e, false), assert.AnError)
	assert.NoError(t, c.StoreData(e, false))
}

func TestFlightWarpAndTime(t *testing.T) {
	f, _, _, _ := testFlight(t)
	f.SetWarpRate(2)
	f.Advance(0.5)
	assert.Equal(t, 2, f.WarpRateIndex())
	assert.InDelta(t, 5, f.UniversalTime(), 1e-9)
	assert.InDelta(t, 0.5, f.RealTime(), 1e-9)
	f.SetWarpRate(99)
	assert.Equal(t, len(DefaultWarpRates)-1, f.WarpRateIndex())
	f.SetWarpRate(-1)
	assert.Equal(t, 0, f.WarpRateIndex())
}

func TestGoEVA(t *testing.T) {
	f, v, _, _ := testFlight(t)
	v.State.Crew = []model.CrewMember{{Name: "Bob", Trait: model.ScientistTrait}, {Name: "Jeb", Trait: "Pilot"}}

	parent, err := f.GoEVA("v1", "Bob")
	require.NoError(t, err)
	assert.Same(t, v, parent)
	active := f.ActiveVessel()
	require.NotNil(t, active)
	assert.True(t, active.IsEVA())
	assert.True(t, active.Landed())
	assert.Len(t, active.Experiments(), 1)
	assert.Equal(t, []model.CrewMember{{Name: "Jeb", Trait: "Pilot"}}, v.Crew())

	_, err = f.GoEVA("v1", "Bob")
	assert.Error(t, err)
}

func TestHighlight(t *testing.T) {
	f, _, _, c := testFlight(t)
	f.SetHighlight(c, true)
	assert.True(t, f.Highlighted("box"))
	f.SetHighlight(c, false)
	assert.False(t, f.Highlighted("box"))
}
