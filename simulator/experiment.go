package simulator

import (
	"errors"

	"github.com/kilianp07/autosampler/core/model"
)

// Experiment is a stock experiment part.
type Experiment struct {
	store
	id         string
	part       string
	def        *model.Definition
	vessel     *Vessel
	deployed   bool
	inoperable bool
	useStaging bool

	rerunnable bool
	resettable bool

	// Counters for inspection.
	StagingRuns int
	DialogRuns  int
	Resets      int
	// StagingSeen records UseStaging as observed by the last run.
	StagingSeen bool
}

// ExperimentSpec describes an experiment part.
type ExperimentSpec struct {
	ID         string `yaml:"id"`
	Experiment string `yaml:"experiment"`
	Part       string `yaml:"part"`
	Rerunnable bool   `yaml:"rerunnable"`
	Resettable bool   `yaml:"resettable"`
	Deployed   bool   `yaml:"deployed"`
	Inoperable bool   `yaml:"inoperable"`
	// Advanced selects the extended part with its own conduct check.
	Advanced bool `yaml:"advanced"`
	// Conductable is the answer of the extended conduct check.
	Conductable *bool `yaml:"conductable"`
	// Configured names the experiment an extended part really produces when
	// it differs from Experiment.
	Configured string `yaml:"configured"`
}

// NewExperiment creates an unattached experiment of role def.
func NewExperiment(spec ExperimentSpec, def *model.Definition) *Experiment {
	part := spec.Part
	if part == "" && def != nil {
		part = def.ID
	}
	return &Experiment{
		id:         spec.ID,
		part:       part,
		def:        def,
		rerunnable: spec.Rerunnable,
		resettable: spec.Resettable,
		deployed:   spec.Deployed,
		inoperable: spec.Inoperable,
	}
}

func (e *Experiment) ID() string                         { return e.id }
func (e *Experiment) HolderID() string                   { return e.id }
func (e *Experiment) PartName() string                   { return e.part }
func (e *Experiment) Definition() *model.Definition      { return e.def }
func (e *Experiment) Deployed() bool                     { return e.deployed }
func (e *Experiment) Rerunnable() bool                   { return e.rerunnable }
func (e *Experiment) Inoperable() bool                   { return e.inoperable }
func (e *Experiment) Resettable() bool                   { return e.resettable }
func (e *Experiment) UseStaging() bool                   { return e.useStaging }
func (e *Experiment) SetUseStaging(v bool)               { e.useStaging = v }
func (e *Experiment) StoreData(model.Holder, bool) error { return errors.New("experiments do not accept data") }

func (e *Experiment) ExperimentID() string {
	if e.def == nil {
		return ""
	}
	return e.def.ID
}

func (e *Experiment) Title() string {
	if e.def == nil {
		return e.part
	}
	return e.def.Title
}

func (e *Experiment) VesselID() string {
	if e.vessel == nil {
		return ""
	}
	return e.vessel.ID()
}

// ClearData drops the results. A one-shot experiment cannot run again until
// it is reset.
func (e *Experiment) ClearData() {
	e.data = nil
	if !e.rerunnable && e.deployed {
		e.inoperable = true
	}
}

func (e *Experiment) OnActive() {
	e.StagingRuns++
	e.collect()
}

func (e *Experiment) DeployExperiment() {
	e.DialogRuns++
	e.collect()
}

func (e *Experiment) ResetExperiment() {
	e.Resets++
	e.data = nil
	e.deployed = false
	e.inoperable = false
}

func (e *Experiment) collect() { e.collectAs(e.def) }

func (e *Experiment) collectAs(def *model.Definition) {
	e.StagingSeen = e.useStaging
	e.deployed = true
	if def == nil || e.vessel == nil || e.vessel.flight == nil {
		return
	}
	o := e.vessel.flight.Oracle
	sit := o.Situation(e.vessel)
	biome := ""
	if o.BiomeRelevant(def, sit) {
		if at := e.vessel.LandedAt(); at != "" {
			biome = o.LandedAtBiome(at)
		} else {
			biome = o.Biome(e.vessel.Body(), e.vessel.Latitude(), e.vessel.Longitude())
		}
	}
	subj := o.Subject(def, sit, e.vessel.Body(), biome)
	if subj == nil {
		return
	}
	e.data = append(e.data, model.ScienceData{
		SubjectID: subj.ID,
		Title:     subj.Title,
		Amount:    def.BaseValue * def.DataScale,
	})
}

// AdvancedExperiment is an extended part that decides on its own whether it
// can be conducted and gathers results through its own entry point.
type AdvancedExperiment struct {
	*Experiment
	configured  *model.Definition
	conductable bool
	// ConductErr, when set, is returned by CanConduct.
	ConductErr error
	Gathers    int
	// LastSilent records the silent flag of the last gather.
	LastSilent bool
}

var _ model.AdvancedExperiment = (*AdvancedExperiment)(nil)

// NewAdvancedExperiment wraps an experiment with the extended checks.
func NewAdvancedExperiment(e *Experiment, conductable bool) *AdvancedExperiment {
	return &AdvancedExperiment{Experiment: e, conductable: conductable}
}

// SetConfigured makes the part produce results for def instead of its own
// definition.
func (a *AdvancedExperiment) SetConfigured(def *model.Definition) { a.configured = def }

// ConfiguredExperimentID is the id of the experiment the part produces.
func (a *AdvancedExperiment) ConfiguredExperimentID() string {
	if a.configured != nil {
		return a.configured.ID
	}
	return a.ExperimentID()
}

// SetConductable changes the outcome of CanConduct.
func (a *AdvancedExperiment) SetConductable(v bool) { a.conductable = v }

// CanConduct reports whether the part allows a run right now.
func (a *AdvancedExperiment) CanConduct(silent bool) (bool, error) {
	if a.ConductErr != nil {
		return false, a.ConductErr
	}
	return a.conductable, nil
}

// GatherScienceData runs the experiment without the stock deploy path.
func (a *AdvancedExperiment) GatherScienceData(silent bool) {
	a.Gathers++
	a.LastSilent = silent
	if a.configured != nil {
		a.collectAs(a.configured)
		return
	}
	a.collect()
}
