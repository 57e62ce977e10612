package model

// Holder is anything able to store results.
type Holder interface {
	HolderID() string
	Title() string
	VesselID() string
	Data() []ScienceData
	HasData(d ScienceData) bool
	// StoreData moves every result held by src into the holder. When
	// dumpDuplicates is set, results already present are discarded instead of
	// being rejected.
	StoreData(src Holder, dumpDuplicates bool) error
	// ClearData drops all stored results. Called on a source once its data
	// has been moved.
	ClearData()
}

// Experiment is a runnable unit attached to a vessel part. Experiments hold
// their own results, which is why they also satisfy Holder.
type Experiment interface {
	Holder
	ID() string
	ExperimentID() string
	PartName() string
	Definition() *Definition
	Deployed() bool
	Rerunnable() bool
	Inoperable() bool
	Resettable() bool
	UseStaging() bool
	SetUseStaging(bool)
	// OnActive runs the experiment along the staging path, which does not
	// open the results dialog.
	OnActive()
	// DeployExperiment runs the experiment along the interactive path.
	DeployExperiment()
	ResetExperiment()
}

// AdvancedExperiment is a part that may produce results for another
// experiment than its own, has a conduct check of its own and gathers
// through its own entry point.
type AdvancedExperiment interface {
	Experiment
	// ConfiguredExperimentID is the experiment the part produces results for.
	ConfiguredExperimentID() string
	CanConduct(silent bool) (bool, error)
	GatherScienceData(silent bool)
}

// IsExperiment reports whether h is an experiment rather than a plain holder.
func IsExperiment(h Holder) bool {
	_, ok := h.(Experiment)
	return ok
}

// DataCount returns the number of results stored in h.
func DataCount(h Holder) int {
	if h == nil {
		return 0
	}
	return len(h.Data())
}
