package model

// ScientistTrait is the crew role allowed to reset experiments.
const ScientistTrait = "Scientist"

// CrewMember is a person aboard a vessel.
type CrewMember struct {
	Name  string `json:"name" yaml:"name"`
	Trait string `json:"trait" yaml:"trait"`
}

// Vessel is a read-only snapshot of a vehicle provided by the host.
type Vessel interface {
	ID() string
	Name() string
	IsEVA() bool
	Packed() bool
	Controllable() bool
	Landed() bool
	Splashed() bool
	// OnLadder is only meaningful for EVA vessels.
	OnLadder() bool
	LandedAt() string
	Latitude() float64
	Longitude() float64
	Body() string
	Crew() []CrewMember
	Experiments() []Experiment
	Holders() []Holder
}

// HasTrait reports whether any crew member aboard v carries trait.
func HasTrait(v Vessel, trait string) bool {
	if v == nil {
		return false
	}
	for _, c := range v.Crew() {
		if c.Trait == trait {
			return true
		}
	}
	return false
}

// Grounded reports whether the vessel rests on land or water.
func Grounded(v Vessel) bool {
	return v != nil && (v.Landed() || v.Splashed())
}
