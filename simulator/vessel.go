package simulator

import "github.com/kilianp07/autosampler/core/model"

// VesselState is the mutable snapshot of a vessel.
type VesselState struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Body         string             `yaml:"body"`
	EVA          bool               `yaml:"eva"`
	Packed       bool               `yaml:"packed"`
	Controllable bool               `yaml:"controllable"`
	Landed       bool               `yaml:"landed"`
	Splashed     bool               `yaml:"splashed"`
	OnLadder     bool               `yaml:"on_ladder"`
	LandedAt     string             `yaml:"landed_at"`
	Latitude     float64            `yaml:"latitude"`
	Longitude    float64            `yaml:"longitude"`
	Altitude     float64            `yaml:"altitude"`
	Crew         []model.CrewMember `yaml:"crew"`
}

// Vessel is a simulated vehicle. State may be changed freely between ticks.
type Vessel struct {
	State  VesselState
	parts  []model.Holder
	flight *Flight
}

// NewVessel creates a vessel without parts.
func NewVessel(state VesselState) *Vessel {
	return &Vessel{State: state}
}

// AddExperiment attaches e to the vessel.
func (v *Vessel) AddExperiment(e model.Experiment) {
	switch x := e.(type) {
	case *Experiment:
		x.vessel = v
	case *AdvancedExperiment:
		x.vessel = v
	}
	v.parts = append(v.parts, e)
}

// AddContainer attaches c to the vessel.
func (v *Vessel) AddContainer(c *Container) {
	c.vesselID = v.State.ID
	v.parts = append(v.parts, c)
}

func (v *Vessel) ID() string               { return v.State.ID }
func (v *Vessel) Name() string             { return v.State.Name }
func (v *Vessel) IsEVA() bool              { return v.State.EVA }
func (v *Vessel) Packed() bool             { return v.State.Packed }
func (v *Vessel) Controllable() bool       { return v.State.Controllable }
func (v *Vessel) Landed() bool             { return v.State.Landed }
func (v *Vessel) Splashed() bool           { return v.State.Splashed }
func (v *Vessel) OnLadder() bool           { return v.State.OnLadder }
func (v *Vessel) LandedAt() string         { return v.State.LandedAt }
func (v *Vessel) Latitude() float64        { return v.State.Latitude }
func (v *Vessel) Longitude() float64       { return v.State.Longitude }
func (v *Vessel) Altitude() float64        { return v.State.Altitude }
func (v *Vessel) Body() string             { return v.State.Body }
func (v *Vessel) Crew() []model.CrewMember { return append([]model.CrewMember(nil), v.State.Crew...) }

// Experiments lists the experiment parts in attachment order.
func (v *Vessel) Experiments() []model.Experiment {
	var out []model.Experiment
	for _, p := range v.parts {
		if e, ok := p.(model.Experiment); ok {
			out = append(out, e)
		}
	}
	return out
}

// Holders lists every part able to store results, experiments included.
func (v *Vessel) Holders() []model.Holder {
	return append([]model.Holder(nil), v.parts...)
}

// Containers lists the parts that only store results.
func (v *Vessel) Containers() []*Container {
	var out []*Container
	for _, p := range v.parts {
		if c, ok := p.(*Container); ok {
			out = append(out, c)
		}
	}
	return out
}
