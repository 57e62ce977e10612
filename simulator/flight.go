package simulator

import (
	"fmt"
	"sync"

	"github.com/kilianp07/autosampler/core/model"
)

// DefaultWarpRates are the time compression factors by index.
var DefaultWarpRates = []float64{1, 5, 10, 50, 100, 1000, 10000, 100000}

// Flight is an in-memory host: vessels, the active one, time and warp.
// Everything but highlighting is owned by the caller's loop.
type Flight struct {
	Oracle    *Oracle
	WarpRates []float64

	vessels map[string]*Vessel
	order   []string
	active  string
	ready   bool
	ut      float64
	real    float64
	delta   float64
	warp    int

	mu         sync.Mutex
	highlights map[string]bool
}

// NewFlight returns a ready flight using o.
func NewFlight(o *Oracle) *Flight {
	return &Flight{
		Oracle:     o,
		WarpRates:  append([]float64(nil), DefaultWarpRates...),
		vessels:    make(map[string]*Vessel),
		ready:      true,
		highlights: make(map[string]bool),
	}
}

// AddVessel registers v. The first vessel added becomes active.
func (f *Flight) AddVessel(v *Vessel) {
	v.flight = f
	if _, ok := f.vessels[v.ID()]; !ok {
		f.order = append(f.order, v.ID())
	}
	f.vessels[v.ID()] = v
	if f.active == "" {
		f.active = v.ID()
	}
}

// Vessel returns the vessel registered under id.
func (f *Flight) Vessel(id string) (*Vessel, bool) {
	v, ok := f.vessels[id]
	return v, ok
}

// Vessels returns every vessel in registration order.
func (f *Flight) Vessels() []*Vessel {
	out := make([]*Vessel, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.vessels[id])
	}
	return out
}

// SetActive switches the active vessel.
func (f *Flight) SetActive(id string) error {
	if _, ok := f.vessels[id]; !ok {
		return fmt.Errorf("unknown vessel %q", id)
	}
	f.active = id
	return nil
}

// SetReady toggles host readiness.
func (f *Flight) SetReady(v bool) { f.ready = v }

func (f *Flight) Ready() bool { return f.ready }

// ActiveVessel returns nil when no vessel is active.
func (f *Flight) ActiveVessel() model.Vessel {
	v, ok := f.vessels[f.active]
	if !ok {
		return nil
	}
	return v
}

func (f *Flight) UniversalTime() float64 { return f.ut }
func (f *Flight) WarpRateIndex() int     { return f.warp }
func (f *Flight) RealTime() float64      { return f.real }
func (f *Flight) DeltaTime() float64     { return f.delta }

// SetWarpRate selects a compression index, clamped to the known rates.
func (f *Flight) SetWarpRate(index int) {
	f.warp = max(0, min(index, len(f.WarpRates)-1))
}

// Advance moves real time by dt seconds and game time by dt times the
// current warp rate.
func (f *Flight) Advance(dt float64) {
	f.delta = dt
	f.real += dt
	rate := 1.0
	if f.warp < len(f.WarpRates) {
		rate = f.WarpRates[f.warp]
	}
	f.ut += dt * rate
}

// SetHighlight marks h as highlighted or not.
func (f *Flight) SetHighlight(h model.Holder, on bool) {
	if h == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if on {
		f.highlights[h.HolderID()] = true
		return
	}
	delete(f.highlights, h.HolderID())
}

// Highlighted reports whether the holder id is highlighted.
func (f *Flight) Highlighted(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.highlights[id]
}

// GoEVA moves a crew member out of vessel id onto a new EVA vessel, which
// becomes active. The EVA vessel starts at the parent's position.
func (f *Flight) GoEVA(id, crew string) (*Vessel, error) {
	parent, ok := f.vessels[id]
	if !ok {
		return nil, fmt.Errorf("unknown vessel %q", id)
	}
	idx := -1
	for i, c := range parent.State.Crew {
		if c.Name == crew {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no crew member %q aboard %s", crew, id)
	}
	member := parent.State.Crew[idx]
	parent.State.Crew = append(parent.State.Crew[:idx:idx], parent.State.Crew[idx+1:]...)

	st := parent.State
	st.ID = id + "-eva-" + crew
	st.Name = crew
	st.EVA = true
	st.Controllable = true
	st.Crew = []model.CrewMember{member}
	eva := NewVessel(st)
	if report, ok := FindDefinition(DefaultDefinitions(), "evaReport"); ok {
		eva.AddExperiment(NewExperiment(ExperimentSpec{ID: st.ID + "-report", Part: "kerbalEVA", Rerunnable: true}, report))
	}
	f.AddVessel(eva)
	f.active = eva.ID()
	return parent, nil
}
