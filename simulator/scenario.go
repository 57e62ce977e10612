package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/autosampler/core/model"
)

// ContainerSpec describes a storage part.
type ContainerSpec struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Capacity int    `yaml:"capacity"`
}

// VesselSpec describes a vessel and its parts.
type VesselSpec struct {
	VesselState `yaml:",inline"`
	Experiments []ExperimentSpec `yaml:"experiments"`
	Containers  []ContainerSpec  `yaml:"containers"`
}

// Scenario is the YAML description of a flight.
type Scenario struct {
	Active      string             `yaml:"active"`
	Tech        []string           `yaml:"tech"`
	WarpRates   []float64          `yaml:"warp_rates"`
	Bodies      []Body             `yaml:"bodies"`
	Definitions []model.Definition `yaml:"definitions"`
	Vessels     []VesselSpec       `yaml:"vessels"`
	// Generate appends that many random vessels.
	Generate FleetConfig `yaml:"generate"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &sc, nil
}

// Build creates the flight described by the scenario.
func (sc *Scenario) Build() (*Flight, error) {
	bodies := sc.Bodies
	if len(bodies) == 0 {
		bodies = DefaultBodies()
	}
	defs := sc.Definitions
	if len(defs) == 0 {
		defs = DefaultDefinitions()
	}
	oracle := NewOracle(bodies, sc.Tech)
	oracle.SetDefinitions(defs)
	f := NewFlight(oracle)
	if len(sc.WarpRates) > 0 {
		f.WarpRates = append([]float64(nil), sc.WarpRates...)
	}
	specs := append([]VesselSpec(nil), sc.Vessels...)
	specs = append(specs, GenerateVessels(sc.Generate, defs)...)
	if len(specs) == 0 {
		return nil, errors.New("scenario has no vessels")
	}
	for _, vs := range specs {
		if vs.ID == "" {
			return nil, errors.New("vessel without id")
		}
		v := NewVessel(vs.VesselState)
		for _, es := range vs.Experiments {
			def, ok := FindDefinition(defs, es.Experiment)
			if !ok {
				return nil, fmt.Errorf("vessel %s: unknown experiment %q", vs.ID, es.Experiment)
			}
			e := NewExperiment(es, def)
			if es.Advanced {
				conductable := es.Conductable == nil || *es.Conductable
				adv := NewAdvancedExperiment(e, conductable)
				if es.Configured != "" {
					cdef, ok := FindDefinition(defs, es.Configured)
					if !ok {
						return nil, fmt.Errorf("vessel %s: unknown configured experiment %q", vs.ID, es.Configured)
					}
					adv.SetConfigured(cdef)
				}
				v.AddExperiment(adv)
				continue
			}
			v.AddExperiment(e)
		}
		for _, cs := range vs.Containers {
			c := NewContainer(cs.ID, cs.Title)
			c.Capacity = cs.Capacity
			v.AddContainer(c)
		}
		f.AddVessel(v)
	}
	if sc.Active != "" {
		if err := f.SetActive(sc.Active); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FleetConfig holds parameters for random vessel generation.
type FleetConfig struct {
	Size int `yaml:"size"`
	// LandedPct is the share of vessels generated on the ground.
	LandedPct float64 `yaml:"landed_pct"`
	// ScientistPct is the share of vessels carrying a scientist.
	ScientistPct float64 `yaml:"scientist_pct"`
	Seed         int64   `yaml:"seed"`
}

// GenerateVessels creates Size vessels with ids gen001..genNNN, each
// carrying two random experiments and one container.
func GenerateVessels(cfg FleetConfig, defs []model.Definition) []VesselSpec {
	if cfg.Size <= 0 || len(defs) == 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	out := make([]VesselSpec, cfg.Size)
	for i := range out {
		id := fmt.Sprintf("gen%03d", i+1)
		st := VesselState{
			ID:           id,
			Name:         fmt.Sprintf("Generated %d", i+1),
			Body:         "Kerbin",
			Controllable: true,
			Latitude:     rng.Float64()*180 - 90,
			Longitude:    rng.Float64()*360 - 180,
		}
		if rng.Float64() < cfg.LandedPct {
			st.Landed = true
		} else {
			st.Altitude = rng.Float64() * 300000
		}
		if rng.Float64() < cfg.ScientistPct {
			st.Crew = append(st.Crew, model.CrewMember{Name: id + "-sci", Trait: model.ScientistTrait})
		}
		vs := VesselSpec{VesselState: st}
		for j := 0; j < 2; j++ {
			d := defs[rng.Intn(len(defs))]
			vs.Experiments = append(vs.Experiments, ExperimentSpec{
				ID:         fmt.Sprintf("%s-exp%d", id, j+1),
				Experiment: d.ID,
				Rerunnable: rng.Intn(2) == 0,
				Resettable: true,
			})
		}
		vs.Containers = []ContainerSpec{{ID: id + "-box", Title: "Experiment Storage Unit"}}
		out[i] = vs
	}
	return out
}
