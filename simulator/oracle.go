package simulator

import (
	"fmt"
	"math"
	"strings"

	"github.com/kilianp07/autosampler/core/model"
)

// DefaultDuplicateFactor is the share of value left to each further copy of
// a result already aboard.
const DefaultDuplicateFactor = 0.5

type altituder interface {
	Altitude() float64
}

// Oracle answers science questions from a body table, an unlocked tech list
// and the results already recovered.
type Oracle struct {
	bodies map[string]Body
	tech   map[string]bool
	// recovered holds the science already earned per subject id.
	recovered       map[string]float64
	defs            map[string]model.Definition
	DuplicateFactor float64
}

// NewOracle builds an oracle over bodies with the given techs unlocked.
func NewOracle(bodies []Body, tech []string) *Oracle {
	o := &Oracle{
		bodies:          make(map[string]Body, len(bodies)),
		tech:            make(map[string]bool, len(tech)),
		recovered:       make(map[string]float64),
		DuplicateFactor: DefaultDuplicateFactor,
	}
	o.SetDefinitions(DefaultDefinitions())
	for _, b := range bodies {
		o.bodies[b.Name] = b
	}
	for _, t := range tech {
		o.tech[t] = true
	}
	return o
}

// SetDefinitions replaces the experiment catalog.
func (o *Oracle) SetDefinitions(defs []model.Definition) {
	o.defs = make(map[string]model.Definition, len(defs))
	for _, d := range defs {
		o.defs[d.ID] = d
	}
}

// Definition returns a copy of the catalog entry for id.
func (o *Oracle) Definition(id string) (*model.Definition, bool) {
	d, ok := o.defs[id]
	if !ok {
		return nil, false
	}
	return &d, true
}

// Unlock makes tech available.
func (o *Oracle) Unlock(tech string) { o.tech[tech] = true }

// Recover records science earned for subjectID.
func (o *Oracle) Recover(subjectID string, amount float64) {
	o.recovered[subjectID] += amount
}

func (o *Oracle) body(name string) Body {
	if b, ok := o.bodies[name]; ok {
		return b
	}
	return Body{Name: name}
}

func (o *Oracle) Situation(v model.Vessel) model.Situation {
	switch {
	case v == nil:
		return 0
	case v.Landed():
		return model.SrfLanded
	case v.Splashed():
		return model.SrfSplashed
	}
	alt := 0.0
	if a, ok := v.(altituder); ok {
		alt = a.Altitude()
	}
	return o.body(v.Body()).Situation(alt)
}

func (o *Oracle) Available(def *model.Definition, sit model.Situation, body string) bool {
	if def == nil {
		return false
	}
	if _, ok := o.bodies[body]; !ok {
		return false
	}
	return sit.In(def.SituationMask)
}

func (o *Oracle) BiomeRelevant(def *model.Definition, sit model.Situation) bool {
	return def != nil && sit.In(def.BiomeMask)
}

func (o *Oracle) Biome(body string, lat, _ float64) string {
	return o.body(body).Biome(lat)
}

var landedAtReplacer = strings.NewReplacer(" ", "", "_", "")

func (o *Oracle) LandedAtBiome(landedAt string) string {
	return landedAtReplacer.Replace(landedAt)
}

func (o *Oracle) Subject(def *model.Definition, sit model.Situation, body, biome string) *model.Subject {
	if def == nil || sit == 0 {
		return nil
	}
	title := fmt.Sprintf("%s while %s at %s", def.Title, sit, body)
	if biome != "" {
		title += " " + biome
	}
	return &model.Subject{
		ID:           SubjectID(def.ID, sit, body, biome),
		Title:        title,
		ExperimentID: def.ID,
		Situation:    sit,
		Body:         body,
		Biome:        biome,
	}
}

// SubjectID formats a subject identifier.
func SubjectID(experimentID string, sit model.Situation, body, biome string) string {
	return fmt.Sprintf("%s@%s%s%s", experimentID, body, sit, biome)
}

func (o *Oracle) Unlocked(def *model.Definition) bool {
	return def != nil && (def.RequiredTech == "" || o.tech[def.RequiredTech])
}

// BaseValue is the value of a first result for subject, capped by what
// remains to be earned.
func (o *Oracle) BaseValue(def *model.Definition, subject *model.Subject) float64 {
	if def == nil || subject == nil {
		return 0
	}
	mult := o.body(subject.Body).Multiplier(subject.Situation)
	remaining := math.Max(def.ScienceCap*mult-o.recovered[subject.ID], 0)
	return math.Min(def.BaseValue*mult, remaining)
}

// Diminish scales base by DuplicateFactor once per copy aboard.
func (o *Oracle) Diminish(_ *model.Subject, base float64, count int) float64 {
	if count <= 0 {
		return base
	}
	f := o.DuplicateFactor
	if f < 0 || f > 1 {
		f = DefaultDuplicateFactor
	}
	return base * math.Pow(f, float64(count))
}
