// Package universalstorage handles advanced science parts. These parts
// produce results for a configured experiment that may differ from their own
// definition, gather through their own entry point and have a conduct check
// of their own.
package universalstorage

import (
	"fmt"

	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/strategy"
)

// Name identifies the strategy in logs.
const Name = "UniversalStorage"

// Catalog resolves experiment ids. Oracles implementing it let the strategy
// follow a part's configured experiment.
type Catalog interface {
	Definition(id string) (*model.Definition, bool)
}

// Strategy overrides the defaults for model.AdvancedExperiment.
type Strategy struct {
	*strategy.Default[model.AdvancedExperiment]
	env strategy.Env
}

// New binds a strategy to env.
func New(env strategy.Env) (*Strategy, error) {
	d, err := strategy.NewDefault[model.AdvancedExperiment](env)
	if err != nil {
		return nil, err
	}
	return &Strategy{Default: d, env: env}, nil
}

// Factory builds the strategy once the environment is known.
type Factory struct{}

func (Factory) NewStrategy(env strategy.Env) (strategy.Strategy, error) {
	s, err := New(env)
	if err != nil {
		return nil, err
	}
	return strategy.Adapt[model.AdvancedExperiment](s), nil
}

func (s *Strategy) Name() string { return Name }

// definition returns the definition of the experiment e really produces.
func (s *Strategy) definition(e model.AdvancedExperiment) *model.Definition {
	id := e.ConfiguredExperimentID()
	if c, ok := s.env.Oracle().(Catalog); ok {
		if def, ok := c.Definition(id); ok {
			if id != e.ExperimentID() {
				s.log().Debugf("[%s] %s: using configured experiment %s", Name, e.ExperimentID(), id)
			}
			return def
		}
	}
	return e.Definition()
}

// Subject uses the configured experiment with the part's own biome rules.
func (s *Strategy) Subject(e model.AdvancedExperiment) (*model.Subject, error) {
	def := s.definition(e)
	if def == nil {
		return nil, fmt.Errorf("%s: experiment %s has no definition", Name, e.ID())
	}
	oracle := s.env.Oracle()
	v := s.env.ActiveVessel()
	if oracle == nil || v == nil {
		return nil, nil
	}
	sit := oracle.Situation(v)
	biomeDef := e.Definition()
	if biomeDef == nil {
		biomeDef = def
	}
	subj := oracle.Subject(def, sit, v.Body(), s.CurrentBiome(biomeDef, sit))
	if subj != nil {
		s.log().Debugf("[%s] %s: subject %s", Name, e.ID(), subj.ID)
	}
	return subj, nil
}

// Value prices subject with the configured experiment.
func (s *Strategy) Value(e model.AdvancedExperiment, dup *ledger.Table, subject *model.Subject) float64 {
	oracle := s.env.Oracle()
	if oracle == nil || subject == nil {
		return 0
	}
	base := oracle.BaseValue(s.definition(e), subject)
	return oracle.Diminish(subject, base, dup.Count(subject.ID))
}

// CanRun adds the part's conduct check to the default rules. A failing
// check is treated as permission to run.
func (s *Strategy) CanRun(e model.AdvancedExperiment, value float64) bool {
	if !s.Default.CanRun(e, value) {
		return false
	}
	ok, err := e.CanConduct(s.silent())
	if err != nil {
		s.log().Debugf("[%s] %s: conduct check failed, running anyway: %v", Name, e.ID(), err)
		return true
	}
	if !ok {
		s.log().Debugf("[%s] %s: part refuses to conduct", Name, e.ID())
	}
	return ok
}

// Deploy gathers through the part, silently when the dialog is hidden.
func (s *Strategy) Deploy(e model.AdvancedExperiment) error {
	e.GatherScienceData(s.silent())
	return nil
}

func (s *Strategy) log() logger.Logger { return logger.OrNop(s.env.Logger()) }

func (s *Strategy) silent() bool {
	cs := s.env.Settings()
	return cs != nil && cs.HideScienceDialog
}
