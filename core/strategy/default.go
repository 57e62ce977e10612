package strategy

import (
	"fmt"
	"reflect"

	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/settings"
)

// Default applies the baseline rules to any experiment type. Custom
// strategies embed it and override individual methods.
type Default[T model.Experiment] struct {
	env  Env
	name string
}

// NewDefault binds the baseline rules for T to env.
func NewDefault[T model.Experiment](env Env) (*Default[T], error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil environment", ErrInvalidStrategy)
	}
	return &Default[T]{
		env:  env,
		name: fmt.Sprintf("Default<%s>", reflect.TypeFor[T]()),
	}, nil
}

// Name identifies the strategy in logs.
func (d *Default[T]) Name() string { return d.name }

// Env returns the environment the strategy was bound to.
func (d *Default[T]) Env() Env { return d.env }

func (d *Default[T]) log() logger.Logger {
	return logger.OrNop(d.env.Logger())
}

func (d *Default[T]) craft() *settings.CraftSettings {
	if cs := d.env.Settings(); cs != nil {
		return cs
	}
	return settings.NewCraftSettings("")
}

// CanRun reports whether e should be deployed given the value its next
// result would yield.
func (d *Default[T]) CanRun(e T, value float64) bool {
	cs := d.craft()
	log := d.log()
	oracle := d.env.Oracle()
	def := e.Definition()
	v := d.env.ActiveVessel()
	if def == nil || v == nil || oracle == nil {
		log.Debugf("[%s] %s: no definition, vessel or oracle", d.name, e.ExperimentID())
		return false
	}
	sit := oracle.Situation(v)
	switch {
	case !oracle.Available(def, sit, v.Body()):
		log.Debugf("[%s] %s: not available in %s at %s", d.name, e.ExperimentID(), sit, v.Body())
	case e.Inoperable():
		log.Debugf("[%s] %s: inoperable", d.name, e.ExperimentID())
	case e.Deployed() && !e.Rerunnable():
		log.Debugf("[%s] %s: deployed and not rerunnable", d.name, e.ExperimentID())
	case !e.Rerunnable() && !cs.OneTimeOnly:
		log.Debugf("[%s] %s: one-time experiments disabled", d.name, e.ExperimentID())
	case value < cs.Threshold:
		log.Debugf("[%s] %s: value %.3f below threshold %.3f", d.name, e.ExperimentID(), value, cs.Threshold)
	case model.DataCount(e) > 0:
		log.Debugf("[%s] %s: already holds results", d.name, e.ExperimentID())
	case !oracle.Unlocked(def):
		log.Debugf("[%s] %s: not unlocked", d.name, e.ExperimentID())
	default:
		return true
	}
	return false
}

// Deploy runs e. With the dialog hidden the staging path is taken and the
// experiment's own staging preference is restored afterwards.
func (d *Default[T]) Deploy(e T) error {
	if !d.craft().HideScienceDialog {
		e.DeployExperiment()
		return nil
	}
	prev := e.UseStaging()
	e.SetUseStaging(true)
	defer e.SetUseStaging(prev)
	e.OnActive()
	return nil
}

// Subject returns the subject e would produce for the current situation.
func (d *Default[T]) Subject(e T) (*model.Subject, error) {
	def := e.Definition()
	if def == nil {
		return nil, fmt.Errorf("%s: experiment %s has no definition", d.name, e.ExperimentID())
	}
	oracle := d.env.Oracle()
	v := d.env.ActiveVessel()
	if oracle == nil || v == nil {
		return nil, nil
	}
	sit := oracle.Situation(v)
	return oracle.Subject(def, sit, v.Body(), d.CurrentBiome(def, sit)), nil
}

// CurrentBiome returns the biome name used for subjects of def in sit, or ""
// when the biome does not matter. EVA crew members resolve against the
// vessel they left.
func (d *Default[T]) CurrentBiome(def *model.Definition, sit model.Situation) string {
	oracle := d.env.Oracle()
	if oracle == nil || !oracle.BiomeRelevant(def, sit) {
		return ""
	}
	v := d.env.ActiveVessel()
	if v == nil {
		return ""
	}
	if v.IsEVA() {
		if p := d.env.ParentVessel(); p != nil {
			v = p
		}
	}
	if at := v.LandedAt(); at != "" {
		return oracle.LandedAtBiome(at)
	}
	return oracle.Biome(v.Body(), v.Latitude(), v.Longitude())
}

// Value estimates what the next result for subject is worth, accounting for
// copies already aboard.
func (d *Default[T]) Value(e T, dup *ledger.Table, subject *model.Subject) float64 {
	oracle := d.env.Oracle()
	if oracle == nil || subject == nil {
		return 0
	}
	base := oracle.BaseValue(e.Definition(), subject)
	return oracle.Diminish(subject, base, dup.Count(subject.ID))
}

// CanReset reports whether e is spent and a scientist is aboard to reset it.
func (d *Default[T]) CanReset(e T) bool {
	log := d.log()
	switch {
	case !e.Inoperable():
		log.Debugf("[%s] %s: operable, no reset needed", d.name, e.ExperimentID())
	case !e.Deployed():
		log.Debugf("[%s] %s: not deployed", d.name, e.ExperimentID())
	case model.DataCount(e) > 0:
		log.Debugf("[%s] %s: still holds results", d.name, e.ExperimentID())
	case !e.Resettable():
		log.Debugf("[%s] %s: not resettable", d.name, e.ExperimentID())
	case !model.HasTrait(d.env.ActiveVessel(), model.ScientistTrait):
		log.Debugf("[%s] %s: no %s aboard", d.name, e.ExperimentID(), model.ScientistTrait)
	default:
		return true
	}
	return false
}

// Reset restores e to a runnable state.
func (d *Default[T]) Reset(e T) error {
	e.ResetExperiment()
	return nil
}

// CanTransfer reports whether the results of e may move into h.
func (d *Default[T]) CanTransfer(e T, h model.Holder) bool {
	cs := d.craft()
	log := d.log()
	if h == nil || h.HolderID() == e.HolderID() {
		log.Debugf("[%s] %s: target is the experiment itself", d.name, e.ExperimentID())
		return false
	}
	data := e.Data()
	if len(data) == 0 {
		log.Debugf("[%s] %s: nothing to transfer", d.name, e.ExperimentID())
		return false
	}
	if !e.Rerunnable() && !cs.TransferAllData {
		log.Debugf("[%s] %s: one-time results stay in place", d.name, e.ExperimentID())
		return false
	}
	if !cs.DumpDuplicates {
		for _, sd := range data {
			if h.HasData(sd) {
				log.Debugf("[%s] %s: %s already holds %s", d.name, e.ExperimentID(), h.Title(), sd.SubjectID)
				return false
			}
		}
	}
	return true
}

// Transfer moves the results of e into h.
func (d *Default[T]) Transfer(e T, h model.Holder) error {
	if err := h.StoreData(e, d.craft().DumpDuplicates); err != nil {
		return fmt.Errorf("%s: transfer %s to %s: %w", d.name, e.ExperimentID(), h.Title(), err)
	}
	return nil
}

// ValidTypes returns T.
func (d *Default[T]) ValidTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T]()}
}
