package strategy

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/settings"
)

var (
	// ErrInvalidStrategy is returned when a candidate cannot produce a usable strategy.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrWrongType is returned when a strategy receives an experiment it was not built for.
	ErrWrongType = errors.New("experiment type mismatch")
)

// Strategy is the capability contract every experiment handler honors.
type Strategy interface {
	Name() string
	CanRun(e model.Experiment, value float64) bool
	Deploy(e model.Experiment) error
	// Subject returns the subject the experiment would produce right now. A
	// nil subject with a nil error means there is nothing to evaluate.
	Subject(e model.Experiment) (*model.Subject, error)
	Value(e model.Experiment, dup *ledger.Table, subject *model.Subject) float64
	CanReset(e model.Experiment) bool
	Reset(e model.Experiment) error
	CanTransfer(e model.Experiment, h model.Holder) bool
	Transfer(e model.Experiment, h model.Holder) error
	// ValidTypes lists the concrete experiment types handled.
	ValidTypes() []reflect.Type
}

// Typed is the capability contract over a concrete experiment type.
type Typed[T model.Experiment] interface {
	Name() string
	CanRun(e T, value float64) bool
	Deploy(e T) error
	Subject(e T) (*model.Subject, error)
	Value(e T, dup *ledger.Table, subject *model.Subject) float64
	CanReset(e T) bool
	Reset(e T) error
	CanTransfer(e T, h model.Holder) bool
	Transfer(e T, h model.Holder) error
	ValidTypes() []reflect.Type
}

// Factory builds a strategy bound to env. Candidates may return a Factory
// instead of a Strategy when construction needs the environment.
type Factory interface {
	NewStrategy(env Env) (Strategy, error)
}

// Env is what strategies may read from the decision loop.
type Env interface {
	// Settings returns the configuration of the tracked vessel.
	Settings() *settings.CraftSettings
	ActiveVessel() model.Vessel
	// ParentVessel returns the vessel an EVA crew member left, or nil.
	ParentVessel() model.Vessel
	Oracle() model.ScienceOracle
	Logger() logger.Logger
}

// Adapt exposes a typed strategy through the untyped contract. The decision
// loop goes through Bind, which asserts the experiment to T once. Direct calls
// assert on every call; a mismatch returns ErrWrongType, false or zero.
func Adapt[T model.Experiment](t Typed[T]) Strategy {
	return &adapter[T]{typed: t}
}

type adapter[T model.Experiment] struct {
	typed Typed[T]
}

func (a adapter[T]) cast(e model.Experiment) (T, error) {
	t, ok := e.(T)
	if !ok {
		return t, fmt.Errorf("%w: %s cannot handle %T", ErrWrongType, a.typed.Name(), e)
	}
	return t, nil
}

func (a adapter[T]) bind(e model.Experiment) (Bound, error) {
	t, err := a.cast(e)
	if err != nil {
		return nil, err
	}
	return typedBound[T]{typed: a.typed, e: t}, nil
}

func (a adapter[T]) Name() string { return a.typed.Name() }

func (a adapter[T]) CanRun(e model.Experiment, value float64) bool {
	t, err := a.cast(e)
	return err == nil && a.typed.CanRun(t, value)
}

func (a adapter[T]) Deploy(e model.Experiment) error {
	t, err := a.cast(e)
	if err != nil {
		return err
	}
	return a.typed.Deploy(t)
}

func (a adapter[T]) Subject(e model.Experiment) (*model.Subject, error) {
	t, err := a.cast(e)
	if err != nil {
		return nil, err
	}
	return a.typed.Subject(t)
}

func (a adapter[T]) Value(e model.Experiment, dup *ledger.Table, subject *model.Subject) float64 {
	t, err := a.cast(e)
	if err != nil {
		return 0
	}
	return a.typed.Value(t, dup, subject)
}

func (a adapter[T]) CanReset(e model.Experiment) bool {
	t, err := a.cast(e)
	return err == nil && a.typed.CanReset(t)
}

func (a adapter[T]) Reset(e model.Experiment) error {
	t, err := a.cast(e)
	if err != nil {
		return err
	}
	return a.typed.Reset(t)
}

func (a adapter[T]) CanTransfer(e model.Experiment, h model.Holder) bool {
	t, err := a.cast(e)
	return err == nil && a.typed.CanTransfer(t, h)
}

func (a adapter[T]) Transfer(e model.Experiment, h model.Holder) error {
	t, err := a.cast(e)
	if err != nil {
		return err
	}
	return a.typed.Transfer(t, h)
}

func (a adapter[T]) ValidTypes() []reflect.Type { return a.typed.ValidTypes() }

// Bound is a strategy tied to one experiment for the length of an evaluation.
type Bound interface {
	Name() string
	Experiment() model.Experiment
	CanRun(value float64) bool
	Deploy() error
	Subject() (*model.Subject, error)
	Value(dup *ledger.Table, subject *model.Subject) float64
	CanReset() bool
	Reset() error
	CanTransfer(h model.Holder) bool
	Transfer(h model.Holder) error
}

type binder interface {
	bind(e model.Experiment) (Bound, error)
}

// Bind ties s to e. Strategies built with Adapt assert e to their concrete
// type here, so a mismatch surfaces as ErrWrongType before any check runs.
func Bind(s Strategy, e model.Experiment) (Bound, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrNoStrategy)
	}
	if b, ok := s.(binder); ok {
		return b.bind(e)
	}
	return untypedBound{s: s, e: e}, nil
}

type typedBound[T model.Experiment] struct {
	typed Typed[T]
	e     T
}

func (b typedBound[T]) Name() string                     { return b.typed.Name() }
func (b typedBound[T]) Experiment() model.Experiment     { return b.e }
func (b typedBound[T]) CanRun(value float64) bool        { return b.typed.CanRun(b.e, value) }
func (b typedBound[T]) Deploy() error                    { return b.typed.Deploy(b.e) }
func (b typedBound[T]) Subject() (*model.Subject, error) { return b.typed.Subject(b.e) }
func (b typedBound[T]) CanReset() bool                   { return b.typed.CanReset(b.e) }
func (b typedBound[T]) Reset() error                     { return b.typed.Reset(b.e) }
func (b typedBound[T]) CanTransfer(h model.Holder) bool  { return b.typed.CanTransfer(b.e, h) }
func (b typedBound[T]) Transfer(h model.Holder) error    { return b.typed.Transfer(b.e, h) }

func (b typedBound[T]) Value(dup *ledger.Table, subject *model.Subject) float64 {
	return b.typed.Value(b.e, dup, subject)
}

// untypedBound binds strategies written directly against Strategy.
type untypedBound struct {
	s Strategy
	e model.Experiment
}

func (b untypedBound) Name() string                     { return b.s.Name() }
func (b untypedBound) Experiment() model.Experiment     { return b.e }
func (b untypedBound) CanRun(value float64) bool        { return b.s.CanRun(b.e, value) }
func (b untypedBound) Deploy() error                    { return b.s.Deploy(b.e) }
func (b untypedBound) Subject() (*model.Subject, error) { return b.s.Subject(b.e) }
func (b untypedBound) CanReset() bool                   { return b.s.CanReset(b.e) }
func (b untypedBound) Reset() error                     { return b.s.Reset(b.e) }
func (b untypedBound) CanTransfer(h model.Holder) bool  { return b.s.CanTransfer(b.e, h) }
func (b untypedBound) Transfer(h model.Holder) error    { return b.s.Transfer(b.e, h) }

func (b untypedBound) Value(dup *ledger.Table, subject *model.Subject) float64 {
	return b.s.Value(b.e, dup, subject)
}
