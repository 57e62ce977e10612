package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
)

// ErrNoStrategy is returned when neither a custom nor a default strategy can
// be produced for an experiment.
var ErrNoStrategy = errors.New("no strategy")

// Candidate is a named constructor offered for discovery. New may return a
// Strategy, a Factory, or nil for abstract entries.
type Candidate struct {
	Name string
	New  func(env Env) (any, error)
}

// KindSpec knows how to build the default strategy for one concrete type.
type KindSpec struct {
	Type       reflect.Type
	NewDefault func(env Env) (Strategy, error)
}

// Kind describes T so the registry can build Default[T] on demand.
func Kind[T model.Experiment]() KindSpec {
	return KindSpec{
		Type: reflect.TypeFor[T](),
		NewDefault: func(env Env) (Strategy, error) {
			d, err := NewDefault[T](env)
			if err != nil {
				return nil, err
			}
			return Adapt[T](d), nil
		},
	}
}

var baseKind = Kind[model.Experiment]()

// Registry maps experiment types to strategies. Custom strategies registered
// first win; any other type gets a cached default. A strategy may declare an
// interface type, which then covers every experiment implementing it that has
// no exact registration.
type Registry struct {
	env      Env
	log      logger.Logger
	custom   map[reflect.Type]Strategy
	ifaces   []reflect.Type
	defaults map[reflect.Type]Strategy
	kinds    map[reflect.Type]KindSpec
}

// NewRegistry returns an empty registry bound to env.
func NewRegistry(env Env, log logger.Logger) *Registry {
	return &Registry{
		env:      env,
		log:      logger.OrNop(log),
		custom:   make(map[reflect.Type]Strategy),
		defaults: make(map[reflect.Type]Strategy),
		kinds:    make(map[reflect.Type]KindSpec),
	}
}

// RegisterKind teaches the registry how to build a typed default for k.Type.
func (r *Registry) RegisterKind(k KindSpec) {
	if k.Type == nil || k.NewDefault == nil {
		return
	}
	r.kinds[k.Type] = k
}

// Register adds s for every type it declares that has no strategy yet and
// returns how many types it claimed.
func (r *Registry) Register(s Strategy) int {
	if s == nil {
		return 0
	}
	claimed := 0
	for _, t := range s.ValidTypes() {
		if t == nil {
			continue
		}
		if prev, ok := r.custom[t]; ok {
			r.log.Warnf("strategy %s for %s ignored, already handled by %s", s.Name(), t, prev.Name())
			continue
		}
		r.custom[t] = s
		if t.Kind() == reflect.Interface {
			r.ifaces = append(r.ifaces, t)
		}
		claimed++
	}
	return claimed
}

// Discover instantiates every candidate and registers the resulting
// strategies in order. Candidates that fail, panic or produce nothing are
// skipped. It returns the number of types claimed.
func (r *Registry) Discover(cands []Candidate) int {
	claimed := 0
	for _, c := range cands {
		s, err := r.instantiate(c)
		if err != nil {
			r.log.Warnf("skipping strategy candidate %s: %v", c.Name, err)
			continue
		}
		if s == nil {
			continue
		}
		r.log.Infof("found strategy %s", s.Name())
		claimed += r.Register(s)
	}
	return claimed
}

func (r *Registry) instantiate(c Candidate) (s Strategy, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, fmt.Errorf("%w: constructor panicked: %v", ErrInvalidStrategy, rec)
		}
	}()
	if c.New == nil {
		return nil, fmt.Errorf("%w: no constructor", ErrInvalidStrategy)
	}
	v, err := c.New(r.env)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Strategy:
		return x, nil
	case Factory:
		s, err := x.NewStrategy(r.env)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("%w: factory returned nil", ErrInvalidStrategy)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %T is neither a strategy nor a factory", ErrInvalidStrategy, v)
	}
}

// Resolve returns the strategy for e: the registered custom one, otherwise
// the cached default for its concrete type.
func (r *Registry) Resolve(e model.Experiment) (Strategy, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil experiment", ErrNoStrategy)
	}
	t := reflect.TypeOf(e)
	if s, ok := r.custom[t]; ok {
		return s, nil
	}
	for _, it := range r.ifaces {
		if t.Implements(it) {
			return r.custom[it], nil
		}
	}
	if s, ok := r.defaults[t]; ok {
		return s, nil
	}
	k, ok := r.kinds[t]
	if !ok {
		k = baseKind
	}
	s, err := k.NewDefault(r.env)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoStrategy, t, err)
	}
	r.defaults[t] = s
	r.log.Debugf("using %s for %s", s.Name(), t)
	return s, nil
}

// Bind resolves the strategy for e and ties it to e.
func (r *Registry) Bind(e model.Experiment) (Bound, error) {
	s, err := r.Resolve(e)
	if err != nil {
		return nil, err
	}
	return Bind(s, e)
}

// Lookup returns the custom strategy registered for t.
func (r *Registry) Lookup(t reflect.Type) (Strategy, bool) {
	s, ok := r.custom[t]
	return s, ok
}

// Len returns the number of types with a custom strategy.
func (r *Registry) Len() int { return len(r.custom) }

// Registered lists the types with a custom strategy, sorted by name.
func (r *Registry) Registered() []reflect.Type {
	out := make([]reflect.Type, 0, len(r.custom))
	for t := range r.custom {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
