package strategy_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/strategy"
	"github.com/kilianp07/autosampler/simulator"
)

// named overrides only Name so registrations can be told apart.
type named struct {
	*strategy.Default[*simulator.AdvancedExperiment]
	name string
}

func (n named) Name() string { return n.name }

func advancedCandidate(name string) strategy.Candidate {
	return strategy.Candidate{Name: name, New: func(env strategy.Env) (any, error) {
		d, err := strategy.NewDefault[*simulator.AdvancedExperiment](env)
		if err != nil {
			return nil, err
		}
		return strategy.Adapt[*simulator.AdvancedExperiment](named{Default: d, name: name}), nil
	}}
}

type factoryFunc func(strategy.Env) (strategy.Strategy, error)

func (f factoryFunc) NewStrategy(env strategy.Env) (strategy.Strategy, error) { return f(env) }

func TestDiscoverFirstWins(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{})
	reg := strategy.NewRegistry(fx.env, logger.Nop{})

	claimed := reg.Discover([]strategy.Candidate{
		{Name: "abstract", New: func(strategy.Env) (any, error) { return nil, nil }},
		{Name: "broken", New: func(strategy.Env) (any, error) { return nil, errors.New("boom") }},
		{Name: "panics", New: func(strategy.Env) (any, error) { panic("bad constructor") }},
		{Name: "odd", New: func(strategy.Env) (any, error) { return 42, nil }},
		{Name: "missing"},
		advancedCandidate("first"),
		advancedCandidate("second"),
	})
	assert.Equal(t, 1, claimed)
	assert.Equal(t, 1, reg.Len())

	s, ok := reg.Lookup(reflect.TypeFor[*simulator.AdvancedExperiment]())
	require.True(t, ok)
	assert.Equal(t, "first", s.Name())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[*simulator.AdvancedExperiment]()}, reg.Registered())
}

func TestDiscoverFactory(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{})
	reg := strategy.NewRegistry(fx.env, nil)
	built := 0
	fac := factoryFunc(func(env strategy.Env) (strategy.Strategy, error) {
		built++
		d, err := strategy.NewDefault[*simulator.AdvancedExperiment](env)
		if err != nil {
			return nil, err
		}
		return strategy.Adapt[*simulator.AdvancedExperiment](d), nil
	})
	nilFac := factoryFunc(func(strategy.Env) (strategy.Strategy, error) { return nil, nil })

	claimed := reg.Discover([]strategy.Candidate{
		{Name: "nil", New: func(strategy.Env) (any, error) { return nilFac, nil }},
		{Name: "factory", New: func(strategy.Env) (any, error) { return fac, nil }},
	})
	assert.Equal(t, 1, claimed)
	assert.Equal(t, 1, built)
}

func TestResolveCustomThenDefault(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{})
	reg := strategy.NewRegistry(fx.env, logger.Nop{})
	reg.Discover([]strategy.Candidate{advancedCandidate("custom")})
	reg.RegisterKind(strategy.Kind[*simulator.Experiment]())

	adv := simulator.NewAdvancedExperiment(fx.exp, true)
	s, err := reg.Resolve(adv)
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Name())

	s1, err := reg.Resolve(fx.exp)
	require.NoError(t, err)
	assert.Equal(t, "Default<*simulator.Experiment>", s1.Name())
	s2, err := reg.Resolve(fx.exp)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

// other is an experiment type without a registered kind.
type other struct{ *simulator.Experiment }

func TestResolveUnknownKindFallsBack(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{Rerunnable: true})
	reg := strategy.NewRegistry(fx.env, nil)
	o := other{fx.exp}
	s, err := reg.Resolve(o)
	require.NoError(t, err)
	assert.Equal(t, "Default<model.Experiment>", s.Name())
	assert.True(t, s.CanRun(o, 10))
	assert.Equal(t, 0, reg.Len(), "defaults are not custom registrations")
}

func TestResolveFailures(t *testing.T) {
	reg := strategy.NewRegistry(nil, nil)
	_, err := reg.Resolve(nil)
	assert.ErrorIs(t, err, strategy.ErrNoStrategy)

	fx := newFixture(t, simulator.ExperimentSpec{})
	_, err = reg.Resolve(fx.exp)
	assert.ErrorIs(t, err, strategy.ErrNoStrategy)

	var e model.Experiment = fx.exp
	reg = strategy.NewRegistry(fx.env, nil)
	_, err = reg.Resolve(e)
	assert.NoError(t, err, "a later registry with an environment succeeds")
}

func TestRegisterSkipsNil(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{})
	reg := strategy.NewRegistry(fx.env, nil)
	assert.Zero(t, reg.Register(nil))
	reg.RegisterKind(strategy.KindSpec{})
	assert.Zero(t, reg.Len())
}

func TestResolveInterfaceRegistration(t *testing.T) {
	fx := newFixture(t, simulator.ExperimentSpec{})
	reg := strategy.NewRegistry(fx.env, nil)
	d, err := strategy.NewDefault[model.AdvancedExperiment](fx.env)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Register(strategy.Adapt[model.AdvancedExperiment](d)))

	adv := simulator.NewAdvancedExperiment(fx.exp, true)
	s, err := reg.Resolve(adv)
	require.NoError(t, err)
	assert.Equal(t, "Default<model.AdvancedExperiment>", s.Name())

	s, err = reg.Resolve(fx.exp)
	require.NoError(t, err)
	assert.Equal(t, "Default<model.Experiment>", s.Name(), "plain experiments do not match")

	reg.Discover([]strategy.Candidate{advancedCandidate("exact")})
	s, err = reg.Resolve(adv)
	require.NoError(t, err)
	assert.Equal(t, "exact", s.Name(), "an exact type wins over an interface")

	b, err := reg.Bind(adv)
	require.NoError(t, err)
	assert.Same(t, adv, b.Experiment())
}
