// Package strategy maps experiment types to the handlers that decide whether
// an experiment runs, moves its data or gets reset.
//
// Key components:
//   - Strategy: the capability contract used by the decision loop.
//   - Typed and Adapt: the same contract over a concrete experiment type,
//     exposed through the untyped form.
//   - Bind: ties a resolved strategy to one experiment, asserting its
//     concrete type once per evaluation.
//   - Default: the generic baseline rules, usable for any experiment type.
//   - Registry: first-wins registration of custom strategies discovered from
//     a static candidate list, plus lazily built and cached defaults.
//
// A custom strategy embeds *Default[T] and overrides what it needs:
//
//	type Sampler struct{ *strategy.Default[*MyPart] }
//
//	func (s Sampler) Deploy(e *MyPart) error { return e.Collect() }
//
//	reg.Register(strategy.Adapt[*MyPart](Sampler{def}))
//
// The registry is owned by the decision loop and is not safe for concurrent
// use.
package strategy
