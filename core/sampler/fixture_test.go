package sampler

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autosampler/core/journal"
	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/monitoring"
	"github.com/kilianp07/autosampler/core/settings"
	"github.com/kilianp07/autosampler/simulator"
)

var gooSpace = simulator.SubjectID("mysteryGoo", model.InSpaceLow, "Kerbin", "")

type fixture struct {
	flight  *simulator.Flight
	oracle  *simulator.Oracle
	ship    *simulator.Vessel
	store   *settings.MemoryStore
	journal *memJournal
	s       *Sampler
}

// newFixture returns a sampler over a crewed vessel in low Kerbin orbit with
// automation on. Parts must be added before prime.
func newFixture(t *testing.T, mutate func(*settings.Settings)) *fixture {
	t.Helper()
	ResetMetrics(prometheus.NewRegistry())

	o := simulator.NewOracle(simulator.DefaultBodies(), nil)
	fl := simulator.NewFlight(o)
	ship := simulator.NewVessel(simulator.VesselState{
		ID:           "ship",
		Name:         "Ship",
		Body:         "Kerbin",
		Controllable: true,
		Altitude:     100000,
		Crew:         []model.CrewMember{{Name: "Bob", Trait: model.ScientistTrait}},
	})
	fl.AddVessel(ship)

	cfg := settings.New()
	cfg.ForCraft(settings.SingleKey).RunAutoScience = true
	if mutate != nil {
		mutate(cfg)
	}
	store := settings.NewMemoryStore(cfg)
	s, err := New(fl, o, store, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	jr := &memJournal{}
	s.SetJournal(jr)
	return &fixture{flight: fl, oracle: o, ship: ship, store: store, journal: jr, s: s}
}

func (f *fixture) goo(id string, spec simulator.ExperimentSpec) *simulator.Experiment {
	def, _ := simulator.FindDefinition(simulator.DefaultDefinitions(), "mysteryGoo")
	spec.ID = id
	e := simulator.NewExperiment(spec, def)
	f.ship.AddExperiment(e)
	return e
}

func (f *fixture) box(id, title string) *simulator.Container {
	c := simulator.NewContainer(id, title)
	f.ship.AddContainer(c)
	return c
}

// prime tracks the vessel and consumes the startup tick.
func (f *fixture) prime(t *testing.T) {
	t.Helper()
	f.s.OnVesselChange()
	require.Equal(t, OutcomeArmed, f.s.Tick())
	f.flight.Advance(1)
}

// step advances one second of game time and ticks.
func (f *fixture) step() Outcome {
	f.flight.Advance(1)
	return f.s.Tick()
}

type memJournal struct {
	mu   sync.Mutex
	recs []journal.Record
}

func (m *memJournal) Append(_ context.Context, rec journal.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memJournal) Query(_ context.Context, q journal.Query) ([]journal.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Record
	for _, r := range m.recs {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memJournal) Close() error { return nil }

func (m *memJournal) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r.Action)
	}
	return out
}

type fakeMonitor struct {
	mu     sync.Mutex
	errs   []error
	panics []any
	tags   []map[string]string
}

func (m *fakeMonitor) CaptureException(err error, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	m.tags = append(m.tags, tags)
}

func (m *fakeMonitor) CapturePanic(r any, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics = append(m.panics, r)
	m.tags = append(m.tags, tags)
}

func (m *fakeMonitor) Flush(time.Duration) {}

func installMonitor(t *testing.T) *fakeMonitor {
	t.Helper()
	m := &fakeMonitor{}
	monitoring.Init(m)
	t.Cleanup(func() { monitoring.Init(nil) })
	return m
}

// scriptedExp is an experiment type handled by scripted.
type scriptedExp struct {
	*simulator.Experiment
}

// scripted answers every check from its fields and records the actions taken.
type scripted struct {
	canRun, canTransfer, canReset bool
	transferErr                   error
	panicOnSubject                bool
	calls                         []string
}

func (p *scripted) Name() string                          { return "scripted" }
func (p *scripted) CanRun(model.Experiment, float64) bool { return p.canRun }
func (p *scripted) CanReset(model.Experiment) bool        { return p.canReset }
func (p *scripted) ValidTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[*scriptedExp]()}
}

func (p *scripted) CanTransfer(model.Experiment, model.Holder) bool { return p.canTransfer }

func (p *scripted) Subject(e model.Experiment) (*model.Subject, error) {
	if p.panicOnSubject {
		panic("subject exploded")
	}
	return &model.Subject{ID: "scripted@" + e.ID()}, nil
}

func (p *scripted) Value(model.Experiment, *ledger.Table, *model.Subject) float64 { return 10 }

func (p *scripted) Deploy(model.Experiment) error {
	p.calls = append(p.calls, "deploy")
	return nil
}

func (p *scripted) Transfer(model.Experiment, model.Holder) error {
	p.calls = append(p.calls, "transfer")
	return p.transferErr
}

func (p *scripted) Reset(model.Experiment) error {
	p.calls = append(p.calls, "reset")
	return nil
}

func (f *fixture) scripted(id string, p *scripted) *scriptedExp {
	e := &scriptedExp{simulator.NewExperiment(simulator.ExperimentSpec{ID: id, Part: "probe"}, nil)}
	f.ship.AddExperiment(e)
	f.s.Registry().Register(p)
	return e
}
