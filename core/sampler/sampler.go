// Package sampler drives automated experiments on the active vessel. A
// Sampler is ticked by its owner, gates on readiness and a refresh interval
// in simulated time, then asks the strategy registry what to do with every
// experiment: run it, move its results to the selected holder, or reset it.
//
// A Sampler is owned by a single goroutine. Commands coming from elsewhere
// must be queued as Command values and applied by the owner between ticks.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/journal"
	"github.com/kilianp07/autosampler/core/ledger"
	"github.com/kilianp07/autosampler/core/logger"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/monitoring"
	"github.com/kilianp07/autosampler/core/settings"
	"github.com/kilianp07/autosampler/core/strategy"
	"github.com/kilianp07/autosampler/internal/eventbus"
)

// Flight is the host simulation as seen by the sampler.
type Flight interface {
	// Ready reports whether the host finished loading the flight scene.
	Ready() bool
	ActiveVessel() model.Vessel
	// UniversalTime is the simulated clock in seconds.
	UniversalTime() float64
	// WarpRateIndex is 0 at normal speed and positive while time is compressed.
	WarpRateIndex() int
	SetWarpRate(index int)
	// RealTime and DeltaTime are wall-clock seconds since start and since
	// the previous frame. They only drive the icon animation.
	RealTime() float64
	DeltaTime() float64
}

// Highlighter marks holders in the host UI.
type Highlighter interface {
	SetHighlight(h model.Holder, on bool)
}

// ErrPanicked wraps a panic recovered while evaluating one experiment.
var ErrPanicked = errors.New("strategy panicked")

// Sampler is the decision loop.
type Sampler struct {
	flight   Flight
	oracle   model.ScienceOracle
	store    settings.Store
	settings *settings.Settings
	craft    *settings.CraftSettings
	registry *strategy.Registry
	log      logger.Logger
	debug    logger.Logger

	// collaborators, guarded by mu
	mu          sync.Mutex
	bus         eventbus.EventBus
	journal     journal.Store
	highlighter Highlighter
	// highlightGen identifies the latest highlight; stale timers leave it on.
	highlightGen uint64

	// vessel bookkeeping, replaced as a whole by rebuild
	vesselID    string
	experiments []model.Experiment
	holders     []model.Holder
	table       *ledger.Table
	shipReady   bool
	parent      model.Vessel
	nextUpdate  float64

	frame     float64
	lastFrame float64

	highlighted model.Holder
	unhighlight *time.Timer
}

// New loads settings from store and returns a sampler for flight. The
// sampler is not ready until OnVesselChange has been called once.
func New(flight Flight, oracle model.ScienceOracle, store settings.Store, log logger.Logger) (*Sampler, error) {
	if flight == nil {
		return nil, errors.New("sampler: flight is required")
	}
	if oracle == nil {
		return nil, errors.New("sampler: oracle is required")
	}
	if store == nil {
		store = settings.NewMemoryStore(nil)
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if cfg == nil {
		cfg = settings.New()
	}
	cfg.SetDefaults()

	s := &Sampler{
		flight:   flight,
		oracle:   oracle,
		store:    store,
		settings: cfg,
		log:      logger.OrNop(log),
		journal:  journal.NopStore{},
		table:    ledger.New(),
	}
	s.debug = logger.Gated{Next: s.log, Enabled: func() bool { return s.settings.Debug }}
	s.registry = strategy.NewRegistry(s, s.debug)
	if h, ok := flight.(Highlighter); ok {
		s.highlighter = h
	}
	return s, nil
}

// Registry returns the strategy registry used to resolve experiments.
func (s *Sampler) Registry() *strategy.Registry { return s.registry }

// SetBus configures the bus receiving action events.
func (s *Sampler) SetBus(bus eventbus.EventBus) {
	s.mu.Lock()
	s.bus = bus
	s.mu.Unlock()
}

// SetJournal configures the store recording every action.
func (s *Sampler) SetJournal(store journal.Store) {
	if store == nil {
		store = journal.NopStore{}
	}
	s.mu.Lock()
	s.journal = store
	s.mu.Unlock()
}

// SetHighlighter configures the highlighter used when a transfer target is
// selected.
func (s *Sampler) SetHighlighter(h Highlighter) {
	s.mu.Lock()
	s.highlighter = h
	s.mu.Unlock()
}

func (s *Sampler) collaborators() (eventbus.EventBus, journal.Store, Highlighter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus, s.journal, s.highlighter
}

// Settings returns the configuration of the tracked vessel, or nil before
// the first vessel change.
func (s *Sampler) Settings() *settings.CraftSettings { return s.craft }

// Global returns the global settings.
func (s *Sampler) Global() *settings.Settings { return s.settings }

func (s *Sampler) ActiveVessel() model.Vessel { return s.flight.ActiveVessel() }

// ParentVessel returns the vessel the current EVA crew member left.
func (s *Sampler) ParentVessel() model.Vessel { return s.parent }

func (s *Sampler) Oracle() model.ScienceOracle { return s.oracle }

// Logger returns a logger whose debug output follows the Debug setting.
func (s *Sampler) Logger() logger.Logger { return s.debug }

// Experiments returns the experiments tracked since the last rebuild.
func (s *Sampler) Experiments() []model.Experiment {
	return append([]model.Experiment(nil), s.experiments...)
}

// Ledger returns the duplicate accounting table of the tracked vessel.
func (s *Sampler) Ledger() *ledger.Table { return s.table }

// Close cancels a pending highlight and clears it.
func (s *Sampler) Close() {
	s.stopHighlight()
}

// OnVesselChange resolves the configuration of the new active vessel and
// rebuilds the vessel bookkeeping.
func (s *Sampler) OnVesselChange() {
	v := s.flight.ActiveVessel()
	if v == nil {
		s.log.Warnf("vessel change without an active vessel")
		s.shipReady = false
		return
	}
	if !v.IsEVA() {
		s.parent = nil
	}
	s.resolveCraft()
	s.rebuild()
}

// OnCrewEVA records the vessel a crew member just left and delays the next
// evaluation by one refresh interval.
func (s *Sampler) OnCrewEVA(from model.Vessel) {
	s.parent = from
	s.nextUpdate = s.flight.UniversalTime() + s.settings.RefreshTime
	if from != nil {
		s.debug.Debugf("crew left %s", from.ID())
	}
}

func (s *Sampler) resolveCraft() {
	v := s.flight.ActiveVessel()
	if v == nil {
		return
	}
	parentID := ""
	if s.parent != nil {
		parentID = s.parent.ID()
	}
	key := s.settings.Key(v.ID(), v.IsEVA(), parentID)
	s.craft = s.settings.ForCraft(key)
	s.debug.Debugf("using craft settings %s", key)
}

// rebuild replaces the experiments, holders and duplicate table of the
// tracked vessel. Nothing is committed when the active vessel is missing or
// changes while building.
func (s *Sampler) rebuild() bool {
	v := s.flight.ActiveVessel()
	if v == nil {
		s.shipReady = false
		return false
	}
	exps := v.Experiments()
	var holders []model.Holder
	for _, h := range v.Holders() {
		if h == nil || model.IsExperiment(h) {
			continue
		}
		holders = append(holders, h)
	}
	table := ledger.New()
	table.Rebuild(holders)

	if cur := s.flight.ActiveVessel(); cur == nil || cur.ID() != v.ID() {
		s.log.Warnf("active vessel changed while rebuilding %s", v.ID())
		s.shipReady = false
		return false
	}
	s.vesselID = v.ID()
	s.experiments = exps
	s.holders = holders
	s.table = table
	s.shipReady = true
	trackedExperiments.Set(float64(len(exps)))
	s.debug.Debugf("rebuilt %s: %d experiments, %d holders, %d subjects", v.ID(), len(exps), len(holders), table.Len())

	bus, _, _ := s.collaborators()
	if bus != nil {
		bus.Publish(events.RebuildEvent{
			Time:        time.Now(),
			VesselID:    v.ID(),
			Experiments: len(exps),
			Holders:     len(holders),
			Subjects:    table.Len(),
		})
	}
	return true
}

// record reports one action on every observability channel.
func (s *Sampler) record(ev events.ActionEvent) {
	ev.Time = time.Now()
	ev.VesselID = s.vesselID
	actionsTotal.WithLabelValues(string(ev.Action)).Inc()

	bus, store, _ := s.collaborators()
	if bus != nil {
		bus.Publish(ev)
	}
	rec := journal.Record{
		Timestamp:    ev.Time,
		VesselID:     ev.VesselID,
		PartID:       ev.PartID,
		ExperimentID: ev.ExperimentID,
		Action:       string(ev.Action),
		SubjectID:    ev.SubjectID,
		Target:       ev.Target,
		Value:        ev.Value,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	if err := store.Append(context.Background(), rec); err != nil {
		s.log.Errorf("journal append: %v", err)
	}
}

// fail logs and reports an error raised while handling e.
func (s *Sampler) fail(e model.Experiment, action events.Action, err error) {
	id, part := "", ""
	if e != nil {
		id, part = e.ID(), e.PartName()
	}
	s.log.Errorf("experiment %s on %s: %v", id, part, err)
	if !errors.Is(err, ErrPanicked) {
		monitoring.CaptureException(err, s.tags(id, action))
	}
	s.record(events.ActionEvent{
		PartID:       part,
		ExperimentID: id,
		Action:       events.ActionError,
		Err:          err,
	})
}

func (s *Sampler) tags(experimentID string, action events.Action) map[string]string {
	return map[string]string{
		"vessel":     s.vesselID,
		"experiment": experimentID,
		"action":     string(action),
	}
}
