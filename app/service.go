// Package app wires the sampler to its simulated flight, persistence,
// observability and command transports.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	journalapi "github.com/kilianp07/autosampler/api/journal"
	"github.com/kilianp07/autosampler/app/plugins"
	"github.com/kilianp07/autosampler/config"
	"github.com/kilianp07/autosampler/core/journal"
	coremetrics "github.com/kilianp07/autosampler/core/metrics"
	coremon "github.com/kilianp07/autosampler/core/monitoring"
	"github.com/kilianp07/autosampler/core/sampler"
	"github.com/kilianp07/autosampler/core/strategy"
	"github.com/kilianp07/autosampler/infra/logger"
	"github.com/kilianp07/autosampler/infra/metrics"
	"github.com/kilianp07/autosampler/infra/monitoring"
	"github.com/kilianp07/autosampler/infra/mqtt"
	"github.com/kilianp07/autosampler/infra/settingsfile"
	"github.com/kilianp07/autosampler/internal/eventbus"
	"github.com/kilianp07/autosampler/simulator"
)

// Host events handled by the service before reaching the sampler.
const (
	// CommandSwitchVessel makes the vessel named by Value active.
	CommandSwitchVessel = "switch_vessel"
	// CommandEVA sends a crew member out; Value is "<vessel>:<crew>".
	CommandEVA = "eva"
	// CommandWarp selects a time compression index.
	CommandWarp = "warp"
)

// ErrQueueFull is returned by Enqueue when commands are not drained fast
// enough.
var ErrQueueFull = errors.New("command queue full")

// Service runs the sampler loop against a simulated flight.
type Service struct {
	Sampler *sampler.Sampler
	Flight  *simulator.Flight

	cfg      *config.Config
	bus      *eventbus.Bus
	journal  journal.Store
	sink     coremetrics.MetricsSink
	bridge   *mqtt.Bridge
	commands chan sampler.Command
	log      logger.Logger
	closers  []io.Closer
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logCloser := logger.Configure(cfg.Logging.Options())
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	if cfg.Simulator.Scenario == "" {
		return nil, errors.New("simulator.scenario is required")
	}
	sc, err := simulator.LoadScenario(cfg.Simulator.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	flight, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}

	store, err := settingsfile.New(cfg.Sampler.SettingsPath, cfg.Sampler.Settings())
	if err != nil {
		return nil, err
	}
	smp, err := sampler.New(flight, flight.Oracle, store, logger.New("sampler"))
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	reg := smp.Registry()
	reg.RegisterKind(strategy.Kind[*simulator.Experiment]())
	n := reg.Discover(plugins.Candidates())
	logg.Infof("strategies claimed %d experiment types", n)

	jr, err := journal.New(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = jr.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()
	smp.SetBus(bus)
	smp.SetJournal(jr)

	svc := &Service{
		Sampler:  smp,
		Flight:   flight,
		cfg:      cfg,
		bus:      bus,
		journal:  jr,
		sink:     sink,
		commands: make(chan sampler.Command, max(cfg.MQTT.CommandBuffer, 1)),
		log:      logg,
		closers:  []io.Closer{logCloser},
	}
	if cfg.MQTT.Enabled() {
		b, err := mqtt.NewBridge(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
		svc.bridge = b
	}
	smp.OnVesselChange()
	return svc, nil
}

// Enqueue queues cmd for the loop goroutine.
func (s *Service) Enqueue(cmd sampler.Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run ticks the sampler until ctx is cancelled. Commands are applied between
// ticks on the calling goroutine.
func (s *Service) Run(ctx context.Context) error {
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	var bridged <-chan struct{}
	var remote <-chan sampler.Command
	if s.bridge != nil {
		bridged = s.bridge.Run(ctx, s.bus)
		remote = s.bridge.Commands()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		go func() {
			if err := journalapi.Serve(ctx, addr, s.journal, s.cfg.API.Token); err != nil {
				s.log.Errorf("journal api: %v", err)
			}
		}()
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	tick := s.cfg.Sampler.Tick()
	dt := tick.Seconds() * s.cfg.Simulator.TimeScale
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	s.log.Infof("sampler running, tick %s", tick)
	for {
		select {
		case <-ctx.Done():
			<-collected
			if bridged != nil {
				<-bridged
			}
			return nil
		case cmd := <-s.commands:
			s.apply(cmd)
		case cmd := <-remote:
			s.apply(cmd)
		case <-ticker.C:
			s.Step(dt)
		}
	}
}

// Step advances the flight by dt seconds of wall-clock time and ticks once.
func (s *Service) Step(dt float64) sampler.Outcome {
	s.Flight.Advance(dt)
	return s.Sampler.Tick()
}

func (s *Service) apply(cmd sampler.Command) {
	if err := s.Apply(cmd); err != nil {
		s.log.Warnf("command %s: %v", cmd.Name, err)
	}
}

// Apply executes cmd immediately. It must be called from the goroutine
// running the loop, or before Run.
func (s *Service) Apply(cmd sampler.Command) error {
	switch cmd.Name {
	case CommandSwitchVessel:
		if err := s.Flight.SetActive(cmd.Value); err != nil {
			return err
		}
		s.Sampler.OnVesselChange()
		return nil
	case CommandEVA:
		vessel, crew, ok := strings.Cut(cmd.Value, ":")
		if !ok {
			return fmt.Errorf("eva: want <vessel>:<crew>, got %q", cmd.Value)
		}
		parent, err := s.Flight.GoEVA(vessel, crew)
		if err != nil {
			return err
		}
		s.Sampler.OnCrewEVA(parent)
		s.Sampler.OnVesselChange()
		return nil
	case CommandWarp:
		idx, err := strconv.Atoi(cmd.Value)
		if err != nil {
			return fmt.Errorf("warp: %w", err)
		}
		s.Flight.SetWarpRate(idx)
		return nil
	}
	return cmd.Apply(s.Sampler)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Sampler.Close()
	if s.bridge != nil {
		s.bridge.Disconnect()
	}
	s.bus.Close()
	var errs []error
	if err := s.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Current().Flush(2 * time.Second)
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
