package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/logger"
	coremon "github.com/kilianp07/autosampler/core/monitoring"
	"github.com/kilianp07/autosampler/core/sampler"
	"github.com/kilianp07/autosampler/internal/eventbus"
)

// ErrCommandDropped is logged when the command queue is full.
var ErrCommandDropped = errors.New("command queue full")

// Message is the JSON envelope published for every sampler event.
type Message struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Timestamp    int64   `json:"timestamp"`
	VesselID     string  `json:"vessel_id,omitempty"`
	PartID       string  `json:"part_id,omitempty"`
	ExperimentID string  `json:"experiment_id,omitempty"`
	Action       string  `json:"action,omitempty"`
	SubjectID    string  `json:"subject_id,omitempty"`
	Target       string  `json:"target,omitempty"`
	Value        float64 `json:"value,omitempty"`
	Error        string  `json:"error,omitempty"`
	Experiments  int     `json:"experiments,omitempty"`
	Holders      int     `json:"holders,omitempty"`
	Subjects     int     `json:"subjects,omitempty"`
	CraftKey     string  `json:"craft_key,omitempty"`
	Setting      string  `json:"setting,omitempty"`
	SettingValue string  `json:"setting_value,omitempty"`
}

// Bridge forwards sampler events to the broker and queues incoming commands.
// Commands are only queued here; the goroutine owning the sampler applies
// them between ticks.
type Bridge struct {
	cli      pahoClient
	cfg      Config
	log      logger.Logger
	commands chan sampler.Command
	now      func() time.Time
}

// NewBridge connects to the broker and subscribes to the command topic.
func NewBridge(cfg Config, log logger.Logger) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		cfg:      cfg,
		log:      logger.OrNop(log),
		commands: make(chan sampler.Command, cfg.CommandBuffer),
		now:      time.Now,
	}
	opts.OnConnect = func(c paho.Client) {
		b.log.Infof("MQTT connected")
		if token := c.Subscribe(b.CommandTopic(), cfg.qos("command"), b.onCommand); token.Wait() && token.Error() != nil {
			b.log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		b.log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		b.log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	b.cli = c
	return b, nil
}

// CommandTopic is where setting commands are received.
func (b *Bridge) CommandTopic() string { return b.cfg.TopicPrefix + "/command" }

// EventTopic is where events of the given type are published.
func (b *Bridge) EventTopic(kind string) string { return b.cfg.TopicPrefix + "/events/" + kind }

// Commands returns the queue of decoded commands.
func (b *Bridge) Commands() <-chan sampler.Command { return b.commands }

func (b *Bridge) onCommand(_ paho.Client, msg paho.Message) {
	var cmd sampler.Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		b.log.Errorf("failed to decode command: %v", err)
		return
	}
	if cmd.Name == "" {
		b.log.Warnf("command without name ignored")
		return
	}
	select {
	case b.commands <- cmd:
		b.log.Debugf("queued command %s=%s", cmd.Name, cmd.Value)
	default:
		b.log.Warnf("%v: dropping %s", ErrCommandDropped, cmd.Name)
	}
}

// Run forwards events from bus until ctx is done or the bus closes. The
// returned channel is closed when forwarding stops.
func (b *Bridge) Run(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	done := make(chan struct{})
	ch := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := b.Publish(ev); err != nil {
					b.log.Errorf("publish event: %v", err)
				}
			}
		}
	}()
	return done
}

// Publish sends ev to its event topic. Events without a topic are ignored.
func (b *Bridge) Publish(ev eventbus.Event) error {
	kind, msg, ok := b.message(ev)
	if !ok {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := b.EventTopic(kind)
	if err := b.publish(topic, payload); err != nil {
		coremon.CaptureException(err, map[string]string{
			"module":    "mqtt",
			"topic":     topic,
			"vessel_id": msg.VesselID,
		})
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bridge) publish(topic string, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		token := b.cli.Publish(topic, b.cfg.qos("event"), false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		b.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < b.cfg.MaxRetries {
			time.Sleep(b.cfg.backoff() * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

func (b *Bridge) message(ev eventbus.Event) (string, Message, bool) {
	m := Message{ID: uuid.NewString()}
	switch e := ev.(type) {
	case events.ActionEvent:
		m.Type = "action"
		m.Timestamp = stamp(e.Time, b.now)
		m.VesselID = e.VesselID
		m.PartID = e.PartID
		m.ExperimentID = e.ExperimentID
		m.Action = string(e.Action)
		m.SubjectID = e.SubjectID
		m.Target = e.Target
		m.Value = e.Value
		if e.Err != nil {
			m.Error = e.Err.Error()
		}
	case events.RebuildEvent:
		m.Type = "rebuild"
		m.Timestamp = stamp(e.Time, b.now)
		m.VesselID = e.VesselID
		m.Experiments = e.Experiments
		m.Holders = e.Holders
		m.Subjects = e.Subjects
	case events.SettingEvent:
		m.Type = "setting"
		m.Timestamp = b.now().UnixMilli()
		m.CraftKey = e.CraftKey
		m.Setting = e.Setting
		m.SettingValue = e.Value
	default:
		return "", m, false
	}
	return m.Type, m, true
}

func stamp(t time.Time, now func() time.Time) int64 {
	if t.IsZero() {
		t = now()
	}
	return t.UnixMilli()
}

// Disconnect gracefully closes the MQTT connection.
func (b *Bridge) Disconnect() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
