package sampler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kilianp07/autosampler/core/events"
	"github.com/kilianp07/autosampler/core/model"
	"github.com/kilianp07/autosampler/core/settings"
)

// HighlightDuration is how long a newly selected transfer target stays
// highlighted.
const HighlightDuration = 250 * time.Millisecond

var (
	// ErrUnknownCommand is returned by Command.Apply for unsupported names.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoTarget is returned when a transfer target index is out of range.
	ErrNoTarget = errors.New("no such transfer target")
	// ErrNoVessel is returned by craft commands before any vessel is tracked.
	ErrNoVessel = errors.New("no tracked vessel")
)

// Command is a setting change queued by a foreign goroutine and applied by
// the goroutine owning the Sampler.
type Command struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Apply executes the command against s.
func (c Command) Apply(s *Sampler) error {
	switch c.Name {
	case "toggle":
		_, err := s.ToggleAutomation()
		return err
	case "transfer_target", "current_container":
		i, err := strconv.Atoi(c.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		return s.SelectTransferTarget(i)
	case "per_craft_setting", "interrupt_time_warp", "debug", "show_settings":
		b, err := strconv.ParseBool(c.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		switch c.Name {
		case "per_craft_setting":
			return s.SetPerVehicleScoping(b)
		case "interrupt_time_warp":
			return s.SetInterruptTimeWarp(b)
		case "debug":
			return s.SetDebug(b)
		default:
			return s.SetShowSettings(b)
		}
	case "sprite_fps":
		f, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return fmt.Errorf("sprite_fps: %w", err)
		}
		return s.SetSpriteFPS(f)
	}
	if s.craft == nil {
		s.resolveCraft()
	}
	if s.craft == nil {
		return ErrNoVessel
	}
	if err := s.craft.Set(c.Name, c.Value); err != nil {
		if errors.Is(err, settings.ErrUnknownSetting) {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Name)
		}
		return err
	}
	return s.changed(c.Name, c.Value)
}

// changed persists the settings and announces the change.
func (s *Sampler) changed(name, value string) error {
	key := ""
	if s.craft != nil {
		key = s.craft.Key
	}
	s.debug.Debugf("setting %s changed to %s", name, value)
	if bus, _, _ := s.collaborators(); bus != nil {
		bus.Publish(events.SettingEvent{CraftKey: key, Setting: name, Value: value})
	}
	if err := s.store.Save(s.settings); err != nil {
		s.log.Errorf("save settings: %v", err)
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *Sampler) withCraft(name string, set func(c *settings.CraftSettings) string) error {
	if s.craft == nil {
		s.resolveCraft()
	}
	if s.craft == nil {
		return ErrNoVessel
	}
	return s.changed(name, set(s.craft))
}

// ToggleAutomation flips automation for the tracked vessel.
func (s *Sampler) ToggleAutomation() (bool, error) {
	var on bool
	err := s.withCraft("run_auto_science", func(c *settings.CraftSettings) string {
		on = c.ToggleAutomation()
		return strconv.FormatBool(on)
	})
	return on, err
}

// SetThreshold sets the minimum value an experiment must be worth to run.
func (s *Sampler) SetThreshold(v float64) error {
	return s.withCraft("threshold", func(c *settings.CraftSettings) string {
		c.SetThreshold(v)
		return strconv.FormatFloat(c.Threshold, 'f', -1, 64)
	})
}

func (s *Sampler) SetOneTimeOnly(v bool) error {
	return s.withCraft("one_time_only", func(c *settings.CraftSettings) string {
		c.SetOneTimeOnly(v)
		return strconv.FormatBool(v)
	})
}

func (s *Sampler) SetResetExperiments(v bool) error {
	return s.withCraft("reset_experiments", func(c *settings.CraftSettings) string {
		c.SetResetExperiments(v)
		return strconv.FormatBool(v)
	})
}

func (s *Sampler) SetHideScienceDialog(v bool) error {
	return s.withCraft("hide_science_dialog", func(c *settings.CraftSettings) string {
		c.SetHideScienceDialog(v)
		return strconv.FormatBool(v)
	})
}

func (s *Sampler) SetTransferAllData(v bool) error {
	return s.withCraft("transfer_all_data", func(c *settings.CraftSettings) string {
		c.SetTransferAllData(v)
		return strconv.FormatBool(v)
	})
}

func (s *Sampler) SetDumpDuplicates(v bool) error {
	return s.withCraft("dump_duplicates", func(c *settings.CraftSettings) string {
		c.SetDumpDuplicates(v)
		return strconv.FormatBool(v)
	})
}

// SetPerVehicleScoping switches between one configuration per vessel and a
// single shared one, then re-resolves the tracked vessel's record.
func (s *Sampler) SetPerVehicleScoping(v bool) error {
	s.settings.PerCraftSetting = v
	s.resolveCraft()
	return s.changed("per_craft_setting", strconv.FormatBool(v))
}

// SetInterruptTimeWarp allows experiments to drop time compression.
func (s *Sampler) SetInterruptTimeWarp(v bool) error {
	s.settings.InterruptTimeWarp = v
	return s.changed("interrupt_time_warp", strconv.FormatBool(v))
}

// SetSpriteFPS sets the icon animation speed. Values below 1 are raised to 1.
func (s *Sampler) SetSpriteFPS(v float64) error {
	s.settings.SpriteFPS = max(v, 1)
	return s.changed("sprite_fps", strconv.FormatFloat(s.settings.SpriteFPS, 'f', -1, 64))
}

func (s *Sampler) SetDebug(v bool) error {
	s.settings.Debug = v
	return s.changed("debug", strconv.FormatBool(v))
}

func (s *Sampler) SetShowSettings(v bool) error {
	s.settings.ShowSettings = v
	return s.changed("show_settings", strconv.FormatBool(v))
}

// TransferTargets lists the selectable holders. Index 0 is "None".
func (s *Sampler) TransferTargets() []string {
	out := make([]string, 0, len(s.holders)+1)
	out = append(out, "None")
	for _, h := range s.holders {
		out = append(out, h.Title())
	}
	return out
}

// SelectTransferTarget picks the holder receiving transferred results, 0
// meaning none. The selected holder is briefly highlighted.
func (s *Sampler) SelectTransferTarget(i int) error {
	if i < 0 || i > len(s.holders) {
		return fmt.Errorf("%w: %d", ErrNoTarget, i)
	}
	err := s.withCraft("current_container", func(c *settings.CraftSettings) string {
		c.SetCurrentContainer(i)
		return strconv.Itoa(i)
	})
	if i > 0 {
		s.highlight(i - 1)
	}
	return err
}

func (s *Sampler) highlight(idx int) {
	_, _, hl := s.collaborators()
	if hl == nil {
		return
	}
	s.stopHighlight()
	h := s.holders[idx]
	s.mu.Lock()
	s.highlightGen++
	gen := s.highlightGen
	s.mu.Unlock()
	hl.SetHighlight(h, true)
	s.highlighted = h
	s.unhighlight = time.AfterFunc(HighlightDuration, func() {
		s.clearHighlight(hl, h, gen)
	})
}

// clearHighlight turns h off unless a later selection took over.
func (s *Sampler) clearHighlight(hl Highlighter, h model.Holder, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlightGen != gen {
		return
	}
	hl.SetHighlight(h, false)
}

// stopHighlight cancels a pending un-highlight and clears the holder right away.
func (s *Sampler) stopHighlight() {
	if s.unhighlight == nil {
		return
	}
	if s.unhighlight.Stop() {
		if _, _, hl := s.collaborators(); hl != nil && s.highlighted != nil {
			hl.SetHighlight(s.highlighted, false)
		}
	}
	s.unhighlight = nil
	s.highlighted = nil
}
