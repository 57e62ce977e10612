package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/autosampler/core/settings"
)

// SamplerConfig drives the decision loop. The toggles only seed the settings
// file the first time it is created; afterwards the file wins.
type SamplerConfig struct {
	// SettingsPath is the YAML or JSON file persisting the sampler settings.
	SettingsPath string `json:"settings_path"`
	// TickMS is the wall-clock interval between ticks.
	TickMS            int     `json:"tick_ms"`
	RefreshSeconds    float64 `json:"refresh_seconds"`
	InterruptTimeWarp bool    `json:"interrupt_time_warp"`
	PerCraft          bool    `json:"per_craft"`
	SpriteFPS         float64 `json:"sprite_fps"`
	Debug             bool    `json:"debug"`
	// AutoStart turns automation on for new vessels.
	AutoStart bool `json:"auto_start"`
}

// SetDefaults applies sane defaults.
func (c *SamplerConfig) SetDefaults() {
	if c.SettingsPath == "" {
		c.SettingsPath = "sampler-settings.yaml"
	}
	if c.TickMS <= 0 {
		c.TickMS = 100
	}
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = settings.DefaultRefreshTime
	}
	if c.SpriteFPS <= 0 {
		c.SpriteFPS = settings.DefaultSpriteFPS
	}
}

// Validate checks mandatory fields.
func (c SamplerConfig) Validate() error {
	if c.SettingsPath == "" {
		return errors.New("settings_path is required")
	}
	if c.TickMS <= 0 {
		return errors.New("tick_ms must be positive")
	}
	return nil
}

// Tick returns TickMS as a duration.
func (c SamplerConfig) Tick() time.Duration { return time.Duration(c.TickMS) * time.Millisecond }

// Settings returns the initial sampler settings described by c.
func (c SamplerConfig) Settings() *settings.Settings {
	s := settings.New()
	s.PerCraftSetting = c.PerCraft
	s.InterruptTimeWarp = c.InterruptTimeWarp
	s.RefreshTime = c.RefreshSeconds
	s.SpriteFPS = c.SpriteFPS
	s.Debug = c.Debug
	if c.AutoStart {
		s.ForCraft(settings.SingleKey).RunAutoScience = true
	}
	return s
}

// SimulatorConfig selects the flight the service runs against.
type SimulatorConfig struct {
	// Scenario is a YAML flight description. It is only required to run the
	// loop.
	Scenario string `json:"scenario"`
	// TimeScale multiplies the wall-clock time fed to the flight per tick.
	TimeScale float64 `json:"time_scale"`
}

// SetDefaults applies sane defaults.
func (c *SimulatorConfig) SetDefaults() {
	if c.TimeScale <= 0 {
		c.TimeScale = 1
	}
}

// Validate checks the scenario file type.
func (c SimulatorConfig) Validate() error {
	switch strings.ToLower(filepath.Ext(c.Scenario)) {
	case "", ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("scenario %s is not a YAML file", c.Scenario)
	}
}
