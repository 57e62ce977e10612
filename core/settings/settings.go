// Package settings holds the sampler configuration: global toggles and one
// CraftSettings record per vehicle key. Records are created on first access
// and live for the whole session. Mutation goes through named setters so the
// command surface stays testable.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	// SingleKey is used for every vessel when per-vehicle scoping is off.
	SingleKey = "Single"
	// EVAKey is used for a crew member on EVA whose parent vessel is unknown.
	EVAKey = "EVA"
)

// Defaults applied to new records and empty settings.
const (
	DefaultRefreshTime = 0.1
	DefaultSpriteFPS   = 30
)

// ErrUnknownSetting is returned by Set for names that have no setter.
var ErrUnknownSetting = errors.New("unknown setting")

// CraftSettings is the per-vehicle configuration.
type CraftSettings struct {
	Key                         string  `json:"key" yaml:"key"`
	RunAutoScience              bool    `json:"run_auto_science" yaml:"run_auto_science"`
	Threshold                   float64 `json:"threshold" yaml:"threshold"`
	OneTimeOnly                 bool    `json:"one_time_only" yaml:"one_time_only"`
	ResetExperiments            bool    `json:"reset_experiments" yaml:"reset_experiments"`
	HideScienceDialog           bool    `json:"hide_science_dialog" yaml:"hide_science_dialog"`
	TransferAllData             bool    `json:"transfer_all_data" yaml:"transfer_all_data"`
	DumpDuplicates              bool    `json:"dump_duplicates" yaml:"dump_duplicates"`
	EVAOnlyIfGroundedWhenLanded bool    `json:"eva_only_if_grounded_when_landed" yaml:"eva_only_if_grounded_when_landed"`
	CurrentContainer            int     `json:"current_container" yaml:"current_container"`
}

// NewCraftSettings returns a record with the defaults for key.
func NewCraftSettings(key string) *CraftSettings {
	return &CraftSettings{
		Key:                         key,
		RunAutoScience:              false,
		Threshold:                   2,
		HideScienceDialog:           true,
		EVAOnlyIfGroundedWhenLanded: true,
	}
}

// Settings holds global toggles and the per-vehicle records.
type Settings struct {
	PerCraftSetting   bool                      `json:"per_craft_setting" yaml:"per_craft_setting"`
	InterruptTimeWarp bool                      `json:"interrupt_time_warp" yaml:"interrupt_time_warp"`
	RefreshTime       float64                   `json:"refresh_time" yaml:"refresh_time"`
	SpriteFPS         float64                   `json:"sprite_fps" yaml:"sprite_fps"`
	Debug             bool                      `json:"debug" yaml:"debug"`
	ShowSettings      bool                      `json:"show_settings" yaml:"show_settings"`
	Crafts            map[string]*CraftSettings `json:"crafts" yaml:"crafts"`
}

// New returns settings populated with defaults.
func New() *Settings {
	s := &Settings{}
	s.SetDefaults()
	return s
}

// SetDefaults fills zero values with sane defaults.
func (s *Settings) SetDefaults() {
	if s.RefreshTime <= 0 {
		s.RefreshTime = DefaultRefreshTime
	}
	if s.SpriteFPS <= 0 {
		s.SpriteFPS = DefaultSpriteFPS
	}
	if s.Crafts == nil {
		s.Crafts = make(map[string]*CraftSettings)
	}
	for k, c := range s.Crafts {
		if c == nil {
			s.Crafts[k] = NewCraftSettings(k)
			continue
		}
		c.Key = k
	}
}

// ForCraft returns the record for key, creating it on first access.
func (s *Settings) ForCraft(key string) *CraftSettings {
	if s.Crafts == nil {
		s.Crafts = make(map[string]*CraftSettings)
	}
	c, ok := s.Crafts[key]
	if !ok {
		c = NewCraftSettings(key)
		s.Crafts[key] = c
	}
	return c
}

// Keys returns the known vehicle keys in sorted order.
func (s *Settings) Keys() []string {
	keys := make([]string, 0, len(s.Crafts))
	for k := range s.Crafts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key resolves the configuration key for the tracked vessel. parentID is the
// vessel an EVA crew member left, or empty when unknown.
func (s *Settings) Key(vesselID string, isEVA bool, parentID string) string {
	if !s.PerCraftSetting {
		return SingleKey
	}
	if isEVA {
		if parentID != "" {
			return parentID
		}
		return EVAKey
	}
	return vesselID
}

// Set applies a named craft setting from its textual value. It backs command
// surfaces that only carry strings, such as MQTT payloads.
func (c *CraftSettings) Set(name, value string) error {
	switch name {
	case "threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("threshold: %w", err)
		}
		c.SetThreshold(f)
		return nil
	case "current_container":
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("current_container: %w", err)
		}
		c.SetCurrentContainer(i)
		return nil
	}
	var set func(bool)
	switch name {
	case "run_auto_science":
		set = func(b bool) { c.RunAutoScience = b }
	case "one_time_only":
		set = c.SetOneTimeOnly
	case "reset_experiments":
		set = c.SetResetExperiments
	case "hide_science_dialog":
		set = c.SetHideScienceDialog
	case "transfer_all_data":
		set = c.SetTransferAllData
	case "dump_duplicates":
		set = c.SetDumpDuplicates
	case "eva_only_if_grounded_when_landed":
		set = func(b bool) { c.EVAOnlyIfGroundedWhenLanded = b }
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	set(b)
	return nil
}

// ToggleAutomation flips RunAutoScience and returns the new value.
func (c *CraftSettings) ToggleAutomation() bool {
	c.RunAutoScience = !c.RunAutoScience
	return c.RunAutoScience
}

// SetThreshold sets the minimum value an experiment must be worth to run.
// Negative values are clamped to zero.
func (c *CraftSettings) SetThreshold(v float64) {
	if v < 0 {
		v = 0
	}
	c.Threshold = v
}

func (c *CraftSettings) SetOneTimeOnly(v bool)       { c.OneTimeOnly = v }
func (c *CraftSettings) SetResetExperiments(v bool)  { c.ResetExperiments = v }
func (c *CraftSettings) SetHideScienceDialog(v bool) { c.HideScienceDialog = v }
func (c *CraftSettings) SetTransferAllData(v bool)   { c.TransferAllData = v }
func (c *CraftSettings) SetDumpDuplicates(v bool)    { c.DumpDuplicates = v }

// SetCurrentContainer selects the transfer target. 0 means none; negative
// values are treated as 0.
func (c *CraftSettings) SetCurrentContainer(i int) {
	if i < 0 {
		i = 0
	}
	c.CurrentContainer = i
}
