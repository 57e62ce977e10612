// Package config loads the service configuration from a YAML or JSON file,
// with K_ prefixed environment variables overriding file values. Nested keys
// are separated by a double underscore, e.g. K_SAMPLER__TICK_MS=50.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/autosampler/core/journal"
	"github.com/kilianp07/autosampler/core/metrics"
	"github.com/kilianp07/autosampler/infra/mqtt"
)

type Config struct {
	Sampler   SamplerConfig   `json:"sampler"`
	Simulator SimulatorConfig `json:"simulator"`
	Journal   journal.Config  `json:"journal"`
	Metrics   metrics.Config  `json:"metrics"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Logging   LoggingConfig   `json:"logging"`
	Sentry    SentryConfig    `json:"sentry"`
	API       APIConfig       `json:"api"`
}

// Load reads path, applies environment overrides, defaults and validation.
// An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Sampler.SetDefaults()
	c.Simulator.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	return errors.Join(
		prefix("sampler", c.Sampler.Validate()),
		prefix("simulator", c.Simulator.Validate()),
		prefix("journal", validateJournal(c.Journal)),
		prefix("mqtt", c.MQTT.Validate()),
		prefix("logging", c.Logging.Validate()),
		prefix("sentry", c.Sentry.Validate()),
	)
}

func validateJournal(c journal.Config) error {
	for _, b := range journal.Backends() {
		if b == c.Backend {
			return nil
		}
	}
	return fmt.Errorf("unknown backend %s", c.Backend)
}

func prefix(section string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", section, err)
}
