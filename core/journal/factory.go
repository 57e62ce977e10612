package journal

import (
	"github.com/kilianp07/autosampler/core/factory"
)

// Config selects and configures a store.
type Config struct {
	// Backend is one of "nop", "jsonl", "rotating" or "sqlite".
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "sampler.db"
		default:
			c.Path = "sampler.jsonl"
		}
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

var stores = factory.NewRegistry[Store]()

func init() {
	_ = stores.Register("nop", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = stores.Register("jsonl", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(c.Path)
	})
	_ = stores.Register("rotating", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = stores.Register("sqlite", func(conf map[string]any) (Store, error) {
		c, err := decode(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

func decode(conf map[string]any) (Config, error) {
	var c Config
	if err := factory.Decode(conf, &c); err != nil {
		return c, err
	}
	c.SetDefaults()
	return c, nil
}

// Register adds a custom store backend.
func Register(name string, f factory.Factory[Store]) error {
	return stores.Register(name, f)
}

// Backends lists the known store names.
func Backends() []string { return stores.Names() }

// New builds the store selected by cfg.
func New(cfg Config) (Store, error) {
	cfg.SetDefaults()
	return stores.Create(factory.ModuleConfig{Type: cfg.Backend, Conf: map[string]any{
		"path":         cfg.Path,
		"max_size_mb":  cfg.MaxSizeMB,
		"max_backups":  cfg.MaxBackups,
		"max_age_days": cfg.MaxAgeDays,
	}})
}
