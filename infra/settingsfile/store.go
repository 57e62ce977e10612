// Package settingsfile persists sampler settings to a YAML or JSON file.
package settingsfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/autosampler/core/settings"
)

// Store reads and writes settings at Path. The format follows the file
// extension.
type Store struct {
	Path string
	// Defaults is returned by Load when the file does not exist yet.
	Defaults *settings.Settings

	mu sync.Mutex
}

// New returns a store for path. Only .yaml, .yml and .json are accepted.
func New(path string, defaults *settings.Settings) (*Store, error) {
	if _, err := parser(path); err != nil {
		return nil, err
	}
	return &Store{Path: path, Defaults: defaults}, nil
}

func parser(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	case ".json":
		return kjson.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported settings format: %s", path)
	}
}

// Load reads the file. A missing file yields a copy of Defaults.
func (s *Store) Load() (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := parser(s.Path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path); errors.Is(err, fs.ErrNotExist) {
		out := s.Defaults.Clone()
		if out == nil {
			out = settings.New()
		}
		out.SetDefaults()
		return out, nil
	}

	// Vessel keys never contain a slash, dots may appear in them.
	k := koanf.New("/")
	if err := k.Load(file.Provider(s.Path), p); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", s.Path, err)
	}
	var out settings.Settings
	if err := k.UnmarshalWithConf("", &out, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", s.Path, err)
	}
	out.SetDefaults()
	return &out, nil
}

// Save writes cfg through a temporary file renamed over Path.
func (s *Store) Save(cfg *settings.Settings) error {
	if cfg == nil {
		return errors.New("settingsfile: nil settings")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

var _ settings.Store = (*Store)(nil)
