// Package config parses the muxdash dashboard configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/muxdash/internal/sampler"
)

// DefaultHeartbeatInterval is used when the config omits one.
const DefaultHeartbeatInterval = 2 * time.Second

// Duration accepts Go duration strings ("5s", "1m30s") or bare integers
// (seconds) in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration on line %d: %w", value.Line, err)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the parsed muxdash.yaml. A dashboard declares its session key,
// the heartbeat cadence of the owning process, and the samplers to run.
type Config struct {
	Session           string          `yaml:"session"`
	HeartbeatInterval Duration        `yaml:"heartbeatInterval"`
	Watchers          []WatcherConfig `yaml:"watchers"`
}

// WatcherConfig is one sampler block.
type WatcherConfig struct {
	Name     string         `yaml:"name"`
	Command  string         `yaml:"command"`
	Interval Duration       `yaml:"interval"`
	Parse    sampler.Mode   `yaml:"parse"`
	Output   string         `yaml:"output"`
	Hints    *sampler.Hints `yaml:"hints"`
}

// Dir returns the muxdash config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/muxdash if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "muxdash"), nil
}

// Load reads and parses the config at path. When path is empty, the default
// {config dir}/muxdash.yaml is tried. A missing file is not an error: an
// empty config with defaults is returned, and the CLI flags stand alone.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return defaults(&Config{}), nil
		}
		path = filepath.Join(dir, "muxdash.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaults(&Config{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return defaults(&cfg), nil
}

func defaults(cfg *Config) *Config {
	if cfg.Session == "" {
		cfg.Session = "default"
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = Duration(DefaultHeartbeatInterval)
	}
	return cfg
}

// SamplerConfigs converts the watcher blocks to sampler configs. Blocks
// without a name get a positional one for log prefixes.
func (c *Config) SamplerConfigs() []sampler.Config {
	out := make([]sampler.Config, 0, len(c.Watchers))
	for i, w := range c.Watchers {
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("watcher-%d", i+1)
		}
		out = append(out, sampler.Config{
			Name:       name,
			Command:    w.Command,
			Interval:   time.Duration(w.Interval),
			Parse:      w.Parse,
			OutputPath: w.Output,
			Hints:      w.Hints,
		})
	}
	return out
}
