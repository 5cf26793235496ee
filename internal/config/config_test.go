package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/muxdash/internal/sampler"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muxdash.yaml")
	content := `
session: dev
heartbeatInterval: 3s
watchers:
  - name: cpu
    command: "top -l 1 | awk '/CPU usage/ {print $3}'"
    interval: 10s
    parse: number
    output: /tmp/cpu.json
    hints:
      series: cpu
  - command: "docker ps --format '{{.Names}}'"
    parse: lines
    output: /tmp/containers.json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session != "dev" {
		t.Errorf("session = %q, want dev", cfg.Session)
	}
	if time.Duration(cfg.HeartbeatInterval) != 3*time.Second {
		t.Errorf("heartbeatInterval = %v, want 3s", cfg.HeartbeatInterval)
	}
	if len(cfg.Watchers) != 2 {
		t.Fatalf("len(watchers) = %d, want 2", len(cfg.Watchers))
	}

	w := cfg.Watchers[0]
	if w.Name != "cpu" || time.Duration(w.Interval) != 10*time.Second || w.Parse != sampler.ModeNumber {
		t.Errorf("watcher[0] = %+v", w)
	}
	if w.Hints == nil || w.Hints.Series != "cpu" {
		t.Errorf("watcher[0].Hints = %+v, want series cpu", w.Hints)
	}

	configs := cfg.SamplerConfigs()
	if len(configs) != 2 {
		t.Fatalf("len(configs) = %d, want 2", len(configs))
	}
	if configs[1].Name != "watcher-2" {
		t.Errorf("unnamed watcher got name %q, want watcher-2", configs[1].Name)
	}
	if configs[1].Parse != sampler.ModeLines {
		t.Errorf("watcher[1] parse = %q, want lines", configs[1].Parse)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if cfg.Session != "default" {
		t.Errorf("session = %q, want default", cfg.Session)
	}
	if time.Duration(cfg.HeartbeatInterval) != DefaultHeartbeatInterval {
		t.Errorf("heartbeatInterval = %v, want default", cfg.HeartbeatInterval)
	}
	if len(cfg.Watchers) != 0 {
		t.Errorf("watchers = %v, want none", cfg.Watchers)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muxdash.yaml")
	if err := os.WriteFile(path, []byte("watchers: {not: [valid"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() on malformed YAML: expected error")
	}
}

func TestDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if dir != "/tmp/xdg-test/muxdash" {
		t.Errorf("Dir() = %q, want /tmp/xdg-test/muxdash", dir)
	}
}
