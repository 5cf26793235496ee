package app

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/sampler"
	"github.com/blackwell-systems/muxdash/internal/store"
)

func resetWatchFlags() {
	watchCommand, watchParse, watchOutput, watchSeries, watchConfigPath = "", "auto", "", "", ""
	watchInterval = sampler.DefaultInterval
	watchPIDFile, watchLogFile = "", ""
	watchDaemon, watchDaemonChild, watchStop = false, false, false
}

func TestSamplerConfigsFromFlags(t *testing.T) {
	resetWatchFlags()
	watchCommand = "echo 7"
	watchOutput = "/tmp/out.json"
	watchInterval = 3 * time.Second
	watchParse = "number"
	watchSeries = "load"

	configs, err := samplerConfigs()
	if err != nil {
		t.Fatalf("samplerConfigs() error: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(configs))
	}
	cfg := configs[0]
	if cfg.Command != "echo 7" || cfg.OutputPath != "/tmp/out.json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Interval != 3*time.Second || cfg.Parse != sampler.ModeNumber {
		t.Errorf("unexpected interval/parse: %+v", cfg)
	}
	if cfg.Hints == nil || cfg.Hints.Series != "load" {
		t.Errorf("expected series hint, got %+v", cfg.Hints)
	}
}

func TestSamplerConfigsRequiresOutput(t *testing.T) {
	resetWatchFlags()
	watchCommand = "echo 7"

	if _, err := samplerConfigs(); err == nil {
		t.Error("expected error when --command is given without --output")
	}
}

func TestSamplerConfigsFromConfigFile(t *testing.T) {
	resetWatchFlags()
	watchConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	// A missing config file means defaults, which declare no watchers.
	configs, err := samplerConfigs()
	if err != nil {
		t.Fatalf("samplerConfigs() error: %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("expected no configs from default config, got %d", len(configs))
	}
}

func TestDaemonChildArgsRoundTrip(t *testing.T) {
	resetWatchFlags()
	watchCommand = "df -P /"
	watchOutput = "/tmp/disk.json"
	watchInterval = 10 * time.Second
	watchParse = "number"
	watchPIDFile = "/tmp/watch.pid"
	watchLogFile = "/tmp/watch.log"

	args := daemonChildArgs()

	want := map[string]string{
		"--command":  "df -P /",
		"--output":   "/tmp/disk.json",
		"--interval": "10s",
		"--parse":    "number",
		"--pid-file": "/tmp/watch.pid",
		"--log-file": "/tmp/watch.log",
	}
	got := make(map[string]string)
	for i := 0; i+1 < len(args); i += 2 {
		got[args[i]] = args[i+1]
	}
	for flag, value := range want {
		if got[flag] != value {
			t.Errorf("expected %s %q in child args, got %q (args: %v)", flag, value, got[flag], args)
		}
	}
}

func TestActionExitCode(t *testing.T) {
	tests := []struct {
		action string
		want   int
	}{
		{eventlog.ActionAccept, 0},
		{eventlog.ActionDecline, 1},
		{eventlog.ActionCancel, 2},
		{eventlog.ActionTimeout, 3},
	}
	for _, tt := range tests {
		if got := actionExitCode(tt.action); got != tt.want {
			t.Errorf("actionExitCode(%q) = %d, want %d", tt.action, got, tt.want)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	if out := renderHistory(nil); out != "No archived events.\n" {
		t.Errorf("unexpected empty render: %q", out)
	}

	rows := []*store.ArchivedEvent{
		{Session: "dev", Ts: time.Now().UnixMilli(), Type: eventlog.TypeReady, Svc: "api"},
		{Session: "dev", Ts: time.Now().UnixMilli(), Type: eventlog.TypeResult, InteractionID: "f1", Action: "accept"},
	}
	out := renderHistory(rows)
	for _, want := range []string{"dev", "ready", "api", "result", "f1", "accept"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected history output to contain %q:\n%s", want, out)
		}
	}
}
