package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
)

func TestRenderEventTable_Empty(t *testing.T) {
	got := RenderEventTable(nil)
	if !strings.Contains(got, "No events") {
		t.Errorf("RenderEventTable(nil) = %q", got)
	}
}

func TestRenderEventTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	exit := 1
	events := []*eventlog.Event{
		{Ts: eventlog.Now(), Type: eventlog.TypeReady, Svc: "api", Port: 3000},
		{Ts: eventlog.Now(), Type: eventlog.TypeError, Svc: "db", Msg: "connection refused", Exit: &exit},
		{Ts: eventlog.Now(), Type: eventlog.TypeResult, ID: "abc", Action: eventlog.ActionAccept},
		{Ts: eventlog.Now(), Type: eventlog.TypeReload, Added: []string{"w1"}, Changed: []string{"w2"}},
		{Ts: eventlog.Now(), Type: eventlog.TypeStatus, Message: "building"},
	}

	got := RenderEventTable(events)

	for _, want := range []string{
		"api", "port 3000",
		"connection refused (exit 1)",
		"abc", "accept",
		"+1 -0 ~1",
		"building",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"now", time.Now(), "just now"},
		{"seconds", time.Now().Add(-30 * time.Second), "30s ago"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5m ago"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h ago"},
		{"days", time.Now().Add(-48 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.t); got != tt.want {
				t.Errorf("FormatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	st := &SessionStatus{
		Session:        "dev",
		HeartbeatAge:   500 * time.Millisecond,
		HeartbeatFresh: true,
		EventCounts:    map[string]int{"ready": 2, "result": 1},
		Pending:        []string{"id-1"},
		Terminal:       map[string]string{"id-2": "accept"},
	}

	got := RenderStatus(st)
	for _, want := range []string{"dev", "alive", "Events: 3", "ready 2", "id-1", "id-2=accept"} {
		if !strings.Contains(got, want) {
			t.Errorf("status missing %q:\n%s", want, got)
		}
	}
}

func TestRenderStatus_NoHeartbeat(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderStatus(&SessionStatus{Session: "dev", HeartbeatAge: -1})
	if !strings.Contains(got, "none") {
		t.Errorf("status = %q, want heartbeat none", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 14); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-identifier", 10); got != "a-very-..." {
		t.Errorf("truncate(long) = %q", got)
	}
}
