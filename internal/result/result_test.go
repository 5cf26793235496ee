package result

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/session"
)

func setupTestChannel(t *testing.T) (*Channel, *eventlog.Log) {
	t.Helper()
	sess := session.New(t.TempDir(), "s1")
	return New(sess), eventlog.New(sess)
}

func TestFindResult_UnknownID(t *testing.T) {
	c, l := setupTestChannel(t)
	l.Append(&eventlog.Event{Ts: 1000, Type: eventlog.TypeReady, Svc: "api", Port: 3000})

	res, err := c.FindResult("x")
	if err != nil {
		t.Fatalf("FindResult() error = %v", err)
	}
	if res != nil {
		t.Errorf("FindResult(unknown) = %+v, want nil", res)
	}
}

func TestFindResult_LastAppendedWins(t *testing.T) {
	c, l := setupTestChannel(t)

	l.Append(&eventlog.Event{Type: eventlog.TypeResult, ID: "x", Action: eventlog.ActionDecline})
	l.Append(&eventlog.Event{Type: eventlog.TypeResult, ID: "y", Action: eventlog.ActionCancel})
	l.Append(&eventlog.Event{Type: eventlog.TypeResult, ID: "x", Action: eventlog.ActionAccept,
		Answers: map[string]any{"confirm": true}})

	res, err := c.FindResult("x")
	if err != nil {
		t.Fatalf("FindResult() error = %v", err)
	}
	if res == nil {
		t.Fatal("FindResult() = nil, want the superseding result")
	}
	if res.Action != eventlog.ActionAccept {
		t.Errorf("action = %q, want accept (last appended wins)", res.Action)
	}
	if got := res.Answers["confirm"]; got != true {
		t.Errorf("answers[confirm] = %v, want true", got)
	}
}

func TestWriteDirectResult(t *testing.T) {
	c, _ := setupTestChannel(t)

	want := &Result{Action: eventlog.ActionAccept, Answers: map[string]any{"name": "alice"}}
	if err := c.WriteDirectResult("id-1", want); err != nil {
		t.Fatalf("WriteDirectResult() error = %v", err)
	}

	// Direct file readable.
	got, err := c.ReadDirectResult("id-1")
	if err != nil {
		t.Fatalf("ReadDirectResult() error = %v", err)
	}
	if got == nil || got.Action != eventlog.ActionAccept || got.Answers["name"] != "alice" {
		t.Errorf("direct result = %+v, want %+v", got, want)
	}

	// Log consumers see the same outcome.
	logRes, err := c.FindResult("id-1")
	if err != nil {
		t.Fatalf("FindResult() error = %v", err)
	}
	if logRes == nil || logRes.Action != eventlog.ActionAccept {
		t.Errorf("log result = %+v, want accept", logRes)
	}
}

func TestReadDirectResult_Missing(t *testing.T) {
	c, _ := setupTestChannel(t)
	res, err := c.ReadDirectResult("nope")
	if err != nil {
		t.Fatalf("ReadDirectResult() error = %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil for missing file", res)
	}
}

func TestAwait_DirectFile(t *testing.T) {
	c, _ := setupTestChannel(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		c.WriteDirectResult("id-2", &Result{Action: eventlog.ActionDecline})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Await(ctx, "id-2", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if res.Action != eventlog.ActionDecline {
		t.Errorf("action = %q, want decline", res.Action)
	}
}

func TestAwait_LogOnly(t *testing.T) {
	c, l := setupTestChannel(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		l.Append(&eventlog.Event{Type: eventlog.TypeResult, ID: "id-3", Action: eventlog.ActionCancel})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Await(ctx, "id-3", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if res.Action != eventlog.ActionCancel {
		t.Errorf("action = %q, want cancel", res.Action)
	}
}

func TestAwait_Timeout(t *testing.T) {
	c, _ := setupTestChannel(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := c.Await(ctx, "never", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if res.Action != eventlog.ActionTimeout {
		t.Errorf("action = %q, want timeout", res.Action)
	}
}

func TestEnvironContract(t *testing.T) {
	sess := session.New(t.TempDir(), "s1")
	c := New(sess)

	env := c.Environ("id-9")
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		t.Setenv(k, v)
	}

	ct, err := FromEnviron()
	if err != nil {
		t.Fatalf("FromEnviron() error = %v", err)
	}
	if ct.ID != "id-9" {
		t.Errorf("ID = %q, want id-9", ct.ID)
	}
	if ct.ResultFile != sess.ResultPath("id-9") {
		t.Errorf("ResultFile = %q, want %q", ct.ResultFile, sess.ResultPath("id-9"))
	}

	// The spawned side reports through the contract alone; the controller
	// side reads it back through the channel.
	if err := ct.Report(&Result{Action: eventlog.ActionAccept, Result: "done"}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	res, err := c.ReadDirectResult("id-9")
	if err != nil {
		t.Fatalf("ReadDirectResult() error = %v", err)
	}
	if res == nil || res.Action != eventlog.ActionAccept || res.Result != "done" {
		t.Errorf("round-tripped result = %+v", res)
	}
}

func TestFromEnviron_Unspawned(t *testing.T) {
	t.Setenv(EnvInteractionID, "")
	t.Setenv(EnvResultFile, "")
	t.Setenv(EnvProgressFile, "")

	if _, err := FromEnviron(); err == nil {
		t.Error("FromEnviron() without contract vars: expected error")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("NewID() produced empty or duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestProgress(t *testing.T) {
	sess := session.New(t.TempDir(), "s1")
	c := New(sess)
	env := c.Environ("p1")
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		t.Setenv(k, v)
	}

	ct, err := FromEnviron()
	if err != nil {
		t.Fatalf("FromEnviron() error = %v", err)
	}
	ct.Progress(map[string]any{"step": 2, "total": 5})

	data, err := os.ReadFile(sess.ProgressPath("p1"))
	if err != nil {
		t.Fatalf("progress file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("progress file is empty")
	}
}
