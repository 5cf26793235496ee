package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	// Flag override wins over the environment.
	t.Setenv(EnvDir, filepath.Join(tmpDir, "from-env"))
	got, err := Root(filepath.Join(tmpDir, "from-flag"))
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	if got != filepath.Join(tmpDir, "from-flag") {
		t.Errorf("expected flag override to win, got %s", got)
	}

	// Without the flag, the environment wins.
	got, err = Root("")
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	if got != filepath.Join(tmpDir, "from-env") {
		t.Errorf("expected env override, got %s", got)
	}
}

func TestRootCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "muxdash")
	got, err := Root(root)
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("root directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected root to be a directory")
	}
}

func TestSessionPaths(t *testing.T) {
	root := t.TempDir()
	sess := New(root, "dev")

	if sess.Dir() != filepath.Join(root, "sessions", "dev") {
		t.Errorf("unexpected Dir: %s", sess.Dir())
	}
	if sess.EventLogPath() != filepath.Join(sess.Dir(), "events.jsonl") {
		t.Errorf("unexpected EventLogPath: %s", sess.EventLogPath())
	}
	if sess.HeartbeatPath() != filepath.Join(sess.Dir(), "heartbeat") {
		t.Errorf("unexpected HeartbeatPath: %s", sess.HeartbeatPath())
	}
	if sess.ResultPath("abc") != filepath.Join(sess.Dir(), "results", "abc.json") {
		t.Errorf("unexpected ResultPath: %s", sess.ResultPath("abc"))
	}
	if sess.ProgressPath("abc") != filepath.Join(sess.Dir(), "progress", "abc.json") {
		t.Errorf("unexpected ProgressPath: %s", sess.ProgressPath("abc"))
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dev", "dev"},
		{"a/b", "a_b"},
		{"../etc", "__etc"},
		{"", "default"},
	}
	for _, tt := range tests {
		sess := New("/tmp", tt.in)
		if sess.Key() != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.in, sess.Key(), tt.want)
		}
	}
}

func TestEnsureDirCreatesTree(t *testing.T) {
	root := t.TempDir()
	sess := New(root, "dev")

	if err := sess.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	for _, d := range []string{sess.Dir(), filepath.Join(sess.Dir(), "results"), filepath.Join(sess.Dir(), "progress")} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("expected directory %s to exist: %v", d, err)
		}
	}
}

func TestListSessions(t *testing.T) {
	root := t.TempDir()

	keys, err := List(root)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no sessions, got %v", keys)
	}

	for _, k := range []string{"alpha", "beta"} {
		if err := New(root, k).EnsureDir(); err != nil {
			t.Fatalf("EnsureDir(%s) error: %v", k, err)
		}
	}
	// A stray file under sessions/ is not a session.
	if err := os.WriteFile(filepath.Join(root, "sessions", "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	keys, err = List(root)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 sessions, got %v", keys)
	}
}
