// Package session maps a session key to the on-disk layout shared by every
// muxdash process. All cross-process coordination goes through files under
// the session directory; no process holds a handle to another.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvDir overrides the muxdash root directory when set.
const EnvDir = "MUXDASH_DIR"

// Session resolves paths for one session key under a muxdash root directory.
type Session struct {
	root string
	key  string
}

// Root returns the muxdash root directory: the --dir flag value if non-empty,
// else $MUXDASH_DIR, else ~/.muxdash. The directory is created if absent.
func Root(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".muxdash")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create muxdash directory: %w", err)
	}
	return dir, nil
}

// New returns a Session for key rooted at root. The session directory and its
// results/ and progress/ subdirectories are created on first use, not here,
// so that read-only consumers can probe a session that does not exist yet.
func New(root, key string) *Session {
	return &Session{root: root, key: sanitizeKey(key)}
}

// Key returns the sanitized session key.
func (s *Session) Key() string { return s.key }

// Dir returns the per-session directory.
func (s *Session) Dir() string {
	return filepath.Join(s.root, "sessions", s.key)
}

// EventLogPath returns the path of the append-only event log.
func (s *Session) EventLogPath() string {
	return filepath.Join(s.Dir(), "events.jsonl")
}

// HeartbeatPath returns the path of the zero-byte heartbeat file.
func (s *Session) HeartbeatPath() string {
	return filepath.Join(s.Dir(), "heartbeat")
}

// ResultPath returns the direct result file path for an interaction ID.
func (s *Session) ResultPath(id string) string {
	return filepath.Join(s.Dir(), "results", sanitizeKey(id)+".json")
}

// ProgressPath returns the progress file path for an interaction ID.
func (s *Session) ProgressPath(id string) string {
	return filepath.Join(s.Dir(), "progress", sanitizeKey(id)+".json")
}

// EnsureDir creates the session directory tree. Producers call this before
// their first write.
func (s *Session) EnsureDir() error {
	for _, d := range []string{s.Dir(), filepath.Join(s.Dir(), "results"), filepath.Join(s.Dir(), "progress")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	return nil
}

// List returns the keys of all sessions under root, sorted by directory
// listing order. A missing sessions/ directory yields an empty list.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, "sessions"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

// sanitizeKey makes a session key or interaction ID safe to use as a single
// path component. Separators and parent references are replaced, never
// rejected — callers pass opaque identifiers and expect a deterministic path.
func sanitizeKey(key string) string {
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	key = strings.ReplaceAll(key, "/", "_")
	key = strings.ReplaceAll(key, "..", "_")
	if key == "" {
		key = "default"
	}
	return key
}
