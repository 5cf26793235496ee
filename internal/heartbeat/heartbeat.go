// Package heartbeat implements session liveness via a file's modification
// time. A PID can be reused and a process handle needs a live parent; an
// mtime can be checked by any process at any time, which is all the protocol
// requires.
package heartbeat

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/muxdash/internal/session"
)

// Heartbeat manages the zero-byte liveness file for one session.
type Heartbeat struct {
	sess *session.Session
}

// New returns the heartbeat for sess.
func New(sess *session.Session) *Heartbeat {
	return &Heartbeat{sess: sess}
}

// Path returns the heartbeat file path.
func (h *Heartbeat) Path() string {
	return h.sess.HeartbeatPath()
}

// Ensure creates the heartbeat file if it does not exist. The file content
// stays empty; only the mtime carries information.
func (h *Heartbeat) Ensure() error {
	if err := h.sess.EnsureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(h.Path(), os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create heartbeat file: %w", err)
	}
	return f.Close()
}

// Touch updates the heartbeat mtime to now, creating the file if a cleanup
// removed it between touches.
func (h *Heartbeat) Touch() error {
	now := time.Now()
	if err := os.Chtimes(h.Path(), now, now); err != nil {
		if os.IsNotExist(err) {
			return h.Ensure()
		}
		return fmt.Errorf("touch heartbeat: %w", err)
	}
	return nil
}

// IsFresh reports whether the heartbeat was touched within maxAge. A missing
// heartbeat file is stale, not an error: the session owner either never
// started or has been cleaned up.
func (h *Heartbeat) IsFresh(maxAge time.Duration) (bool, error) {
	fi, err := os.Stat(h.Path())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat heartbeat: %w", err)
	}
	return time.Since(fi.ModTime()) < maxAge, nil
}

// Age returns the time since the last touch, or a negative duration if the
// heartbeat file does not exist.
func (h *Heartbeat) Age() (time.Duration, error) {
	fi, err := os.Stat(h.Path())
	if os.IsNotExist(err) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat heartbeat: %w", err)
	}
	return time.Since(fi.ModTime()), nil
}

// Run touches the heartbeat on every tick of interval until ctx is
// cancelled. The owning process of a session calls this once; everyone else
// only ever reads.
func (h *Heartbeat) Run(ctx context.Context, interval time.Duration) error {
	if err := h.Ensure(); err != nil {
		return err
	}
	if err := h.Touch(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := h.Touch(); err != nil {
				// Best-effort: a single failed touch only shortens the
				// freshness window, it does not end the session.
				fmt.Fprintf(os.Stderr, "heartbeat: %v\n", err)
			}
		}
	}
}
