// Package eventlog implements the append-only, line-delimited event store
// that muxdash processes use to coordinate through the filesystem.
//
// Each session has one log file of newline-delimited JSON events. Many
// independent processes append concurrently; the design relies on O_APPEND
// single-write semantics for lines well under the platform's atomic-write
// size (PIPE_BUF scale) rather than file locking. Readers tolerate a torn
// trailing line from a writer that died mid-append by skipping anything that
// does not parse.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackwell-systems/muxdash/internal/session"
)

// Log is the append-only event store for one session.
type Log struct {
	sess *session.Session
}

// New returns the event log for sess.
func New(sess *session.Session) *Log {
	return &Log{sess: sess}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.sess.EventLogPath()
}

// Append serializes ev to a single JSON line and appends it to the log.
// Delivery is best-effort: IO errors are printed to stderr and swallowed, so
// a producer never fails its own work because the log was unwritable.
// Callers must not assume delivery succeeded.
func (l *Log) Append(ev *Event) {
	if err := l.append(ev); err != nil {
		fmt.Fprintf(os.Stderr, "eventlog: append to %s: %v\n", l.Path(), err)
	}
}

func (l *Log) append(ev *Event) error {
	if ev.Ts == 0 {
		ev.Ts = Now()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := l.sess.EnsureDir(); err != nil {
		return err
	}

	// O_APPEND keeps each single-line write atomic on POSIX filesystems as
	// long as the line stays below PIPE_BUF scale.
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}
	return nil
}

// ReadAll returns every successfully parsed event in append order. Lines
// that fail to parse are silently skipped: a torn trailing line from an
// interrupted writer must not poison the rest of the log. A missing log file
// yields an empty slice.
func (l *Log) ReadAll() ([]*Event, error) {
	f, err := os.Open(l.Path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var events []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Type == "" {
			continue
		}
		events = append(events, &ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("scan log: %w", err)
	}
	return events, nil
}

// maxLineBytes bounds a single log line. Anything bigger than this is not a
// muxdash event and would anyway have lost the atomic-append guarantee.
const maxLineBytes = 1 << 20

// Clear truncates the log to empty. Used once at session start to discard
// stale history from a previous run under the same key.
func (l *Log) Clear() error {
	if err := l.sess.EnsureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}
	return f.Close()
}
