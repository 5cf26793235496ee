// Package result correlates a spawned terminal interaction with its outcome.
//
// Two paths carry the outcome back to the controller: a result event appended
// to the session's event log, and a direct per-interaction result file for
// low-latency lookup without an O(n) log scan. A spawned process that knows
// nothing about the session key or log format can still report correctly
// using only the three environment variables in the env contract.
package result

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/muxdash/internal/atomicfile"
	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/session"
)

// Environment variables of the spawned-process contract.
const (
	EnvInteractionID = "MUXDASH_INTERACTION_ID"
	EnvResultFile    = "MUXDASH_RESULT_FILE"
	EnvProgressFile  = "MUXDASH_PROGRESS_FILE"
)

// Result is the outcome document of one interaction: the direct result file
// content, and the payload of the corresponding result event.
type Result struct {
	Action  string         `json:"action"`
	Answers map[string]any `json:"answers,omitempty"`
	Result  any            `json:"result,omitempty"`
}

// Channel reads and writes interaction outcomes for one session.
type Channel struct {
	sess *session.Session
	log  *eventlog.Log
}

// New returns the result channel for sess.
func New(sess *session.Session) *Channel {
	return &Channel{sess: sess, log: eventlog.New(sess)}
}

// NewID returns a fresh opaque interaction ID.
func NewID() string {
	return uuid.NewString()
}

// FindResult scans the event log in reverse append order and returns the
// payload of the most recent result event for id, or nil if none exists.
// Last-appended-wins: a superseding result for the same ID shadows earlier
// ones.
func (c *Channel) FindResult(id string) (*Result, error) {
	events, err := c.log.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Type != eventlog.TypeResult || ev.ID != id {
			continue
		}
		return &Result{Action: ev.Action, Answers: ev.Answers, Result: ev.Result}, nil
	}
	return nil, nil
}

// WriteDirectResult synchronously and atomically writes res to the direct
// result file for id. The write is complete when this returns, so a producer
// may exit immediately afterwards without losing the result. It also appends
// a result event to the log so that log-only consumers see the outcome.
func (c *Channel) WriteDirectResult(id string, res *Result) error {
	if err := c.sess.EnsureDir(); err != nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := atomicfile.Publish(c.sess.ResultPath(id), data); err != nil {
		return fmt.Errorf("publish result for %s: %w", id, err)
	}

	c.log.Append(&eventlog.Event{
		Type:    eventlog.TypeResult,
		ID:      id,
		Action:  res.Action,
		Answers: res.Answers,
		Result:  res.Result,
	})
	return nil
}

// ReadDirectResult returns the direct result file content for id, or nil if
// the file does not exist yet.
func (c *Channel) ReadDirectResult(id string) (*Result, error) {
	data, err := os.ReadFile(c.sess.ResultPath(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result for %s: %w", id, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse result for %s: %w", id, err)
	}
	return &res, nil
}

// Await blocks until a terminal result for id appears, checking the direct
// result file first and the event log second on each poll. When ctx expires
// before a terminal result appears, Await returns a synthetic timeout result:
// the deadline is controller policy, not something the producer emits.
func (c *Channel) Await(ctx context.Context, id string, pollInterval time.Duration) (*Result, error) {
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.poll(id)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return &Result{Action: eventlog.ActionTimeout}, nil
		case <-ticker.C:
		}
	}
}

func (c *Channel) poll(id string) (*Result, error) {
	res, err := c.ReadDirectResult(id)
	if err != nil {
		// Malformed direct file: fall back to the log rather than fail the
		// wait. The producer may still append a good result event.
		fmt.Fprintf(os.Stderr, "result: direct file for %s: %v\n", id, err)
	}
	if res != nil && eventlog.IsTerminal(res.Action) {
		return res, nil
	}

	res, err = c.FindResult(id)
	if err != nil {
		return nil, err
	}
	if res != nil && eventlog.IsTerminal(res.Action) {
		return res, nil
	}
	return nil, nil
}

// Environ returns the three contract variables for spawning an interactive
// process that must report its outcome for id, in the form accepted by
// exec.Cmd.Env.
func (c *Channel) Environ(id string) []string {
	return []string{
		EnvInteractionID + "=" + id,
		EnvResultFile + "=" + c.sess.ResultPath(id),
		EnvProgressFile + "=" + c.sess.ProgressPath(id),
	}
}

// Contract is the spawned-process view of the env contract.
type Contract struct {
	ID           string
	ResultFile   string
	ProgressFile string
}

// FromEnviron reads the contract from the process environment. An error
// means the process was not spawned by a muxdash controller.
func FromEnviron() (*Contract, error) {
	ct := &Contract{
		ID:           os.Getenv(EnvInteractionID),
		ResultFile:   os.Getenv(EnvResultFile),
		ProgressFile: os.Getenv(EnvProgressFile),
	}
	if ct.ID == "" || ct.ResultFile == "" {
		return nil, fmt.Errorf("missing %s/%s: not spawned under a muxdash controller", EnvInteractionID, EnvResultFile)
	}
	return ct, nil
}

// Report writes res to the contract's result file atomically and
// synchronously. This is the only write a spawned process must perform
// before exiting.
func (ct *Contract) Report(res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := atomicfile.Publish(ct.ResultFile, data); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}

// Progress writes an intermediate progress document to the contract's
// progress file. Best-effort: a lost progress update only delays the
// controller's display, never the outcome.
func (ct *Contract) Progress(doc any) {
	if ct.ProgressFile == "" {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := atomicfile.Publish(ct.ProgressFile, data); err != nil {
		fmt.Fprintf(os.Stderr, "result: publish progress: %v\n", err)
	}
}
