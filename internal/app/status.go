package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/heartbeat"
	"github.com/blackwell-systems/muxdash/internal/output"
	"github.com/blackwell-systems/muxdash/internal/result"
	"github.com/blackwell-systems/muxdash/internal/session"
)

var (
	statusMaxAge time.Duration

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Summarize the session: heartbeat, events, interactions",
		Long: `Display a one-screen summary of the session:

  • Heartbeat freshness (is the session owner alive?)
  • Event counts by type
  • Interactions still pending and interactions that concluded

Pending means a progress file exists but no terminal result has been
reported yet.`,
		Example: `  muxdash status
  muxdash status --session dev --max-age 5s`,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().DurationVar(&statusMaxAge, "max-age", 10*time.Second, "heartbeat freshness window")

	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := getSession()
	if err != nil {
		return err
	}

	st := &output.SessionStatus{
		Session:     sess.Key(),
		EventCounts: make(map[string]int),
		Terminal:    make(map[string]string),
	}

	hb := heartbeat.New(sess)
	st.HeartbeatAge, err = hb.Age()
	if err != nil {
		return err
	}
	st.HeartbeatFresh, err = hb.IsFresh(statusMaxAge)
	if err != nil {
		return err
	}

	events, err := eventlog.New(sess).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}
	for _, ev := range events {
		st.EventCounts[ev.Type]++
		if ev.Type == eventlog.TypeResult && eventlog.IsTerminal(ev.Action) {
			st.Terminal[ev.ID] = ev.Action
		}
	}

	// Direct result files cover interactions whose producer reported through
	// the env contract alone, without a log event.
	ch := result.New(sess)
	for _, id := range interactionFiles(sess, "results") {
		if _, done := st.Terminal[id]; done {
			continue
		}
		res, err := ch.ReadDirectResult(id)
		if err == nil && res != nil && eventlog.IsTerminal(res.Action) {
			st.Terminal[id] = res.Action
		}
	}

	// Interactions that wrote progress but no terminal result yet.
	for _, id := range interactionFiles(sess, "progress") {
		if _, done := st.Terminal[id]; !done {
			st.Pending = append(st.Pending, id)
		}
	}

	fmt.Print(output.RenderStatus(st))
	return nil
}

// interactionFiles lists the interaction IDs that left a file in the given
// session subdirectory (results or progress).
func interactionFiles(sess *session.Session, subdir string) []string {
	entries, err := os.ReadDir(filepath.Join(sess.Dir(), subdir))
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			ids = append(ids, name)
		}
	}
	return ids
}
