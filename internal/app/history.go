package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/output"
	"github.com/blackwell-systems/muxdash/internal/session"
	"github.com/blackwell-systems/muxdash/internal/store"
)

var (
	historyArchive bool
	historySince   time.Duration
	historyLimit   int
	historyAll     bool

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Archive and browse events across sessions",
		Long: `Query the event archive.

The live event log is truncated at every session start; the archive keeps
events across restarts in a SQLite database under the muxdash root. With
--archive, the current session's log (or every session's, with --all) is
folded into the archive first — the operation is idempotent, so archiving
repeatedly never duplicates rows.`,
		Example: `  # Fold the current session's log into the archive
  muxdash history --archive

  # What happened in the last hour, anywhere?
  muxdash history --all --since 1h

  # Last 20 events of one session
  muxdash history --session dev -n 20`,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().BoolVar(&historyArchive, "archive", false, "archive the live log before querying")
	historyCmd.Flags().DurationVar(&historySince, "since", 24*time.Hour, "show events newer than this")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum rows to show")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "span all sessions instead of the current one")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open event archive: %w", err)
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return err
	}

	if historyArchive {
		if err := archiveSessions(st); err != nil {
			return err
		}
	}

	filterSession := flagSession
	if historyAll {
		filterSession = ""
	}

	rows, err := st.ListEvents(filterSession, time.Now().Add(-historySince), historyLimit)
	if err != nil {
		return err
	}
	fmt.Print(renderHistory(rows))
	return nil
}

// archiveSessions folds live logs into the archive: the current session, or
// every session under the root with --all.
func archiveSessions(st *store.Store) error {
	root, err := session.Root(flagDir)
	if err != nil {
		return err
	}

	keys := []string{flagSession}
	if historyAll {
		keys, err = session.List(root)
		if err != nil {
			return err
		}
	}

	total := 0
	for _, key := range keys {
		sess := session.New(root, key)
		events, err := eventlog.New(sess).ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read log for session %q: %w", key, err)
		}
		n, err := st.Archive(sess.Key(), events)
		if err != nil {
			return fmt.Errorf("failed to archive session %q: %w", key, err)
		}
		total += n
	}
	fmt.Printf("Archived %d new event(s).\n", total)
	return nil
}

func renderHistory(rows []*store.ArchivedEvent) string {
	if len(rows) == 0 {
		return "No archived events.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-13s %-12s %-8s %-14s %s\n", "When", "Session", "Type", "Subject", "Action"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")
	for _, row := range rows {
		subject := row.Svc
		if subject == "" {
			subject = row.InteractionID
		}
		sb.WriteString(fmt.Sprintf("%-13s %-12s %-8s %-14s %s\n",
			output.FormatRelativeTime(row.Time()), row.Session, row.Type, subject, row.Action))
	}
	return sb.String()
}
