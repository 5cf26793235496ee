package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/output"
)

var (
	eventsFollow bool
	eventsClear  bool
	eventsJSON   bool
	eventsLimit  int

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "List, tail, or clear the session's event log",
		Long: `Read the session's append-only event log.

By default the whole log is rendered as a table. With --follow, new events
are printed as they are appended (Ctrl+C to stop). With --clear, the log is
truncated — the controller does this once at session start to drop stale
history.

Lines that fail to parse are skipped silently; a writer that died
mid-append must not poison the log for everyone else.`,
		Example: `  # Show the session's history
  muxdash events

  # Machine-readable output for scripts
  muxdash events --json | jq .type

  # Tail in a dedicated pane
  muxdash events --follow

  # Fresh start
  muxdash events --clear`,
		RunE: runEvents,
	}
)

func init() {
	eventsCmd.Flags().BoolVarP(&eventsFollow, "follow", "f", false, "tail the log, printing new events")
	eventsCmd.Flags().BoolVar(&eventsClear, "clear", false, "truncate the log")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "print events as JSON lines instead of a table")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 0, "show only the last N events")

	RootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	sess, err := getSession()
	if err != nil {
		return err
	}
	log := eventlog.New(sess)

	if eventsClear {
		if err := log.Clear(); err != nil {
			return fmt.Errorf("failed to clear event log: %w", err)
		}
		fmt.Printf("Cleared event log for session %q.\n", sess.Key())
		return nil
	}

	if eventsFollow {
		return followEvents(log)
	}

	events, err := log.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}
	if eventsLimit > 0 && len(events) > eventsLimit {
		events = events[len(events)-eventsLimit:]
	}

	if eventsJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Print(output.RenderEventTable(events))
	return nil
}

func followEvents(log *eventlog.Log) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ch, err := log.Tail(ctx)
	if err != nil {
		return fmt.Errorf("failed to tail event log: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for ev := range ch {
		if eventsJSON {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}
		fmt.Print(output.RenderEventLine(ev))
	}
	return nil
}
