package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/output"
	"github.com/blackwell-systems/muxdash/internal/result"
)

var (
	awaitID      string
	awaitTimeout time.Duration
	awaitPoll    time.Duration
	awaitQuiet   bool

	awaitCmd = &cobra.Command{
		Use:   "await",
		Short: "Block until an interaction reaches a terminal result",
		Long: `Wait for the interaction identified by --id to conclude, then print its
result document as JSON on stdout.

The wait polls the interaction's direct result file first (low latency) and
falls back to scanning the event log, so either reporting path suffices.
When --timeout elapses without a terminal result, a synthetic
{"action":"timeout"} result is printed: the deadline is this controller's
policy, not something the widget emits.

Exit codes map to the action so shell scripts can branch without parsing
JSON: accept=0, decline=1, cancel=2, timeout=3.`,
		Example: `  eval "$(muxdash spawn-env)"
  muxdash await --id "$MUXDASH_INTERACTION_ID" --timeout 30s`,
		RunE: runAwait,
	}
)

func init() {
	awaitCmd.Flags().StringVar(&awaitID, "id", "", "interaction ID to wait for")
	awaitCmd.Flags().DurationVar(&awaitTimeout, "timeout", 60*time.Second, "give up after this long")
	awaitCmd.Flags().DurationVar(&awaitPoll, "poll", 200*time.Millisecond, "poll interval")
	awaitCmd.Flags().BoolVarP(&awaitQuiet, "quiet", "q", false, "suppress the wait spinner")
	awaitCmd.MarkFlagRequired("id")

	RootCmd.AddCommand(awaitCmd)
}

func runAwait(cmd *cobra.Command, args []string) error {
	sess, err := getSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), awaitTimeout)
	defer cancel()

	if !awaitQuiet {
		spinner := output.NewSpinner(fmt.Sprintf("waiting for interaction %s", awaitID))
		spinner.Start()
		defer spinner.Stop()
	}

	res, err := result.New(sess).Await(ctx, awaitID, awaitPoll)
	if err != nil {
		return fmt.Errorf("failed to await result: %w", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))

	if code := actionExitCode(res.Action); code != 0 {
		os.Exit(code)
	}
	return nil
}

func actionExitCode(action string) int {
	switch action {
	case eventlog.ActionAccept:
		return 0
	case eventlog.ActionDecline:
		return 1
	case eventlog.ActionCancel:
		return 2
	default:
		return 3
	}
}
