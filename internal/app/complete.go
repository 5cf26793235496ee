package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
	"github.com/blackwell-systems/muxdash/internal/result"
)

var (
	completeAction   string
	completeAnswers  string
	completeResult   string
	completeProgress string

	completeCmd = &cobra.Command{
		Use:   "complete",
		Short: "Report an interaction's outcome from inside a spawned process",
		Long: `Report the outcome of the current interaction and return.

This command runs inside a process the controller spawned (a widget in a
tmux pane, a wrapper script). It needs no session key: the controller
passed MUXDASH_INTERACTION_ID, MUXDASH_RESULT_FILE, and
MUXDASH_PROGRESS_FILE in the environment, and those three values are
enough to report correctly.

The result file is written atomically and synchronously — once this
command returns, the process may exit without losing the outcome.

With --progress, an intermediate progress document is written instead of
a result; call it as often as needed before the final report.`,
		Example: `  # Mid-interaction progress
  muxdash complete --progress '{"step":2,"total":5}'

  # Final outcome
  muxdash complete --action accept --answers '{"name":"alice"}'
  muxdash complete --action cancel`,
		RunE: runComplete,
	}
)

func init() {
	completeCmd.Flags().StringVar(&completeAction, "action", eventlog.ActionAccept, "terminal action (accept|decline|cancel|timeout)")
	completeCmd.Flags().StringVar(&completeAnswers, "answers", "", "answers document (JSON object)")
	completeCmd.Flags().StringVar(&completeResult, "result", "", "result document (JSON)")
	completeCmd.Flags().StringVar(&completeProgress, "progress", "", "write a progress document instead of a result (JSON)")

	RootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	ct, err := result.FromEnviron()
	if err != nil {
		return err
	}

	if completeProgress != "" {
		var doc any
		if err := json.Unmarshal([]byte(completeProgress), &doc); err != nil {
			return fmt.Errorf("invalid --progress JSON: %w", err)
		}
		ct.Progress(doc)
		return nil
	}

	if !eventlog.IsTerminal(completeAction) {
		return fmt.Errorf("--action must be one of accept|decline|cancel|timeout, got %q", completeAction)
	}

	res := &result.Result{Action: completeAction}
	if completeAnswers != "" {
		if err := json.Unmarshal([]byte(completeAnswers), &res.Answers); err != nil {
			return fmt.Errorf("invalid --answers JSON: %w", err)
		}
	}
	if completeResult != "" {
		if err := json.Unmarshal([]byte(completeResult), &res.Result); err != nil {
			return fmt.Errorf("invalid --result JSON: %w", err)
		}
	}

	return ct.Report(res)
}
