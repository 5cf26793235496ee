package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
)

var (
	emitType    string
	emitSvc     string
	emitPort    int
	emitURL     string
	emitMsg     string
	emitExit    int
	emitID      string
	emitAction  string
	emitAnswers string
	emitResult  string
	emitMessage string
	emitPrompts []string
	emitAdded   []string
	emitRemoved []string
	emitChanged []string
	emitDashRel bool

	emitCmd = &cobra.Command{
		Use:   "emit",
		Short: "Append an event to the session's event log",
		Long: `Append one typed event to the session's append-only event log.

Widget wrapper scripts and watchers use this to notify the controller (and
any other consumer tailing the log) about lifecycle changes. Delivery is
best-effort by design: if the log cannot be written the event is dropped
with a warning, never a failure.

Event types and their fields:
  ready    --svc, --port, --url
  error    --svc, --msg, --exit
  result   --id, --action, --answers, --result
  reload   --added, --removed, --changed, --dashboard-reloaded
  status   --message, --prompt`,
		Example: `  # A dev server came up
  muxdash emit --type ready --svc api --port 3000

  # A build step failed
  muxdash emit --type error --svc build --msg "tsc exited" --exit 2

  # A form was accepted
  muxdash emit --type result --id f1 --action accept --answers '{"name":"alice"}'`,
		RunE: runEmit,
	}
)

func init() {
	emitCmd.Flags().StringVar(&emitType, "type", "", "event type (ready|error|result|reload|status)")
	emitCmd.Flags().StringVar(&emitSvc, "svc", "", "service/component name")
	emitCmd.Flags().IntVar(&emitPort, "port", 0, "port the service listens on")
	emitCmd.Flags().StringVar(&emitURL, "url", "", "URL the service serves")
	emitCmd.Flags().StringVar(&emitMsg, "msg", "", "error message")
	emitCmd.Flags().IntVar(&emitExit, "exit", -1, "process exit code")
	emitCmd.Flags().StringVar(&emitID, "id", "", "interaction ID")
	emitCmd.Flags().StringVar(&emitAction, "action", "", "result action (accept|decline|cancel|timeout)")
	emitCmd.Flags().StringVar(&emitAnswers, "answers", "", "answers document (JSON object)")
	emitCmd.Flags().StringVar(&emitResult, "result", "", "result document (JSON)")
	emitCmd.Flags().StringVar(&emitMessage, "message", "", "status message")
	emitCmd.Flags().StringSliceVar(&emitPrompts, "prompt", nil, "status prompt (repeatable)")
	emitCmd.Flags().StringSliceVar(&emitAdded, "added", nil, "added config entries")
	emitCmd.Flags().StringSliceVar(&emitRemoved, "removed", nil, "removed config entries")
	emitCmd.Flags().StringSliceVar(&emitChanged, "changed", nil, "changed config entries")
	emitCmd.Flags().BoolVar(&emitDashRel, "dashboard-reloaded", false, "the dashboard itself was reloaded")
	emitCmd.MarkFlagRequired("type")

	RootCmd.AddCommand(emitCmd)
}

func runEmit(cmd *cobra.Command, args []string) error {
	ev, err := buildEvent()
	if err != nil {
		return err
	}

	sess, err := getSession()
	if err != nil {
		return err
	}

	eventlog.New(sess).Append(ev)
	return nil
}

func buildEvent() (*eventlog.Event, error) {
	ev := &eventlog.Event{Type: emitType}

	switch emitType {
	case eventlog.TypeReady:
		if emitSvc == "" {
			return nil, fmt.Errorf("--svc is required for ready events")
		}
		ev.Svc, ev.Port, ev.URL = emitSvc, emitPort, emitURL
	case eventlog.TypeError:
		if emitSvc == "" {
			return nil, fmt.Errorf("--svc is required for error events")
		}
		ev.Svc, ev.Msg = emitSvc, emitMsg
		if emitExit >= 0 {
			exit := emitExit
			ev.Exit = &exit
		}
	case eventlog.TypeResult:
		if emitID == "" {
			return nil, fmt.Errorf("--id is required for result events")
		}
		if !eventlog.IsTerminal(emitAction) {
			return nil, fmt.Errorf("--action must be one of accept|decline|cancel|timeout, got %q", emitAction)
		}
		ev.ID, ev.Action = emitID, emitAction
		if emitAnswers != "" {
			if err := json.Unmarshal([]byte(emitAnswers), &ev.Answers); err != nil {
				return nil, fmt.Errorf("invalid --answers JSON: %w", err)
			}
		}
		if emitResult != "" {
			if err := json.Unmarshal([]byte(emitResult), &ev.Result); err != nil {
				return nil, fmt.Errorf("invalid --result JSON: %w", err)
			}
		}
	case eventlog.TypeReload:
		ev.Added, ev.Removed, ev.Changed = emitAdded, emitRemoved, emitChanged
		ev.DashboardReloaded = emitDashRel
	case eventlog.TypeStatus:
		if emitMessage == "" {
			return nil, fmt.Errorf("--message is required for status events")
		}
		ev.Message, ev.Prompts = emitMessage, emitPrompts
	default:
		return nil, fmt.Errorf("unknown event type %q", emitType)
	}
	return ev, nil
}
