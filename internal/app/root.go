package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/session"
)

var (
	flagDir     string
	flagSession string

	// RootCmd is the root command for muxdash
	RootCmd = &cobra.Command{
		Use:   "muxdash",
		Short: "File-based coordination for terminal dashboard sessions",
		Long: `muxdash coordinates interactive terminal widgets and periodic data
samplers running in separate processes (typically tmux panes) with a
long-lived controller — entirely through the filesystem.

Every session has an append-only event log, per-interaction result files,
atomically-replaced snapshot documents, and an mtime heartbeat. No pipes,
sockets, or process handles are required between participants.

Typical flow:
  1. The controller clears the log and starts the heartbeat:
       muxdash events --clear && muxdash heartbeat &
  2. Widgets announce themselves and report outcomes:
       muxdash emit --type ready --svc api --port 3000
       muxdash complete --action accept --result '"ok"'
  3. The controller waits for an interaction:
       muxdash await --id "$ID" --timeout 30s
  4. Samplers publish live snapshots for dashboard panes:
       muxdash watch --command 'df -P / | tail -1 | awk "{print \$5}"' \
         --parse number --output /tmp/disk.json

Examples:
  # Tail the session's event log
  muxdash events --follow

  # Check whether the session owner is alive
  muxdash heartbeat --check --max-age 10s

  # Archive events and browse history
  muxdash history --archive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("muxdash: file-based coordination for terminal dashboard sessions")
			fmt.Println()
			fmt.Println("Run 'muxdash status' to inspect the current session.")
			fmt.Println("Run 'muxdash --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "muxdash root directory (default: ~/.muxdash, or $MUXDASH_DIR)")
	RootCmd.PersistentFlags().StringVar(&flagSession, "session", "default", "session key")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getSession resolves the session from the global flags.
func getSession() (*session.Session, error) {
	root, err := session.Root(flagDir)
	if err != nil {
		return nil, err
	}
	return session.New(root, flagSession), nil
}

// getDBPath returns the event archive database path under the muxdash root.
func getDBPath() (string, error) {
	root, err := session.Root(flagDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "muxdash.db"), nil
}

// getDefaultPIDFile returns the default watch daemon PID file path.
func getDefaultPIDFile() (string, error) {
	root, err := session.Root(flagDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "watch.pid"), nil
}

// getDefaultLogFile returns the default watch daemon log file path.
func getDefaultLogFile() (string, error) {
	root, err := session.Root(flagDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "watch.log"), nil
}
