package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/heartbeat"
	"github.com/blackwell-systems/muxdash/internal/output"
)

var (
	heartbeatInterval time.Duration
	heartbeatCheck    bool
	heartbeatMaxAge   time.Duration

	heartbeatCmd = &cobra.Command{
		Use:   "heartbeat",
		Short: "Own or probe the session's liveness signal",
		Long: `Without --check, become the session owner's heartbeat: touch the
session's heartbeat file on a fixed cadence until interrupted. Exactly one
process per session should do this.

With --check, probe liveness instead: exit 0 if the heartbeat was touched
within --max-age, exit 1 otherwise. This lets any process decide whether a
session's owner is alive without a PID (which can be reused) or a process
handle.`,
		Example: `  # In the controller process
  muxdash heartbeat --interval 2s &

  # Anywhere else
  if muxdash heartbeat --check --max-age 10s; then echo alive; fi`,
		RunE: runHeartbeat,
	}
)

func init() {
	heartbeatCmd.Flags().DurationVar(&heartbeatInterval, "interval", 2*time.Second, "touch cadence")
	heartbeatCmd.Flags().BoolVar(&heartbeatCheck, "check", false, "probe freshness instead of owning the heartbeat")
	heartbeatCmd.Flags().DurationVar(&heartbeatMaxAge, "max-age", 10*time.Second, "freshness window for --check")

	RootCmd.AddCommand(heartbeatCmd)
}

func runHeartbeat(cmd *cobra.Command, args []string) error {
	sess, err := getSession()
	if err != nil {
		return err
	}
	hb := heartbeat.New(sess)

	if heartbeatCheck {
		fresh, err := hb.IsFresh(heartbeatMaxAge)
		if err != nil {
			return err
		}
		age, _ := hb.Age()
		if fresh {
			fmt.Printf("alive (touched %s)\n", output.FormatRelativeTime(time.Now().Add(-age)))
			return nil
		}
		if age < 0 {
			fmt.Println("stale (no heartbeat file)")
		} else {
			fmt.Printf("stale (touched %s)\n", output.FormatRelativeTime(time.Now().Add(-age)))
		}
		os.Exit(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Touching heartbeat for session %q every %s. Ctrl+C to stop.\n", sess.Key(), heartbeatInterval)
	return hb.Run(ctx, heartbeatInterval)
}
