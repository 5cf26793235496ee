package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/result"
)

var (
	spawnEnvID string

	spawnEnvCmd = &cobra.Command{
		Use:   "spawn-env",
		Short: "Print the environment contract for spawning an interaction",
		Long: `Generate (or take via --id) an interaction ID and print the three
environment variable assignments a spawned interactive process needs to
report its outcome: the ID, the direct result file path, and the progress
file path.

The output is eval-able shell, one assignment per line, so a controller
script can do:

  eval "$(muxdash spawn-env)"
  tmux split-window -e MUXDASH_INTERACTION_ID="$MUXDASH_INTERACTION_ID" \
    -e MUXDASH_RESULT_FILE="$MUXDASH_RESULT_FILE" \
    -e MUXDASH_PROGRESS_FILE="$MUXDASH_PROGRESS_FILE" my-widget
  muxdash await --id "$MUXDASH_INTERACTION_ID"`,
		RunE: runSpawnEnv,
	}
)

func init() {
	spawnEnvCmd.Flags().StringVar(&spawnEnvID, "id", "", "interaction ID (generated when omitted)")

	RootCmd.AddCommand(spawnEnvCmd)
}

func runSpawnEnv(cmd *cobra.Command, args []string) error {
	sess, err := getSession()
	if err != nil {
		return err
	}
	if err := sess.EnsureDir(); err != nil {
		return err
	}

	id := spawnEnvID
	if id == "" {
		id = result.NewID()
	}

	for _, kv := range result.New(sess).Environ(id) {
		fmt.Println(kv)
	}
	return nil
}
