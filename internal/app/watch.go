package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/muxdash/internal/config"
	"github.com/blackwell-systems/muxdash/internal/sampler"
)

var (
	watchCommand     string
	watchInterval    time.Duration
	watchParse       string
	watchOutput      string
	watchSeries      string
	watchConfigPath  string
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run periodic command samplers that publish snapshot documents",
		Long: `Run one sampler from flags, or every sampler declared in the dashboard
config, until stopped.

Each sampler executes its command through a shell on a fixed interval,
parses stdout according to its parse mode, and atomically replaces its
output file. Consumers polling the file never see a half-written document.

A failing command does not stop the sampler: an error snapshot is
published and the next tick is the retry. The command string may contain
pipes and redirects — it comes from your own invocation and is run as
written.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a background process with a PID file
  • Stop: stop a running daemon`,
		Example: `  # Publish the 1-minute load average every 5 seconds
  muxdash watch --command "uptime | awk -F'load averages?: ' '{print \$2}' | cut -d' ' -f1" \
    --parse number --output /tmp/load.json

  # Run everything declared in muxdash.yaml as a daemon
  muxdash watch --config ~/.config/muxdash/muxdash.yaml --daemon

  # Stop the daemon
  muxdash watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchCommand, "command", "", "shell command to sample")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", sampler.DefaultInterval, "tick interval")
	watchCmd.Flags().StringVar(&watchParse, "parse", "auto", "parse mode (number|json|lines|raw|auto)")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "snapshot output path")
	watchCmd.Flags().StringVar(&watchSeries, "series", "", "reshape scalar samples into a named series")
	watchCmd.Flags().StringVar(&watchConfigPath, "config", "", "dashboard config file (default: ~/.config/muxdash/muxdash.yaml)")
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.muxdash/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.muxdash/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		if err := sampler.StopDaemon(watchPIDFile); err != nil {
			return err
		}
		fmt.Println("Watch daemon stopped.")
		return nil
	}

	configs, err := samplerConfigs()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return fmt.Errorf("nothing to watch: pass --command/--output or declare watchers in the config")
	}

	if watchDaemon && !watchDaemonChild {
		if err := sampler.StartDaemon(watchPIDFile, watchLogFile, daemonChildArgs()); err != nil {
			return err
		}
		fmt.Printf("Watch daemon started (PID file: %s, log: %s).\n", watchPIDFile, watchLogFile)
		return nil
	}

	samplers := make([]*sampler.Sampler, 0, len(configs))
	for _, cfg := range configs {
		cfg := cfg
		cfg.OnError = func(err error) {
			fmt.Fprintln(cmd.ErrOrStderr(), "watch: "+cfg.Name+": "+err.Error())
		}
		s, err := sampler.New(cfg)
		if err != nil {
			return err
		}
		samplers = append(samplers, s)
	}

	pidFile := ""
	if watchDaemonChild {
		pidFile = watchPIDFile
	} else {
		fmt.Printf("Watching %d sampler(s). Ctrl+C to stop.\n", len(samplers))
	}
	return sampler.RunUntilSignal(samplers, pidFile)
}

// samplerConfigs builds the sampler set: the single flag-defined sampler when
// --command is given, otherwise the watcher blocks of the dashboard config.
func samplerConfigs() ([]sampler.Config, error) {
	if watchCommand != "" {
		if watchOutput == "" {
			return nil, fmt.Errorf("--output is required with --command")
		}
		cfg := sampler.Config{
			Name:       "cli",
			Command:    watchCommand,
			Interval:   watchInterval,
			Parse:      sampler.Mode(watchParse),
			OutputPath: watchOutput,
		}
		if watchSeries != "" {
			cfg.Hints = &sampler.Hints{Series: watchSeries}
		}
		return []sampler.Config{cfg}, nil
	}

	cfg, err := config.Load(watchConfigPath)
	if err != nil {
		return nil, err
	}
	return cfg.SamplerConfigs(), nil
}

// daemonChildArgs reproduces the sampler-defining flags for the daemon child
// process.
func daemonChildArgs() []string {
	args := []string{"--pid-file", watchPIDFile, "--log-file", watchLogFile}
	if flagDir != "" {
		args = append(args, "--dir", flagDir)
	}
	if watchCommand != "" {
		args = append(args,
			"--command", watchCommand,
			"--interval", watchInterval.String(),
			"--parse", watchParse,
			"--output", watchOutput)
		if watchSeries != "" {
			args = append(args, "--series", watchSeries)
		}
	}
	if watchConfigPath != "" {
		args = append(args, "--config", watchConfigPath)
	}
	return args
}
