package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/applog"
	"github.com/mcpmux/mcpmux/internal/daemon"
)

var (
	daemonTTL        int
	daemonForeground bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the mcpmux daemon in the foreground until shut down or idle",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if daemonTTL > 0 {
			cfg.DaemonIdleTTLSecs = daemonTTL
		}

		logPath, err := applog.DefaultFilePath()
		if err != nil {
			return err
		}
		logger, err := applog.New(applog.Options{FilePath: logPath, Console: daemonForeground})
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		d := daemon.New(cfg, logger.Logger)
		return d.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().IntVar(&daemonTTL, "ttl", 0, "override the configured daemon idle TTL, in seconds")
	daemonCmd.Flags().BoolVar(&daemonForeground, "foreground", false, "also echo log entries to the console (spawn.go always execs this flag)")
}
