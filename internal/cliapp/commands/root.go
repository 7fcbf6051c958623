// Package commands is mcpmux's cobra command tree, grounded on the
// teacher's internal/cli/commands package (root.go's persistent-flag setup,
// one file per subcommand each calling cobra.Command.AddCommand in its own
// init) generalized from the teacher's HTTP-control-plane client to this
// module's bridge.Client abstraction, which picks between an in-process
// pool (--no-daemon) and a daemon connection (auto-spawned, or required to
// be running) depending on the global daemon-mode flags.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/cliapp/output"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

var (
	configFlag        string
	noDaemonFlag      bool
	autoDaemonFlag    bool
	requireDaemonFlag bool
	jsonFlag          bool
)

var rootCmd = &cobra.Command{
	Use:           "mcpmux",
	Short:         "mcpmux multiplexes access to a set of MCP servers behind a local daemon",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and returns the process exit code: 0 on
// success, 1 for client/usage errors and daemon-not-running, 2 for
// anything else (spec.md §6).
func Execute() int {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, output.New(jsonFlag).Error(err))
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	classified, ok := mcperrors.As(err)
	if !ok {
		return 2
	}
	switch classified.Kind {
	case mcperrors.KindUsage, mcperrors.KindAmbiguous,
		mcperrors.KindServerNotFound, mcperrors.KindToolNotFound,
		mcperrors.KindInvalidArguments, mcperrors.KindDaemonNotRunning,
		mcperrors.KindConfigRead, mcperrors.KindConfigParse, mcperrors.KindMissingField:
		return 1
	default:
		return 2
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to mcp_servers.toml")
	rootCmd.PersistentFlags().BoolVar(&noDaemonFlag, "no-daemon", false, "run standalone: each invocation owns its own server connections")
	rootCmd.PersistentFlags().BoolVar(&autoDaemonFlag, "auto-daemon", true, "spawn a daemon on demand if one isn't running (default)")
	rootCmd.PersistentFlags().BoolVar(&requireDaemonFlag, "require-daemon", false, "fail instead of auto-spawning a daemon")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "emit machine-readable JSON")
}
