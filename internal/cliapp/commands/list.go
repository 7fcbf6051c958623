package commands

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcpmux/mcpmux/internal/cliapp/filter"
	"github.com/mcpmux/mcpmux/internal/cliapp/output"
	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/daemon"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

var (
	listDescribe bool
	listVerbose  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Enumerate configured servers and the tools they advertise",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := buildClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		names, err := client.ListServers(cmd.Context())
		if err != nil {
			return err
		}

		// Bounded parallel fan-out across servers (spec.md §4.6):
		// partial failures are collected rather than aborting the whole
		// command, and a connection issue on one server never hides the
		// tools the others successfully reported.
		var mu sync.Mutex
		entries := make([]output.ServerEntry, 0, len(names))
		var failures []output.ServerFailure

		eg, egCtx := errgroup.WithContext(cmd.Context())
		if cfg.ConcurrencyLimit > 0 {
			eg.SetLimit(cfg.ConcurrencyLimit)
		}
		for _, name := range names {
			name := name
			eg.Go(func() error {
				tools, err := client.ListTools(egCtx, name)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, output.ServerFailure{Server: name, Err: err})
					return nil
				}
				entries = append(entries, output.ServerEntry{Name: name, Tools: filterServerTools(cfg, name, tools)})
				return nil
			})
		}
		eg.Wait() // per-server errors are collected above, never returned to the group

		startedAt, hasStarted, _ := daemon.StartedAt(cfg.Path)
		formatter := output.New(jsonFlag)
		fmt.Println(formatter.ServerList(entries, failures, startedAt, hasStarted, listDescribe, listVerbose))
		return nil
	},
}

// filterServerTools applies server's allow/deny glob lists to tools.
func filterServerTools(cfg *config.Config, server string, tools []protocol.Tool) []protocol.Tool {
	entry, ok := cfg.ServerByName(server)
	if !ok {
		return tools
	}
	out := make([]protocol.Tool, 0, len(tools))
	for _, t := range tools {
		if filter.Allowed(t.Name, entry.Allow, entry.Deny) {
			out = append(out, t)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listDescribe, "describe", "d", false, "include tool descriptions")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "include daemon uptime")
}
