package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

var infoCmd = &cobra.Command{
	Use:   "info <server>",
	Short: "Show a server's configuration and live tool count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		entry, ok := cfg.ServerByName(server)
		if !ok {
			return mcperrors.ServerNotFound(server, cfg.ServerNames())
		}

		client, err := buildClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		tools, err := client.ListTools(cmd.Context(), server)
		if err != nil {
			return err
		}
		tools = filterServerTools(cfg, server, tools)

		kind, _ := entry.Kind()
		fmt.Printf("server: %s\n", entry.Name)
		fmt.Printf("transport: %s\n", kind)
		switch kind {
		case "stdio":
			fmt.Printf("command: %s %v\n", entry.Stdio.Command, entry.Stdio.Args)
		case "http":
			fmt.Printf("url: %s\n", entry.HTTP.URL)
		}
		if len(entry.Allow) > 0 {
			fmt.Printf("allow: %v\n", entry.Allow)
		}
		if len(entry.Deny) > 0 {
			fmt.Printf("deny: %v\n", entry.Deny)
		}
		fmt.Printf("tools: %d\n", len(tools))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
