package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/cliapp/output"
)

var searchCmd = &cobra.Command{
	Use:   "search <glob>",
	Short: "Search tool names across every configured server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := args[0]

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

		var matches []output.SearchMatch
		for _, name := range names {
			tools, err := client.ListTools(cmd.Context(), name)
			if err != nil {
				continue
			}
			for _, t := range filterServerTools(cfg, name, tools) {
				if ok, _ := filepath.Match(pattern, t.Name); ok {
					matches = append(matches, output.SearchMatch{Server: name, Tool: t.Name, Description: t.Description})
				}
			}
		}

		if s := output.New(jsonFlag).SearchResults(matches); s != "" {
			fmt.Println(s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
