package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/cliapp/output"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

var toolCmd = &cobra.Command{
	Use:   "tool <server/tool>",
	Short: "Show a tool's description and input schema",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, tool, _, err := parseServerTool(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
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
		for _, t := range tools {
			if t.Name == tool {
				fmt.Println(output.New(jsonFlag).ToolSchema(server, t))
				return nil
			}
		}
		return mcperrors.ToolNotFound(server, tool)
	},
}

func init() {
	rootCmd.AddCommand(toolCmd)
}
