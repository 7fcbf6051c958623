package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/ipc"
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Ask the running daemon to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := ipc.Dial(cfg.Path)
		if err := client.Ping(cmd.Context()); err != nil {
			return err
		}
		if err := client.Shutdown(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("daemon shutdown requested")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shutdownCmd)
}
