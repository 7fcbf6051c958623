package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpmux/mcpmux/internal/cliapp/output"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

var callCmd = &cobra.Command{
	Use:   "call <server/tool> [<json-args>]",
	Short: "Execute a tool, reading arguments from the command line or stdin",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, tool, rest, err := parseServerTool(args)
		if err != nil {
			return err
		}

		rawArgs, err := resolveCallArgs(server, tool, rest)
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

		result, err := client.ExecuteTool(cmd.Context(), server, tool, rawArgs)
		if err != nil {
			return err
		}

		fmt.Println(output.New(jsonFlag).CallResult(result))
		if result.IsError {
			return mcperrors.New(mcperrors.KindProtocol, "tool returned an error result")
		}
		return nil
	},
}

// resolveCallArgs returns the tool's input JSON: the lone remaining
// positional argument if present, stdin if it's not a terminal, or an
// empty object for a tool that takes no arguments.
func resolveCallArgs(server, tool string, rest []string) (json.RawMessage, error) {
	if len(rest) > 0 {
		raw := json.RawMessage(rest[0])
		if !json.Valid(raw) {
			return nil, mcperrors.InvalidArguments(server, tool, "arguments are not valid JSON")
		}
		return raw, nil
	}

	info, err := os.Stdin.Stat()
	if err == nil && (info.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, mcperrors.InvalidArguments(server, tool, "reading arguments from stdin: "+err.Error())
		}
		data = []byte(strings.TrimSpace(string(data)))
		if len(data) > 0 {
			if !json.Valid(data) {
				return nil, mcperrors.InvalidArguments(server, tool, "arguments are not valid JSON")
			}
			return json.RawMessage(data), nil
		}
	}

	return json.RawMessage("{}"), nil
}

func init() {
	rootCmd.AddCommand(callCmd)
}
