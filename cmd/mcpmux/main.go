// Command mcpmux is the CLI entry point: it builds the cobra command tree
// in internal/cliapp/commands and exits with the process code the command
// layer reports (spec.md §6's exit-code policy).
package main

import (
	"os"

	"github.com/mcpmux/mcpmux/internal/cliapp/commands"
)

func main() {
	os.Exit(commands.Execute())
}
