package commands

import (
	"strings"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

// parseServerTool accepts either the combined "server/tool" form or the
// two-argument "server tool" form (spec.md §6 allows both for `tool` and
// `call`), returning whatever positional arguments remain after consuming
// one or two of them.
func parseServerTool(args []string) (server, tool string, rest []string, err error) {
	if len(args) == 0 {
		return "", "", nil, mcperrors.Usage("expected <server/tool> or <server> <tool>")
	}

	if strings.Contains(args[0], "/") {
		parts := strings.SplitN(args[0], "/", 2)
		return parts[0], parts[1], args[1:], nil
	}

	if len(args) < 2 {
		return "", "", nil, mcperrors.Usage("expected <server/tool> or <server> <tool>")
	}
	return args[0], args[1], args[2:], nil
}
