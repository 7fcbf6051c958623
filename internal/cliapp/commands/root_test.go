package commands

import (
	"errors"
	"testing"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

func TestExitCodeFor_ClientErrorsReturnOne(t *testing.T) {
	cases := []error{
		mcperrors.Usage("bad usage"),
		mcperrors.ServerNotFound("missing", nil),
		mcperrors.ToolNotFound("server", "missing"),
		mcperrors.InvalidArguments("server", "tool", "bad json"),
		mcperrors.DaemonNotRunning(),
	}
	for _, err := range cases {
		if got := exitCodeFor(err); got != 1 {
			t.Errorf("exitCodeFor(%v) = %d, want 1", err, got)
		}
	}
}

func TestExitCodeFor_OtherClassifiedErrorsReturnTwo(t *testing.T) {
	cases := []error{
		mcperrors.ConnectionError("server", errors.New("dial failed")),
		mcperrors.ProtocolError("server", errors.New("bad frame")),
		mcperrors.Timeout("server/tool call"),
		mcperrors.IPCError(errors.New("socket gone")),
	}
	for _, err := range cases {
		if got := exitCodeFor(err); got != 2 {
			t.Errorf("exitCodeFor(%v) = %d, want 2", err, got)
		}
	}
}

func TestExitCodeFor_UnclassifiedErrorReturnsTwo(t *testing.T) {
	if got := exitCodeFor(errors.New("boom")); got != 2 {
		t.Errorf("exitCodeFor(unclassified) = %d, want 2", got)
	}
}
