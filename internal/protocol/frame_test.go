package protocol_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

func TestRequestFrame_RoundTrip(t *testing.T) {
	frames := []protocol.RequestFrame{
		{Type: protocol.FrameListServers},
		{Type: protocol.FrameListTools, Server: "echo"},
		{Type: protocol.FrameExecuteTool, Server: "echo", Tool: "say", Arguments: json.RawMessage(`{"text":"hi"}`)},
		{Type: protocol.FrameShutdown},
		{Type: protocol.FramePing},
	}

	for _, f := range frames {
		encoded, err := json.Marshal(f)
		require.NoError(t, err)
		assert.NotContains(t, string(encoded), "\n", "encoded frame must not contain an embedded newline")

		var decoded protocol.RequestFrame
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, f, decoded)
	}
}

func TestRequestFrame_ValidateRejectsUnknownType(t *testing.T) {
	f := protocol.RequestFrame{Type: "something_else"}
	assert.Error(t, f.Validate())
}

func TestRequestFrame_ValidateRequiresServerForListTools(t *testing.T) {
	f := protocol.RequestFrame{Type: protocol.FrameListTools}
	assert.Error(t, f.Validate())
}

func TestRequestFrame_ValidateRequiresServerAndToolForExecute(t *testing.T) {
	f := protocol.RequestFrame{Type: protocol.FrameExecuteTool, Server: "echo"}
	assert.Error(t, f.Validate())
}

func TestResponseFrame_ValidateRejectsUnknownType(t *testing.T) {
	f := protocol.ResponseFrame{Type: "mystery"}
	assert.Error(t, f.Validate())
}

func TestResponseFrame_RoundTripToolResult(t *testing.T) {
	frame, err := protocol.NewToolResultResponse(map[string]any{"ok": true})
	require.NoError(t, err)

	encoded, err := json.Marshal(frame)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(encoded), "\n"))

	var decoded protocol.ResponseFrame
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, protocol.FrameToolResult, decoded.Type)
	assert.JSONEq(t, `{"ok":true}`, string(decoded.Value))
}

func TestResponseFrame_ErrorPreservesKindAndMessage(t *testing.T) {
	frame := protocol.NewErrorResponse("connection_error", "boom")
	encoded, err := json.Marshal(frame)
	require.NoError(t, err)

	var decoded protocol.ResponseFrame
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "connection_error", decoded.ErrorKind)
	assert.Equal(t, "boom", decoded.Message)
}
