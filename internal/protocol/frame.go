package protocol

import (
	"encoding/json"
	"fmt"
)

// RequestFrame is one line of the IPC wire protocol, a tagged variant per
// spec.md §3: ListServers, ListTools, ExecuteTool, Shutdown, Ping.
type RequestFrame struct {
	Type      FrameRequestType `json:"type"`
	Server    string           `json:"server,omitempty"`
	Tool      string           `json:"tool,omitempty"`
	Arguments json.RawMessage  `json:"arguments,omitempty"`
}

// FrameRequestType enumerates the closed set of daemon request kinds.
// Unknown values must be treated as an error (spec.md §6: "implementations
// must treat unknown tagged variants as an error").
type FrameRequestType string

const (
	FrameListServers FrameRequestType = "list_servers"
	FrameListTools   FrameRequestType = "list_tools"
	FrameExecuteTool FrameRequestType = "execute_tool"
	FrameShutdown    FrameRequestType = "shutdown"
	FramePing        FrameRequestType = "ping"
)

func (t FrameRequestType) valid() bool {
	switch t {
	case FrameListServers, FrameListTools, FrameExecuteTool, FrameShutdown, FramePing:
		return true
	default:
		return false
	}
}

// Validate rejects unknown request frame types.
func (f RequestFrame) Validate() error {
	if !f.Type.valid() {
		return fmt.Errorf("unknown request frame type %q", f.Type)
	}
	switch f.Type {
	case FrameListTools:
		if f.Server == "" {
			return fmt.Errorf("list_tools frame missing server")
		}
	case FrameExecuteTool:
		if f.Server == "" || f.Tool == "" {
			return fmt.Errorf("execute_tool frame missing server or tool")
		}
	}
	return nil
}

// ResponseFrame is one line of the IPC wire protocol sent back to a client:
// ServerList, ToolList, ToolResult, Error, Pong, Ack.
type ResponseFrame struct {
	Type      FrameResponseType `json:"type"`
	Names     []string          `json:"names,omitempty"`
	Tools     []Tool            `json:"tools,omitempty"`
	Value     json.RawMessage   `json:"value,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// FrameResponseType enumerates the closed set of daemon response kinds.
type FrameResponseType string

const (
	FrameServerList FrameResponseType = "server_list"
	FrameToolList   FrameResponseType = "tool_list"
	FrameToolResult FrameResponseType = "tool_result"
	FrameError      FrameResponseType = "error"
	FramePong       FrameResponseType = "pong"
	FrameAck        FrameResponseType = "ack"
)

func (t FrameResponseType) valid() bool {
	switch t {
	case FrameServerList, FrameToolList, FrameToolResult, FrameError, FramePong, FrameAck:
		return true
	default:
		return false
	}
}

// Validate rejects unknown response frame types.
func (f ResponseFrame) Validate() error {
	if !f.Type.valid() {
		return fmt.Errorf("unknown response frame type %q", f.Type)
	}
	return nil
}

// NewServerListResponse builds a ServerList response frame.
func NewServerListResponse(names []string) ResponseFrame {
	return ResponseFrame{Type: FrameServerList, Names: names}
}

// NewToolListResponse builds a ToolList response frame.
func NewToolListResponse(tools []Tool) ResponseFrame {
	return ResponseFrame{Type: FrameToolList, Tools: tools}
}

// NewToolResultResponse builds a ToolResult response frame carrying an
// arbitrary JSON value (the tool's result).
func NewToolResultResponse(value any) (ResponseFrame, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return ResponseFrame{}, err
	}
	return ResponseFrame{Type: FrameToolResult, Value: raw}, nil
}

// NewErrorResponse builds an Error response frame, tagging kind+message
// only; the IPC boundary does not preserve the full cause chain (spec.md
// §7).
func NewErrorResponse(kind, message string) ResponseFrame {
	return ResponseFrame{Type: FrameError, ErrorKind: kind, Message: message}
}

// NewPongResponse builds a Pong response frame.
func NewPongResponse() ResponseFrame { return ResponseFrame{Type: FramePong} }

// NewAckResponse builds an Ack response frame.
func NewAckResponse() ResponseFrame { return ResponseFrame{Type: FrameAck} }
