// Package mcperrors defines the error taxonomy shared by every layer of
// mcpmux: the pool, the IPC boundary, the bridge, and the CLI all classify
// failures into one of these kinds so retry policy and user-facing hints can
// be driven off the kind rather than string-matching error text.
package mcperrors

import "fmt"

// Kind is an abstract error category, not a concrete Go type. It is carried
// across the IPC boundary in response frames (see internal/protocol) because
// the wire does not preserve Go type information or the full cause chain.
type Kind string

const (
	KindConfigRead       Kind = "config_read"
	KindConfigParse      Kind = "config_parse"
	KindMissingField     Kind = "missing_required_field"
	KindServerNotFound   Kind = "server_not_found"
	KindToolNotFound     Kind = "tool_not_found"
	KindInvalidArguments Kind = "invalid_arguments"
	KindConnection       Kind = "connection_error"
	KindProtocol         Kind = "protocol_error"
	KindTimeout          Kind = "timeout"
	KindDaemonNotRunning Kind = "daemon_not_running"
	KindIPC              Kind = "ipc_error"
	KindUsage            Kind = "usage_error"
	KindAmbiguous        Kind = "ambiguous_command"
	KindUnsupported      Kind = "unsupported_operation"
)

// Retriable reports whether the bridge's retry policy should apply to this
// kind. Only transient transport-level failures are retriable; everything
// else short-circuits (spec.md §4.6, §7).
func (k Kind) Retriable() bool {
	switch k {
	case KindConnection, KindTimeout, KindIPC:
		return true
	default:
		return false
	}
}

// Error is the concrete error type used throughout mcpmux. It carries enough
// context (server, tool, a user-facing hint) to render an actionable message
// without needing the full cause chain, which the IPC wire does not preserve.
type Error struct {
	Kind    Kind
	Server  string
	Tool    string
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Server != "" && e.Tool != "":
		return fmt.Sprintf("%s/%s: %s", e.Server, e.Tool, e.Message)
	case e.Server != "":
		return fmt.Sprintf("%s: %s", e.Server, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause under kind, attaching server/tool context.
func Wrap(kind Kind, server, tool string, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Server: server, Tool: tool, Message: msg, Cause: cause}
}

// WithHint returns a copy of e with Hint set, for a fluent call site.
func (e *Error) WithHint(hint string) *Error {
	cp := *e
	cp.Hint = hint
	return &cp
}

// ServerNotFound builds the ServerNotFound(name) error with an actionable
// hint listing the servers that are actually configured.
func ServerNotFound(name string, available []string) *Error {
	hint := "no servers configured"
	if len(available) > 0 {
		hint = fmt.Sprintf("available: %v", available)
	}
	return &Error{
		Kind:    KindServerNotFound,
		Server:  name,
		Message: fmt.Sprintf("server %q not found", name),
		Hint:    hint,
	}
}

// ToolNotFound builds the ToolNotFound(server, tool) error.
func ToolNotFound(server, tool string) *Error {
	return &Error{
		Kind:    KindToolNotFound,
		Server:  server,
		Tool:    tool,
		Message: fmt.Sprintf("tool %q not advertised by server %q", tool, server),
		Hint:    "run 'mcpmux list' to see available tools",
	}
}

// InvalidArguments builds the InvalidArguments(server, tool, reason) error.
func InvalidArguments(server, tool, reason string) *Error {
	return &Error{
		Kind:    KindInvalidArguments,
		Server:  server,
		Tool:    tool,
		Message: reason,
	}
}

// ConnectionError builds a retriable ConnectionError(server, cause).
func ConnectionError(server string, cause error) *Error {
	return Wrap(KindConnection, server, "", cause).WithHint(
		"the MCP server process or endpoint may be unreachable; it will be retried")
}

// ProtocolError builds a non-retriable ProtocolError(server, cause).
func ProtocolError(server string, cause error) *Error {
	return Wrap(KindProtocol, server, "", cause)
}

// Timeout builds a retriable Timeout(operation) error.
func Timeout(operation string) *Error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf("%s timed out", operation)}
}

// DaemonNotRunning builds the fatal DaemonNotRunning error.
func DaemonNotRunning() *Error {
	return &Error{
		Kind:    KindDaemonNotRunning,
		Message: "no mcpmux daemon is running",
		Hint:    "start one with 'mcpmux daemon', or drop --require-daemon to auto-spawn",
	}
}

// IPCError builds a retriable-during-spawn IpcError(cause).
func IPCError(cause error) *Error {
	return &Error{Kind: KindIPC, Message: cause.Error(), Cause: cause}
}

// Usage builds a CLI-layer UsageError(reason).
func Usage(reason string) *Error {
	return &Error{Kind: KindUsage, Message: reason}
}

// As reports whether err (or something it wraps) is an *Error, returning it.
func As(err error) (*Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
