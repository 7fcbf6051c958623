// Command mock_stdio_server is a minimal MCP server speaking
// newline-delimited JSON-RPC 2.0 over stdin/stdout, used by
// internal/transport and internal/pool tests to exercise the Stdio
// transport against a real child process rather than a mock in memory.
//
// It supports initialize, notifications/initialized, tools/list, and two
// tools/call targets: "echo" and "sleep" (which blocks for the requested
// number of milliseconds before replying, letting tests exercise a
// per-call timeout against a real child process). Generalized from the
// teacher's tests/fixtures/mock_mcp_server.go (an HTTP mock) into a
// stdio-speaking sibling, since spec.md's hard Stdio path has no HTTP
// equivalent to reuse.
package main

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func main() {
	in := bufio.NewReader(os.Stdin)
	out := os.Stdout

	for {
		line, err := in.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		if req.ID == nil {
			// Notification; nothing to reply to.
			continue
		}

		resp := handle(req)
		encoded, _ := json.Marshal(resp)
		encoded = append(encoded, '\n')
		out.Write(encoded)

		if err != nil {
			return
		}
	}
}

func handle(req request) response {
	switch req.Method {
	case "initialize":
		return response{JSONRPC: "2.0", ID: *req.ID, Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo":      map[string]string{"name": "mock-stdio-server", "version": "0.0.1"},
		}}
	case "tools/list":
		return response{JSONRPC: "2.0", ID: *req.ID, Result: map[string]interface{}{
			"tools": []map[string]interface{}{
				{
					"name":        "echo",
					"description": "echoes the text argument back",
					"inputSchema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"text": map[string]interface{}{"type": "string"},
						},
					},
				},
				{
					"name":        "sleep",
					"description": "blocks for the given number of milliseconds before replying",
					"inputSchema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"ms": map[string]interface{}{"type": "number"},
						},
					},
				},
			},
		}}
	case "tools/call":
		var p callParams
		json.Unmarshal(req.Params, &p)
		switch p.Name {
		case "echo":
			text, _ := p.Arguments["text"].(string)
			return response{JSONRPC: "2.0", ID: *req.ID, Result: map[string]interface{}{
				"content": []map[string]interface{}{{"type": "text", "text": text}},
			}}
		case "sleep":
			ms, _ := p.Arguments["ms"].(float64)
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return response{JSONRPC: "2.0", ID: *req.ID, Result: map[string]interface{}{
				"content": []map[string]interface{}{{"type": "text", "text": "awake"}},
			}}
		default:
			return response{JSONRPC: "2.0", ID: *req.ID, Error: &rpcError{Code: -32601, Message: "unknown tool"}}
		}
	default:
		return response{JSONRPC: "2.0", ID: *req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}}
	}
}
