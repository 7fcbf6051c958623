// Package fixtures provides test doubles shared by internal/transport,
// internal/pool, and tests/scenarios: a real child-process MCP server
// (mock_stdio_server) and an HTTP mock server, generalized from the
// teacher's tests/fixtures/mock_mcp_server.go.
package fixtures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// BuildStdioServer compiles tests/fixtures/mock_stdio_server into a
// temporary binary and returns its path. Building per-test keeps the
// fixture in sync with its source without checking in a prebuilt binary.
func BuildStdioServer(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("fixtures: could not determine source location")
	}
	srcDir := filepath.Join(filepath.Dir(thisFile), "mock_stdio_server")

	binPath := filepath.Join(t.TempDir(), "mock_stdio_server")
	if runtime.GOOS == "windows" {
		binPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", binPath, srcDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("building mock_stdio_server: %v\n%s", err, out)
	}
	return binPath
}

// BuildMcpmux compiles cmd/mcpmux into a temporary binary and returns its
// path, for end-to-end scenario tests that exec the real CLI rather than
// calling into internal/cliapp directly.
func BuildMcpmux(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("fixtures: could not determine source location")
	}
	srcDir := filepath.Join(filepath.Dir(thisFile), "..", "..", "cmd", "mcpmux")

	binPath := filepath.Join(t.TempDir(), "mcpmux")
	if runtime.GOOS == "windows" {
		binPath += ".exe"
	}

	// cmd/mcpmux belongs to the root module, not this tests module, so the
	// build must run with srcDir as its working directory: a bare
	// filesystem path to a directory outside the caller's own module root
	// is rejected by the go command.
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = srcDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("building mcpmux: %v\n%s", err, out)
	}
	return binPath
}

// ToolsHandler is the subset of handler behavior an HTTP MCP mock needs.
type ToolsHandler func(method string, params json.RawMessage) (result any, rpcErr *RPCError)

// RPCError mirrors protocol.RPCError without importing internal packages,
// keeping this fixture usable from any test package.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int64     `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// NewHTTPServer starts an httptest.Server that dispatches JSON-RPC POST
// bodies to handle, for exercising internal/transport.HTTP.
func NewHTTPServer(handle ToolsHandler) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := handle(req.Method, req.Params)
		id := int64(0)
		if req.ID != nil {
			id = *req.ID
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: id, Result: result, Error: rpcErr})
	}))
}
