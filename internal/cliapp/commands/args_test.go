package commands

import "testing"

func TestParseServerTool_CombinedForm(t *testing.T) {
	server, tool, rest, err := parseServerTool([]string{"echo/ping", `{"a":1}`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server != "echo" || tool != "ping" {
		t.Fatalf("got server=%q tool=%q, want echo/ping", server, tool)
	}
	if len(rest) != 1 || rest[0] != `{"a":1}` {
		t.Fatalf("unexpected rest: %v", rest)
	}
}

func TestParseServerTool_TwoWordForm(t *testing.T) {
	server, tool, rest, err := parseServerTool([]string{"echo", "ping", `{"a":1}`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server != "echo" || tool != "ping" {
		t.Fatalf("got server=%q tool=%q, want echo ping", server, tool)
	}
	if len(rest) != 1 || rest[0] != `{"a":1}` {
		t.Fatalf("unexpected rest: %v", rest)
	}
}

func TestParseServerTool_ToolNameWithSlashTakesCombinedForm(t *testing.T) {
	server, tool, _, err := parseServerTool([]string{"fs/tools/read"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server != "fs" || tool != "tools/read" {
		t.Fatalf("got server=%q tool=%q, want fs tools/read", server, tool)
	}
}

func TestParseServerTool_MissingToolErrors(t *testing.T) {
	_, _, _, err := parseServerTool([]string{"echo"})
	if err == nil {
		t.Fatal("expected an error for a lone server name with no tool")
	}
}

func TestParseServerTool_EmptyArgsErrors(t *testing.T) {
	_, _, _, err := parseServerTool(nil)
	if err == nil {
		t.Fatal("expected an error for no arguments")
	}
}
