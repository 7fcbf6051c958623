package commands

import "testing"

func TestResolveCallArgs_PositionalJSON(t *testing.T) {
	raw, err := resolveCallArgs("echo", "ping", []string{`{"text":"hi"}`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"text":"hi"}` {
		t.Fatalf("got %q", raw)
	}
}

func TestResolveCallArgs_InvalidPositionalJSONErrors(t *testing.T) {
	_, err := resolveCallArgs("echo", "ping", []string{`{not json`})
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
