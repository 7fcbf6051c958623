package applog

import (
	"context"
	"log/slog"
	"regexp"
)

// secretPattern redacts anything that looks like a bearer-style API key.
// Generalized from the teacher's sk-scooter-specific regex to the sk-
// prefix convention used across MCP server credentials generally, since
// mcpmux proxies an arbitrary set of configured servers rather than one
// product's own key format.
var secretPattern = regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`)

const redacted = "sk-REDACTED"

func redactString(s string) string {
	return secretPattern.ReplaceAllString(s, redacted)
}

// redactingHandler wraps another handler and redacts the message and every
// string-valued attribute before the record reaches it. It sits outermost
// in the handler chain so every sink (console, file, ring) sees the same
// redacted text.
type redactingHandler struct {
	next slog.Handler
}

func newRedactingHandler(next slog.Handler) slog.Handler {
	return &redactingHandler{next: next}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clone := slog.NewRecord(record.Time, record.Level, redactString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		clone.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, clone)
}

func redactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindString {
		return slog.String(a.Key, redactString(v.String()))
	}
	return a
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted)}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name)}
}
