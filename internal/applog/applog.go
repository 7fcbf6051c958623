// Package applog is mcpmux's structured logging ambient stack: a
// log/slog.Handler that fans a record out to a console writer, a
// size-rotated JSON log file, and an in-memory ring buffer with pub/sub
// subscriber channels, redacting anything that looks like a secret along
// the way.
//
// It generalizes the teacher's internal/logger package (global
// ring-buffer-plus-async-file-writer-plus-pub/sub logger, keyed on a
// package-level LogEntry type and a hand-rolled []byte worker channel) into
// a real slog.Handler so every package in this module can log through the
// standard *slog.Logger instead of a bespoke AddLog(level, message) call.
// The handler composition (console/file/ring as independent slog.Handlers
// combined by a tee) follows five82-spindle's internal/logging package,
// which solves the same "one Logger, several sinks" problem with a
// fanoutHandler; applog's multiHandler plays that role here, trimmed to
// mcpmux's needs (no disc/media-specific field highlighting).
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures New. Zero value is a usable default: level from
// MCP_LOG (info when unset), ring buffer and subscriber hub only, no
// console, no file.
type Options struct {
	// Level overrides MCP_LOG. Empty means resolve from the environment.
	Level string

	// FilePath, if non-empty, enables the rotating JSON file sink.
	FilePath string

	// MaxFileBytes caps the file sink before it rotates (truncate-and-mark,
	// matching the teacher's 5MB behavior). Zero uses DefaultMaxFileBytes.
	MaxFileBytes int64

	// Console, if true, enables the console sink. The daemon sets it only
	// under --foreground; otherwise it logs to the file and ring only.
	Console bool

	// ConsoleWriter overrides the console sink's writer. Defaults to
	// os.Stderr.
	ConsoleWriter io.Writer

	// RingCapacity caps the in-memory entry buffer. Zero uses
	// DefaultRingCapacity.
	RingCapacity int
}

// DefaultMaxFileBytes matches the teacher's fixed 5MB rotation threshold.
const DefaultMaxFileBytes = 5 * 1024 * 1024

// DefaultRingCapacity matches the teacher's 1000-entry in-memory cap.
const DefaultRingCapacity = 1000

// Logger bundles the constructed *slog.Logger with the side channels
// (ring buffer, subscriber hub) that only applog's own handler knows how
// to populate, plus a Close to stop the async file writer cleanly.
type Logger struct {
	*slog.Logger

	ring *Ring
	hub  *Hub
	file *fileHandler
}

// New builds a Logger from opts. The returned Logger must be closed to
// flush and close the file sink, if one was configured.
func New(opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	if opts.Level != "" {
		level.Set(parseLevel(opts.Level))
	} else {
		level.Set(LevelFromEnv())
	}

	ring := NewRing(positiveOr(opts.RingCapacity, DefaultRingCapacity))
	hub := NewHub()

	var handlers []slog.Handler
	handlers = append(handlers, newRingHandler(ring, hub, level))

	if opts.Console {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, newConsoleHandler(w, level))
	}

	var fh *fileHandler
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, err
		}
		var err error
		fh, err = newFileHandler(opts.FilePath, positiveOr64(opts.MaxFileBytes, DefaultMaxFileBytes), level)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, fh)
	}

	root := newRedactingHandler(newMultiHandler(handlers...))

	return &Logger{
		Logger: slog.New(root),
		ring:   ring,
		hub:    hub,
		file:   fh,
	}, nil
}

// Entries returns a snapshot of the in-memory ring buffer, oldest first.
func (l *Logger) Entries() []Entry {
	return l.ring.Snapshot()
}

// Subscribe returns a channel that receives every future log Entry. The
// channel must be passed to Unsubscribe when the caller is done with it.
func (l *Logger) Subscribe() chan Entry {
	return l.hub.Subscribe()
}

// Unsubscribe stops delivery to ch and closes it.
func (l *Logger) Unsubscribe(ch chan Entry) {
	l.hub.Unsubscribe(ch)
}

// Close stops the file sink's worker goroutine and closes the file, if
// one was configured. Safe to call on a Logger built without a file sink.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func positiveOr64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}
