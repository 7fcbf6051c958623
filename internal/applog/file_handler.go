package applog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// fileChanBuffer matches the teacher's logChan capacity; entries are
// dropped rather than blocking the caller when the worker falls behind.
const fileChanBuffer = 100

type fileRecord struct {
	Time    string            `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// fileCore is the state shared across every fileHandler value produced by
// WithAttrs/WithGroup from one newFileHandler call. It is kept separate
// from fileHandler itself so cloning for WithAttrs never copies the mutex.
type fileCore struct {
	level *slog.LevelVar

	ch         chan fileRecord
	done       chan struct{}
	workerDone chan struct{}

	mu      sync.Mutex
	path    string
	file    *os.File
	maxSize int64
}

// fileHandler is a slog.Handler that serializes records to JSON lines on
// an async worker goroutine, rotating (truncate and mark) past maxSize.
// This is the teacher's logWorker/writeEntry pair generalized from its
// fixed LogEntry type to an slog.Record's arbitrary attrs.
type fileHandler struct {
	core *fileCore

	attrs  []slog.Attr
	groups []string
}

func newFileHandler(path string, maxSize int64, level *slog.LevelVar) (*fileHandler, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	core := &fileCore{
		level:      level,
		ch:         make(chan fileRecord, fileChanBuffer),
		done:       make(chan struct{}),
		workerDone: make(chan struct{}),
		path:       path,
		file:       f,
		maxSize:    maxSize,
	}
	go core.worker()
	return &fileHandler{core: core}, nil
}

func (h *fileHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.core.level.Level()
}

func (h *fileHandler) Handle(_ context.Context, record slog.Record) error {
	fr := fileRecord{
		Time:    record.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Level:   levelLabel(record.Level),
		Message: record.Message,
		Attrs:   flattenToStrings(h.groups, h.attrs, record),
	}
	select {
	case h.core.ch <- fr:
	default:
		// Worker is behind; drop rather than block the logging call.
	}
	return nil
}

func (h *fileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fileHandler{
		core:   h.core,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *fileHandler) WithGroup(name string) slog.Handler {
	return &fileHandler{
		core:   h.core,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

func (c *fileCore) worker() {
	defer close(c.workerDone)
	for {
		select {
		case fr := <-c.ch:
			c.write(fr)
		case <-c.done:
			for {
				select {
				case fr := <-c.ch:
					c.write(fr)
				default:
					return
				}
			}
		}
	}
}

func (c *fileCore) write(fr fileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return
	}

	if info, err := c.file.Stat(); err == nil && info.Size() > c.maxSize {
		c.file.Close()
		f, err := os.OpenFile(c.path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			c.file = nil
			return
		}
		c.file = f
		marker, _ := json.Marshal(fileRecord{
			Time:    fr.Time,
			Level:   "INFO",
			Message: "log file reached size limit and was rotated",
		})
		c.file.Write(marker)
		c.file.Write([]byte("\n"))
	}

	data, err := json.Marshal(fr)
	if err != nil {
		return
	}
	c.file.Write(data)
	c.file.Write([]byte("\n"))
}

// Close stops the worker, flushing any queued records, and closes the
// underlying file. Safe to call once per Logger.
func (h *fileHandler) Close() error {
	close(h.core.done)
	<-h.core.workerDone

	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	if h.core.file == nil {
		return nil
	}
	err := h.core.file.Close()
	h.core.file = nil
	return err
}
