package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Stdio is a Transport over a child process's stdin/stdout, generalized
// from the teacher's discovery.StdioWorker. Requests are written as a
// single newline-terminated line of compact JSON (pretty-printing is
// forbidden, spec.md §4.1); responses are read one line at a time and
// correlated by id.
//
// Stdio holds no internal mutex of its own: spec.md §4.3 makes per-connection
// serialization the pool's responsibility (one mutex guarding the whole
// send/receive cycle), so a bare Stdio is only safe for one in-flight
// Send/SendNotification call at a time, by contract with its caller.
type Stdio struct {
	command string
	cmd     *exec.Cmd
	guard   processGuard

	stdin  io.WriteCloser
	stdout *bufio.Reader

	nextID atomic.Int64

	closeOnce sync.Once
}

// StdioOptions configures a new Stdio transport.
type StdioOptions struct {
	Command string
	Args    []string
	Env     map[string]string
	Cwd     string

	// StderrSink receives lines from the child's stderr for logging. May be
	// nil to discard.
	StderrSink func(line string)
}

// NewStdio spawns the configured command with piped stdin/stdout and starts
// the transport. The child is launched with platform-specific process-group
// / job-object configuration (stdio_unix.go, stdio_windows.go) so that
// closing the transport reliably terminates the child even if mcpmux itself
// is killed abnormally (spec.md §5, "child-process hygiene").
func NewStdio(ctx context.Context, opts StdioOptions) (*Stdio, error) {
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	configureProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport %s: stdin pipe: %w", opts.Command, err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport %s: stdout pipe: %w", opts.Command, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport %s: stderr pipe: %w", opts.Command, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("stdio transport %s: start: %w", opts.Command, err)
	}

	guard, err := newProcessGuard(cmd)
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("stdio transport %s: process guard: %w", opts.Command, err)
	}

	if opts.StderrSink != nil {
		go func() {
			scanner := bufio.NewScanner(stderrPipe)
			for scanner.Scan() {
				opts.StderrSink(scanner.Text())
			}
		}()
	} else {
		go io.Copy(io.Discard, stderrPipe)
	}

	s := &Stdio{
		command: opts.Command,
		cmd:     cmd,
		guard:   guard,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdoutPipe),
	}
	return s, nil
}

func (s *Stdio) Kind() Kind { return KindStdio }

// Send writes req as a single line and blocks for the correlated response.
// A mismatched response id is a protocol error and the transport should be
// considered unusable (spec.md §4.2).
func (s *Stdio) Send(ctx context.Context, req protocol.Request) (*protocol.Response, error) {
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := s.writeLine(line); err != nil {
		return nil, err
	}

	type result struct {
		resp *protocol.Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := s.stdout.ReadBytes('\n')
		if err != nil {
			ch <- result{err: err}
			return
		}
		var resp protocol.Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			ch <- result{err: fmt.Errorf("malformed response line: %w", err)}
			return
		}
		ch <- result{resp: &resp}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if req.ID != nil && r.resp.ID != *req.ID {
			return nil, fmt.Errorf("response id %d does not match request id %d", r.resp.ID, *req.ID)
		}
		return r.resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendNotification writes req (which must have no id) as a single line and
// does not wait for any response.
func (s *Stdio) SendNotification(ctx context.Context, req protocol.Request) error {
	line, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.writeLine(line)
}

func (s *Stdio) writeLine(line []byte) error {
	line = append(line, '\n')
	_, err := s.stdin.Write(line)
	return err
}

// NextID returns a monotonically increasing id for this transport instance.
func (s *Stdio) NextID() int64 { return s.nextID.Add(1) }

// Close terminates the child process. Graceful SIGTERM/Ctrl-Break is
// attempted first (platform-specific, see stdio_unix.go/stdio_windows.go);
// the process guard forces termination after a short grace window so a
// wedged server can never outlive Close.
func (s *Stdio) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		if s.stdin != nil {
			s.stdin.Close()
		}
		closeErr = s.guard.terminate(2 * time.Second)
	})
	return closeErr
}
