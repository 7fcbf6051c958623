// Package ipc implements the daemon's local transport: a Unix domain
// socket on POSIX, a named pipe on Windows, and a newline-delimited JSON
// frame codec carrying the RequestFrame/ResponseFrame pairs defined in
// internal/protocol.
//
// Grounded on the autotidy example's internal/ipc (Client/Server pair
// dialing/listening on a platform socket), adapted from net/rpc/jsonrpc's
// method-call convention to this spec's own tagged request/response
// frames, since the daemon here multiplexes tool calls rather than
// exposing a handful of named RPC methods.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// maxFrameBytes is the largest frame readFrame will decode. The check runs
// after the whole line has been read, so it does not limit the memory used
// while reading, and no read deadline is applied here.
const maxFrameBytes = 16 << 20

// WriteRequestFrame encodes f as a single newline-terminated line of
// compact JSON. The wire invariant (spec.md §4.4) is that an encoded
// frame never contains an embedded newline; compact encoding/json output
// never emits literal newlines inside string values (it escapes them as
// \n), so appending a single trailing '\n' is always an unambiguous
// frame delimiter.
func WriteRequestFrame(w io.Writer, f protocol.RequestFrame) error {
	return writeFrame(w, f)
}

// WriteResponseFrame encodes f the same way as WriteRequestFrame.
func WriteResponseFrame(w io.Writer, f protocol.ResponseFrame) error {
	return writeFrame(w, f)
}

func writeFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ipc: encode frame: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadRequestFrame reads one newline-delimited frame and decodes it as a
// RequestFrame.
func ReadRequestFrame(r *bufio.Reader) (protocol.RequestFrame, error) {
	var f protocol.RequestFrame
	if err := readFrame(r, &f); err != nil {
		return protocol.RequestFrame{}, err
	}
	return f, f.Validate()
}

// ReadResponseFrame reads one newline-delimited frame and decodes it as a
// ResponseFrame.
func ReadResponseFrame(r *bufio.Reader) (protocol.ResponseFrame, error) {
	var f protocol.ResponseFrame
	if err := readFrame(r, &f); err != nil {
		return protocol.ResponseFrame{}, err
	}
	return f, f.Validate()
}

func readFrame(r *bufio.Reader, v any) error {
	line, err := r.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return err
	}
	if len(line) > maxFrameBytes {
		return fmt.Errorf("ipc: frame exceeds %d bytes", maxFrameBytes)
	}
	if jsonErr := json.Unmarshal(line, v); jsonErr != nil {
		return fmt.Errorf("ipc: decode frame: %w", jsonErr)
	}
	return nil
}
