// Package adapter hosts the DAP side of the debugger client: the transport
// to the editor, the session loop, and the request handlers that drive the
// interface connection on the editor's behalf.
package adapter

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/go-dap"
)

// Transport frames DAP messages over TCP or stdio. Reads belong to the
// session loop; writes may come from any handler goroutine and are
// serialized by the transport's lock.
type Transport struct {
	conn   io.Closer
	reader *bufio.Reader
	writer *bufio.Writer

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewConnTransport wraps an accepted editor connection.
func NewConnTransport(conn net.Conn) *Transport {
	return &Transport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// NewStdioTransport speaks DAP over the process's stdin and stdout. The
// caller must keep stdout clean: all logging goes elsewhere.
func NewStdioTransport(stdin io.ReadCloser, stdout io.WriteCloser) *Transport {
	return &Transport{
		conn:   &stdioCloser{stdin: stdin, stdout: stdout},
		reader: bufio.NewReader(stdin),
		writer: bufio.NewWriter(stdout),
	}
}

type stdioCloser struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

func (s *stdioCloser) Close() error {
	err := s.stdin.Close()
	if err2 := s.stdout.Close(); err == nil {
		err = err2
	}
	return err
}

// Send writes one DAP message and flushes it.
func (t *Transport) Send(msg dap.Message) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := dap.WriteProtocolMessage(t.writer, msg); err != nil {
		return fmt.Errorf("writing DAP message: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flushing DAP message: %w", err)
	}
	return nil
}

// Receive blocks until the next DAP message arrives.
func (t *Transport) Receive() (dap.Message, error) {
	msg, err := dap.ReadProtocolMessage(t.reader)
	if err != nil {
		return nil, fmt.Errorf("reading DAP message: %w", err)
	}
	return msg, nil
}

// Close shuts the transport down, failing any blocked Receive.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
