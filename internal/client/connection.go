// Package client owns the debugger client's connection to the interface
// service: dialing it, pumping its events into the debuggee model, and
// sending commands on behalf of DAP request handlers.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/uscript-tools/unreal-dap/internal/debugger"
	"github.com/uscript-tools/unreal-dap/internal/wire"
	"github.com/uscript-tools/unreal-dap/internal/wire/command"
)

// DefaultInterfaceAddr is where the interface service listens.
const DefaultInterfaceAddr = "127.0.0.1:10077"

// EventSink receives the session-level consequences of interface events.
// The adapter implements it to surface DAP stopped, output, and terminated
// events.
type EventSink interface {
	// Stopped is called after a break sequence completes and the call stack
	// is finalized.
	Stopped(reason string)
	// Output is called for each host log line.
	Output(text string)
	// Terminated is called when the interface is going away, either by
	// request or because the transport died.
	Terminated()
}

// Connection is the client's half of the bridge socket. A single reactor
// goroutine (Run) reads events and applies them to the model; any goroutine
// may send commands through the send queue.
type Connection struct {
	log  *zap.SugaredLogger
	conn net.Conn
	dbg  *debugger.Debugger
	sink EventSink

	sendQueue wire.SendQueue
	closed    atomic.Bool
}

// nopSink stands in until SetSink wires the adapter up.
type nopSink struct{}

func (nopSink) Stopped(string) {}
func (nopSink) Output(string)  {}
func (nopSink) Terminated()    {}

// Dial connects to the interface service, retrying with exponential backoff
// until the service is up or the context expires. The game loads the
// interface lazily, so the first connection attempt routinely races it.
func Dial(ctx context.Context, addr string, dbg *debugger.Debugger, log *zap.SugaredLogger) (*Connection, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var conn net.Conn
	dial := func() error {
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			log.Debugw("interface not reachable yet", "addr", addr, "error", err)
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(dial, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("connecting to debugger interface at %s: %w", addr, err)
	}

	log.Infow("connected to debugger interface", "addr", addr)
	return &Connection{log: log, conn: conn, dbg: dbg, sink: nopSink{}}, nil
}

// SetSink installs the adapter-side event consumer. Must be called before
// Run.
func (c *Connection) SetSink(sink EventSink) {
	c.sink = sink
}

// NewConnection wraps an already established socket, skipping the dial.
func NewConnection(conn net.Conn, dbg *debugger.Debugger, log *zap.SugaredLogger) *Connection {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Connection{log: log, conn: conn, dbg: dbg, sink: nopSink{}}
}

// Run reads and dispatches events until the connection dies. Event dispatch
// is strictly serial: the next frame is not read until the previous event
// has been applied to the model.
func (c *Connection) Run() error {
	for {
		msg, err := wire.ReadFrame(c.conn)
		if err != nil {
			if c.closed.Load() || err == io.EOF {
				c.log.Infow("interface connection closed")
				c.sink.Terminated()
				return nil
			}
			c.log.Errorw("interface transport error", "error", err)
			c.sink.Terminated()
			return fmt.Errorf("reading event: %w", err)
		}

		if err := c.dispatchFrame(msg); err != nil {
			c.log.Errorw("interface protocol error", "error", err)
			c.sink.Terminated()
			return err
		}
	}
}

// Close tears the socket down; Run returns once its pending read fails.
func (c *Connection) Close() error {
	c.closed.Store(true)
	return c.conn.Close()
}

// send enqueues a command; a push into an empty queue obliges this caller
// to start the drain.
func (c *Connection) send(cmd command.Command) {
	c.log.Debugw("sending command", "kind", cmd.Kind().String())
	if c.sendQueue.Push(command.Encode(cmd)) {
		go c.drainSendQueue()
	}
}

func (c *Connection) drainSendQueue() {
	for {
		msg := c.sendQueue.Top()
		if err := wire.WriteFrame(c.conn, msg); err != nil {
			if !c.closed.Load() {
				c.log.Errorw("sending command failed", "error", err)
			}
			return
		}
		if c.sendQueue.Pop() {
			return
		}
	}
}
