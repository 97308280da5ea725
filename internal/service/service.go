// Package service implements the in-host side of the debugger bridge. It is
// loaded into the game process, accepts a single TCP connection from the
// debugger client, serializes host entry-point invocations into events, and
// renders inbound commands as the callback strings the host understands.
//
// Host entry points arrive on threads the host owns, on a schedule it does
// not document. A single reactor goroutine owns the socket: it reads
// command frames and dispatches each to the host callback before reading
// the next. Outgoing events ride the send queue, whose empty-transition
// contract decides which goroutine drains it.
package service

import (
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uscript-tools/unreal-dap/internal/wire"
	"github.com/uscript-tools/unreal-dap/internal/wire/command"
	"github.com/uscript-tools/unreal-dap/internal/wire/event"
)

// DefaultPort is the TCP port the interface listens on for the debugger
// client. UCDEBUG_PORT overrides it.
const DefaultPort = 10077

// State is the lifecycle state of the interface service. It is process
// global: the host's entry points have no handle to pass around, so the
// state is the one place every entry consults before doing anything.
type State int32

const (
	// StateStopped means the service is not running or hit an error. The
	// next entry point tears down any remains and starts a fresh service.
	StateStopped State = iota
	// StateDisconnected means the service is listening with no peer.
	StateDisconnected
	// StateConnected means a debugger client is attached and entry points
	// emit events.
	StateConnected
	// StateShutdown means a stop was requested. The service is torn down
	// and never restarted.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// watchKindCount is the number of independent watch lists the host locks.
const watchKindCount = 3

// Service carries everything owned by one incarnation of the interface:
// the listener, the accepted connection, the send queue, and the watch
// batching state.
type Service struct {
	log *zap.SugaredLogger
	id  string

	listener net.Listener

	connMu sync.Mutex
	conn   net.Conn

	sendQueue wire.SendQueue

	// watchMu guards the index counters and pending batches. Indices are
	// assigned on host threads; the reactor clears pending batches when the
	// client toggles watch info off.
	watchMu        sync.Mutex
	watchIndices   [watchKindCount]int
	pendingUnlocks [watchKindCount]*event.UnlockList

	// sendWatchInfo gates all watch traffic. Cleared by the client's
	// toggle_watch_info command during silent stack walks.
	sendWatchInfo atomic.Bool

	// inDispatch is set while the reactor runs a host callback. The host
	// can re-enter an entry point synchronously from the callback (the
	// stopdebugging command triggers the detach log line this way); a gate
	// teardown on that path must not join the reactor it is running on.
	inDispatch atomic.Bool

	stopOnce sync.Once
	done     chan struct{}
}

func newService(log *zap.SugaredLogger) *Service {
	s := &Service{
		log:  log,
		id:   uuid.New().String(),
		done: make(chan struct{}),
	}
	for i := range s.watchIndices {
		s.watchIndices[i] = 1
	}
	s.sendWatchInfo.Store(true)
	return s
}

func listenPort() int {
	if v := os.Getenv("UCDEBUG_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 && port < 1<<16 {
			return port
		}
	}
	return DefaultPort
}

// start opens the listener and launches the reactor goroutine.
func (s *Service) start() error {
	return s.startWithAddr(fmt.Sprintf("127.0.0.1:%d", listenPort()))
}

func (s *Service) startWithAddr(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = l
	s.log.Infow("debugger interface listening", "addr", addr, "service", s.id)

	go s.run()
	return nil
}

// run is the reactor: accept one client, then read and dispatch commands
// until the connection dies or shutdown is requested.
func (s *Service) run() {
	defer close(s.done)

	conn, err := s.listener.Accept()
	if err != nil {
		s.fatalError(fmt.Errorf("accepting debugger connection: %w", err))
		return
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	setState(StateConnected)
	s.log.Infow("debugger client connected", "peer", conn.RemoteAddr().String(), "service", s.id)

	for {
		msg, err := wire.ReadFrame(conn)
		if err != nil {
			if CurrentState() == StateShutdown {
				return
			}
			s.fatalError(fmt.Errorf("reading command: %w", err))
			return
		}

		cmd, err := command.Decode(msg)
		if err != nil {
			s.fatalError(fmt.Errorf("decoding command: %w", err))
			return
		}

		s.dispatchCommand(cmd)
	}
}

// sendEvent serializes an event and enqueues it. Events are only emitted
// with a peer attached; before the client connects they are dropped, as the
// host replays everything that matters (breakpoints, watches) on demand.
func (s *Service) sendEvent(ev event.Event) {
	if CurrentState() != StateConnected {
		return
	}
	s.log.Debugw("sending event", "kind", ev.Kind().String())
	if s.sendQueue.Push(event.Encode(ev)) {
		go s.drainSendQueue()
	}
}

// drainSendQueue writes queued messages until the queue reports empty. The
// Push that observed the empty queue scheduled this drain; the final Pop
// retires it.
func (s *Service) drainSendQueue() {
	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()

	for {
		msg := s.sendQueue.Top()
		if err := wire.WriteFrame(conn, msg); err != nil {
			if CurrentState() != StateShutdown {
				s.fatalError(fmt.Errorf("writing event: %w", err))
			}
			return
		}
		if s.sendQueue.Pop() {
			return
		}
	}
}

// fatalError records a transport or protocol failure and stops the reactor.
// The service moves to stopped so the next host entry point rebuilds it;
// a shutdown already in progress stays terminal.
func (s *Service) fatalError(err error) {
	s.log.Errorw("debugger transport error", "error", err, "service", s.id)
	if CurrentState() != StateShutdown {
		setState(StateStopped)
	}
	s.stopIO()
}

// stopIO closes the listener and connection, unblocking the reactor.
func (s *Service) stopIO() {
	s.stopOnce.Do(func() {
		if s.listener != nil {
			s.listener.Close()
		}
		s.connMu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.connMu.Unlock()
	})
}

// waitForDrain gives in-flight sends a moment to reach the wire, used on
// clean shutdown so the terminated event is not cut off by the close.
func (s *Service) waitForDrain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for s.sendQueue.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}
