package adapter

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/go-dap"
	"go.uber.org/zap"

	"github.com/uscript-tools/unreal-dap/internal/debugger"
)

// unrealThreadID is the id of the single thread the host exposes.
const unrealThreadID = 1

// Commander is the command surface a session drives on behalf of DAP
// requests. *client.Connection implements it; tests substitute a scripted
// host.
type Commander interface {
	AddBreakpoint(className string, line int)
	RemoveBreakpoint(className string, line int)
	AddWatch(varName string)
	RemoveWatch(varName string)
	ClearWatch()
	ChangeStack(stackID int)
	SetDataWatch(varName string)
	BreakOnNone(b bool)
	Break()
	StopDebugging()
	Go()
	StepInto()
	StepOver()
	StepOutOf()
	ToggleWatchInfo(send bool)
}

// Session is one DAP session with the editor. Requests are serviced on
// their own goroutines and may block on the model's signals; the session
// loop keeps reading while they wait.
type Session struct {
	log     *zap.SugaredLogger
	dbg     *debugger.Debugger
	cmd     Commander
	sources *SourceMap

	transport *Transport
	seq       atomic.Int64

	doneOnce sync.Once
	done     chan struct{}
}

// NewSession builds a session over an open transport.
func NewSession(t *Transport, dbg *debugger.Debugger, cmd Commander, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		log:       log,
		dbg:       dbg,
		cmd:       cmd,
		sources:   NewSourceMap(),
		transport: t,
		done:      make(chan struct{}),
	}
}

// Run reads editor requests until the transport closes or the session is
// terminated. Each request is handled on its own goroutine.
func (s *Session) Run() error {
	readErr := make(chan error, 1)
	go func() {
		for {
			msg, err := s.transport.Receive()
			if err != nil {
				readErr <- err
				return
			}
			go s.handleMessage(msg)
		}
	}()

	select {
	case <-s.done:
		s.transport.Close()
		return nil
	case err := <-readErr:
		s.doneOnce.Do(func() { close(s.done) })
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("DAP session: %w", err)
	}
}

// Terminate ends the session from outside the request loop.
func (s *Session) Terminate() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) nextSeq() int {
	return int(s.seq.Add(1))
}

func (s *Session) sendMessage(msg dap.Message) {
	if err := s.transport.Send(msg); err != nil {
		s.log.Errorw("failed to send DAP message", "error", err)
	}
}

// newResponse builds a successful response shell for a request.
func (s *Session) newResponse(req dap.Request) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "response"},
		Command:         req.Command,
		RequestSeq:      req.Seq,
		Success:         true,
	}
}

// newEvent builds an event shell.
func (s *Session) newEvent(name string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "event"},
		Event:           name,
	}
}

// sendError answers a request with a DAP error response. These are
// session-level failures the editor shows to the user; the session itself
// keeps running.
func (s *Session) sendError(req dap.Request, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	s.log.Warnw("request failed", "command", req.Command, "error", text)
	resp := s.newResponse(req)
	resp.Success = false
	resp.Message = text
	s.sendMessage(&dap.ErrorResponse{
		Response: resp,
		Body: dap.ErrorResponseBody{
			Error: &dap.ErrorMessage{Format: text, ShowUser: true},
		},
	})
}

// EventSink implementation: the interface connection reports here.

// Stopped forwards a completed break to the editor.
func (s *Session) Stopped(reason string) {
	s.sendMessage(&dap.StoppedEvent{
		Event: s.newEvent("stopped"),
		Body: dap.StoppedEventBody{
			Reason:            reason,
			ThreadId:          unrealThreadID,
			AllThreadsStopped: true,
		},
	})
}

// Output forwards a host log line to the editor console.
func (s *Session) Output(text string) {
	s.sendMessage(&dap.OutputEvent{
		Event: s.newEvent("output"),
		Body: dap.OutputEventBody{
			Category: "console",
			Output:   text + "\n",
		},
	})
}

// Terminated tells the editor the debuggee is gone and ends the session.
func (s *Session) Terminated() {
	s.sendMessage(&dap.TerminatedEvent{Event: s.newEvent("terminated")})
	s.Terminate()
}

func (s *Session) handleMessage(msg dap.Message) {
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		s.onInitialize(req)
	case *dap.LaunchRequest:
		s.onLaunch(req)
	case *dap.AttachRequest:
		s.onAttach(req)
	case *dap.ConfigurationDoneRequest:
		s.sendMessage(&dap.ConfigurationDoneResponse{Response: s.newResponse(req.Request)})
	case *dap.SetBreakpointsRequest:
		s.onSetBreakpoints(req)
	case *dap.SetExceptionBreakpointsRequest:
		s.onSetExceptionBreakpoints(req)
	case *dap.ThreadsRequest:
		s.onThreads(req)
	case *dap.StackTraceRequest:
		s.onStackTrace(req)
	case *dap.ScopesRequest:
		s.onScopes(req)
	case *dap.VariablesRequest:
		s.onVariables(req)
	case *dap.EvaluateRequest:
		s.onEvaluate(req)
	case *dap.PauseRequest:
		s.onPause(req)
	case *dap.ContinueRequest:
		s.onContinue(req)
	case *dap.NextRequest:
		s.onNext(req)
	case *dap.StepInRequest:
		s.onStepIn(req)
	case *dap.StepOutRequest:
		s.onStepOut(req)
	case *dap.DisconnectRequest:
		s.onDisconnect(req)
	case dap.RequestMessage:
		s.sendError(*req.GetRequest(), "unsupported request %q", req.GetRequest().Command)
	default:
		s.log.Warnw("ignoring non-request DAP message", "type", fmt.Sprintf("%T", msg))
	}
}
