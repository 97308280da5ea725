package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uscript-tools/unreal-dap/internal/debugger"
	"github.com/uscript-tools/unreal-dap/internal/wire"
	"github.com/uscript-tools/unreal-dap/internal/wire/command"
	"github.com/uscript-tools/unreal-dap/internal/wire/event"
)

// recordingSink captures sink callbacks on channels so tests can block on
// them without racing the reactor.
type recordingSink struct {
	stopped    chan string
	output     chan string
	terminated chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		stopped:    make(chan string, 8),
		output:     make(chan string, 8),
		terminated: make(chan struct{}, 8),
	}
}

func (s *recordingSink) Stopped(reason string) { s.stopped <- reason }
func (s *recordingSink) Output(text string)    { s.output <- text }
func (s *recordingSink) Terminated()           { s.terminated <- struct{}{} }

func pumpFixture(t *testing.T) (*Connection, *debugger.Debugger, *recordingSink, net.Conn) {
	t.Helper()
	hostSide, clientSide := net.Pipe()
	dbg := debugger.New(nil)
	sink := newRecordingSink()
	conn := NewConnection(clientSide, dbg, nil)
	conn.SetSink(sink)
	t.Cleanup(func() {
		hostSide.Close()
		conn.Close()
	})
	return conn, dbg, sink, hostSide
}

func sendEvent(t *testing.T, conn net.Conn, ev event.Event) {
	t.Helper()
	require.NoError(t, wire.WriteFrame(conn, event.Encode(ev)))
}

func TestBreakSequencePump(t *testing.T) {
	t.Parallel()

	conn, dbg, sink, host := pumpFixture(t)
	go conn.Run()

	dbg.SetState(debugger.StateBusy)

	// The host's break ordering: innermost class and line, watches, stack
	// trace outermost-first, object name, then the stopped trigger.
	sendEvent(t, host, event.EditorLoadClass{ClassName: "P.A"})
	sendEvent(t, host, event.EditorGotoLine{Line: 42, Highlight: true})
	sendEvent(t, host, event.LockList{WatchKind: 0})
	sendEvent(t, host, event.UnlockList{WatchKind: 0, Watches: []event.Watch{
		{ParentIndex: -1, AssignedIndex: 1, Name: "v ( Int, 0x0 )", Value: "7"},
	}})
	sendEvent(t, host, event.CallStackClear{})
	sendEvent(t, host, event.CallStackAdd{Entry: "Function P.B:bar"})
	sendEvent(t, host, event.CallStackAdd{Entry: "Function P.A:foo"})
	sendEvent(t, host, event.SetCurrentObjectName{ObjectName: "A_0"})
	sendEvent(t, host, event.ShowDllForm{})

	select {
	case reason := <-sink.stopped:
		assert.Equal(t, "breakpoint", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no stopped notification")
	}

	// The signal released any parked handler and the model is finalized.
	dbg.Signals.BreakpointHit.Wait()
	assert.Equal(t, debugger.StateNormal, dbg.State())

	require.Equal(t, 2, dbg.FrameCount())
	inner := dbg.Frame(0)
	assert.Equal(t, "P.A", inner.ClassName)
	assert.Equal(t, "foo", inner.FunctionName)
	assert.Equal(t, 42, inner.LineNumber)
	assert.Equal(t, 1, inner.LocalWatches.RootChildCount())
	assert.Equal(t, "P.B", dbg.Frame(1).ClassName)
	assert.Equal(t, "A_0", dbg.CurrentObjectName())
}

func TestLineSignalDuringStackWalk(t *testing.T) {
	t.Parallel()

	conn, dbg, _, host := pumpFixture(t)
	go conn.Run()

	dbg.SetState(debugger.StateWaitingForFrameLine)
	dbg.Signals.LineReceived.Reset()

	done := make(chan struct{})
	go func() {
		dbg.Signals.LineReceived.Wait()
		close(done)
	}()

	sendEvent(t, host, event.EditorLoadClass{ClassName: "P.B"})
	sendEvent(t, host, event.EditorGotoLine{Line: 7, Highlight: false})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("line_received signal never fired")
	}
	assert.Equal(t, 7, dbg.Frame(0).LineNumber)
}

func TestWatchRendezvous(t *testing.T) {
	t.Parallel()

	conn, dbg, _, host := pumpFixture(t)
	go conn.Run()

	dbg.SetState(debugger.StateWaitingForFrameWatches)
	dbg.Signals.WatchesReceived.Reset()

	done := make(chan struct{})
	go func() {
		dbg.Signals.WatchesReceived.Wait()
		close(done)
	}()

	sendEvent(t, host, event.LockList{WatchKind: 0})
	sendEvent(t, host, event.UnlockList{WatchKind: 0, Watches: []event.Watch{
		{ParentIndex: -1, AssignedIndex: 1, Name: "a ( Int, 0x0 )", Value: "1"},
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watches_received signal never fired")
	}
	assert.True(t, dbg.Frame(0).FetchedWatches)
}

func TestBreakpointEcho(t *testing.T) {
	t.Parallel()

	conn, dbg, _, host := pumpFixture(t)
	go conn.Run()

	dbg.SetState(debugger.StateWaitingForAddBreakpoint)
	dbg.Signals.BreakpointAdded.Reset()

	done := make(chan struct{})
	go func() {
		dbg.Signals.BreakpointAdded.Wait()
		close(done)
	}()

	sendEvent(t, host, event.AddBreakpoint{ClassName: "P.A", Line: 10})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("breakpoint_added signal never fired")
	}
	assert.Equal(t, []int{10}, dbg.Breakpoints("P.A"))

	sendEvent(t, host, event.RemoveBreakpoint{ClassName: "P.A", Line: 10})
	require.Eventually(t, func() bool { return len(dbg.Breakpoints("P.A")) == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestLogLineForwarded(t *testing.T) {
	t.Parallel()

	conn, _, sink, host := pumpFixture(t)
	go conn.Run()

	sendEvent(t, host, event.AddLineToLog{Text: "Log: hello"})
	select {
	case text := <-sink.output:
		assert.Equal(t, "Log: hello", text)
	case <-time.After(2 * time.Second):
		t.Fatal("log line not forwarded")
	}
}

func TestTerminatedEvent(t *testing.T) {
	t.Parallel()

	conn, _, sink, host := pumpFixture(t)
	go conn.Run()

	sendEvent(t, host, event.Terminated{})
	select {
	case <-sink.terminated:
	case <-time.After(2 * time.Second):
		t.Fatal("terminated not forwarded")
	}
}

func TestConnectionLossEmitsTerminated(t *testing.T) {
	t.Parallel()

	conn, _, sink, host := pumpFixture(t)
	errCh := make(chan error, 1)
	go func() { errCh <- conn.Run() }()

	host.Close()

	select {
	case <-sink.terminated:
	case <-time.After(2 * time.Second):
		t.Fatal("no terminated after connection loss")
	}
	select {
	case err := <-errCh:
		assert.NoError(t, err, "clean EOF is not an error")
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestCommandSenders(t *testing.T) {
	t.Parallel()

	conn, _, _, host := pumpFixture(t)

	conn.AddBreakpoint("P.A", 10)
	conn.ChangeStack(1)
	conn.ToggleWatchInfo(false)
	conn.Go()

	expect := []command.Command{
		command.AddBreakpoint{ClassName: "P.A", Line: 10},
		command.ChangeStack{StackID: 1},
		command.ToggleWatchInfo{SendWatchInfo: false},
		command.Go{},
	}
	for _, want := range expect {
		host.SetReadDeadline(time.Now().Add(2 * time.Second))
		msg, err := wire.ReadFrame(host)
		require.NoError(t, err)
		got, err := command.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
