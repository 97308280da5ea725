package client

import (
	"fmt"

	"github.com/uscript-tools/unreal-dap/internal/debugger"
	"github.com/uscript-tools/unreal-dap/internal/wire"
	"github.com/uscript-tools/unreal-dap/internal/wire/event"
)

// dispatchFrame decodes and applies one event from the interface. This runs
// on the reactor goroutine only, so model mutations are serialized.
func (c *Connection) dispatchFrame(msg wire.Message) error {
	ev, err := event.Decode(msg)
	if err != nil {
		return fmt.Errorf("dispatching event: %w", err)
	}
	c.log.Debugw("received event", "kind", ev.Kind().String())
	c.dispatchEvent(ev)
	return nil
}

func (c *Connection) dispatchEvent(ev event.Event) {
	switch e := ev.(type) {
	case event.ShowDllForm:
		// End of the break sequence: the stack is complete, the debuggee is
		// stopped, and waiting handlers may query the model.
		c.dbg.FinalizeCallStack()
		c.dbg.SetState(debugger.StateNormal)
		c.dbg.Signals.BreakpointHit.Fire()
		c.sink.Stopped("breakpoint")

	case event.BuildHierarchy, event.ClearHierarchy, event.AddClassToHierarchy:
		// Class hierarchy traffic has no DAP surface.

	case event.LockList:
		c.dbg.LockWatchList()

	case event.UnlockList:
		kind := watchKindFromWire(e.WatchKind)
		for _, w := range e.Watches {
			c.dbg.AddWatch(kind, w.AssignedIndex, w.ParentIndex, w.Name, w.Value)
		}
		if c.dbg.UnlockWatchList() {
			switch c.dbg.State() {
			case debugger.StateWaitingForFrameWatches:
				c.dbg.MarkFrameWatchesFetched()
				c.dbg.Signals.WatchesReceived.Fire()
			case debugger.StateWaitingForUserWatches:
				c.dbg.Signals.UserWatchesReceived.Fire()
			}
		}

	case event.ClearAWatch:
		c.dbg.ClearWatches(watchKindFromWire(e.WatchKind))

	case event.AddBreakpoint:
		c.dbg.RecordBreakpoint(e.ClassName, e.Line)
		if c.dbg.State() == debugger.StateWaitingForAddBreakpoint {
			c.dbg.Signals.BreakpointAdded.Fire()
		}

	case event.RemoveBreakpoint:
		c.dbg.ForgetBreakpoint(e.ClassName, e.Line)

	case event.EditorLoadClass:
		c.dbg.SetFrameClass(e.ClassName)

	case event.EditorGotoLine:
		c.dbg.SetFrameLine(e.Line)
		if c.dbg.State() == debugger.StateWaitingForFrameLine {
			c.dbg.Signals.LineReceived.Fire()
		}

	case event.AddLineToLog:
		c.sink.Output(e.Text)

	case event.CallStackClear:
		c.dbg.ClearCallStack()

	case event.CallStackAdd:
		c.dbg.AddCallStack(e.Entry)

	case event.SetCurrentObjectName:
		c.dbg.SetCurrentObjectName(e.ObjectName)

	case event.Terminated:
		c.sink.Terminated()

	default:
		c.log.Warnw("unhandled event kind", "kind", ev.Kind().String())
	}
}

// watchKindFromWire maps the host's watch list numbering onto the model's.
func watchKindFromWire(k int) debugger.WatchKind {
	switch k {
	case 0:
		return debugger.WatchLocal
	case 1:
		return debugger.WatchGlobal
	default:
		return debugger.WatchUser
	}
}
