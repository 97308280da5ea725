package service

import (
	"fmt"

	"github.com/uscript-tools/unreal-dap/internal/wire/command"
)

// Command handling. Commands arrive structured over the wire and are
// re-encoded as the plain strings the host callback accepts. The structure
// exists for validation: a raw string straight off the network would go to
// the host unchecked.
//
// Dispatch runs on the reactor goroutine and completes before the next
// frame is read, so the host sees commands in wire order.
func (s *Service) dispatchCommand(cmd command.Command) {
	s.log.Debugw("dispatching command", "kind", cmd.Kind().String())
	s.inDispatch.Store(true)
	defer s.inDispatch.Store(false)

	switch c := cmd.(type) {
	case command.AddBreakpoint:
		s.callHost(fmt.Sprintf("addbreakpoint %s %d", c.ClassName, c.Line))
	case command.RemoveBreakpoint:
		s.callHost(fmt.Sprintf("removebreakpoint %s %d", c.ClassName, c.Line))
	case command.AddWatch:
		s.callHost("addwatch " + c.VarName)
	case command.RemoveWatch:
		s.callHost("removewatch " + c.VarName)
	case command.ClearWatch:
		s.callHost("clearwatch")
	case command.ChangeStack:
		s.callHost(fmt.Sprintf("changestack %d", c.StackID))
	case command.SetDataWatch:
		s.callHost("setdatawatch " + c.VarName)
	case command.BreakOnNone:
		if c.Break {
			s.callHost("breakonnone 1")
		} else {
			s.callHost("breakonnone 0")
		}
	case command.Break:
		s.callHost("break")
	case command.StopDebugging:
		// The host will answer with the detach log line, but the state must
		// flip first so the sentinel path knows the stop was client driven.
		setState(StateShutdown)
		s.callHost("stopdebugging")
	case command.Go:
		s.callHost("go")
	case command.StepInto:
		s.callHost("stepinto")
	case command.StepOver:
		s.callHost("stepover")
	case command.StepOutOf:
		s.callHost("stepoutof")
	case command.ToggleWatchInfo:
		s.toggleWatchInfo(c.SendWatchInfo)
	default:
		s.log.Errorw("unhandled command kind", "kind", cmd.Kind().String())
	}
}

// toggleWatchInfo is never relayed to the host. The client sends it before
// a silent stack walk: switching frames makes the host resend every watch
// for the new frame, which is pure waste when only a line number is wanted.
func (s *Service) toggleWatchInfo(send bool) {
	s.sendWatchInfo.Store(send)

	if !send {
		s.watchMu.Lock()
		for i := range s.pendingUnlocks {
			s.pendingUnlocks[i] = nil
		}
		s.watchMu.Unlock()
	}
}

// callHost invokes the host callback with one command string.
func (s *Service) callHost(text string) {
	cb := hostCallback()
	if cb == nil {
		s.log.Errorw("host callback not set, dropping command", "command", text)
		return
	}
	cb(text)
}
