package service

import (
	"github.com/uscript-tools/unreal-dap/internal/wire/event"
)

// Event emission for the host entry points. With the exception of
// AddAWatch, communication here is strictly host to client: each entry
// point becomes one event on the wire.

// ShowDllForm forwards the host's break trigger.
func (s *Service) ShowDllForm() {
	s.sendEvent(event.ShowDllForm{})
}

// BuildHierarchy forwards the start of a class hierarchy dump.
func (s *Service) BuildHierarchy() {
	s.sendEvent(event.BuildHierarchy{})
}

// ClearHierarchy forwards a hierarchy reset.
func (s *Service) ClearHierarchy() {
	s.sendEvent(event.ClearHierarchy{})
}

// AddClassToHierarchy forwards one hierarchy entry.
func (s *Service) AddClassToHierarchy(className string) {
	s.sendEvent(event.AddClassToHierarchy{ClassName: className})
}

// ClearAWatch resets the index counter for a watch kind and tells the
// client to empty the corresponding list.
func (s *Service) ClearAWatch(watchKind int) {
	if watchKind < 0 || watchKind >= watchKindCount {
		s.log.Warnw("clear watch for unknown kind", "kind", watchKind)
		return
	}

	s.watchMu.Lock()
	s.watchIndices[watchKind] = 1
	pending := s.pendingUnlocks[watchKind]
	suppressed := !s.sendWatchInfo.Load()
	if !suppressed && pending != nil {
		pending.Watches = nil
	}
	s.watchMu.Unlock()

	if suppressed {
		return
	}
	s.sendEvent(event.ClearAWatch{WatchKind: watchKind})
}

// AddAWatch assigns the next index for the watch kind and buffers the watch
// into the pending unlock batch. This is the only entry point with a return
// value: the host records the returned index and passes it back as the
// parent of any children, so a valid index must be produced synchronously
// even while watch traffic is suppressed.
func (s *Service) AddAWatch(watchKind, parent int, name, value string) int {
	if watchKind < 0 || watchKind >= watchKindCount {
		s.log.Warnw("add watch for unknown kind", "kind", watchKind)
		return 0
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	idx := s.watchIndices[watchKind]
	s.watchIndices[watchKind]++

	if !s.sendWatchInfo.Load() {
		return idx
	}

	pending := s.pendingUnlocks[watchKind]
	if pending == nil {
		// The host always brackets AddAWatch in LockList/UnlockList; an
		// unbracketed watch still gets batched so nothing is lost.
		s.log.Warnw("watch added outside a lock, opening implicit batch", "kind", watchKind)
		pending = &event.UnlockList{WatchKind: watchKind}
		s.pendingUnlocks[watchKind] = pending
	}

	pending.Watches = append(pending.Watches, event.Watch{
		ParentIndex:   parent,
		AssignedIndex: idx,
		Name:          name,
		Value:         value,
	})
	return idx
}

// LockList opens a watch batch. Watches received until the matching
// UnlockList are buffered into a single unlock_list event, because the host
// delivers watches one call at a time and sending each individually would
// flood the wire.
func (s *Service) LockList(watchKind int) {
	if watchKind < 0 || watchKind >= watchKindCount {
		s.log.Warnw("lock list for unknown kind", "kind", watchKind)
		return
	}

	s.watchMu.Lock()
	suppressed := !s.sendWatchInfo.Load()
	if !suppressed {
		if s.pendingUnlocks[watchKind] != nil {
			s.log.Warnw("lock list while a batch is already open", "kind", watchKind)
		}
		s.pendingUnlocks[watchKind] = &event.UnlockList{WatchKind: watchKind}
	}
	s.watchMu.Unlock()

	if suppressed {
		return
	}
	s.sendEvent(event.LockList{WatchKind: watchKind})
}

// UnlockList closes a watch batch and sends it.
func (s *Service) UnlockList(watchKind int) {
	if watchKind < 0 || watchKind >= watchKindCount {
		s.log.Warnw("unlock list for unknown kind", "kind", watchKind)
		return
	}

	s.watchMu.Lock()
	suppressed := !s.sendWatchInfo.Load()
	pending := s.pendingUnlocks[watchKind]
	s.pendingUnlocks[watchKind] = nil
	s.watchMu.Unlock()

	if suppressed || pending == nil {
		return
	}
	s.sendEvent(*pending)
}

// AddBreakpoint forwards the host's acknowledgement of a breakpoint.
func (s *Service) AddBreakpoint(className string, line int) {
	s.sendEvent(event.AddBreakpoint{ClassName: className, Line: line})
}

// RemoveBreakpoint forwards the host's acknowledgement of a removal.
func (s *Service) RemoveBreakpoint(className string, line int) {
	s.sendEvent(event.RemoveBreakpoint{ClassName: className, Line: line})
}

// EditorLoadClass forwards the class of the frame being presented.
func (s *Service) EditorLoadClass(className string) {
	s.sendEvent(event.EditorLoadClass{ClassName: className})
}

// EditorGotoLine forwards the line for the class from EditorLoadClass.
func (s *Service) EditorGotoLine(line, highlight int) {
	s.sendEvent(event.EditorGotoLine{Line: line, Highlight: highlight != 0})
}

// AddLineToLog forwards one host log line.
func (s *Service) AddLineToLog(text string) {
	s.sendEvent(event.AddLineToLog{Text: text})
}

// CallStackClear forwards the start of a stack dump.
func (s *Service) CallStackClear() {
	s.sendEvent(event.CallStackClear{})
}

// CallStackAdd forwards one stack entry, outermost first.
func (s *Service) CallStackAdd(entry string) {
	s.sendEvent(event.CallStackAdd{Entry: entry})
}

// SetCurrentObjectName forwards the object whose method is executing.
func (s *Service) SetCurrentObjectName(objectName string) {
	s.sendEvent(event.SetCurrentObjectName{ObjectName: objectName})
}

// sendTerminated tells the client the interface is going away.
func (s *Service) sendTerminated() {
	s.sendEvent(event.Terminated{})
}
