// Package event defines the messages sent from the debugger interface to
// the debugger client. Each event corresponds to one entry point of the
// interface DLL invoked by Unreal, except Terminated which the interface
// synthesizes during shutdown.
package event

import (
	"fmt"

	"github.com/uscript-tools/unreal-dap/internal/wire"
)

// Kind tags an event message. Values are fixed wire constants.
type Kind byte

const (
	KindShowDllForm Kind = iota
	KindBuildHierarchy
	KindClearHierarchy
	KindAddClassToHierarchy
	KindLockList
	KindUnlockList
	KindClearAWatch
	KindAddBreakpoint
	KindRemoveBreakpoint
	KindEditorLoadClass
	KindEditorGotoLine
	KindAddLineToLog
	KindCallStackClear
	KindCallStackAdd
	KindSetCurrentObjectName
	KindTerminated
)

var kindNames = map[Kind]string{
	KindShowDllForm:          "show_dll_form",
	KindBuildHierarchy:       "build_hierarchy",
	KindClearHierarchy:       "clear_hierarchy",
	KindAddClassToHierarchy:  "add_class_to_hierarchy",
	KindLockList:             "lock_list",
	KindUnlockList:           "unlock_list",
	KindClearAWatch:          "clear_a_watch",
	KindAddBreakpoint:        "add_breakpoint",
	KindRemoveBreakpoint:     "remove_breakpoint",
	KindEditorLoadClass:      "editor_load_class",
	KindEditorGotoLine:       "editor_goto_line",
	KindAddLineToLog:         "add_line_to_log",
	KindCallStackClear:       "call_stack_clear",
	KindCallStackAdd:         "call_stack_add",
	KindSetCurrentObjectName: "set_current_object_name",
	KindTerminated:           "terminated",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", byte(k))
}

// Event is implemented by every event message.
type Event interface {
	Kind() Kind

	// size is the serialized payload length excluding the kind tag.
	size() int
	encode(e *wire.Encoder)
}

// Encode serializes an event into a wire message.
func Encode(ev Event) wire.Message {
	e := wire.NewEncoder(wire.TagSize + ev.size())
	e.PutTag(byte(ev.Kind()))
	ev.encode(e)
	return e.Finish()
}

// Decode parses a wire message into an event. The payload must be consumed
// exactly.
func Decode(m wire.Message) (Event, error) {
	d := wire.NewDecoder(m)
	kind := Kind(d.Tag())

	var ev Event
	switch kind {
	case KindShowDllForm:
		ev = ShowDllForm{}
	case KindBuildHierarchy:
		ev = BuildHierarchy{}
	case KindClearHierarchy:
		ev = ClearHierarchy{}
	case KindAddClassToHierarchy:
		ev = AddClassToHierarchy{ClassName: d.String()}
	case KindLockList:
		ev = LockList{WatchKind: d.Int()}
	case KindUnlockList:
		ul := UnlockList{WatchKind: d.Int()}
		count := d.Int()
		if count < 0 {
			return nil, fmt.Errorf("event: negative watch count %d in unlock_list", count)
		}
		for i := 0; i < count && d.Err() == nil; i++ {
			ul.Watches = append(ul.Watches, decodeWatch(d))
		}
		ev = ul
	case KindClearAWatch:
		ev = ClearAWatch{WatchKind: d.Int()}
	case KindAddBreakpoint:
		ev = AddBreakpoint{ClassName: d.String(), Line: d.Int()}
	case KindRemoveBreakpoint:
		ev = RemoveBreakpoint{ClassName: d.String(), Line: d.Int()}
	case KindEditorLoadClass:
		ev = EditorLoadClass{ClassName: d.String()}
	case KindEditorGotoLine:
		ev = EditorGotoLine{Line: d.Int(), Highlight: d.Bool()}
	case KindAddLineToLog:
		ev = AddLineToLog{Text: d.String()}
	case KindCallStackClear:
		ev = CallStackClear{}
	case KindCallStackAdd:
		ev = CallStackAdd{Entry: d.String()}
	case KindSetCurrentObjectName:
		ev = SetCurrentObjectName{ObjectName: d.String()}
	case KindTerminated:
		ev = Terminated{}
	default:
		return nil, fmt.Errorf("event: unknown kind tag %d", byte(kind))
	}

	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("event: decoding %s: %w", kind, err)
	}
	return ev, nil
}

// Watch is one variable in an unlock_list batch. AssignedIndex is the value
// the interface returned to the host from AddAWatch; ParentIndex is the
// index the host passed in, with -1 meaning a top-level watch.
type Watch struct {
	ParentIndex   int
	AssignedIndex int
	Name          string
	Value         string
}

func (w Watch) size() int {
	return wire.IntSize + wire.IntSize + wire.StringSize(w.Name) + wire.StringSize(w.Value)
}

func (w Watch) encode(e *wire.Encoder) {
	e.PutInt(w.ParentIndex)
	e.PutInt(w.AssignedIndex)
	e.PutString(w.Name)
	e.PutString(w.Value)
}

func decodeWatch(d *wire.Decoder) Watch {
	return Watch{
		ParentIndex:   d.Int(),
		AssignedIndex: d.Int(),
		Name:          d.String(),
		Value:         d.String(),
	}
}

// ShowDllForm is the host's "stopped" trigger, emitted at the end of every
// break sequence.
type ShowDllForm struct{}

func (ShowDllForm) Kind() Kind             { return KindShowDllForm }
func (ShowDllForm) size() int              { return 0 }
func (ShowDllForm) encode(_ *wire.Encoder) {}

// BuildHierarchy announces the start of a class hierarchy dump.
type BuildHierarchy struct{}

func (BuildHierarchy) Kind() Kind             { return KindBuildHierarchy }
func (BuildHierarchy) size() int              { return 0 }
func (BuildHierarchy) encode(_ *wire.Encoder) {}

// ClearHierarchy resets the class hierarchy.
type ClearHierarchy struct{}

func (ClearHierarchy) Kind() Kind             { return KindClearHierarchy }
func (ClearHierarchy) size() int              { return 0 }
func (ClearHierarchy) encode(_ *wire.Encoder) {}

// AddClassToHierarchy adds one class to the hierarchy dump.
type AddClassToHierarchy struct {
	ClassName string
}

func (AddClassToHierarchy) Kind() Kind                { return KindAddClassToHierarchy }
func (ev AddClassToHierarchy) size() int              { return wire.StringSize(ev.ClassName) }
func (ev AddClassToHierarchy) encode(e *wire.Encoder) { e.PutString(ev.ClassName) }

// LockList opens a watch batch for one watch kind.
type LockList struct {
	WatchKind int
}

func (LockList) Kind() Kind                { return KindLockList }
func (LockList) size() int                 { return wire.IntSize }
func (ev LockList) encode(e *wire.Encoder) { e.PutInt(ev.WatchKind) }

// UnlockList closes a watch batch, carrying every watch the host added
// between the lock and the unlock.
type UnlockList struct {
	WatchKind int
	Watches   []Watch
}

func (UnlockList) Kind() Kind { return KindUnlockList }
func (ev UnlockList) size() int {
	n := wire.IntSize + wire.IntSize
	for _, w := range ev.Watches {
		n += w.size()
	}
	return n
}
func (ev UnlockList) encode(e *wire.Encoder) {
	e.PutInt(ev.WatchKind)
	e.PutInt(len(ev.Watches))
	for _, w := range ev.Watches {
		w.encode(e)
	}
}

// ClearAWatch empties one watch list.
type ClearAWatch struct {
	WatchKind int
}

func (ClearAWatch) Kind() Kind                { return KindClearAWatch }
func (ClearAWatch) size() int                 { return wire.IntSize }
func (ev ClearAWatch) encode(e *wire.Encoder) { e.PutInt(ev.WatchKind) }

// AddBreakpoint is the host's acknowledgement of a breakpoint addition.
type AddBreakpoint struct {
	ClassName string
	Line      int
}

func (AddBreakpoint) Kind() Kind { return KindAddBreakpoint }
func (ev AddBreakpoint) size() int {
	return wire.StringSize(ev.ClassName) + wire.IntSize
}
func (ev AddBreakpoint) encode(e *wire.Encoder) {
	e.PutString(ev.ClassName)
	e.PutInt(ev.Line)
}

// RemoveBreakpoint is the host's acknowledgement of a breakpoint removal.
type RemoveBreakpoint struct {
	ClassName string
	Line      int
}

func (RemoveBreakpoint) Kind() Kind { return KindRemoveBreakpoint }
func (ev RemoveBreakpoint) size() int {
	return wire.StringSize(ev.ClassName) + wire.IntSize
}
func (ev RemoveBreakpoint) encode(e *wire.Encoder) {
	e.PutString(ev.ClassName)
	e.PutInt(ev.Line)
}

// EditorLoadClass names the class of the frame the host is presenting.
type EditorLoadClass struct {
	ClassName string
}

func (EditorLoadClass) Kind() Kind                { return KindEditorLoadClass }
func (ev EditorLoadClass) size() int              { return wire.StringSize(ev.ClassName) }
func (ev EditorLoadClass) encode(e *wire.Encoder) { e.PutString(ev.ClassName) }

// EditorGotoLine carries the line number for the class most recently named
// by EditorLoadClass.
type EditorGotoLine struct {
	Line      int
	Highlight bool
}

func (EditorGotoLine) Kind() Kind { return KindEditorGotoLine }
func (EditorGotoLine) size() int  { return wire.IntSize + wire.BoolSize }
func (ev EditorGotoLine) encode(e *wire.Encoder) {
	e.PutInt(ev.Line)
	e.PutBool(ev.Highlight)
}

// AddLineToLog carries one line of the host's log.
type AddLineToLog struct {
	Text string
}

func (AddLineToLog) Kind() Kind                { return KindAddLineToLog }
func (ev AddLineToLog) size() int              { return wire.StringSize(ev.Text) }
func (ev AddLineToLog) encode(e *wire.Encoder) { e.PutString(ev.Text) }

// CallStackClear resets the call stack at the start of a break sequence.
type CallStackClear struct{}

func (CallStackClear) Kind() Kind             { return KindCallStackClear }
func (CallStackClear) size() int              { return 0 }
func (CallStackClear) encode(_ *wire.Encoder) {}

// CallStackAdd appends one frame, outermost first, in the host's
// "Kind Class:Function" form.
type CallStackAdd struct {
	Entry string
}

func (CallStackAdd) Kind() Kind                { return KindCallStackAdd }
func (ev CallStackAdd) size() int              { return wire.StringSize(ev.Entry) }
func (ev CallStackAdd) encode(e *wire.Encoder) { e.PutString(ev.Entry) }

// SetCurrentObjectName names the object whose method is executing.
type SetCurrentObjectName struct {
	ObjectName string
}

func (SetCurrentObjectName) Kind() Kind                { return KindSetCurrentObjectName }
func (ev SetCurrentObjectName) size() int              { return wire.StringSize(ev.ObjectName) }
func (ev SetCurrentObjectName) encode(e *wire.Encoder) { e.PutString(ev.ObjectName) }

// Terminated tells the client the interface is shutting down.
type Terminated struct{}

func (Terminated) Kind() Kind             { return KindTerminated }
func (Terminated) size() int              { return 0 }
func (Terminated) encode(_ *wire.Encoder) {}
