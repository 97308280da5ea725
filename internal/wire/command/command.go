// Package command defines the messages sent from the debugger client to the
// debugger interface. These mirror the commands accepted by Unreal's
// debugger callback, plus the interface-internal ToggleWatchInfo.
package command

import (
	"fmt"

	"github.com/uscript-tools/unreal-dap/internal/wire"
)

// Kind tags a command message. Values are fixed wire constants.
type Kind byte

const (
	KindAddBreakpoint Kind = iota
	KindRemoveBreakpoint
	KindAddWatch
	KindRemoveWatch
	KindClearWatch
	KindChangeStack
	KindSetDataWatch
	KindBreakOnNone
	KindBreak
	KindStopDebugging
	KindGo
	KindStepInto
	KindStepOver
	KindStepOutOf
	KindToggleWatchInfo
)

var kindNames = map[Kind]string{
	KindAddBreakpoint:    "add_breakpoint",
	KindRemoveBreakpoint: "remove_breakpoint",
	KindAddWatch:         "add_watch",
	KindRemoveWatch:      "remove_watch",
	KindClearWatch:       "clear_watch",
	KindChangeStack:      "change_stack",
	KindSetDataWatch:     "set_data_watch",
	KindBreakOnNone:      "break_on_none",
	KindBreak:            "break",
	KindStopDebugging:    "stop_debugging",
	KindGo:               "go",
	KindStepInto:         "step_into",
	KindStepOver:         "step_over",
	KindStepOutOf:        "step_out_of",
	KindToggleWatchInfo:  "toggle_watch_info",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("command(%d)", byte(k))
}

// Command is implemented by every command message.
type Command interface {
	Kind() Kind

	// size is the serialized payload length excluding the kind tag.
	size() int
	encode(e *wire.Encoder)
}

// Encode serializes a command into a wire message.
func Encode(c Command) wire.Message {
	e := wire.NewEncoder(wire.TagSize + c.size())
	e.PutTag(byte(c.Kind()))
	c.encode(e)
	return e.Finish()
}

// Decode parses a wire message into a command. The payload must be consumed
// exactly.
func Decode(m wire.Message) (Command, error) {
	d := wire.NewDecoder(m)
	kind := Kind(d.Tag())

	var c Command
	switch kind {
	case KindAddBreakpoint:
		c = AddBreakpoint{ClassName: d.String(), Line: d.Int()}
	case KindRemoveBreakpoint:
		c = RemoveBreakpoint{ClassName: d.String(), Line: d.Int()}
	case KindAddWatch:
		c = AddWatch{VarName: d.String()}
	case KindRemoveWatch:
		c = RemoveWatch{VarName: d.String()}
	case KindClearWatch:
		c = ClearWatch{}
	case KindChangeStack:
		c = ChangeStack{StackID: d.Int()}
	case KindSetDataWatch:
		c = SetDataWatch{VarName: d.String()}
	case KindBreakOnNone:
		c = BreakOnNone{Break: d.Bool()}
	case KindBreak:
		c = Break{}
	case KindStopDebugging:
		c = StopDebugging{}
	case KindGo:
		c = Go{}
	case KindStepInto:
		c = StepInto{}
	case KindStepOver:
		c = StepOver{}
	case KindStepOutOf:
		c = StepOutOf{}
	case KindToggleWatchInfo:
		c = ToggleWatchInfo{SendWatchInfo: d.Bool()}
	default:
		return nil, fmt.Errorf("command: unknown kind tag %d", byte(kind))
	}

	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("command: decoding %s: %w", kind, err)
	}
	return c, nil
}

// AddBreakpoint requests a breakpoint at a class and line.
type AddBreakpoint struct {
	ClassName string
	Line      int
}

func (AddBreakpoint) Kind() Kind { return KindAddBreakpoint }
func (c AddBreakpoint) size() int {
	return wire.StringSize(c.ClassName) + wire.IntSize
}
func (c AddBreakpoint) encode(e *wire.Encoder) {
	e.PutString(c.ClassName)
	e.PutInt(c.Line)
}

// RemoveBreakpoint removes a breakpoint at a class and line.
type RemoveBreakpoint struct {
	ClassName string
	Line      int
}

func (RemoveBreakpoint) Kind() Kind { return KindRemoveBreakpoint }
func (c RemoveBreakpoint) size() int {
	return wire.StringSize(c.ClassName) + wire.IntSize
}
func (c RemoveBreakpoint) encode(e *wire.Encoder) {
	e.PutString(c.ClassName)
	e.PutInt(c.Line)
}

// AddWatch adds a user watch for a variable expression.
type AddWatch struct {
	VarName string
}

func (AddWatch) Kind() Kind               { return KindAddWatch }
func (c AddWatch) size() int              { return wire.StringSize(c.VarName) }
func (c AddWatch) encode(e *wire.Encoder) { e.PutString(c.VarName) }

// RemoveWatch removes a user watch.
type RemoveWatch struct {
	VarName string
}

func (RemoveWatch) Kind() Kind               { return KindRemoveWatch }
func (c RemoveWatch) size() int              { return wire.StringSize(c.VarName) }
func (c RemoveWatch) encode(e *wire.Encoder) { e.PutString(c.VarName) }

// ClearWatch removes all user watches.
type ClearWatch struct{}

func (ClearWatch) Kind() Kind             { return KindClearWatch }
func (ClearWatch) size() int              { return 0 }
func (ClearWatch) encode(_ *wire.Encoder) {}

// ChangeStack switches the host's current stack frame.
type ChangeStack struct {
	StackID int
}

func (ChangeStack) Kind() Kind               { return KindChangeStack }
func (ChangeStack) size() int                { return wire.IntSize }
func (c ChangeStack) encode(e *wire.Encoder) { e.PutInt(c.StackID) }

// SetDataWatch sets a data breakpoint on a variable.
type SetDataWatch struct {
	VarName string
}

func (SetDataWatch) Kind() Kind               { return KindSetDataWatch }
func (c SetDataWatch) size() int              { return wire.StringSize(c.VarName) }
func (c SetDataWatch) encode(e *wire.Encoder) { e.PutString(c.VarName) }

// BreakOnNone toggles breaking on access of a None reference.
type BreakOnNone struct {
	Break bool
}

func (BreakOnNone) Kind() Kind               { return KindBreakOnNone }
func (BreakOnNone) size() int                { return wire.BoolSize }
func (c BreakOnNone) encode(e *wire.Encoder) { e.PutBool(c.Break) }

// Break asks the host to stop at the next opportunity.
type Break struct{}

func (Break) Kind() Kind             { return KindBreak }
func (Break) size() int              { return 0 }
func (Break) encode(_ *wire.Encoder) {}

// StopDebugging detaches the debugger from the host.
type StopDebugging struct{}

func (StopDebugging) Kind() Kind             { return KindStopDebugging }
func (StopDebugging) size() int              { return 0 }
func (StopDebugging) encode(_ *wire.Encoder) {}

// Go resumes execution.
type Go struct{}

func (Go) Kind() Kind             { return KindGo }
func (Go) size() int              { return 0 }
func (Go) encode(_ *wire.Encoder) {}

// StepInto steps into the next call.
type StepInto struct{}

func (StepInto) Kind() Kind             { return KindStepInto }
func (StepInto) size() int              { return 0 }
func (StepInto) encode(_ *wire.Encoder) {}

// StepOver steps over the next call.
type StepOver struct{}

func (StepOver) Kind() Kind             { return KindStepOver }
func (StepOver) size() int              { return 0 }
func (StepOver) encode(_ *wire.Encoder) {}

// StepOutOf runs until the current function returns.
type StepOutOf struct{}

func (StepOutOf) Kind() Kind             { return KindStepOutOf }
func (StepOutOf) size() int              { return 0 }
func (StepOutOf) encode(_ *wire.Encoder) {}

// ToggleWatchInfo tells the interface whether to forward watch traffic. It
// is never relayed to the host; the interface consumes it to suppress watch
// events during silent stack walks.
type ToggleWatchInfo struct {
	SendWatchInfo bool
}

func (ToggleWatchInfo) Kind() Kind               { return KindToggleWatchInfo }
func (ToggleWatchInfo) size() int                { return wire.BoolSize }
func (c ToggleWatchInfo) encode(e *wire.Encoder) { e.PutBool(c.SendWatchInfo) }
