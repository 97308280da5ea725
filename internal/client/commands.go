package client

import "github.com/uscript-tools/unreal-dap/internal/wire/command"

// Typed command senders, one per command kind. All of them enqueue and
// return immediately; ordering is guaranteed by the send queue.

// AddBreakpoint asks the host to set a breakpoint.
func (c *Connection) AddBreakpoint(className string, line int) {
	c.send(command.AddBreakpoint{ClassName: className, Line: line})
}

// RemoveBreakpoint asks the host to remove a breakpoint.
func (c *Connection) RemoveBreakpoint(className string, line int) {
	c.send(command.RemoveBreakpoint{ClassName: className, Line: line})
}

// AddWatch adds a user watch.
func (c *Connection) AddWatch(varName string) {
	c.send(command.AddWatch{VarName: varName})
}

// RemoveWatch removes a user watch.
func (c *Connection) RemoveWatch(varName string) {
	c.send(command.RemoveWatch{VarName: varName})
}

// ClearWatch removes all user watches.
func (c *Connection) ClearWatch() {
	c.send(command.ClearWatch{})
}

// ChangeStack switches the host's current frame.
func (c *Connection) ChangeStack(stackID int) {
	c.send(command.ChangeStack{StackID: stackID})
}

// SetDataWatch sets a data breakpoint.
func (c *Connection) SetDataWatch(varName string) {
	c.send(command.SetDataWatch{VarName: varName})
}

// BreakOnNone toggles breaking on access of None.
func (c *Connection) BreakOnNone(b bool) {
	c.send(command.BreakOnNone{Break: b})
}

// Break asks the host to stop as soon as possible.
func (c *Connection) Break() {
	c.send(command.Break{})
}

// StopDebugging detaches the debugger.
func (c *Connection) StopDebugging() {
	c.send(command.StopDebugging{})
}

// Go resumes execution.
func (c *Connection) Go() {
	c.send(command.Go{})
}

// StepInto steps into the next call.
func (c *Connection) StepInto() {
	c.send(command.StepInto{})
}

// StepOver steps over the next call.
func (c *Connection) StepOver() {
	c.send(command.StepOver{})
}

// StepOutOf runs until the current function returns.
func (c *Connection) StepOutOf() {
	c.send(command.StepOutOf{})
}

// ToggleWatchInfo enables or suppresses watch traffic from the interface.
func (c *Connection) ToggleWatchInfo(send bool) {
	c.send(command.ToggleWatchInfo{SendWatchInfo: send})
}
