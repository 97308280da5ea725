package debugger

import "strings"

// StackFrame is one entry in the call stack. LineNumber 0 means the host
// has not yet told us the line for this frame; the stackTrace walk fills it
// in on demand.
type StackFrame struct {
	ClassName      string
	FunctionName   string
	LineNumber     int
	LocalWatches   WatchList
	GlobalWatches  WatchList
	UserWatches    WatchList
	FetchedWatches bool
}

// Watches returns the frame's list for the given kind.
func (f *StackFrame) Watches(kind WatchKind) *WatchList {
	switch kind {
	case WatchLocal:
		return &f.LocalWatches
	case WatchGlobal:
		return &f.GlobalWatches
	default:
		return &f.UserWatches
	}
}

// ClearCallStack resets the stack to a single frame at the start of a break
// sequence. The surviving frame is the one the host has already written the
// innermost class, line, and watches into via EditorLoadClass,
// EditorGotoLine, and the preceding watch batches; the stack is never fully
// emptied so those early events always have a home.
func (d *Debugger) ClearCallStack() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callstack = d.callstack[:1]
}

// AddCallStack appends a frame parsed from a host stack-trace entry of the
// form "Kind Class:Function". The host emits entries outermost first.
func (d *Debugger) AddCallStack(entry string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := entry
	if idx := strings.Index(name, " "); idx >= 0 {
		if kind := name[:idx]; kind != "Function" {
			d.log.Warnw("unknown call stack kind", "entry", entry)
		}
		name = name[idx+1:]
	}

	frame := &StackFrame{}
	if idx := strings.Index(name, ":"); idx > 0 {
		frame.ClassName = name[:idx]
		frame.FunctionName = name[idx+1:]
	} else {
		d.log.Warnw("no function name in call stack entry", "entry", entry)
		frame.ClassName = name
	}
	d.callstack = append(d.callstack, frame)
}

// FinalizeCallStack rearranges the stack into innermost-first order once the
// break sequence completes. The first element holds the innermost line and
// watches (written before the stack trace arrived) and the last element
// holds the innermost class and function (the final CallStackAdd); they
// describe the same frame, so the line and watches move to the last element,
// the stack is reversed, and the stale first element is dropped from the
// tail.
func (d *Debugger) FinalizeCallStack() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.callstack) > 1 {
		first := d.callstack[0]
		last := d.callstack[len(d.callstack)-1]

		last.LineNumber = first.LineNumber
		last.LocalWatches = first.LocalWatches
		last.GlobalWatches = first.GlobalWatches
		last.UserWatches = first.UserWatches
		first.LocalWatches = WatchList{}
		first.GlobalWatches = WatchList{}
		first.UserWatches = WatchList{}

		for i, j := 0, len(d.callstack)-1; i < j; i, j = i+1, j-1 {
			d.callstack[i], d.callstack[j] = d.callstack[j], d.callstack[i]
		}
		d.callstack = d.callstack[:len(d.callstack)-1]
	}

	d.callstack[0].FetchedWatches = true
	d.currentFrame = 0
}

// FrameCount returns the call stack depth.
func (d *Debugger) FrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.callstack)
}

// Frame returns the stack frame at the given index (0 = innermost), or nil.
func (d *Debugger) Frame(index int) *StackFrame {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.callstack) {
		return nil
	}
	return d.callstack[index]
}

// CurrentFrame returns the index of the frame the host currently considers
// current.
func (d *Debugger) CurrentFrame() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentFrame
}

// SetCurrentFrame records which frame the host has been switched to. Watch
// and line events that follow apply to this frame.
func (d *Debugger) SetCurrentFrame(index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentFrame = index
}

// currentFrameLocked returns the frame events should be written into,
// growing nothing: events for an out-of-range frame land on the innermost.
func (d *Debugger) currentFrameLocked() *StackFrame {
	if d.currentFrame >= 0 && d.currentFrame < len(d.callstack) {
		return d.callstack[d.currentFrame]
	}
	return d.callstack[0]
}
