// Package debugger holds the client-side model of the debuggee: the call
// stack, per-frame watch arenas, the breakpoint index, and the signals and
// state enum that coordinate DAP request handlers with the event stream
// from the interface.
package debugger

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// State is the operational state of the debugger, used to tell DAP handlers
// whether the model is safe to query and which rendezvous is in flight.
type State int32

const (
	// StateNormal means the debuggee is stopped and the model is complete.
	StateNormal State = iota
	// StateBusy means the debuggee is running; handlers that need the model
	// wait for the next break.
	StateBusy
	// StateWaitingForFrameLine means a silent stack walk is waiting for an
	// EditorGotoLine for a switched frame.
	StateWaitingForFrameLine
	// StateWaitingForFrameWatches means a frame switch is waiting for the
	// frame's watch batches to finish.
	StateWaitingForFrameWatches
	// StateWaitingForUserWatches means an evaluate request is waiting for a
	// user watch batch.
	StateWaitingForUserWatches
	// StateWaitingForAddBreakpoint means a setBreakpoints request is waiting
	// for the host to acknowledge a breakpoint.
	StateWaitingForAddBreakpoint
)

// Signals is the set of one-shot latches DAP handlers park on. Each latch
// is reset by the handler that will wait on it, immediately before sending
// the command that eventually fires it.
type Signals struct {
	BreakpointHit       Signal
	LineReceived        Signal
	WatchesReceived     Signal
	UserWatchesReceived Signal
	BreakpointAdded     Signal
}

// Debugger is the client-side debuggee model. The event dispatch goroutine
// is the only writer while the debuggee runs; DAP handlers read it after
// observing a breakpoint hit.
type Debugger struct {
	mu  sync.Mutex
	log *zap.SugaredLogger

	callstack    []*StackFrame
	currentFrame int

	// breakpoints maps upper-cased class names to sorted line numbers. The
	// host echoes breakpoint events in upper case, so the index is keyed
	// that way.
	breakpoints map[string][]int

	// watchLockDepth counts outstanding lock_list events across the three
	// watch kinds. Reaching zero completes a watch rendezvous.
	watchLockDepth int

	state atomic.Int32

	// currentObjectName is the object the host reported at the last break.
	currentObjectName string

	Signals Signals
}

// New returns a model with the permanent innermost frame in place.
func New(log *zap.SugaredLogger) *Debugger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Debugger{
		log:         log,
		callstack:   []*StackFrame{{}},
		breakpoints: make(map[string][]int),
	}
}

// State returns the current operational state.
func (d *Debugger) State() State {
	return State(d.state.Load())
}

// SetState transitions the operational state.
func (d *Debugger) SetState(s State) {
	d.state.Store(int32(s))
}

// AddWatch inserts a watch into the current frame's arena for the given
// kind, at the index the interface assigned.
func (d *Debugger) AddWatch(kind WatchKind, index, parent int, fullName, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	frame := d.currentFrameLocked()
	list := frame.Watches(kind)
	if !list.Add(index, parent, fullName, value) {
		d.log.Warnw("failed to parse watch name", "name", fullName, "kind", kind.String())
	}
}

// ClearWatches empties the current frame's arena for the given kind.
func (d *Debugger) ClearWatches(kind WatchKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentFrameLocked().Watches(kind).Clear()
}

// ClearUserWatches drops user watches on every frame. Done on resume so
// stale evaluate results don't survive into the next break.
func (d *Debugger) ClearUserWatches() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.callstack {
		f.UserWatches.Clear()
	}
}

// LockWatchList records a lock_list event.
func (d *Debugger) LockWatchList() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watchLockDepth++
}

// UnlockWatchList records an unlock_list event and reports whether every
// lock has been matched, i.e. the watch traffic for the current frame is
// complete.
func (d *Debugger) UnlockWatchList() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watchLockDepth > 0 {
		d.watchLockDepth--
	}
	return d.watchLockDepth == 0
}

// SetCurrentObjectName records the object name reported at a break.
func (d *Debugger) SetCurrentObjectName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentObjectName = name
}

// CurrentObjectName returns the object name reported at the last break.
func (d *Debugger) CurrentObjectName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentObjectName
}

// RecordBreakpoint adds a confirmed breakpoint to the index.
func (d *Debugger) RecordBreakpoint(className string, line int) {
	key := strings.ToUpper(className)
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := d.breakpoints[key]
	for _, l := range lines {
		if l == line {
			return
		}
	}
	lines = append(lines, line)
	sort.Ints(lines)
	d.breakpoints[key] = lines
}

// ForgetBreakpoint removes a breakpoint from the index.
func (d *Debugger) ForgetBreakpoint(className string, line int) {
	key := strings.ToUpper(className)
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := d.breakpoints[key]
	for i, l := range lines {
		if l == line {
			d.breakpoints[key] = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	if len(d.breakpoints[key]) == 0 {
		delete(d.breakpoints, key)
	}
}

// Breakpoints returns the recorded lines for a class, keyed case-insensitively.
func (d *Debugger) Breakpoints(className string) []int {
	key := strings.ToUpper(className)
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := d.breakpoints[key]
	out := make([]int, len(lines))
	copy(out, lines)
	return out
}

// SetFrameLine records a line number for the current frame.
func (d *Debugger) SetFrameLine(line int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentFrameLocked().LineNumber = line
}

// SetFrameClass records the class name for the current frame.
func (d *Debugger) SetFrameClass(className string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentFrameLocked().ClassName = className
}

// MarkFrameWatchesFetched flags the current frame as having complete watch
// arenas.
func (d *Debugger) MarkFrameWatchesFetched() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentFrameLocked().FetchedWatches = true
}
