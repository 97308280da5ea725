package service

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DetachSentinel is the log line the host emits when the debugger is being
// detached. The host has no explicit "debugger stopped" entry point; this
// string is the only notification we get, both when the host initiates the
// stop (toggledebugger) and after the client's stopdebugging command.
const DetachSentinel = "Log: Detaching UnrealScript Debugger (currently detached)"

// Process-wide anchors. The host's entry points are bare exported
// functions with no state of their own, so the current service incarnation,
// the lifecycle state, and the host callback necessarily live here.
var (
	lifecycleMu sync.Mutex
	current     *Service

	state atomic.Int32

	callbackMu sync.Mutex
	callback   func(string)

	// sawFirstShowDllForm records the host's initial ShowDllForm, which is
	// emitted once at startup before any actual break and must not become a
	// stopped event.
	sawFirstShowDllForm atomic.Bool

	logger     *zap.SugaredLogger
	loggerOnce sync.Once
)

// CurrentState returns the service lifecycle state.
func CurrentState() State {
	return State(state.Load())
}

func setState(s State) {
	state.Store(int32(s))
}

// SetCallback stores the function used to deliver command strings to the
// host. The host calls the exported SetCallback entry exactly once, before
// any other entry point. The callback survives service restarts: the host
// never provides it again.
func SetCallback(cb func(string)) {
	callbackMu.Lock()
	callback = cb
	callbackMu.Unlock()
}

func hostCallback() func(string) {
	callbackMu.Lock()
	defer callbackMu.Unlock()
	return callback
}

// serviceLogger builds the process logger once. The interface runs inside
// the game and must never touch the host's stdio, so logs go to the file
// named by UCDEBUG_LOG, or nowhere.
func serviceLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		path := os.Getenv("UCDEBUG_LOG")
		if path == "" {
			logger = zap.NewNop().Sugar()
			return
		}
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err := cfg.Build()
		if err != nil {
			logger = zap.NewNop().Sugar()
			return
		}
		logger = l.Sugar()
	})
	return logger
}

// checkService is the gate every entry point passes through. It observes
// the lifecycle state and returns the service that may emit events, or nil.
// On stopped it tears the old incarnation down and starts a fresh one; on
// shutdown it tears down for good.
func checkService() *Service {
	lifecycleMu.Lock()
	defer lifecycleMu.Unlock()

	switch CurrentState() {
	case StateShutdown:
		destroyLocked(true)
		return nil
	case StateStopped:
		destroyLocked(false)
		startLocked()
		return current
	default:
		if current == nil {
			startLocked()
		}
		return current
	}
}

// startLocked builds and starts a new service incarnation.
func startLocked() {
	s := newService(serviceLogger())
	if err := s.start(); err != nil {
		s.log.Errorw("failed to start debugger service", "error", err)
		setState(StateStopped)
		return
	}
	current = s
	setState(StateDisconnected)
}

// destroyLocked stops the current incarnation and waits for its reactor.
// When the teardown was triggered from inside a command dispatch, the call
// is running on the reactor goroutine itself (the host callback re-entered
// an entry point); the reactor is detached rather than joined, and exits on
// its own once the dispatch unwinds.
func destroyLocked(finalDrain bool) {
	if current == nil {
		return
	}
	if finalDrain {
		current.waitForDrain(time.Second)
	}
	current.stopIO()
	if current.inDispatch.Load() {
		current.log.Infow("debugger service detached", "service", current.id)
		current = nil
		return
	}
	<-current.done
	current.log.Infow("debugger service stopped", "service", current.id)
	current = nil
}

// Shutdown flips the service to its terminal state. The next gate pass
// performs the teardown.
func Shutdown() {
	setState(StateShutdown)
}

// Entry points, one per host API. Each passes the gate and forwards to the
// live service.

// HostShowDllForm handles the host's break trigger. The very first
// invocation after startup is discarded: the host emits one ShowDllForm
// while initializing that does not correspond to a break.
func HostShowDllForm() {
	s := checkService()
	if s == nil {
		return
	}
	if !sawFirstShowDllForm.Load() {
		sawFirstShowDllForm.Store(true)
		return
	}
	s.ShowDllForm()
}

// HostBuildHierarchy handles the start of a class hierarchy dump.
func HostBuildHierarchy() {
	if s := checkService(); s != nil {
		s.BuildHierarchy()
	}
}

// HostClearHierarchy handles a hierarchy reset.
func HostClearHierarchy() {
	if s := checkService(); s != nil {
		s.ClearHierarchy()
	}
}

// HostAddClassToHierarchy handles one hierarchy entry.
func HostAddClassToHierarchy(className string) {
	if s := checkService(); s != nil {
		s.AddClassToHierarchy(className)
	}
}

// HostClearWatch handles the legacy ClearWatch entry, which the host aims
// at the same lists as ClearAWatch.
func HostClearWatch(watchKind int) {
	if s := checkService(); s != nil {
		s.ClearAWatch(watchKind)
	}
}

// HostClearAWatch handles clearing one watch list.
func HostClearAWatch(watchKind int) {
	if s := checkService(); s != nil {
		s.ClearAWatch(watchKind)
	}
}

// HostAddAWatch handles a watch addition and returns the assigned index.
func HostAddAWatch(watchKind, parent int, name, value string) int {
	if s := checkService(); s != nil {
		return s.AddAWatch(watchKind, parent, name, value)
	}
	return 0
}

// HostLockList handles the opening of a watch batch.
func HostLockList(watchKind int) {
	if s := checkService(); s != nil {
		s.LockList(watchKind)
	}
}

// HostUnlockList handles the close of a watch batch.
func HostUnlockList(watchKind int) {
	if s := checkService(); s != nil {
		s.UnlockList(watchKind)
	}
}

// HostAddBreakpoint handles the host's breakpoint acknowledgement.
func HostAddBreakpoint(className string, line int) {
	if s := checkService(); s != nil {
		s.AddBreakpoint(className, line)
	}
}

// HostRemoveBreakpoint handles the host's removal acknowledgement.
func HostRemoveBreakpoint(className string, line int) {
	if s := checkService(); s != nil {
		s.RemoveBreakpoint(className, line)
	}
}

// HostEditorLoadClass handles the class announcement preceding a break.
func HostEditorLoadClass(className string) {
	if s := checkService(); s != nil {
		s.EditorLoadClass(className)
	}
}

// HostEditorGotoLine handles the line announcement preceding a break.
func HostEditorGotoLine(line, highlight int) {
	if s := checkService(); s != nil {
		s.EditorGotoLine(line, highlight)
	}
}

// HostAddLineToLog handles a host log line. The detach sentinel initiates a
// clean shutdown: the log line and a terminated event are sent first, then
// the state flips and the gate runs once more to tear everything down,
// because the host will not be calling again.
func HostAddLineToLog(text string) {
	s := checkService()
	if s == nil {
		return
	}
	s.AddLineToLog(text)

	if text == DetachSentinel {
		s.sendTerminated()
		Shutdown()
		checkService()
	}
}

// HostCallStackClear handles the start of a stack dump.
func HostCallStackClear() {
	if s := checkService(); s != nil {
		s.CallStackClear()
	}
}

// HostCallStackAdd handles one stack entry.
func HostCallStackAdd(entry string) {
	if s := checkService(); s != nil {
		s.CallStackAdd(entry)
	}
}

// HostSetCurrentObjectName handles the current-object announcement.
func HostSetCurrentObjectName(objectName string) {
	if s := checkService(); s != nil {
		s.SetCurrentObjectName(objectName)
	}
}
