package adapter

import (
	"github.com/google/go-dap"

	"github.com/uscript-tools/unreal-dap/internal/config"
	"github.com/uscript-tools/unreal-dap/internal/debugger"
)

// waitIfBusy parks the handler until the current break sequence completes.
// A handler can beat the host's event flood after a step; the model is not
// queryable until show_dll_form lands.
func (s *Session) waitIfBusy() {
	if s.dbg.State() == debugger.StateBusy {
		s.dbg.Signals.BreakpointHit.Wait()
	}
}

// resume performs the common bookkeeping of every resumption: the frame
// cursor rewinds, user watches die, the model goes busy, and the break
// signal is rearmed before the command goes out.
func (s *Session) resume(send func()) {
	s.dbg.SetCurrentFrame(0)
	s.dbg.ClearUserWatches()
	s.cmd.ClearWatch()
	s.dbg.Signals.BreakpointHit.Reset()
	s.dbg.SetState(debugger.StateBusy)
	send()
}

func (s *Session) onInitialize(req *dap.InitializeRequest) {
	resp := &dap.InitializeResponse{
		Response: s.newResponse(req.Request),
		Body: dap.Capabilities{
			SupportsConfigurationDoneRequest: true,
			SupportsDelayedStackTraceLoading: true,
			SupportsValueFormattingOptions:   true,
			ExceptionBreakpointFilters: []dap.ExceptionBreakpointsFilter{
				{Filter: "none", Label: "Break on access of None"},
			},
		},
	}
	s.sendMessage(resp)
	s.sendMessage(&dap.InitializedEvent{Event: s.newEvent("initialized")})
}

// configureRoots applies the sourceRoots argument shared by launch and
// attach. A bad root is a configuration error reported on the request.
func (s *Session) configureRoots(req dap.Request, raw []byte) bool {
	args, err := config.ParseLaunchArguments(raw)
	if err != nil {
		s.sendError(req, "%v", err)
		return false
	}
	if err := s.sources.SetRoots(args.SourceRoots); err != nil {
		s.sendError(req, "%v", err)
		return false
	}
	return true
}

func (s *Session) onLaunch(req *dap.LaunchRequest) {
	// The host launches itself; "launch" only carries configuration.
	if !s.configureRoots(req.Request, req.Arguments) {
		return
	}
	s.sendMessage(&dap.LaunchResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onAttach(req *dap.AttachRequest) {
	if !s.configureRoots(req.Request, req.Arguments) {
		return
	}
	s.sendMessage(&dap.AttachResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onSetBreakpoints(req *dap.SetBreakpointsRequest) {
	source := req.Arguments.Source
	if source.SourceReference != 0 {
		s.sendError(req.Request, "source references are not supported, a file path is required")
		return
	}

	className, err := ClassFromSourcePath(source.Path)
	if err != nil {
		s.sendError(req.Request, "%v", err)
		return
	}

	lines := make([]int, 0, len(req.Arguments.Breakpoints))
	for _, bp := range req.Arguments.Breakpoints {
		lines = append(lines, bp.Line)
	}
	if len(lines) == 0 {
		lines = append(lines, req.Arguments.Lines...)
	}

	// Replace-not-merge: whatever the host currently has for this class is
	// removed before the requested set goes in.
	for _, line := range s.dbg.Breakpoints(className) {
		s.cmd.RemoveBreakpoint(className, line)
	}

	breakpoints := make([]dap.Breakpoint, 0, len(lines))
	for _, line := range lines {
		s.dbg.Signals.BreakpointAdded.Reset()
		s.dbg.SetState(debugger.StateWaitingForAddBreakpoint)
		s.cmd.AddBreakpoint(className, line)
		s.dbg.Signals.BreakpointAdded.Wait()
		s.dbg.SetState(debugger.StateNormal)

		verified := false
		for _, l := range s.dbg.Breakpoints(className) {
			if l == line {
				verified = true
				break
			}
		}
		breakpoints = append(breakpoints, dap.Breakpoint{
			Verified: verified,
			Line:     line,
			Source:   &source,
		})
	}

	s.sendMessage(&dap.SetBreakpointsResponse{
		Response: s.newResponse(req.Request),
		Body:     dap.SetBreakpointsResponseBody{Breakpoints: breakpoints},
	})
}

func (s *Session) onSetExceptionBreakpoints(req *dap.SetExceptionBreakpointsRequest) {
	// The host's only exception-like facility is breaking on access of
	// None; the filter's presence toggles it.
	breakOnNone := false
	for _, filter := range req.Arguments.Filters {
		if filter == "none" {
			breakOnNone = true
		}
	}
	s.cmd.BreakOnNone(breakOnNone)
	s.sendMessage(&dap.SetExceptionBreakpointsResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onThreads(req *dap.ThreadsRequest) {
	s.sendMessage(&dap.ThreadsResponse{
		Response: s.newResponse(req.Request),
		Body: dap.ThreadsResponseBody{
			Threads: []dap.Thread{{Id: unrealThreadID, Name: "UnrealScript"}},
		},
	})
}

// fetchFrameLine switches the host to a frame and waits for the line event
// that follows. Callers bracket this in ToggleWatchInfo(false)/(true).
func (s *Session) fetchFrameLine(frame int) {
	s.dbg.Signals.LineReceived.Reset()
	s.dbg.SetState(debugger.StateWaitingForFrameLine)
	s.dbg.SetCurrentFrame(frame)
	s.cmd.ChangeStack(frame)
	s.dbg.Signals.LineReceived.Wait()
	s.dbg.SetState(debugger.StateNormal)
}

func (s *Session) onStackTrace(req *dap.StackTraceRequest) {
	if req.Arguments.ThreadId != unrealThreadID {
		s.sendError(req.Request, "unknown thread id %d", req.Arguments.ThreadId)
		return
	}

	s.waitIfBusy()

	start := req.Arguments.StartFrame
	if start < 0 {
		start = 0
	}
	total := s.dbg.FrameCount()
	end := total
	if req.Arguments.Levels > 0 && start+req.Arguments.Levels < total {
		end = start + req.Arguments.Levels
	}

	// The host's stack trace carries no line numbers. Frames missing one
	// need the host switched there so it emits editor_goto_line; watch
	// traffic is suppressed for the walk because only the line is wanted.
	original := s.dbg.CurrentFrame()
	walked := false
	for i := start; i < end; i++ {
		frame := s.dbg.Frame(i)
		if frame == nil || frame.LineNumber != 0 {
			continue
		}
		if !walked {
			s.cmd.ToggleWatchInfo(false)
			walked = true
		}
		s.fetchFrameLine(i)
	}
	if walked {
		s.fetchFrameLine(original)
		s.cmd.ToggleWatchInfo(true)
	}

	frames := make([]dap.StackFrame, 0, end-start)
	for i := start; i < end; i++ {
		frame := s.dbg.Frame(i)
		if frame == nil {
			break
		}
		frames = append(frames, dap.StackFrame{
			Id:   i,
			Name: frame.FunctionName,
			Line: frame.LineNumber,
			Source: &dap.Source{
				Name: frame.ClassName,
				Path: s.sources.Resolve(frame.ClassName),
			},
		})
	}

	s.sendMessage(&dap.StackTraceResponse{
		Response: s.newResponse(req.Request),
		Body: dap.StackTraceResponseBody{
			StackFrames: frames,
			TotalFrames: total,
		},
	})
}

func (s *Session) onScopes(req *dap.ScopesRequest) {
	s.waitIfBusy()

	frameID := req.Arguments.FrameId
	frame := s.dbg.Frame(frameID)
	if frame == nil {
		s.sendError(req.Request, "unknown frame id %d", frameID)
		return
	}

	localsRef, err := debugger.EncodeVarRef(debugger.WatchLocal, frameID, 0)
	if err != nil {
		s.sendError(req.Request, "%v", err)
		return
	}
	globalsRef, err := debugger.EncodeVarRef(debugger.WatchGlobal, frameID, 0)
	if err != nil {
		s.sendError(req.Request, "%v", err)
		return
	}

	locals := dap.Scope{
		Name:               "Locals",
		PresentationHint:   "locals",
		VariablesReference: localsRef,
	}
	globals := dap.Scope{
		Name:               "Globals",
		VariablesReference: globalsRef,
	}
	if frame.FetchedWatches {
		locals.NamedVariables = frame.LocalWatches.RootChildCount()
		globals.NamedVariables = frame.GlobalWatches.RootChildCount()
	}

	s.sendMessage(&dap.ScopesResponse{
		Response: s.newResponse(req.Request),
		Body:     dap.ScopesResponseBody{Scopes: []dap.Scope{locals, globals}},
	})
}

// fetchFrameWatches switches the host to a frame with watch traffic enabled
// and waits until its watch batches are complete, then silently restores
// the previously current frame.
func (s *Session) fetchFrameWatches(frame int) {
	original := s.dbg.CurrentFrame()

	s.dbg.Signals.WatchesReceived.Reset()
	s.dbg.SetState(debugger.StateWaitingForFrameWatches)
	s.dbg.SetCurrentFrame(frame)
	s.cmd.ChangeStack(frame)
	s.dbg.Signals.WatchesReceived.Wait()
	s.dbg.SetState(debugger.StateNormal)

	if original != frame {
		s.cmd.ToggleWatchInfo(false)
		s.fetchFrameLine(original)
		s.cmd.ToggleWatchInfo(true)
	}
}

func (s *Session) onVariables(req *dap.VariablesRequest) {
	s.waitIfBusy()

	if req.Arguments.Start != 0 || req.Arguments.Count != 0 {
		s.sendError(req.Request, "chunked variable requests are not supported")
		return
	}

	kind, frameIdx, index, err := debugger.DecodeVarRef(req.Arguments.VariablesReference)
	if err != nil {
		s.sendError(req.Request, "%v", err)
		return
	}

	frame := s.dbg.Frame(frameIdx)
	if frame == nil {
		s.sendError(req.Request, "unknown frame %d in variables reference", frameIdx)
		return
	}

	if !frame.FetchedWatches {
		s.fetchFrameWatches(frameIdx)
	}

	list := frame.Watches(kind)
	if !list.Valid(index) {
		s.sendError(req.Request, "unknown variables reference %d", req.Arguments.VariablesReference)
		return
	}

	node := list.Node(index)
	variables := make([]dap.Variable, 0, len(node.Children))
	for _, childIdx := range node.Children {
		child := list.Node(childIdx)

		// Leaves report reference 0; only nodes with children hand out a
		// fresh reference for the editor to expand.
		ref := 0
		if len(child.Children) > 0 {
			ref, err = debugger.EncodeVarRef(kind, frameIdx, childIdx)
			if err != nil {
				s.sendError(req.Request, "%v", err)
				return
			}
		}
		variables = append(variables, dap.Variable{
			Name:               child.Name,
			Value:              child.Value,
			Type:               child.Type,
			VariablesReference: ref,
		})
	}

	s.sendMessage(&dap.VariablesResponse{
		Response: s.newResponse(req.Request),
		Body:     dap.VariablesResponseBody{Variables: variables},
	})
}

func (s *Session) onEvaluate(req *dap.EvaluateRequest) {
	s.waitIfBusy()

	frameID := req.Arguments.FrameId
	frame := s.dbg.Frame(frameID)
	if frame == nil {
		s.sendError(req.Request, "unknown frame id %d", frameID)
		return
	}

	expr := req.Arguments.Expression
	idx := frame.UserWatches.FindChild(expr)
	if idx < 0 {
		s.dbg.Signals.UserWatchesReceived.Reset()
		s.dbg.SetState(debugger.StateWaitingForUserWatches)
		s.cmd.AddWatch(expr)
		s.dbg.Signals.UserWatchesReceived.Wait()
		s.dbg.SetState(debugger.StateNormal)

		idx = frame.UserWatches.FindChild(expr)
	}
	if idx < 0 {
		s.sendError(req.Request, "cannot evaluate %q", expr)
		return
	}

	node := frame.UserWatches.Node(idx)
	ref := 0
	if len(node.Children) > 0 {
		var err error
		ref, err = debugger.EncodeVarRef(debugger.WatchUser, frameID, idx)
		if err != nil {
			s.sendError(req.Request, "%v", err)
			return
		}
	}

	s.sendMessage(&dap.EvaluateResponse{
		Response: s.newResponse(req.Request),
		Body: dap.EvaluateResponseBody{
			Result:             node.Value,
			Type:               node.Type,
			VariablesReference: ref,
		},
	})
}

func (s *Session) onPause(req *dap.PauseRequest) {
	s.resume(s.cmd.Break)
	s.sendMessage(&dap.PauseResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onContinue(req *dap.ContinueRequest) {
	s.resume(s.cmd.Go)
	s.sendMessage(&dap.ContinueResponse{
		Response: s.newResponse(req.Request),
		Body:     dap.ContinueResponseBody{AllThreadsContinued: true},
	})
}

func (s *Session) onNext(req *dap.NextRequest) {
	s.resume(s.cmd.StepOver)
	s.sendMessage(&dap.NextResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onStepIn(req *dap.StepInRequest) {
	s.resume(s.cmd.StepInto)
	s.sendMessage(&dap.StepInResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onStepOut(req *dap.StepOutRequest) {
	s.resume(s.cmd.StepOutOf)
	s.sendMessage(&dap.StepOutResponse{Response: s.newResponse(req.Request)})
}

func (s *Session) onDisconnect(req *dap.DisconnectRequest) {
	s.cmd.StopDebugging()
	s.sendMessage(&dap.DisconnectResponse{Response: s.newResponse(req.Request)})
	s.Terminate()
}
