package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replayBreakSequence drives the model through the host's break ordering:
// class and line for the innermost frame arrive before the stack trace.
func replayBreakSequence(d *Debugger) {
	d.SetFrameClass("P.A")
	d.SetFrameLine(42)
	d.LockWatchList()
	d.AddWatch(WatchLocal, 1, -1, "v ( Int, 0x0 )", "7")
	d.UnlockWatchList()
	d.ClearCallStack()
	d.AddCallStack("Function P.B:bar")
	d.AddCallStack("Function P.A:foo")
	d.FinalizeCallStack()
}

func TestCallStackFinalize(t *testing.T) {
	t.Parallel()

	d := New(nil)
	replayBreakSequence(d)

	require.Equal(t, 2, d.FrameCount())

	inner := d.Frame(0)
	assert.Equal(t, "P.A", inner.ClassName)
	assert.Equal(t, "foo", inner.FunctionName)
	assert.Equal(t, 42, inner.LineNumber)
	assert.True(t, inner.FetchedWatches)
	assert.Equal(t, 1, inner.LocalWatches.RootChildCount())

	outer := d.Frame(1)
	assert.Equal(t, "P.B", outer.ClassName)
	assert.Equal(t, "bar", outer.FunctionName)
	assert.Equal(t, 0, outer.LineNumber, "outer frame line is unfetched")
	assert.Equal(t, 0, outer.LocalWatches.Len())
	assert.False(t, outer.FetchedWatches)
}

func TestCallStackNeverEmpty(t *testing.T) {
	t.Parallel()

	d := New(nil)
	require.Equal(t, 1, d.FrameCount())
	d.ClearCallStack()
	require.Equal(t, 1, d.FrameCount())

	// Early events always have a frame to land in.
	d.SetFrameClass("Core.Object")
	assert.Equal(t, "Core.Object", d.Frame(0).ClassName)
}

func TestCallStackSingleFrameFinalize(t *testing.T) {
	t.Parallel()

	d := New(nil)
	d.SetFrameClass("P.A")
	d.SetFrameLine(10)
	d.ClearCallStack()
	d.AddCallStack("Function P.A:foo")
	d.FinalizeCallStack()

	require.Equal(t, 1, d.FrameCount())
	f := d.Frame(0)
	assert.Equal(t, "P.A", f.ClassName)
	assert.Equal(t, "foo", f.FunctionName)
	assert.Equal(t, 10, f.LineNumber)
	assert.True(t, f.FetchedWatches)
}

func TestCallStackRepeatedBreaks(t *testing.T) {
	t.Parallel()

	d := New(nil)
	replayBreakSequence(d)

	// A second break replaces the stack wholesale.
	d.SetCurrentFrame(0)
	d.SetFrameClass("Q.C")
	d.SetFrameLine(5)
	d.ClearCallStack()
	d.AddCallStack("Function Q.C:baz")
	d.FinalizeCallStack()

	require.Equal(t, 1, d.FrameCount())
	assert.Equal(t, "Q.C", d.Frame(0).ClassName)
	assert.Equal(t, 5, d.Frame(0).LineNumber)
}

func TestAddCallStackParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry    string
		class    string
		function string
	}{
		{"Function P.A:foo", "P.A", "foo"},
		{"State P.A:bar", "P.A", "bar"},
		{"Function NoFunction", "NoFunction", ""},
	}

	for _, tc := range tests {
		t.Run(tc.entry, func(t *testing.T) {
			d := New(nil)
			d.ClearCallStack()
			d.AddCallStack(tc.entry)
			f := d.Frame(1)
			require.NotNil(t, f)
			assert.Equal(t, tc.class, f.ClassName)
			assert.Equal(t, tc.function, f.FunctionName)
		})
	}
}

func TestFrameOutOfRange(t *testing.T) {
	t.Parallel()

	d := New(nil)
	assert.Nil(t, d.Frame(3))
	assert.Nil(t, d.Frame(-1))
}
