package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uscript-tools/unreal-dap/internal/wire"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	events := []Event{
		ShowDllForm{},
		BuildHierarchy{},
		ClearHierarchy{},
		AddClassToHierarchy{ClassName: "Engine.Actor"},
		LockList{WatchKind: 1},
		UnlockList{WatchKind: 0, Watches: []Watch{
			{ParentIndex: -1, AssignedIndex: 1, Name: "Location ( Vector, 0x1234 )", Value: "(X=0,Y=0,Z=0)"},
			{ParentIndex: 1, AssignedIndex: 2, Name: "X ( Float, 0x1238 )", Value: "0.0"},
		}},
		UnlockList{WatchKind: 2},
		ClearAWatch{WatchKind: 2},
		AddBreakpoint{ClassName: "XCOMGAME.XGUNIT", Line: 120},
		RemoveBreakpoint{ClassName: "ENGINE.ACTOR", Line: 7},
		EditorLoadClass{ClassName: "XComGame.XGUnit"},
		EditorGotoLine{Line: 42, Highlight: true},
		AddLineToLog{Text: "Log: hello"},
		CallStackClear{},
		CallStackAdd{Entry: "Function XComGame.XGUnit:Init"},
		SetCurrentObjectName{ObjectName: "XGUnit_0"},
		Terminated{},
	}

	for _, ev := range events {
		t.Run(ev.Kind().String(), func(t *testing.T) {
			msg := Encode(ev)
			require.Equal(t, wire.TagSize+ev.size(), msg.Len())

			got, err := Decode(msg)
			require.NoError(t, err)
			assert.Equal(t, ev, got)
		})
	}
}

func TestUnlockListEmptyBatch(t *testing.T) {
	t.Parallel()

	msg := Encode(UnlockList{WatchKind: 1})
	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, UnlockList{WatchKind: 1}, got)
}

func TestDecodeUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Decode(wire.Message{Buf: []byte{0xee}})
	require.Error(t, err)
}

func TestDecodeTruncatedWatchBatch(t *testing.T) {
	t.Parallel()

	msg := Encode(UnlockList{WatchKind: 0, Watches: []Watch{
		{ParentIndex: -1, AssignedIndex: 1, Name: "a", Value: "1"},
	}})
	_, err := Decode(wire.Message{Buf: msg.Buf[:msg.Len()-3]})
	require.Error(t, err)
}

func TestKindValuesAreStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(0), KindShowDllForm)
	assert.Equal(t, Kind(4), KindLockList)
	assert.Equal(t, Kind(5), KindUnlockList)
	assert.Equal(t, Kind(9), KindEditorLoadClass)
	assert.Equal(t, Kind(15), KindTerminated)
}
