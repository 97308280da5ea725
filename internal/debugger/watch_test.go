package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTreeStructure(t *testing.T) {
	t.Parallel()

	var l WatchList
	require.True(t, l.Add(1, -1, "Location ( Vector, 0x100 )", "(X=1)"))
	require.True(t, l.Add(2, 1, "X ( Float, 0x104 )", "1.0"))
	require.True(t, l.Add(3, 1, "Y ( Float, 0x108 )", "2.0"))

	assert.Equal(t, []int{1}, l.Node(0).Children)
	assert.Equal(t, []int{2, 3}, l.Node(1).Children)
	assert.Empty(t, l.Node(2).Children)

	assert.Equal(t, "Location", l.Node(1).Name)
	assert.Equal(t, "Vector", l.Node(1).Type)
	assert.Equal(t, "(X=1)", l.Node(1).Value)
	assert.Equal(t, -1, l.Node(1).Parent)
	assert.Equal(t, 1, l.Node(2).Parent)
}

func TestWatchRootIsSynthetic(t *testing.T) {
	t.Parallel()

	var l WatchList
	assert.Equal(t, 0, l.Len())
	l.Add(1, -1, "a ( int, 0x0 )", "1")
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "ROOT", l.Node(0).Name)
	assert.Equal(t, -1, l.Node(0).Parent)
}

func TestWatchOutOfOrderInsert(t *testing.T) {
	t.Parallel()

	// Index 5 arriving first grows the arena with placeholder nodes.
	var l WatchList
	l.Add(5, -1, "b ( int, 0x0 )", "2")
	require.Equal(t, 6, l.Len())
	assert.Equal(t, unknownName, l.Node(3).Name)
	assert.Equal(t, []int{5}, l.Node(0).Children)
}

func TestWatchClear(t *testing.T) {
	t.Parallel()

	var l WatchList
	l.Add(1, -1, "a ( int, 0x0 )", "1")
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.RootChildCount())
	assert.Equal(t, -1, l.FindChild("a"))
}

func TestWatchFindChild(t *testing.T) {
	t.Parallel()

	var l WatchList
	l.Add(1, -1, "self.count ( Int, 0x20 )", "3")
	l.Add(2, -1, "other ( Int, 0x24 )", "9")

	assert.Equal(t, 1, l.FindChild("self.count"))
	assert.Equal(t, 2, l.FindChild("other"))
	assert.Equal(t, -1, l.FindChild("missing"))
}

func TestSplitWatchName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		full     string
		name     string
		typ      string
		parsesOK bool
	}{
		{"Location ( Vector, 0x1234 )", "Location", "Vector", true},
		{"m_arrUnits ( Array of XGUnit, 0xdead )", "m_arrUnits", "Array of XGUnit", true},
		{"X ( Float, 0x0 )", "X", "Float", true},
		{"garbage", "", "", false},
		{"( Int, 0x0 )", "", "", false},
		{"Name ( NoComma )", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.full, func(t *testing.T) {
			name, typ, ok := splitWatchName(tc.full)
			require.Equal(t, tc.parsesOK, ok)
			if ok {
				assert.Equal(t, tc.name, name)
				assert.Equal(t, tc.typ, typ)
			}
		})
	}
}

func TestUnparseableNameFallsBack(t *testing.T) {
	t.Parallel()

	var l WatchList
	require.False(t, l.Add(1, -1, "garbage", "v"))
	assert.Equal(t, unknownName, l.Node(1).Name)
	assert.Equal(t, unknownType, l.Node(1).Type)
	assert.Equal(t, "v", l.Node(1).Value)
}
