package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarRefRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []WatchKind{WatchLocal, WatchGlobal, WatchUser}
	frames := []int{0, 1, 63, MaxVarRefFrame}
	indices := []int{0, 1, 4096, MaxVarRefIndex}

	for _, kind := range kinds {
		for _, frame := range frames {
			for _, index := range indices {
				ref, err := EncodeVarRef(kind, frame, index)
				require.NoError(t, err)
				require.Positive(t, ref, "a variable reference is never 0")
				require.LessOrEqual(t, ref, 1<<31-1, "must fit a 32-bit DAP reference")

				gotKind, gotFrame, gotIndex, err := DecodeVarRef(ref)
				require.NoError(t, err)
				assert.Equal(t, kind, gotKind)
				assert.Equal(t, frame, gotFrame)
				assert.Equal(t, index, gotIndex)
			}
		}
	}
}

func TestVarRefLimits(t *testing.T) {
	t.Parallel()

	assert.GreaterOrEqual(t, MaxVarRefFrame+1, 128, "must address at least 128 frames")
	assert.GreaterOrEqual(t, MaxVarRefIndex+1, 4_194_303, "must address at least 4M watches")

	_, err := EncodeVarRef(WatchLocal, MaxVarRefFrame+1, 0)
	require.Error(t, err, "frame overflow must fail loudly")

	_, err = EncodeVarRef(WatchLocal, 0, MaxVarRefIndex+1)
	require.Error(t, err, "index overflow must fail loudly")

	_, err = EncodeVarRef(WatchLocal, -1, 0)
	require.Error(t, err)

	_, err = EncodeVarRef(WatchKind(9), 0, 0)
	require.Error(t, err)
}

func TestVarRefDecodeRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, _, _, err := DecodeVarRef(0)
	require.Error(t, err, "0 is reserved for 'no children'")

	_, _, _, err = DecodeVarRef(-5)
	require.Error(t, err)

	// Kind bits of 3 name no watch list.
	_, _, _, err = DecodeVarRef(3<<29 | 1)
	require.Error(t, err)

	// A zero stored index never comes out of EncodeVarRef.
	_, _, _, err = DecodeVarRef(1 << 22)
	require.Error(t, err)
}

func TestVarRefDistinctKinds(t *testing.T) {
	t.Parallel()

	local, err := EncodeVarRef(WatchLocal, 0, 0)
	require.NoError(t, err)
	global, err := EncodeVarRef(WatchGlobal, 0, 0)
	require.NoError(t, err)
	user, err := EncodeVarRef(WatchUser, 0, 0)
	require.NoError(t, err)

	assert.NotEqual(t, local, global)
	assert.NotEqual(t, global, user)
	assert.NotEqual(t, local, user)
}
