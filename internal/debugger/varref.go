package debugger

import "fmt"

// Variable references pack a watch address into the 31 usable bits of a DAP
// variablesReference:
//
//	bits 29-30  watch kind (local, global, user)
//	bits 22-28  frame index (up to 128 frames)
//	bits 0-21   arena index plus one (up to 4M-1 watches per frame)
//
// The arena index is stored offset by one so a valid reference is never 0,
// which DAP reserves for "no children". Exceeding either field is reported
// as an error, never truncated.
const (
	varRefIndexBits = 22
	varRefFrameBits = 7

	varRefIndexMask = 1<<varRefIndexBits - 1
	varRefFrameMask = 1<<varRefFrameBits - 1

	// MaxVarRefFrame and MaxVarRefIndex are the largest encodable frame and
	// arena indices.
	MaxVarRefFrame = varRefFrameMask
	MaxVarRefIndex = varRefIndexMask - 1
)

// EncodeVarRef packs a (kind, frame, index) triple into a variablesReference.
func EncodeVarRef(kind WatchKind, frame, index int) (int, error) {
	if kind < WatchLocal || kind > WatchUser {
		return 0, fmt.Errorf("invalid watch kind %d", int(kind))
	}
	if frame < 0 || frame > MaxVarRefFrame {
		return 0, fmt.Errorf("frame index %d exceeds the %d-frame limit of a variable reference", frame, MaxVarRefFrame+1)
	}
	if index < 0 || index > MaxVarRefIndex {
		return 0, fmt.Errorf("watch index %d exceeds the %d-watch limit of a variable reference", index, MaxVarRefIndex+1)
	}
	return int(kind)<<(varRefFrameBits+varRefIndexBits) | frame<<varRefIndexBits | (index + 1), nil
}

// DecodeVarRef unpacks a variablesReference produced by EncodeVarRef.
func DecodeVarRef(ref int) (kind WatchKind, frame, index int, err error) {
	if ref <= 0 || ref > 1<<31-1 {
		return 0, 0, 0, fmt.Errorf("invalid variable reference %d", ref)
	}
	kind = WatchKind(ref >> (varRefFrameBits + varRefIndexBits))
	if kind > WatchUser {
		return 0, 0, 0, fmt.Errorf("variable reference %d has invalid watch kind %d", ref, int(kind))
	}
	frame = (ref >> varRefIndexBits) & varRefFrameMask
	index = ref&varRefIndexMask - 1
	if index < 0 {
		return 0, 0, 0, fmt.Errorf("variable reference %d has a zero watch index", ref)
	}
	return kind, frame, index, nil
}
