package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame. A frame larger than this is treated as
// a protocol error rather than an allocation request: the largest legitimate
// messages are unlock_list batches, which stay well under this even for
// pathological watch counts.
const MaxFrameSize = 64 << 20

// ReadFrame reads one length-prefixed message from r. Short reads and frames
// exceeding MaxFrameSize are errors; io.EOF is returned unwrapped when the
// stream ends cleanly between frames.
func ReadFrame(r io.Reader) (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return Message{}, io.EOF
		}
		return Message{}, fmt.Errorf("wire: reading frame header: %w", err)
	}

	n := int(int32(binary.LittleEndian.Uint32(header[:])))
	if n < 0 || n > MaxFrameSize {
		return Message{}, fmt.Errorf("wire: invalid frame length %d", n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Message{}, fmt.Errorf("wire: reading %d-byte frame body: %w", n, err)
	}
	return Message{Buf: buf}, nil
}

// WriteFrame writes the length prefix followed by the message payload.
func WriteFrame(w io.Writer, m Message) error {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(int32(len(m.Buf))))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: writing frame header: %w", err)
	}
	if _, err := w.Write(m.Buf); err != nil {
		return fmt.Errorf("wire: writing %d-byte frame body: %w", len(m.Buf), err)
	}
	return nil
}
