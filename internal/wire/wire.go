// Package wire implements the binary framing shared by the debugger
// interface and the debugger client.
//
// Every message on the socket is a length-prefixed payload: a 32-bit
// little-endian byte count followed by that many bytes. The payload begins
// with a single tag byte identifying the message kind, followed by
// kind-specific fields. Field encodings:
//   - bool:   1 byte (0 or 1)
//   - int:    32-bit little-endian signed
//   - string: 32-bit length followed by the raw bytes, no terminator
//
// The command and event kinds themselves live in the wire/command and
// wire/event subpackages. This package provides the message container, the
// field-level encoder and decoder, and the send queue.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Message is a single serialized payload, excluding the length prefix.
type Message struct {
	Buf []byte
}

// Len returns the payload length in bytes.
func (m Message) Len() int { return len(m.Buf) }

// Encoder serializes message fields into a buffer of a precomputed size.
// Writing past the declared size, or finishing short of it, is a bug in the
// caller's size accounting and panics.
type Encoder struct {
	buf []byte
	pos int
}

// NewEncoder returns an encoder for a message of exactly size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, size)}
}

func (e *Encoder) need(n int) {
	if e.pos+n > len(e.buf) {
		panic(fmt.Sprintf("wire: encoding overruns declared message length %d", len(e.buf)))
	}
}

// PutTag writes the single kind byte.
func (e *Encoder) PutTag(tag byte) {
	e.need(1)
	e.buf[e.pos] = tag
	e.pos++
}

// PutBool writes a single-byte boolean.
func (e *Encoder) PutBool(b bool) {
	e.need(1)
	if b {
		e.buf[e.pos] = 1
	} else {
		e.buf[e.pos] = 0
	}
	e.pos++
}

// PutInt writes a 32-bit little-endian signed integer.
func (e *Encoder) PutInt(v int) {
	e.need(4)
	binary.LittleEndian.PutUint32(e.buf[e.pos:], uint32(int32(v)))
	e.pos += 4
}

// PutString writes a length-prefixed string. The bytes are passed through
// untouched; the protocol does not distinguish UTF-8 from ANSI.
func (e *Encoder) PutString(s string) {
	e.PutInt(len(s))
	e.need(len(s))
	copy(e.buf[e.pos:], s)
	e.pos += len(s)
}

// Finish verifies the cursor landed exactly on the declared length and
// returns the completed message.
func (e *Encoder) Finish() Message {
	if e.pos != len(e.buf) {
		panic(fmt.Sprintf("wire: encoded %d bytes of declared %d", e.pos, len(e.buf)))
	}
	return Message{Buf: e.buf}
}

// StringSize returns the serialized size of a string field.
func StringSize(s string) int { return 4 + len(s) }

// Serialized sizes of the fixed-width field types.
const (
	TagSize  = 1
	IntSize  = 4
	BoolSize = 1
)

// Decoder reads message fields from a payload. Errors are sticky: after the
// first failure every accessor returns a zero value and Finish reports the
// error.
type Decoder struct {
	buf []byte
	pos int
	err error
}

// NewDecoder returns a decoder positioned at the start of the payload.
func NewDecoder(m Message) *Decoder {
	return &Decoder{buf: m.Buf}
}

func (d *Decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.pos+n > len(d.buf) {
		d.fail("wire: message truncated: need %d bytes at offset %d of %d", n, d.pos, len(d.buf))
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Tag reads the kind byte.
func (d *Decoder) Tag() byte {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bool reads a single-byte boolean.
func (d *Decoder) Bool() bool {
	b := d.take(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

// Int reads a 32-bit little-endian signed integer.
func (d *Decoder) Int() int {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return int(int32(binary.LittleEndian.Uint32(b)))
}

// String reads a length-prefixed string.
func (d *Decoder) String() string {
	n := d.Int()
	if d.err != nil {
		return ""
	}
	if n < 0 {
		d.fail("wire: negative string length %d at offset %d", n, d.pos)
		return ""
	}
	b := d.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// Err returns the first decoding error, if any.
func (d *Decoder) Err() error { return d.err }

// Finish verifies the full payload was consumed.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != len(d.buf) {
		return fmt.Errorf("wire: message length mismatch: consumed %d of %d bytes", d.pos, len(d.buf))
	}
	return nil
}
