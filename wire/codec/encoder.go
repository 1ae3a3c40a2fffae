package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Encoder appends primitive and composite values to a growing byte
// sequence, mirroring netbuffer.hpp's pushBackVal/pushBackSizedUTF16
// family. Encoding is infallible modulo out-of-memory.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with an empty backing buffer. sizeHint,
// if non-zero, pre-allocates capacity to avoid reallocation on the
// common path of encoding one frame.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteU8 appends a single byte and returns the number of bytes written.
func (e *Encoder) WriteU8(v uint8) int {
	e.buf = append(e.buf, v)
	return 1
}

// WriteU16 appends a big-endian uint16.
func (e *Encoder) WriteU16(v uint16) int {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return 2
}

// WriteU32 appends a big-endian uint32.
func (e *Encoder) WriteU32(v uint32) int {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return 4
}

// WriteI32 appends a big-endian int32.
func (e *Encoder) WriteI32(v int32) int {
	return e.WriteU32(uint32(v))
}

// WriteU64 appends a big-endian uint64.
func (e *Encoder) WriteU64(v uint64) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return 8
}

// WriteI64 appends a big-endian int64.
func (e *Encoder) WriteI64(v int64) int {
	return e.WriteU64(uint64(v))
}

// WriteF32 appends a big-endian IEEE-754 32-bit float.
func (e *Encoder) WriteF32(v float32) int {
	return e.WriteU32(math.Float32bits(v))
}

// WriteUint128Halves appends upper then lower as big-endian u64s.
func (e *Encoder) WriteUint128Halves(upper, lower uint64) int {
	n := e.WriteU64(upper)
	n += e.WriteU64(lower)
	return n
}

// RawBytes appends b with no length prefix. Used for tail fields like a
// Sample's sense_data that consume the remainder of a message.
func (e *Encoder) RawBytes(b []byte) int {
	e.buf = append(e.buf, b...)
	return len(b)
}

// WriteSizedBytes appends a u32 length prefix followed by b.
func (e *Encoder) WriteSizedBytes(b []byte) int {
	n := e.WriteU32(uint32(len(b)))
	e.buf = append(e.buf, b...)
	return n + len(b)
}

// WriteSizedUTF16 appends a u32 byte-length prefix followed by s encoded
// as UTF-16BE code units.
func (e *Encoder) WriteSizedUTF16(s string) int {
	encoded := encodeUTF16BE(s)
	n := e.WriteU32(uint32(len(encoded)))
	e.buf = append(e.buf, encoded...)
	return n + len(encoded)
}

// WriteTailUTF16 appends s encoded as UTF-16BE code units with no length
// prefix; it is intended to be the last field of a message.
func (e *Encoder) WriteTailUTF16(s string) int {
	encoded := encodeUTF16BE(s)
	e.buf = append(e.buf, encoded...)
	return len(encoded)
}

func encodeUTF16BE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(out[2*i:2*i+2], u)
	}
	return out
}

// WriteVector appends a u32 count followed by write(item) for each item
// in items, mirroring grail_types.hpp's unpackGRAILVector's write-side
// counterpart.
func WriteVector[T any](e *Encoder, items []T, write func(*Encoder, T)) int {
	n := e.WriteU32(uint32(len(items)))
	for _, item := range items {
		write(e, item)
	}
	return n // caller rarely needs byte count for vectors; n reported for parity with other Write* methods
}
