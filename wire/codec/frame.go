package codec

import "encoding/binary"

// EncodeFrame prepends a u32 big-endian length prefix to body, producing
// the on-wire frame `u32 length | body`. For non-handshake messages body
// is `u8 MessageID | payload`; for the sensor<->aggregator sample message
// (single-kind, no MessageID byte) body is the payload itself. Total
// on-wire size is len(body)+4.
func EncodeFrame(body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(body)))
	copy(out[4:], body)
	return out
}

// FrameHeader is the result of parsing a frame's length prefix.
type FrameHeader struct {
	// DeclaredLen is the length value read from the frame's first 4
	// bytes (the length of everything after those 4 bytes).
	DeclaredLen uint32
	// LengthOK is true iff len(buf) == DeclaredLen+4. Every decoder must
	// check this before trusting the frame.
	LengthOK bool
}

// ParseFrameHeader reads the 4-byte length prefix from buf and returns a
// Reader positioned just after it (ready to read the MessageID byte, if
// any, followed by the payload), plus the parsed FrameHeader. Callers
// must still check r.OutOfRange() after parsing the rest of the frame.
func ParseFrameHeader(buf []byte) (*Reader, FrameHeader) {
	r := NewReader(buf)
	declared := r.ReadU32()
	return r, FrameHeader{
		DeclaredLen: declared,
		LengthOK:    len(buf) == int(declared)+4,
	}
}
