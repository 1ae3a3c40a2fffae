package codec

// EncodeHandshake builds the handshake frame shared by all three GRAIL/OWL
// protocols: `u32 identifier_length_be | identifier_ascii | u8 version(=0)
// | u8 extension(=0)`. Version and extension are always zero; protocol
// version negotiation is out of scope for this module.
func EncodeHandshake(identifier string) []byte {
	e := NewEncoder(4 + len(identifier) + 2)
	e.WriteSizedASCII(identifier)
	e.WriteU8(0) // version
	e.WriteU8(0) // extension
	return e.Bytes()
}

// DecodeHandshake parses a handshake frame and returns the identifier,
// version, and extension bytes read. ok is false if the buffer was
// truncated partway through the fixed fields.
func DecodeHandshake(buf []byte) (identifier string, version, extension uint8, ok bool) {
	r := NewReader(buf)
	identifier = r.ReadSizedASCII()
	version = r.ReadU8()
	extension = r.ReadU8()
	return identifier, version, extension, !r.OutOfRange()
}

// WriteSizedASCII appends a u32 byte-length prefix followed by the raw
// ASCII bytes of s. Handshake identifiers are plain ASCII, not UTF-16.
func (e *Encoder) WriteSizedASCII(s string) int {
	n := e.WriteU32(uint32(len(s)))
	e.buf = append(e.buf, s...)
	return n + len(s)
}

// ReadSizedASCII reads a u32 byte-length L followed by L raw ASCII bytes.
func (r *Reader) ReadSizedASCII() string {
	l := r.ReadU32()
	if r.outOfRange {
		return ""
	}
	b := r.take(int(l))
	if b == nil {
		return ""
	}
	return string(b)
}
