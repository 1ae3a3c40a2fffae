package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	e := NewEncoder(0)
	e.WriteU8(0xAB)
	e.WriteU16(0x1234)
	e.WriteU32(0xDEADBEEF)
	e.WriteI32(-1)
	e.WriteU64(0x0102030405060708)
	e.WriteI64(-2)
	e.WriteF32(3.5)

	r := NewReader(e.Bytes())
	require.Equal(t, uint8(0xAB), r.ReadU8())
	require.Equal(t, uint16(0x1234), r.ReadU16())
	require.Equal(t, uint32(0xDEADBEEF), r.ReadU32())
	require.Equal(t, int32(-1), r.ReadI32())
	require.Equal(t, uint64(0x0102030405060708), r.ReadU64())
	require.Equal(t, int64(-2), r.ReadI64())
	require.Equal(t, float32(3.5), r.ReadF32())
	require.False(t, r.OutOfRange())
}

func TestBigEndianInvariance(t *testing.T) {
	e := NewEncoder(0)
	e.WriteU32(0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, e.Bytes())
}

func TestSizedUTF16RoundTrip(t *testing.T) {
	e := NewEncoder(0)
	e.WriteSizedUTF16("lamp.on")
	r := NewReader(e.Bytes())
	got := r.ReadSizedUTF16()
	require.Equal(t, "lamp.on", got)
	require.False(t, r.OutOfRange())
}

func TestSizedUTF16OddLengthLatchesOutOfRange(t *testing.T) {
	// length prefix claims 3 bytes, which is odd -> always invalid.
	buf := []byte{0, 0, 0, 3, 'a', 'b', 'c'}
	r := NewReader(buf)
	got := r.ReadSizedUTF16()
	require.Equal(t, "", got)
	require.True(t, r.OutOfRange())
}

func TestTailUTF16RoundTrip(t *testing.T) {
	e := NewEncoder(0)
	e.WriteTailUTF16("lamp.*")
	r := NewReader(e.Bytes())
	got := r.ReadTailUTF16()
	require.Equal(t, "lamp.*", got)
	require.False(t, r.OutOfRange())
}

func TestSizedBytesRoundTrip(t *testing.T) {
	e := NewEncoder(0)
	payload := []byte{1, 2, 3, 4, 5}
	e.WriteSizedBytes(payload)
	r := NewReader(e.Bytes())
	got := r.ReadSizedBytes()
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("sized bytes round-trip mismatch (-want +got):\n%s", diff)
	}
	require.False(t, r.OutOfRange())
}

func TestReaderExhaustionLatchesAndStays(t *testing.T) {
	r := NewReader([]byte{0x01})
	require.Equal(t, uint8(0x01), r.ReadU8())
	require.False(t, r.OutOfRange())

	// No bytes remain; further reads must return zero values and latch.
	require.Equal(t, uint8(0), r.ReadU8())
	require.True(t, r.OutOfRange())
	require.Equal(t, uint32(0), r.ReadU32())
	require.True(t, r.OutOfRange())
}

func TestBoundedTruncationSafety(t *testing.T) {
	e := NewEncoder(0)
	e.WriteU32(42)
	e.WriteSizedUTF16("hello")
	e.WriteSizedBytes([]byte{9, 9, 9})
	full := e.Bytes()

	for k := 0; k < len(full); k++ {
		truncated := full[:k]
		r := NewReader(truncated)
		_ = r.ReadU32()
		_ = r.ReadSizedUTF16()
		_ = r.ReadSizedBytes()
		// Must never panic (enforced by the test running at all) and must
		// report out-of-range for every truncation shorter than the full
		// encoding, since three nonzero-length fields were written.
		require.True(t, r.OutOfRange(), "truncation at %d bytes should be out-of-range", k)
	}
}

func TestReadVectorAndWriteVector(t *testing.T) {
	type pair struct {
		a uint32
		b uint32
	}
	items := []pair{{1, 2}, {3, 4}, {5, 6}}

	e := NewEncoder(0)
	WriteVector(e, items, func(e *Encoder, p pair) {
		e.WriteU32(p.a)
		e.WriteU32(p.b)
	})

	r := NewReader(e.Bytes())
	got := ReadVector(r, func(r *Reader) pair {
		return pair{a: r.ReadU32(), b: r.ReadU32()}
	})

	if diff := cmp.Diff(items, got, cmp.AllowUnexported(pair{})); diff != "" {
		t.Fatalf("vector round-trip mismatch (-want +got):\n%s", diff)
	}
	require.False(t, r.OutOfRange())
}

func TestFrameRoundTrip(t *testing.T) {
	body := []byte{0x03, 0xAA, 0xBB, 0xCC}
	frame := EncodeFrame(body)
	require.Equal(t, 4+len(body), len(frame))

	r, hdr := ParseFrameHeader(frame)
	require.True(t, hdr.LengthOK)
	require.Equal(t, uint32(len(body)), hdr.DeclaredLen)
	msgID := r.ReadU8()
	require.Equal(t, uint8(0x03), msgID)
}

func TestHandshakeRoundTrip(t *testing.T) {
	frame := EncodeHandshake("GRAIL sensor protocol")
	id, version, ext, ok := DecodeHandshake(frame)
	require.True(t, ok)
	require.Equal(t, "GRAIL sensor protocol", id)
	require.Equal(t, uint8(0), version)
	require.Equal(t, uint8(0), ext)
}
