package types

import "github.com/OwlPlatform/owl-common/wire/codec"

// ReadUint128 reads a 128-bit identifier as upper then lower big-endian
// u64s (16 bytes), mirroring grail_types.hpp's readTransmitter's id field.
func ReadUint128(r *codec.Reader) Uint128 {
	upper, lower := r.ReadUint128Halves()
	return Uint128{Upper: upper, Lower: lower}
}

// WriteUint128 appends u as upper then lower big-endian u64s.
func WriteUint128(e *codec.Encoder, u Uint128) int {
	return e.WriteUint128Halves(u.Upper, u.Lower)
}

// ReadTransmitter reads a Transmitter: phy as u8, then the 128-bit id
// (17 bytes total), mirroring grail_types.hpp's readTransmitterFromBuffer.
func ReadTransmitter(r *codec.Reader) Transmitter {
	phy := r.ReadU8()
	id := ReadUint128(r)
	return Transmitter{Phy: phy, ID: id}
}

// WriteTransmitter appends a Transmitter as phy (u8) then its 128-bit id.
func WriteTransmitter(e *codec.Encoder, t Transmitter) int {
	n := e.WriteU8(t.Phy)
	n += WriteUint128(e, t.ID)
	return n
}

// ReadSample decodes a Sample record: phy, tx_id, rx_id, rx_timestamp,
// rss, then sense_data consuming the remainder of the reader. The caller
// is responsible for top-level frame validation (declared length,
// MessageID, OutOfRange); ReadSample always returns Valid = !r.OutOfRange()
// as observed immediately after parsing this record.
func ReadSample(r *codec.Reader) Sample {
	s := Sample{}
	s.Phy = r.ReadU8()
	s.TxID = ReadUint128(r)
	s.RxID = ReadUint128(r)
	s.RxTimestamp = r.ReadI64()
	s.RSS = r.ReadF32()
	rem := r.Remaining()
	s.SenseData = r.ReadSizedBytesN(rem)
	s.Valid = !r.OutOfRange()
	return s
}

// WriteSample appends a Sample record in the wire order: phy, tx_id,
// rx_id, rx_timestamp, rss, sense_data (unprefixed, consumes to end).
func WriteSample(e *codec.Encoder, s Sample) int {
	n := e.WriteU8(s.Phy)
	n += WriteUint128(e, s.TxID)
	n += WriteUint128(e, s.RxID)
	n += e.WriteI64(s.RxTimestamp)
	n += e.WriteF32(s.RSS)
	e.RawBytes(s.SenseData)
	n += len(s.SenseData)
	return n
}
