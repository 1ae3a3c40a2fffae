// Package sensoragg implements the sensor<->aggregator wire protocol
// a handshake and a single-kind sample message with no MessageID
// byte, grounded on sensor_aggregator_protocol.hpp.
package sensoragg

import (
	"github.com/OwlPlatform/owl-common/wire/codec"
	"github.com/OwlPlatform/owl-common/wire/types"
)

// Identifier is the handshake protocol-identification string exchanged
// on connect.
const Identifier = "GRAIL sensor protocol"

// EncodeHandshake builds the handshake frame a sensor sends on connect.
func EncodeHandshake() []byte {
	return codec.EncodeHandshake(Identifier)
}

// DecodeHandshake parses a handshake frame and reports whether its
// identifier matches Identifier exactly. Callers should treat a false
// result as a reason to close the connection, not retry.
func DecodeHandshake(buf []byte) (ok bool) {
	id, _, _, parsed := codec.DecodeHandshake(buf)
	return parsed && id == Identifier
}

// EncodeSample builds a sample frame: u32 total length, then the sample
// record. There is no MessageID byte — this protocol is single-kind.
func EncodeSample(s types.Sample) []byte {
	body := codec.NewEncoder(32 + len(s.SenseData))
	types.WriteSample(body, s)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeSample parses a sample frame. A declared-length mismatch, or any
// internal field overrun, produces an invalid sample (Valid = false);
// decoding never returns a Go error.
func DecodeSample(frame []byte) types.Sample {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK {
		return types.Sample{Valid: false}
	}
	s := types.ReadSample(r)
	if r.OutOfRange() {
		return types.Sample{Valid: false}
	}
	return s
}
