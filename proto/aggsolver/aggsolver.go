// Package aggsolver implements the aggregator<->solver wire protocol
// handshake, keep-alive, certificate exchange, subscription
// request/response, device position, server sample, and buffer-overrun
// notification, grounded on aggregator_solver_protocol.hpp.
package aggsolver

import (
	"github.com/OwlPlatform/owl-common/wire/codec"
	"github.com/OwlPlatform/owl-common/wire/types"
)

// Identifier is the handshake protocol-identification string.
const Identifier = "GRAIL solver protocol"

// MessageID identifies the kind of a non-handshake aggsolver frame.
type MessageID uint8

const (
	KeepAlive            MessageID = 0
	Certificate          MessageID = 1
	AckCertificate       MessageID = 2
	SubscriptionRequest  MessageID = 3
	SubscriptionResponse MessageID = 4
	DevicePosition       MessageID = 5
	ServerSample         MessageID = 6
	BufferOverrun        MessageID = 7
)

// EncodeHandshake builds the handshake frame an aggregator or solver
// sends on connect.
func EncodeHandshake() []byte {
	return codec.EncodeHandshake(Identifier)
}

// DecodeHandshake reports whether buf's identifier matches Identifier.
func DecodeHandshake(buf []byte) bool {
	id, _, _, ok := codec.DecodeHandshake(buf)
	return ok && id == Identifier
}

// EncodeKeepAlive builds a keep_alive frame (empty payload).
func EncodeKeepAlive() []byte {
	return encodeEmpty(KeepAlive)
}

// EncodeCertificate builds a certificate frame carrying an opaque
// certificate blob.
func EncodeCertificate(cert []byte) []byte {
	body := codec.NewEncoder(5 + len(cert))
	body.WriteU8(uint8(Certificate))
	body.WriteSizedBytes(cert)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeCertificate parses a certificate frame. Returns nil and false on
// any malformation.
func DecodeCertificate(frame []byte) ([]byte, bool) {
	r, id, ok := openFrame(frame, Certificate)
	if !ok {
		return nil, false
	}
	cert := r.ReadSizedBytes()
	if r.OutOfRange() {
		return nil, false
	}
	_ = id
	return cert, true
}

// EncodeAckCertificate builds an ack_certificate frame (empty payload).
func EncodeAckCertificate() []byte {
	return encodeEmpty(AckCertificate)
}

// EncodeBufferOverrun builds a buffer_overrun frame (empty payload).
func EncodeBufferOverrun() []byte {
	return encodeEmpty(BufferOverrun)
}

func encodeEmpty(id MessageID) []byte {
	return codec.EncodeFrame([]byte{uint8(id)})
}

// DecodeKind reads just the MessageID byte of a frame without
// interpreting the payload, for dispatch. Returns ok = false if the
// frame is too short to contain a MessageID or the declared length does
// not match the buffer.
func DecodeKind(frame []byte) (MessageID, bool) {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK || hdr.DeclaredLen < 1 {
		return 0, false
	}
	id := r.ReadU8()
	if r.OutOfRange() {
		return 0, false
	}
	return MessageID(id), true
}

// openFrame parses the length prefix and MessageID, verifying both
// against expected, and returns a Reader positioned at the payload.
func openFrame(frame []byte, expected MessageID) (*codec.Reader, MessageID, bool) {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK || hdr.DeclaredLen < 1 {
		return nil, 0, false
	}
	id := MessageID(r.ReadU8())
	if id != expected {
		return nil, id, false
	}
	return r, id, true
}

// EncodeSubscription builds a subscription_request or subscription_response
// frame from a Subscription (rule list), sharing the same payload shape.
// kind must be SubscriptionRequest or SubscriptionResponse.
func EncodeSubscription(kind MessageID, sub types.Subscription) []byte {
	body := codec.NewEncoder(64)
	body.WriteU8(uint8(kind))
	codec.WriteVector(body, []types.Rule(sub), writeRule)
	return codec.EncodeFrame(body.Bytes())
}

func writeRule(e *codec.Encoder, rule types.Rule) {
	e.WriteU8(rule.Phy)
	codec.WriteVector(e, rule.Txers, func(e *codec.Encoder, txer types.TxerRule) {
		types.WriteUint128(e, txer.BaseID)
		types.WriteUint128(e, txer.Mask)
	})
	e.WriteU64(rule.UpdateInterval)
}

func readRule(r *codec.Reader) types.Rule {
	rule := types.Rule{}
	rule.Phy = r.ReadU8()
	rule.Txers = codec.ReadVector(r, func(r *codec.Reader) types.TxerRule {
		base := types.ReadUint128(r)
		mask := types.ReadUint128(r)
		return types.TxerRule{BaseID: base, Mask: mask}
	})
	rule.UpdateInterval = r.ReadU64()
	return rule
}

// DecodeSubscription parses a subscription frame, accepting either
// SubscriptionRequest or SubscriptionResponse as the MessageID. Returns
// the MessageID actually present, the parsed Subscription, and validity.
func DecodeSubscription(frame []byte) (MessageID, types.Subscription, bool) {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK || hdr.DeclaredLen < 1 {
		return 0, nil, false
	}
	id := MessageID(r.ReadU8())
	if id != SubscriptionRequest && id != SubscriptionResponse {
		return id, nil, false
	}
	sub := codec.ReadVector(r, readRule)
	if r.OutOfRange() {
		return id, nil, false
	}
	return id, sub, true
}

// EncodeServerSample builds a server_sample frame carrying a sample
// record, using the same record layout as the sensor-aggregator link.
func EncodeServerSample(s types.Sample) []byte {
	body := codec.NewEncoder(32 + len(s.SenseData))
	body.WriteU8(uint8(ServerSample))
	types.WriteSample(body, s)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeServerSample parses a server_sample frame.
func DecodeServerSample(frame []byte) types.Sample {
	r, _, ok := openFrame(frame, ServerSample)
	if !ok {
		return types.Sample{Valid: false}
	}
	s := types.ReadSample(r)
	if r.OutOfRange() {
		return types.Sample{Valid: false}
	}
	return s
}

// DevicePositionRecord is the payload of a device_position message,
// resolved from sample_data.hpp's DevicePosition struct (see DESIGN.md).
type DevicePositionRecord struct {
	Type      uint8 // FSM_TR bits (types.PhyFixed / PhySemiFixed / PhyMobile, OR'd with Transmitter/Receiver)
	Phy       uint8
	DeviceID  types.Uint128
	X, Y, Z   float32
	RegionURI string
	Valid     bool
}

// EncodeDevicePosition builds a device_position frame.
func EncodeDevicePosition(p DevicePositionRecord) []byte {
	body := codec.NewEncoder(32 + len(p.RegionURI)*2)
	body.WriteU8(uint8(DevicePosition))
	body.WriteU8(p.Type)
	body.WriteU8(p.Phy)
	types.WriteUint128(body, p.DeviceID)
	body.WriteF32(p.X)
	body.WriteF32(p.Y)
	body.WriteF32(p.Z)
	body.WriteSizedUTF16(p.RegionURI)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeDevicePosition parses a device_position frame.
func DecodeDevicePosition(frame []byte) DevicePositionRecord {
	r, _, ok := openFrame(frame, DevicePosition)
	if !ok {
		return DevicePositionRecord{Valid: false}
	}
	p := DevicePositionRecord{}
	p.Type = r.ReadU8()
	p.Phy = r.ReadU8()
	p.DeviceID = types.ReadUint128(r)
	p.X = r.ReadF32()
	p.Y = r.ReadF32()
	p.Z = r.ReadF32()
	p.RegionURI = r.ReadSizedUTF16()
	p.Valid = !r.OutOfRange()
	return p
}
