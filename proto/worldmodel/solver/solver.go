package solver

import (
	"github.com/OwlPlatform/owl-common/wire/codec"
	"github.com/OwlPlatform/owl-common/wire/types"
)

// EncodeHandshake builds the handshake frame a solver sends on connect.
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
	return codec.EncodeFrame([]byte{uint8(KeepAlive)})
}

func openFrame(frame []byte, expected MessageID) (*codec.Reader, bool) {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK || hdr.DeclaredLen < 1 {
		return nil, false
	}
	if MessageID(r.ReadU8()) != expected {
		return nil, false
	}
	return r, true
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// EncodeTypeAnnounce builds a type_announce frame. A solver must send
// this before pushing any solver_data; on_demand marks a type whose data
// is produced only when a client is subscribed.
func EncodeTypeAnnounce(a TypeAnnouncement) []byte {
	body := codec.NewEncoder(16*len(a.Types) + len(a.Origin)*2)
	body.WriteU8(uint8(TypeAnnounce))
	codec.WriteVector(body, a.Types, func(e *codec.Encoder, entry TypeEntry) {
		e.WriteU32(entry.Alias)
		e.WriteSizedUTF16(entry.Type)
		e.WriteU8(boolToU8(entry.OnDemand))
	})
	body.WriteTailUTF16(a.Origin)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeTypeAnnounce parses a type_announce frame.
func DecodeTypeAnnounce(frame []byte) (TypeAnnouncement, bool) {
	r, ok := openFrame(frame, TypeAnnounce)
	if !ok {
		return TypeAnnouncement{}, false
	}
	a := TypeAnnouncement{}
	a.Types = codec.ReadVector(r, func(r *codec.Reader) TypeEntry {
		alias := r.ReadU32()
		typ := r.ReadSizedUTF16()
		onDemand := r.ReadU8() != 0
		return TypeEntry{Alias: alias, Type: typ, OnDemand: onDemand}
	})
	a.Origin = r.ReadTailUTF16()
	if r.OutOfRange() {
		return TypeAnnouncement{}, false
	}
	return a, true
}

func encodeOnDemandGroups(kind MessageID, groups []OnDemandGroup) []byte {
	body := codec.NewEncoder(32 * len(groups))
	body.WriteU8(uint8(kind))
	codec.WriteVector(body, groups, func(e *codec.Encoder, g OnDemandGroup) {
		e.WriteU32(g.Alias)
		codec.WriteVector(e, g.URIPatterns, func(e *codec.Encoder, pattern string) {
			e.WriteSizedUTF16(pattern)
		})
	})
	return codec.EncodeFrame(body.Bytes())
}

func decodeOnDemandGroups(frame []byte, expected MessageID) ([]OnDemandGroup, bool) {
	r, ok := openFrame(frame, expected)
	if !ok {
		return nil, false
	}
	groups := codec.ReadVector(r, func(r *codec.Reader) OnDemandGroup {
		alias := r.ReadU32()
		patterns := codec.ReadVector(r, func(r *codec.Reader) string {
			return r.ReadSizedUTF16()
		})
		return OnDemandGroup{Alias: alias, URIPatterns: patterns}
	})
	if r.OutOfRange() {
		return nil, false
	}
	return groups, true
}

// EncodeStartOnDemand builds a start_on_demand frame (world-model ->
// solver).
func EncodeStartOnDemand(groups []OnDemandGroup) []byte {
	return encodeOnDemandGroups(StartOnDemand, groups)
}

// DecodeStartOnDemand parses a start_on_demand frame.
func DecodeStartOnDemand(frame []byte) ([]OnDemandGroup, bool) {
	return decodeOnDemandGroups(frame, StartOnDemand)
}

// EncodeStopOnDemand builds a stop_on_demand frame; it shares
// on-demand group's payload format with start_on_demand — only the
// MessageID differs.
func EncodeStopOnDemand(groups []OnDemandGroup) []byte {
	return encodeOnDemandGroups(StopOnDemand, groups)
}

// DecodeStopOnDemand parses a stop_on_demand frame.
func DecodeStopOnDemand(frame []byte) ([]OnDemandGroup, bool) {
	return decodeOnDemandGroups(frame, StopOnDemand)
}

// EncodeSolverData builds a solver_data frame.
func EncodeSolverData(d SolverData) []byte {
	body := codec.NewEncoder(32 * len(d.Solutions))
	body.WriteU8(uint8(SolverDataKind))
	body.WriteU8(boolToU8(d.CreateURIs))
	codec.WriteVector(body, d.Solutions, func(e *codec.Encoder, s Solution) {
		e.WriteU32(s.TypeAlias)
		e.WriteI64(int64(s.Time))
		e.WriteSizedUTF16(s.TargetURI)
		e.WriteSizedBytes(s.Data)
	})
	return codec.EncodeFrame(body.Bytes())
}

// DecodeSolverData parses a solver_data frame.
func DecodeSolverData(frame []byte) (SolverData, bool) {
	r, ok := openFrame(frame, SolverDataKind)
	if !ok {
		return SolverData{}, false
	}
	d := SolverData{}
	d.CreateURIs = r.ReadU8() != 0
	d.Solutions = codec.ReadVector(r, func(r *codec.Reader) Solution {
		s := Solution{}
		s.TypeAlias = r.ReadU32()
		s.Time = types.GrailTime(r.ReadI64())
		s.TargetURI = r.ReadSizedUTF16()
		s.Data = r.ReadSizedBytes()
		return s
	})
	if r.OutOfRange() {
		return SolverData{}, false
	}
	return d, true
}

func encodeURILifecycle(kind MessageID, l URILifecycle) []byte {
	body := codec.NewEncoder(16 + len(l.URI)*2 + len(l.Origin)*2)
	body.WriteU8(uint8(kind))
	body.WriteSizedUTF16(l.URI)
	body.WriteI64(int64(l.Time))
	body.WriteTailUTF16(l.Origin)
	return codec.EncodeFrame(body.Bytes())
}

func decodeURILifecycle(frame []byte, expected MessageID) (URILifecycle, bool) {
	r, ok := openFrame(frame, expected)
	if !ok {
		return URILifecycle{}, false
	}
	l := URILifecycle{}
	l.URI = r.ReadSizedUTF16()
	l.Time = types.GrailTime(r.ReadI64())
	l.Origin = r.ReadTailUTF16()
	if r.OutOfRange() {
		return URILifecycle{}, false
	}
	return l, true
}

// EncodeCreateURI builds a create_uri frame.
func EncodeCreateURI(l URILifecycle) []byte { return encodeURILifecycle(CreateURI, l) }

// DecodeCreateURI parses a create_uri frame.
func DecodeCreateURI(frame []byte) (URILifecycle, bool) { return decodeURILifecycle(frame, CreateURI) }

// EncodeExpireURI builds an expire_uri frame.
func EncodeExpireURI(l URILifecycle) []byte { return encodeURILifecycle(ExpireURI, l) }

// DecodeExpireURI parses an expire_uri frame.
func DecodeExpireURI(frame []byte) (URILifecycle, bool) { return decodeURILifecycle(frame, ExpireURI) }

// EncodeDeleteURI builds a delete_uri frame. Unlike create_uri/
// expire_uri, delete_uri carries no grail-time field.
func EncodeDeleteURI(d URIDeletion) []byte {
	body := codec.NewEncoder(8 + len(d.URI)*2 + len(d.Origin)*2)
	body.WriteU8(uint8(DeleteURI))
	body.WriteSizedUTF16(d.URI)
	body.WriteTailUTF16(d.Origin)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeDeleteURI parses a delete_uri frame.
func DecodeDeleteURI(frame []byte) (URIDeletion, bool) {
	r, ok := openFrame(frame, DeleteURI)
	if !ok {
		return URIDeletion{}, false
	}
	d := URIDeletion{}
	d.URI = r.ReadSizedUTF16()
	d.Origin = r.ReadTailUTF16()
	if r.OutOfRange() {
		return URIDeletion{}, false
	}
	return d, true
}

func encodeAttributeLifecycle(kind MessageID, l AttributeLifecycle) []byte {
	body := codec.NewEncoder(16 + len(l.URI)*2 + len(l.AttributeName)*2 + len(l.Origin)*2)
	body.WriteU8(uint8(kind))
	body.WriteSizedUTF16(l.URI)
	body.WriteSizedUTF16(l.AttributeName)
	body.WriteI64(int64(l.Time))
	body.WriteTailUTF16(l.Origin)
	return codec.EncodeFrame(body.Bytes())
}

func decodeAttributeLifecycle(frame []byte, expected MessageID) (AttributeLifecycle, bool) {
	r, ok := openFrame(frame, expected)
	if !ok {
		return AttributeLifecycle{}, false
	}
	l := AttributeLifecycle{}
	l.URI = r.ReadSizedUTF16()
	l.AttributeName = r.ReadSizedUTF16()
	l.Time = types.GrailTime(r.ReadI64())
	l.Origin = r.ReadTailUTF16()
	if r.OutOfRange() {
		return AttributeLifecycle{}, false
	}
	return l, true
}

// EncodeExpireAttribute builds an expire_attribute frame.
func EncodeExpireAttribute(l AttributeLifecycle) []byte {
	return encodeAttributeLifecycle(ExpireAttribute, l)
}

// DecodeExpireAttribute parses an expire_attribute frame.
func DecodeExpireAttribute(frame []byte) (AttributeLifecycle, bool) {
	return decodeAttributeLifecycle(frame, ExpireAttribute)
}

// EncodeDeleteAttribute builds a delete_attribute frame. Unlike
// expire_attribute, delete_attribute carries no grail-time field.
func EncodeDeleteAttribute(d AttributeDeletion) []byte {
	body := codec.NewEncoder(8 + len(d.URI)*2 + len(d.AttributeName)*2 + len(d.Origin)*2)
	body.WriteU8(uint8(DeleteAttribute))
	body.WriteSizedUTF16(d.URI)
	body.WriteSizedUTF16(d.AttributeName)
	body.WriteTailUTF16(d.Origin)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeDeleteAttribute parses a delete_attribute frame.
func DecodeDeleteAttribute(frame []byte) (AttributeDeletion, bool) {
	r, ok := openFrame(frame, DeleteAttribute)
	if !ok {
		return AttributeDeletion{}, false
	}
	d := AttributeDeletion{}
	d.URI = r.ReadSizedUTF16()
	d.AttributeName = r.ReadSizedUTF16()
	d.Origin = r.ReadTailUTF16()
	if r.OutOfRange() {
		return AttributeDeletion{}, false
	}
	return d, true
}
