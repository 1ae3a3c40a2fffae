package client

import (
	"github.com/OwlPlatform/owl-common/wire/codec"
	"github.com/OwlPlatform/owl-common/wire/types"
)

// EncodeHandshake builds the handshake frame the world-model's client
// library sends on connect.
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

// EncodeRequest builds a snapshot_request, range_request, or
// stream_request frame. kind selects which of the three; the payload
// shape is identical across all three. The source protocol achieves this
// by patching the kind byte of a shared buffer in place; here the shared
// buffer is never mutated, only the kind byte passed in varies the
// output (see DESIGN.md).
func EncodeRequest(kind MessageID, req Request) []byte {
	body := codec.NewEncoder(32 + len(req.ObjectURI)*2)
	body.WriteU8(uint8(kind))
	body.WriteU32(req.Ticket)
	body.WriteSizedUTF16(req.ObjectURI)
	codec.WriteVector(body, req.Attributes, func(e *codec.Encoder, attr string) {
		e.WriteSizedUTF16(attr)
	})
	body.WriteI64(req.Start)
	body.WriteI64(req.StopPeriod)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeRequest parses a snapshot_request, range_request, or
// stream_request frame, accepting any of the three MessageIDs since
// their payload is byte-identical; it returns the MessageID actually
// present so the caller can dispatch on request semantics.
func DecodeRequest(frame []byte) (MessageID, Request, bool) {
	r, hdr := codec.ParseFrameHeader(frame)
	if !hdr.LengthOK || hdr.DeclaredLen < 1 {
		return 0, Request{}, false
	}
	id := MessageID(r.ReadU8())
	if id != SnapshotRequest && id != RangeRequest && id != StreamRequest {
		return id, Request{}, false
	}
	req := Request{}
	req.Ticket = r.ReadU32()
	req.ObjectURI = r.ReadSizedUTF16()
	req.Attributes = codec.ReadVector(r, func(r *codec.Reader) string {
		return r.ReadSizedUTF16()
	})
	req.Start = r.ReadI64()
	req.StopPeriod = r.ReadI64()
	if r.OutOfRange() {
		return id, Request{}, false
	}
	return id, req, true
}

func encodeAliasEntries(kind MessageID, entries []AliasEntry) []byte {
	body := codec.NewEncoder(16 * len(entries))
	body.WriteU8(uint8(kind))
	codec.WriteVector(body, entries, func(e *codec.Encoder, entry AliasEntry) {
		e.WriteU32(entry.Alias)
		e.WriteSizedUTF16(entry.Name)
	})
	return codec.EncodeFrame(body.Bytes())
}

func decodeAliasEntries(frame []byte, expected MessageID) ([]AliasEntry, bool) {
	r, ok := openFrame(frame, expected)
	if !ok {
		return nil, false
	}
	entries := codec.ReadVector(r, func(r *codec.Reader) AliasEntry {
		alias := r.ReadU32()
		name := r.ReadSizedUTF16()
		return AliasEntry{Alias: alias, Name: name}
	})
	if r.OutOfRange() {
		return nil, false
	}
	return entries, true
}

// EncodeAttributeAlias builds an attribute_alias frame.
func EncodeAttributeAlias(entries []AliasEntry) []byte {
	return encodeAliasEntries(AttributeAlias, entries)
}

// DecodeAttributeAlias parses an attribute_alias frame.
func DecodeAttributeAlias(frame []byte) ([]AliasEntry, bool) {
	return decodeAliasEntries(frame, AttributeAlias)
}

// EncodeOriginAlias builds an origin_alias frame.
func EncodeOriginAlias(entries []AliasEntry) []byte {
	return encodeAliasEntries(OriginAlias, entries)
}

// DecodeOriginAlias parses an origin_alias frame.
func DecodeOriginAlias(frame []byte) ([]AliasEntry, bool) {
	return decodeAliasEntries(frame, OriginAlias)
}

// EncodeDataResponse builds a data_response frame.
func EncodeDataResponse(resp DataResponse) []byte {
	body := codec.NewEncoder(32 + len(resp.ObjectURI)*2)
	body.WriteU8(uint8(DataResponseKind))
	body.WriteSizedUTF16(resp.ObjectURI)
	body.WriteU32(resp.Ticket)
	codec.WriteVector(body, resp.Attributes, func(e *codec.Encoder, attr DataAttribute) {
		e.WriteU32(attr.NameAlias)
		e.WriteI64(int64(attr.Creation))
		e.WriteI64(int64(attr.Expiration))
		e.WriteU32(attr.OriginAlias)
		e.WriteSizedBytes(attr.Data)
	})
	return codec.EncodeFrame(body.Bytes())
}

// DecodeDataResponse parses a data_response frame. On any malformation
// it returns (DataResponse{}, false); the zero DataResponse carries
// ticket 0.
func DecodeDataResponse(frame []byte) (DataResponse, bool) {
	r, ok := openFrame(frame, DataResponseKind)
	if !ok {
		return DataResponse{}, false
	}
	resp := DataResponse{}
	resp.ObjectURI = r.ReadSizedUTF16()
	resp.Ticket = r.ReadU32()
	resp.Attributes = codec.ReadVector(r, func(r *codec.Reader) DataAttribute {
		attr := DataAttribute{}
		attr.NameAlias = r.ReadU32()
		attr.Creation = types.GrailTime(r.ReadI64())
		attr.Expiration = types.GrailTime(r.ReadI64())
		attr.OriginAlias = r.ReadU32()
		attr.Data = r.ReadSizedBytes()
		return attr
	})
	if r.OutOfRange() {
		return DataResponse{}, false
	}
	return resp, true
}

// EncodeRequestComplete builds a request_complete frame carrying ticket.
func EncodeRequestComplete(ticket uint32) []byte {
	return encodeTicketOnly(RequestComplete, ticket)
}

// DecodeRequestComplete parses a request_complete frame.
func DecodeRequestComplete(frame []byte) (uint32, bool) {
	return decodeTicketOnly(frame, RequestComplete)
}

// EncodeCancelRequest builds a cancel_request frame carrying ticket: the
// client->server request to stop a stream; the server acknowledges with
// a matching request_complete.
func EncodeCancelRequest(ticket uint32) []byte {
	return encodeTicketOnly(CancelRequest, ticket)
}

// DecodeCancelRequest parses a cancel_request frame.
func DecodeCancelRequest(frame []byte) (uint32, bool) {
	return decodeTicketOnly(frame, CancelRequest)
}

func encodeTicketOnly(kind MessageID, ticket uint32) []byte {
	body := codec.NewEncoder(5)
	body.WriteU8(uint8(kind))
	body.WriteU32(ticket)
	return codec.EncodeFrame(body.Bytes())
}

func decodeTicketOnly(frame []byte, expected MessageID) (uint32, bool) {
	r, ok := openFrame(frame, expected)
	if !ok {
		return 0, false
	}
	ticket := r.ReadU32()
	if r.OutOfRange() {
		return 0, false
	}
	return ticket, true
}

// EncodeURISearch builds a uri_search frame: a tail-UTF-16 regular
// expression.
func EncodeURISearch(pattern string) []byte {
	body := codec.NewEncoder(8 + len(pattern)*2)
	body.WriteU8(uint8(URISearch))
	body.WriteTailUTF16(pattern)
	return codec.EncodeFrame(body.Bytes())
}

// DecodeURISearch parses a uri_search frame.
func DecodeURISearch(frame []byte) (string, bool) {
	r, ok := openFrame(frame, URISearch)
	if !ok {
		return "", false
	}
	pattern := r.ReadTailUTF16()
	if r.OutOfRange() {
		return "", false
	}
	return pattern, true
}

// EncodeURIResponse builds a uri_response frame: a concatenation of
// sized-UTF-16 URIs with no leading count field; no count field is
// written, matching existing peers' on-wire behavior (see DESIGN.md).
func EncodeURIResponse(uris []string) []byte {
	body := codec.NewEncoder(16 * len(uris))
	body.WriteU8(uint8(URIResponseKind))
	for _, uri := range uris {
		body.WriteSizedUTF16(uri)
	}
	return codec.EncodeFrame(body.Bytes())
}

// DecodeURIResponse parses a uri_response frame, reading sized-UTF-16
// strings until the frame is exhausted.
func DecodeURIResponse(frame []byte) ([]string, bool) {
	r, ok := openFrame(frame, URIResponseKind)
	if !ok {
		return nil, false
	}
	var uris []string
	for r.Remaining() > 0 && !r.OutOfRange() {
		uris = append(uris, r.ReadSizedUTF16())
	}
	if r.OutOfRange() {
		return nil, false
	}
	return uris, true
}

// EncodeOriginPreference builds an origin_preference frame: a
// concatenation of {sized-UTF-16 origin, i32 weight} pairs consuming the
// rest of the frame, with no leading count.
func EncodeOriginPreference(prefs []OriginPreference) []byte {
	body := codec.NewEncoder(16 * len(prefs))
	body.WriteU8(uint8(OriginPreferenceKind))
	for _, p := range prefs {
		body.WriteSizedUTF16(p.Origin)
		body.WriteI32(p.Weight)
	}
	return codec.EncodeFrame(body.Bytes())
}

// DecodeOriginPreference parses an origin_preference frame.
func DecodeOriginPreference(frame []byte) ([]OriginPreference, bool) {
	r, ok := openFrame(frame, OriginPreferenceKind)
	if !ok {
		return nil, false
	}
	var prefs []OriginPreference
	for r.Remaining() > 0 && !r.OutOfRange() {
		origin := r.ReadSizedUTF16()
		weight := r.ReadI32()
		if r.OutOfRange() {
			break
		}
		prefs = append(prefs, OriginPreference{Origin: origin, Weight: weight})
	}
	if r.OutOfRange() {
		return nil, false
	}
	return prefs, true
}

// ResolveOriginWeight implements origin-preference semantics: default
// weight for unmentioned origins is 1, any weight below 0 suppresses the
// origin entirely.
func ResolveOriginWeight(prefs []OriginPreference, origin string) (weight int32, suppressed bool) {
	for _, p := range prefs {
		if p.Origin == origin {
			if p.Weight < 0 {
				return p.Weight, true
			}
			return p.Weight, false
		}
	}
	return 1, false
}

// SelectMaxWeightOrigins filters a set of {origin: weight} candidates
// (already resolved via ResolveOriginWeight) down to only those at the
// maximum present weight.
func SelectMaxWeightOrigins(weights map[string]int32) map[string]bool {
	selected := make(map[string]bool)
	var max int32 = -1
	found := false
	for _, w := range weights {
		if w < 0 {
			continue
		}
		if !found || w > max {
			max = w
			found = true
		}
	}
	if !found {
		return selected
	}
	for origin, w := range weights {
		if w == max {
			selected[origin] = true
		}
	}
	return selected
}
