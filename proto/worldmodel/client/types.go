// Package client implements the world-model protocol's client face:
// handshake, snapshot/range/stream requests, alias tables, data
// responses, completion/cancellation, URI search, and origin
// preferences, grounded on world_model_protocol.hpp's client namespace.
package client

import (
	"sync"

	"github.com/OwlPlatform/owl-common/wire/types"
)

// MessageID identifies the kind of a non-handshake client-face frame.
type MessageID uint8

const (
	KeepAlive         MessageID = 0
	SnapshotRequest   MessageID = 1
	RangeRequest      MessageID = 2
	StreamRequest     MessageID = 3
	AttributeAlias    MessageID = 4
	OriginAlias       MessageID = 5
	RequestComplete   MessageID = 6
	CancelRequest     MessageID = 7
	DataResponseKind  MessageID = 8
	URISearch         MessageID = 9
	URIResponseKind   MessageID = 10
	OriginPreferenceKind MessageID = 11
)

// Identifier is the handshake protocol-identification string sent by the
// world-model's client library on open. This is distinct from the
// solver face's identifier: the two are separate links and a peer that
// accepts one must reject the other.
const Identifier = "GRAIL client protocol"

// Request is the shared payload of snapshot_request, range_request, and
// stream_request: the three kinds are byte-identical except for the
// MessageID.
type Request struct {
	Ticket     uint32
	ObjectURI  string
	Attributes []string
	Start      int64
	StopPeriod int64
}

// AliasEntry is one {alias, string} pair within an attribute_alias or
// origin_alias message.
type AliasEntry struct {
	Alias uint32
	Name  string
}

// DataAttribute is one attribute value within a data_response, aliased
// form: the name and origin are u32 alias codes resolved through the
// connection's AliasTables rather than inline strings.
type DataAttribute struct {
	NameAlias   uint32
	Creation    types.GrailTime
	Expiration  types.GrailTime
	OriginAlias uint32
	Data        []byte
}

// DataResponse is the payload of a data_response message: one URI's
// attribute values for a given ticket.
type DataResponse struct {
	ObjectURI  string
	Ticket     uint32
	Attributes []DataAttribute
}

// OriginPreference is one {origin, weight} pair within an
// origin_preference message.
type OriginPreference struct {
	Origin string
	Weight int32
}

// AliasTable is a per-connection, append-only map from alias code to
// string, used for either attribute names or origins (a connection owns
// one of each). Aliases are immutable once defined.
type AliasTable struct {
	mu      sync.RWMutex
	entries map[uint32]string
}

// NewAliasTable returns an empty AliasTable.
func NewAliasTable() *AliasTable {
	return &AliasTable{entries: make(map[uint32]string)}
}

// Define records alias -> name. It returns false if alias was already
// defined with a *different* name, signaling a protocol violation (an
// alias must never be reassigned on the same connection); redefining an
// alias with the same name is a harmless no-op and returns true.
func (t *AliasTable) Define(alias uint32, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.entries[alias]; ok {
		return existing == name
	}
	t.entries[alias] = name
	return true
}

// Lookup resolves alias to its string, if defined.
func (t *AliasTable) Lookup(alias uint32) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.entries[alias]
	return name, ok
}
