// Package solver implements the world-model protocol's solver face:
// handshake, type announcement, on-demand start/stop, solution push, and
// URI/attribute lifecycle management, grounded on world_model_protocol.hpp's
// solver namespace.
package solver

import "github.com/OwlPlatform/owl-common/wire/types"

// MessageID identifies the kind of a non-handshake solver-face frame.
type MessageID uint8

const (
	KeepAlive        MessageID = 0
	TypeAnnounce     MessageID = 1
	StartOnDemand    MessageID = 2
	StopOnDemand     MessageID = 3
	SolverDataKind   MessageID = 4
	CreateURI        MessageID = 5
	ExpireURI        MessageID = 6
	DeleteURI        MessageID = 7
	ExpireAttribute  MessageID = 8
	DeleteAttribute  MessageID = 9
)

// Identifier is the handshake protocol-identification string sent by a
// solver on connect. This is distinct from the client face's identifier
// ("GRAIL client protocol"): the two are separate links and a peer that
// accepts one must reject the other.
const Identifier = "GRAIL world model protocol"

// TypeEntry is one alias entry within a type_announce message.
type TypeEntry struct {
	Alias    uint32
	Type     string
	OnDemand bool
}

// TypeAnnouncement is the payload of a type_announce message.
type TypeAnnouncement struct {
	Types  []TypeEntry
	Origin string
}

// OnDemandGroup is one {alias, URI patterns} group within a
// start_on_demand or stop_on_demand message.
type OnDemandGroup struct {
	Alias       uint32
	URIPatterns []string
}

// Solution is one derived value within a solver_data message.
type Solution struct {
	TypeAlias uint32
	Time      types.GrailTime
	TargetURI string
	Data      []byte
}

// SolverData is the payload of a solver_data message.
type SolverData struct {
	CreateURIs bool // 1 = missing target URIs should be auto-created
	Solutions  []Solution
}

// URILifecycle is the shared payload of create_uri and expire_uri: a
// URI, the grail-time the event occurred, and a tail origin.
type URILifecycle struct {
	URI    string
	Time   types.GrailTime
	Origin string
}

// URIDeletion is the payload of delete_uri. Unlike create_uri/
// expire_uri, a delete carries no grail-time on the wire — it takes
// effect immediately rather than at a scheduled instant.
type URIDeletion struct {
	URI    string
	Origin string
}

// AttributeLifecycle is the payload of expire_attribute: a URI, an
// attribute name, the grail-time the event occurred, and a tail origin.
type AttributeLifecycle struct {
	URI           string
	AttributeName string
	Time          types.GrailTime
	Origin        string
}

// AttributeDeletion is the payload of delete_attribute. Unlike
// expire_attribute, a delete carries no grail-time on the wire.
type AttributeDeletion struct {
	URI           string
	AttributeName string
	Origin        string
}
