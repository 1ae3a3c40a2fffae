// Package owlcommon implements the GRAIL/OWL location-sensing wire
// protocols: binary framing and message codecs for the three links that
// carry sensor readings from the edge to a world model.
//
// # Architecture
//
//	sensor ---(sensoragg)---> aggregator ---(aggsolver)---> solver
//	                                                            |
//	client <--(worldmodel/client)-- world model <-(worldmodel/solver)-+
//
// Each link is a duplex, length-prefixed byte stream (transport/socket,
// transport/framer) carrying big-endian frames defined by one of the four
// proto/* packages. Every decoder is total: malformed input produces a
// zero-value result and a validity flag, never a panic or a Go error —
// only the errors package's three-class transient/invalid/fatal errors
// cross transport or configuration boundaries.
//
// # Packages
//
//   - wire/types: Uint128, Transmitter, Sample, GrailTime, and the
//     subscription-rule types shared by every protocol.
//   - wire/codec: the big-endian, UTF-16BE primitive codec and the
//     length-prefix frame/handshake helpers built on it.
//   - proto/sensoragg, proto/aggsolver, proto/worldmodel/client,
//     proto/worldmodel/solver: one package per wire protocol.
//   - transport/socket: a duplex byte channel over net.Conn.
//   - transport/framer: the state machine that reassembles whole frames
//     from a socket's byte stream regardless of how the transport chops
//     it up.
//   - config: layered YAML configuration for the three protocol roles.
//   - metric: Prometheus counters and gauges for every wire peer.
//   - cmd/owlprobe: a CLI that exercises all three protocols end to end.
package owlcommon
