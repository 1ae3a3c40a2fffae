package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the platform-level counters shared by every wire peer:
// sockets, framers, and the three protocol decoders.
type Metrics struct {
	ConnectionsOpened  *prometheus.CounterVec
	ConnectionsActive  *prometheus.GaugeVec
	ConnectionsClosed  *prometheus.CounterVec
	FramesEncoded      *prometheus.CounterVec
	FramesDecoded      *prometheus.CounterVec
	DecodeFailures     *prometheus.CounterVec
	BytesSent          *prometheus.CounterVec
	BytesReceived      *prometheus.CounterVec
	SendLatency        *prometheus.HistogramVec
	HandshakeFailures  *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "connections_opened_total",
				Help:      "Total number of connections opened, by role",
			},
			[]string{"role"},
		),
		ConnectionsActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "connections_active",
				Help:      "Currently open connections, by role",
			},
			[]string{"role"},
		),
		ConnectionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "connections_closed_total",
				Help:      "Total number of connections closed, by role and reason",
			},
			[]string{"role", "reason"},
		),
		FramesEncoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "wire",
				Name:      "frames_encoded_total",
				Help:      "Total number of frames encoded, by protocol and message kind",
			},
			[]string{"protocol", "kind"},
		),
		FramesDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "wire",
				Name:      "frames_decoded_total",
				Help:      "Total number of frames successfully decoded, by protocol and message kind",
			},
			[]string{"protocol", "kind"},
		),
		DecodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "wire",
				Name:      "decode_failures_total",
				Help:      "Total number of frames rejected by a decoder, by protocol and message kind",
			},
			[]string{"protocol", "kind"},
		),
		BytesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "bytes_sent_total",
				Help:      "Total bytes written to the wire, by role",
			},
			[]string{"role"},
		),
		BytesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "bytes_received_total",
				Help:      "Total bytes read from the wire, by role",
			},
			[]string{"role"},
		),
		SendLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "send_duration_seconds",
				Help:      "Time spent inside Socket.Send, including poll-guard waits",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"role"},
		),
		HandshakeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "owlcommon",
				Subsystem: "transport",
				Name:      "handshake_failures_total",
				Help:      "Total number of handshakes rejected due to identifier mismatch",
			},
			[]string{"role"},
		),
	}
}

// RecordConnectionOpened increments the connection-opened counter and the active gauge.
func (m *Metrics) RecordConnectionOpened(role string) {
	m.ConnectionsOpened.WithLabelValues(role).Inc()
	m.ConnectionsActive.WithLabelValues(role).Inc()
}

// RecordConnectionClosed decrements the active gauge and increments the closed counter.
func (m *Metrics) RecordConnectionClosed(role, reason string) {
	m.ConnectionsClosed.WithLabelValues(role, reason).Inc()
	m.ConnectionsActive.WithLabelValues(role).Dec()
}

// RecordFrameEncoded increments the encoded-frame counter for a protocol/kind pair.
func (m *Metrics) RecordFrameEncoded(protocol, kind string) {
	m.FramesEncoded.WithLabelValues(protocol, kind).Inc()
}

// RecordFrameDecoded increments the decoded-frame counter for a protocol/kind pair.
func (m *Metrics) RecordFrameDecoded(protocol, kind string) {
	m.FramesDecoded.WithLabelValues(protocol, kind).Inc()
}

// RecordDecodeFailure increments the decode-failure counter for a protocol/kind pair.
func (m *Metrics) RecordDecodeFailure(protocol, kind string) {
	m.DecodeFailures.WithLabelValues(protocol, kind).Inc()
}

// RecordBytesSent adds n to the bytes-sent counter for a role.
func (m *Metrics) RecordBytesSent(role string, n int) {
	m.BytesSent.WithLabelValues(role).Add(float64(n))
}

// RecordBytesReceived adds n to the bytes-received counter for a role.
func (m *Metrics) RecordBytesReceived(role string, n int) {
	m.BytesReceived.WithLabelValues(role).Add(float64(n))
}

// RecordSendDuration observes the time a Send call took for a role.
func (m *Metrics) RecordSendDuration(role string, d time.Duration) {
	m.SendLatency.WithLabelValues(role).Observe(d.Seconds())
}

// RecordHandshakeFailure increments the handshake-failure counter for a role.
func (m *Metrics) RecordHandshakeFailure(role string) {
	m.HandshakeFailures.WithLabelValues(role).Inc()
}
