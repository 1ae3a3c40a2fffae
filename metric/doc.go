// Package metric provides Prometheus-based metrics collection for the
// owl-common wire protocol and transport layers.
//
// A MetricsRegistry owns the core counters and gauges described in
// Metrics (connections, frames, bytes, decode failures) and can also
// register additional service-specific collectors through the
// MetricsRegistrar interface. Server exposes the registry over HTTP in
// Prometheus exposition format.
//
// Usage:
//
//	registry := metric.NewMetricsRegistry()
//	registry.CoreMetrics().RecordConnectionOpened("aggregator")
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go server.Start()
package metric
