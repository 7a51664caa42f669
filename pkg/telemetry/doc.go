// Package telemetry wires OpenTelemetry tracing and Prometheus metrics for
// the edge server.
//
// It centralizes tracer provider setup against an OTLP/gRPC collector and
// exposes the counters/gauges that pkg/httpserver and pkg/xds record against:
// request volume by status class, xDS ACK/NACK outcomes, active connections,
// and listener hot-swaps.
package telemetry
