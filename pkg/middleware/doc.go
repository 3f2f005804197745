// Package middleware provides render middleware for observability.
//
// Middleware here plugs into the onRequest chain run before every render:
// Prometheus collects render counters and latency histograms, OpenTelemetry
// opens a server span per rendered request.
package middleware
