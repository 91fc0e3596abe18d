// Package metrics defines the Prometheus instrumentation for the
// pipeline: chunking output, per-unit rendering progress, assembly
// results, and encoder invocations. The metrics are served by the
// optional monitoring HTTP server during long render runs.
package metrics
