// Package server implements the optional monitoring HTTP server. It
// exposes health, render progress, and sanitized configuration as JSON,
// plus Prometheus metrics, so long render runs can be watched remotely.
package server
