// Package api exposes scan progress over HTTP.
//
// Endpoints:
//
//	GET /api/status      state of the current (or last) scan
//	GET /api/duplicates  duplicate groups of the last completed scan
//	GET /metrics         Prometheus metrics (when a Collector is set)
//	    /ws              WebSocket feed of scan events and periodic status
//
// The server shuts down gracefully when the context passed to Start is
// cancelled.
package api
