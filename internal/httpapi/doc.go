// Package httpapi exposes the reconciled state over HTTP.
//
// Routes:
//
//	GET /health                service liveness and build info
//	GET /api/comparisons       comparison records keyed by ticker
//	GET /api/signals           signal log, newest first
//	GET /api/last/{source}     last known quotes of "primary" or "secondary"
//	GET /metrics               Prometheus exposition
//	GET /ws/signals            WebSocket stream of new signals
//
// Handlers only read; every response is built from copies taken from the
// reconciliation state.
package httpapi
