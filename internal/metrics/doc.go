// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Reconciliation pass count and duration
//   - Upstream fetch outcomes per source
//   - Signals emitted and signal log size
//   - Notification delivery outcomes (sent, failed, dropped)
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics
