// Package api provides the HTTP client shared by the upstream price feeds and
// the notification sinks.
//
// Requests are retried with jittered exponential backoff on 5xx and 429
// responses. Every non-2xx response surfaces as *APIError.
package api
