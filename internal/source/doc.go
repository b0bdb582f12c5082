// Package source implements the two upstream price feed adapters.
//
// Primary is a bulk feed: one request returns a table for every symbol, in
// one of several loosely defined JSON shapes. Secondary is a per-symbol
// chart feed queried once per ticker.
//
// Adapters never fail a pass. Any network, status or decoding problem is
// reported as an error wrapping ErrUnavailable; a single malformed entry in
// an otherwise valid bulk response is dropped on its own.
package source
