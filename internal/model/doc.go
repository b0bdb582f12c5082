// Package model defines shared data types used across bistwatch.
//
// Conventions:
//   - Tickers: canonical uppercase exchange codes without prefix or suffix (e.g. "GARAN")
//   - Prices: float64 in the quote currency as reported upstream
//   - Timestamps: time.Time in UTC
//   - IDs: string keys for signals, uuid.UUID for bus message keys
package model
