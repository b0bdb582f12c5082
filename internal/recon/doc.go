// Package recon merges the two feeds into per-ticker comparison records.
//
// A pass fetches the primary feed once in bulk and the secondary feed once
// per ticker, then folds whatever arrived into State:
//
//	fetch (concurrent) → Reconcile → Detector → signal log → handlers
//
// Observations that did not arrive leave the previous LastQuote in place, so
// a failing source keeps being compared through its last known value.
// Passes are serialized; State is written only from the pass path and read
// concurrently through copies.
package recon
