// Package poller drives reconciliation passes on a fixed interval.
//
// The Poller:
//   - Runs one pass immediately on start, then once per interval
//   - Never overlaps passes; a tick that fires while a pass runs is skipped
//   - Bounds every pass with a deadline so a hung upstream cannot stall the loop
package poller
