package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ticker is a canonical uppercase ticker code (e.g. "GARAN").
type Ticker string

func (t Ticker) String() string { return string(t) }

// Source identifies one of the two upstream price feeds.
type Source string

const (
	// SourcePrimary is the bulk feed queried once per pass.
	SourcePrimary Source = "primary"
	// SourceSecondary is the per-symbol feed used as the comparison baseline.
	SourceSecondary Source = "secondary"
)

// Sources lists every feed in a stable order.
var Sources = []Source{SourcePrimary, SourceSecondary}

// -----------------------------------------------------------------------------
// Observations
// -----------------------------------------------------------------------------

// Quote is a single price observation from one source.
type Quote struct {
	Price      float64         `json:"price"`
	ObservedAt time.Time       `json:"ts"`
	Source     Source          `json:"source"`
	Raw        json.RawMessage `json:"raw,omitempty"` // Upstream entry as received
}

// ComparisonRecord is the reconciled view of one ticker across both sources.
//
// PriceDiff and PctDiff are set only when both prices are set.
// TimeDiffSeconds is set only when both observation times are set.
type ComparisonRecord struct {
	Ticker          Ticker     `json:"ticker"`
	PrimaryPrice    *float64   `json:"primaryPrice,omitempty"`
	SecondaryPrice  *float64   `json:"secondaryPrice,omitempty"`
	PriceDiff       *float64   `json:"priceDiff,omitempty"` // primary - secondary, 6 places
	PctDiff         *float64   `json:"pctDiff,omitempty"`   // priceDiff / secondary * 100, 4 places
	PrimaryTime     *time.Time `json:"primaryTime,omitempty"`
	SecondaryTime   *time.Time `json:"secondaryTime,omitempty"`
	TimeDiffSeconds *float64   `json:"timeDiffSeconds,omitempty"` // primaryTime - secondaryTime
	LastUpdated     time.Time  `json:"lastUpdated"`
}

// HasBoth reports whether both sources contributed a price.
func (r ComparisonRecord) HasBoth() bool {
	return r.PrimaryPrice != nil && r.SecondaryPrice != nil
}

// -----------------------------------------------------------------------------
// Signals
// -----------------------------------------------------------------------------

// SignalType classifies a SignalEvent.
type SignalType string

// SignalDiscrepancy marks two sources disagreeing beyond threshold.
const SignalDiscrepancy SignalType = "DISCREPANCY"

// SignalEvent is an immutable alert emitted by the discrepancy detector.
type SignalEvent struct {
	ID          uuid.UUID  `json:"id"`
	Key         string     `json:"key"` // ticker|type|pass time, unique per pass
	Ticker      Ticker     `json:"symbol"`
	Type        SignalType `json:"type"`
	Description string     `json:"desc"`
	Time        time.Time  `json:"time"`
}

// SignalKey builds the unique key of a signal raised for ticker at the given pass time.
func SignalKey(ticker Ticker, typ SignalType, at time.Time) string {
	return string(ticker) + "|" + string(typ) + "|" + at.UTC().Format(time.RFC3339Nano)
}

// Float returns a pointer to v. Used to populate optional record fields.
func Float(v float64) *float64 { return &v }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }
