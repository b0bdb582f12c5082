// Package signal detects price discrepancies between the two feeds and keeps
// the rolling log of emitted signals.
package signal

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/bistwatch/internal/model"
)

// Default thresholds. Both comparisons are strict.
const (
	DefaultPctThreshold  = 0.5
	DefaultTimeThreshold = 10 * time.Second
)

// Detector flags comparison records whose sources disagree beyond threshold.
// It keeps no state between passes; a symbol that stays discrepant is
// reported again on every pass.
type Detector struct {
	PctThreshold  float64       // |pctDiff| above this qualifies
	TimeThreshold time.Duration // |timeDiffSeconds| above this qualifies

	newID func() uuid.UUID
}

// NewDetector creates a Detector; non-positive thresholds fall back to the defaults.
func NewDetector(pctThreshold float64, timeThreshold time.Duration) *Detector {
	if pctThreshold <= 0 {
		pctThreshold = DefaultPctThreshold
	}
	if timeThreshold <= 0 {
		timeThreshold = DefaultTimeThreshold
	}
	return &Detector{
		PctThreshold:  pctThreshold,
		TimeThreshold: timeThreshold,
		newID:         uuid.New,
	}
}

// Qualifies reports whether rec is a discrepancy. Absent fields count as zero.
func (d *Detector) Qualifies(rec model.ComparisonRecord) bool {
	pct, tdiff := fields(rec)
	return math.Abs(pct) > d.PctThreshold || math.Abs(tdiff) > d.TimeThreshold.Seconds()
}

// Evaluate returns one signal per qualifying record, ordered by ticker.
// Every signal carries the pass time at.
func (d *Detector) Evaluate(records map[model.Ticker]model.ComparisonRecord, at time.Time) []model.SignalEvent {
	tickers := make([]model.Ticker, 0, len(records))
	for t := range records {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool { return tickers[i] < tickers[j] })

	at = at.UTC()
	var events []model.SignalEvent
	for _, t := range tickers {
		rec := records[t]
		if !d.Qualifies(rec) {
			continue
		}
		pct, tdiff := fields(rec)
		events = append(events, model.SignalEvent{
			ID:          d.newID(),
			Key:         model.SignalKey(t, model.SignalDiscrepancy, at),
			Ticker:      t,
			Type:        model.SignalDiscrepancy,
			Description: fmt.Sprintf("pctDiff=%s%%, timeDiff=%ss", formatNum(pct), formatNum(tdiff)),
			Time:        at,
		})
	}
	return events
}

// FormatMessage renders the notification text for ev.
func FormatMessage(ev model.SignalEvent) string {
	return fmt.Sprintf("⚠️ <b>VERI FARKI:</b> %s\n%s\nZaman: %s",
		ev.Ticker, ev.Description, ev.Time.Format(time.RFC3339))
}

func fields(rec model.ComparisonRecord) (pct, tdiff float64) {
	if rec.PctDiff != nil {
		pct = *rec.PctDiff
	}
	if rec.TimeDiffSeconds != nil {
		tdiff = *rec.TimeDiffSeconds
	}
	return pct, tdiff
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
