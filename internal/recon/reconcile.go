package recon

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/bistwatch/internal/model"
)

// Rounding applied to derived fields.
const (
	priceDiffPlaces = 6
	pctDiffPlaces   = 4
)

// SecondaryResult is the outcome of one per-ticker secondary fetch.
type SecondaryResult struct {
	Quote model.Quote
	Err   error
}

// Observations is everything one pass fetched. A nil Primary map means the
// bulk fetch failed; tickers absent from either map were not observed.
type Observations struct {
	Primary    map[model.Ticker]model.Quote
	PrimaryErr error
	Secondary  map[model.Ticker]SecondaryResult
}

// ReconcileStats summarizes one Reconcile call.
type ReconcileStats struct {
	PrimaryUpdated   int // tickers whose primary LastQuote was replaced
	SecondaryUpdated int // tickers whose secondary LastQuote was replaced
	Records          int // records written this pass
}

// Reconcile folds obs into st for every ticker in universe and rewrites the
// comparison records, stamping them with now.
//
// Observed quotes replace the previous LastQuote; unobserved ones are kept.
// Tickers with no quote from either source get no record. Running it twice
// with the same observations and time leaves st unchanged.
func Reconcile(st *State, universe []model.Ticker, obs Observations, now time.Time) ReconcileStats {
	var stats ReconcileStats

	st.mu.Lock()
	defer st.mu.Unlock()

	primary := st.last[model.SourcePrimary]
	secondary := st.last[model.SourceSecondary]

	for _, t := range universe {
		if obs.PrimaryErr == nil {
			if q, ok := obs.Primary[t]; ok {
				primary[t] = q
				stats.PrimaryUpdated++
			}
		}
		if res, ok := obs.Secondary[t]; ok && res.Err == nil {
			secondary[t] = res.Quote
			stats.SecondaryUpdated++
		}

		p, hasP := primary[t]
		s, hasS := secondary[t]
		if !hasP && !hasS {
			continue
		}

		var pq, sq *model.Quote
		if hasP {
			pq = &p
		}
		if hasS {
			sq = &s
		}
		st.records[t] = Compare(t, pq, sq, now)
		stats.Records++
	}

	st.lastPass = now
	return stats
}

// Compare builds the comparison record of t from the last known quotes.
// Either quote may be nil.
func Compare(t model.Ticker, primary, secondary *model.Quote, now time.Time) model.ComparisonRecord {
	rec := model.ComparisonRecord{Ticker: t, LastUpdated: now}

	if primary != nil {
		rec.PrimaryPrice = model.Float(primary.Price)
		rec.PrimaryTime = model.Time(primary.ObservedAt)
	}
	if secondary != nil {
		rec.SecondaryPrice = model.Float(secondary.Price)
		rec.SecondaryTime = model.Time(secondary.ObservedAt)
	}

	if primary != nil && secondary != nil {
		diff := round(primary.Price-secondary.Price, priceDiffPlaces)
		pct := 0.0
		if secondary.Price != 0 {
			pct = round(diff/secondary.Price*100, pctDiffPlaces)
		}
		rec.PriceDiff = model.Float(diff)
		rec.PctDiff = model.Float(pct)

		secs := primary.ObservedAt.Sub(secondary.ObservedAt).Round(time.Millisecond).Seconds()
		rec.TimeDiffSeconds = model.Float(secs)
	}

	return rec
}

// round rounds half away from zero. Non-finite inputs yield 0.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
