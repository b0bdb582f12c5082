package recon

import (
	"maps"
	"sync"
	"time"

	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/signal"
)

// State holds everything the service knows between passes. It lives only in
// memory and starts empty.
type State struct {
	mu       sync.RWMutex
	last     map[model.Source]map[model.Ticker]model.Quote
	records  map[model.Ticker]model.ComparisonRecord
	lastPass time.Time

	signals *signal.Log
}

// NewState creates an empty State whose signal log holds at most logCapacity events.
func NewState(logCapacity int) *State {
	last := make(map[model.Source]map[model.Ticker]model.Quote, len(model.Sources))
	for _, src := range model.Sources {
		last[src] = make(map[model.Ticker]model.Quote)
	}
	return &State{
		last:    last,
		records: make(map[model.Ticker]model.ComparisonRecord),
		signals: signal.NewLog(logCapacity),
	}
}

// Records returns a copy of the comparison records keyed by ticker.
// Records are replaced, never mutated, so the pointer fields may be shared.
func (s *State) Records() map[model.Ticker]model.ComparisonRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.records)
}

// Record returns the comparison record of t.
func (s *State) Record(t model.Ticker) (model.ComparisonRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[t]
	return rec, ok
}

// LastQuotes returns a copy of the most recent quote per ticker from src.
func (s *State) LastQuotes(src model.Source) map[model.Ticker]model.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.last[src])
}

// LastQuote returns the most recent quote of t from src.
func (s *State) LastQuote(src model.Source, t model.Ticker) (model.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.last[src][t]
	return q, ok
}

// Signals returns the signal log newest first.
func (s *State) Signals() []model.SignalEvent {
	return s.signals.Snapshot()
}

// SignalLog exposes the underlying log for stats.
func (s *State) SignalLog() *signal.Log {
	return s.signals
}

// LastPass returns the time of the most recent reconciliation, zero before the first.
func (s *State) LastPass() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPass
}
