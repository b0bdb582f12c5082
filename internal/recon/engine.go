package recon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/bistwatch/internal/metrics"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/signal"
)

// DefaultConcurrency bounds concurrent secondary fetches.
const DefaultConcurrency = 8

// PrimaryFetcher fetches the bulk feed.
type PrimaryFetcher interface {
	FetchAll(ctx context.Context) (map[model.Ticker]model.Quote, error)
}

// SecondaryFetcher fetches the per-ticker feed.
type SecondaryFetcher interface {
	FetchOne(ctx context.Context, t model.Ticker) (model.Quote, error)
}

// SignalHandler receives the signals emitted by a pass.
// Implementations must not block; they run on the pass path.
type SignalHandler interface {
	HandleSignals(events []model.SignalEvent)
}

// SignalHandlerFunc is a function adapter for SignalHandler.
type SignalHandlerFunc func([]model.SignalEvent)

func (f SignalHandlerFunc) HandleSignals(events []model.SignalEvent) {
	f(events)
}

// Config holds engine configuration.
type Config struct {
	Concurrency int // Max concurrent secondary fetches (default: 8)
}

// PassResult summarizes one reconciliation pass.
type PassResult struct {
	Time            time.Time
	Tickers         int
	PrimaryOK       bool
	PrimaryQuotes   int
	SecondaryOK     int
	SecondaryFailed int
	Records         int
	Signals         int
	Duration        time.Duration
}

// Engine runs reconciliation passes.
type Engine struct {
	cfg       Config
	tickers   []model.Ticker
	primary   PrimaryFetcher
	secondary SecondaryFetcher
	detector  *signal.Detector
	state     *State
	handlers  []SignalHandler
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	passMu sync.Mutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHandler adds a handler for emitted signals.
func WithHandler(h SignalHandler) EngineOption {
	return func(e *Engine) {
		if h != nil {
			e.handlers = append(e.handlers, h)
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the pass clock.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine over tickers.
func NewEngine(cfg Config, tickers []model.Ticker, primary PrimaryFetcher, secondary SecondaryFetcher,
	detector *signal.Detector, state *State, logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if detector == nil {
		detector = signal.NewDetector(0, 0)
	}
	e := &Engine{
		cfg:       cfg,
		tickers:   append([]model.Ticker(nil), tickers...),
		primary:   primary,
		secondary: secondary,
		detector:  detector,
		state:     state,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the state the engine writes to.
func (e *Engine) State() *State {
	return e.state
}

// RunPass fetches both feeds, reconciles, and emits signals.
// Concurrent calls run one after another. Upstream failures never fail the
// pass; they only leave the affected quotes stale.
func (e *Engine) RunPass(ctx context.Context) PassResult {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	start := time.Now()
	obs := e.fetch(ctx)

	now := e.now().UTC()
	stats := Reconcile(e.state, e.tickers, obs, now)

	events := e.detector.Evaluate(e.state.Records(), now)
	if len(events) > 0 {
		e.state.signals.Prepend(events...)
		for _, h := range e.handlers {
			h.HandleSignals(events)
		}
	}

	res := PassResult{
		Time:          now,
		Tickers:       len(e.tickers),
		PrimaryOK:     obs.PrimaryErr == nil,
		PrimaryQuotes: len(obs.Primary),
		Records:       stats.Records,
		Signals:       len(events),
		Duration:      time.Since(start),
	}
	for _, r := range obs.Secondary {
		if r.Err != nil {
			res.SecondaryFailed++
		} else {
			res.SecondaryOK++
		}
	}

	e.metrics.SignalsEmitted(len(events))
	e.metrics.PassCompleted(res.Duration, stats.Records, e.state.signals.Len())

	e.logger.Info("reconciliation pass complete",
		"tickers", res.Tickers,
		"primary_ok", res.PrimaryOK,
		"primary_quotes", res.PrimaryQuotes,
		"secondary_ok", res.SecondaryOK,
		"secondary_failed", res.SecondaryFailed,
		"records", res.Records,
		"signals", res.Signals,
		"duration", res.Duration,
	)
	return res
}

// fetch runs the bulk fetch and every per-ticker fetch concurrently.
// Results are collected into local slots and merged after all calls return.
func (e *Engine) fetch(ctx context.Context) Observations {
	var (
		g          errgroup.Group
		primary    map[model.Ticker]model.Quote
		primaryErr error
		results    = make([]SecondaryResult, len(e.tickers))
	)
	g.SetLimit(e.cfg.Concurrency)

	g.Go(func() error {
		primary, primaryErr = e.primary.FetchAll(ctx)
		return nil
	})
	for i, t := range e.tickers {
		g.Go(func() error {
			q, err := e.secondary.FetchOne(ctx, t)
			results[i] = SecondaryResult{Quote: q, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	obs := Observations{
		Primary:    primary,
		PrimaryErr: primaryErr,
		Secondary:  make(map[model.Ticker]SecondaryResult, len(e.tickers)),
	}
	if primaryErr != nil {
		obs.Primary = nil
		e.logger.Warn("primary fetch failed", "err", primaryErr)
	}
	e.metrics.Fetch(string(model.SourcePrimary), primaryErr == nil)

	for i, t := range e.tickers {
		r := results[i]
		if r.Err != nil {
			e.logger.Debug("secondary fetch failed", "ticker", t, "err", r.Err)
		}
		e.metrics.Fetch(string(model.SourceSecondary), r.Err == nil)
		obs.Secondary[t] = r
	}
	return obs
}
