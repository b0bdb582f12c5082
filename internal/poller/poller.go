package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/bistwatch/internal/recon"
)

// Interval bounds.
const (
	DefaultInterval = 60 * time.Second
	MinInterval     = 10 * time.Second
)

// PassRunner runs one reconciliation pass.
type PassRunner interface {
	RunPass(ctx context.Context) recon.PassResult
}

// PassRunnerFunc is a function adapter for PassRunner.
type PassRunnerFunc func(context.Context) recon.PassResult

func (f PassRunnerFunc) RunPass(ctx context.Context) recon.PassResult {
	return f(ctx)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Time between pass starts (default: 60s, min: 10s)
	PassTimeout time.Duration // Deadline for one pass (default: Interval)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    DefaultInterval,
		PassTimeout: DefaultInterval,
	}
}

// Normalize applies defaults and clamps the interval to MinInterval.
func (c Config) Normalize() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < MinInterval {
		c.Interval = MinInterval
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = c.Interval
	}
	return c
}

// Stats contains runtime statistics.
type Stats struct {
	Passes  int64
	Skipped int64
}

// Poller periodically runs reconciliation passes.
type Poller struct {
	cfg    Config
	runner PassRunner
	logger *slog.Logger

	passes  atomic.Int64
	skipped atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. The interval is clamped to MinInterval.
func New(cfg Config, runner PassRunner, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:    cfg.Normalize(),
		runner: runner,
		logger: logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(p.cfg.Interval)

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"pass_timeout", p.cfg.PassTimeout,
	)

	return nil
}

// Stop gracefully shuts down the poller, waiting for a running pass.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped",
			"passes", p.passes.Load(),
			"skipped", p.skipped.Load(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current statistics.
func (p *Poller) Stats() Stats {
	return Stats{
		Passes:  p.passes.Load(),
		Skipped: p.skipped.Load(),
	}
}

// run is the main polling loop. interval is passed in so tests can run
// below MinInterval.
func (p *Poller) run(interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Pass immediately on start.
	p.pass(ticker)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pass(ticker)
		}
	}
}

// pass runs one pass and discards any tick that fired meanwhile.
func (p *Poller) pass(ticker *time.Ticker) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.PassTimeout)
	defer cancel()

	p.runner.RunPass(ctx)
	p.passes.Add(1)

	select {
	case <-ticker.C:
		p.skipped.Add(1)
		p.logger.Warn("pass overran interval, skipping tick", "interval", p.cfg.Interval)
	default:
	}
}
