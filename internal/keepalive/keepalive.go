// Package keepalive periodically requests the service's own public URL so
// hosting platforms that idle inactive instances keep it running.
package keepalive

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/bistwatch/internal/api"
)

// Interval bounds.
const (
	DefaultInterval = 4 * time.Minute
	MinInterval     = 30 * time.Second
)

// Config holds keepalive configuration.
type Config struct {
	URL      string        // Public base URL; empty disables the pinger
	Path     string        // Path requested (default: "/health")
	Interval time.Duration // Time between requests (default: 4m, min: 30s)
	Timeout  time.Duration // Per-request timeout (default: 10s)
}

// Pinger requests Config.URL on an interval. Failures are logged only.
type Pinger struct {
	cfg    Config
	client *api.Client
	logger *slog.Logger

	ok     atomic.Int64
	failed atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Pinger. It returns nil when cfg.URL is empty.
func New(cfg Config, logger *slog.Logger) *Pinger {
	if cfg.URL == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = "/health"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < MinInterval {
		cfg.Interval = MinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Pinger{
		cfg: cfg,
		client: api.NewClient(cfg.URL,
			api.WithTimeout(cfg.Timeout),
			api.WithRetries(0, 0),
			api.WithLogger(logger),
		),
		logger: logger,
	}
}

// Start begins pinging. A nil Pinger is a no-op.
func (p *Pinger) Start(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(p.cfg.Interval)

	p.logger.Info("keepalive started", "url", p.cfg.URL, "interval", p.cfg.Interval)
	return nil
}

// Stop stops pinging.
func (p *Pinger) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
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
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Counts returns the number of successful and failed pings.
func (p *Pinger) Counts() (ok, failed int64) {
	if p == nil {
		return 0, 0
	}
	return p.ok.Load(), p.failed.Load()
}

func (p *Pinger) run(interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.ping()
		}
	}
}

func (p *Pinger) ping() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	if _, err := p.client.GetRaw(ctx, p.cfg.Path, nil); err != nil {
		p.failed.Add(1)
		p.logger.Debug("keepalive ping failed", "err", err)
		return
	}
	p.ok.Add(1)
}
