package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/bistwatch/internal/metrics"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/signal"
)

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	QueueSize   int           // Pending message bound (default: 256)
	Workers     int           // Concurrent senders (default: 2)
	SendTimeout time.Duration // Per-message deadline (default: 15s)
	Recipients  []string      // Attached to every message built from a signal
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   256,
		Workers:     2,
		SendTimeout: 15 * time.Second,
	}
}

// DispatcherStats contains runtime statistics.
type DispatcherStats struct {
	Enqueued int64
	Sent     int64
	Failed   int64
	Dropped  int64
	Pending  int
}

// Dispatcher queues messages and sends them in the background.
type Dispatcher struct {
	cfg     DispatcherConfig
	sink    Sink
	metrics *metrics.Metrics
	logger  *slog.Logger

	queue chan Message

	enqueued atomic.Int64
	sent     atomic.Int64
	failed   atomic.Int64
	dropped  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher sending to sink.
func NewDispatcher(cfg DispatcherConfig, sink Sink, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultDispatcherConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	return &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		metrics: m,
		logger:  logger,
		queue:   make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.logger.Info("notification dispatcher started",
		"workers", d.cfg.Workers,
		"queue_size", d.cfg.QueueSize,
	)
	return nil
}

// Stop stops the workers. Messages still queued are discarded.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped",
			"sent", d.sent.Load(),
			"failed", d.failed.Load(),
			"dropped", d.dropped.Load(),
			"discarded", len(d.queue),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue queues msg without blocking. It reports false when the queue is
// full and the message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case d.queue <- msg:
		d.enqueued.Add(1)
		return true
	default:
		d.dropped.Add(1)
		d.metrics.Notification(metrics.NotifyDropped)
		d.logger.Warn("notification queue full, dropping message", "key", msg.Key)
		return false
	}
}

// HandleSignals queues one message per event.
func (d *Dispatcher) HandleSignals(events []model.SignalEvent) {
	for _, ev := range events {
		d.Enqueue(Message{
			Key:        ev.ID.String(),
			Text:       signal.FormatMessage(ev),
			Recipients: d.cfg.Recipients,
		})
	}
}

// Stats returns current statistics.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Enqueued: d.enqueued.Load(),
		Sent:     d.sent.Load(),
		Failed:   d.failed.Load(),
		Dropped:  d.dropped.Load(),
		Pending:  len(d.queue),
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case msg := <-d.queue:
			d.send(msg)
		}
	}
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
	defer cancel()

	if err := d.sink.Send(ctx, msg); err != nil {
		d.failed.Add(1)
		d.metrics.Notification(metrics.NotifyFailed)
		d.logger.Warn("notification failed", "key", msg.Key, "err", err)
		return
	}
	d.sent.Add(1)
	d.metrics.Notification(metrics.NotifySent)
}
