package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/bistwatch/internal/api"
	"github.com/rickgao/bistwatch/internal/config"
	"github.com/rickgao/bistwatch/internal/httpapi"
	"github.com/rickgao/bistwatch/internal/keepalive"
	"github.com/rickgao/bistwatch/internal/metrics"
	"github.com/rickgao/bistwatch/internal/notify"
	"github.com/rickgao/bistwatch/internal/poller"
	"github.com/rickgao/bistwatch/internal/recon"
	"github.com/rickgao/bistwatch/internal/signal"
	"github.com/rickgao/bistwatch/internal/source"
	"github.com/rickgao/bistwatch/internal/symbol"
	"github.com/rickgao/bistwatch/internal/universe"
	"github.com/rickgao/bistwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bistwatch.example.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional .env file loaded before the config")
	flag.Parse()

	// Bootstrap logger until the configured one is known
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting bistwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if err := config.LoadEnvFile(*envPath); err != nil {
		logger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	norm := symbol.Default()
	tickers := cfg.Universe.Tickers
	if len(tickers) == 0 {
		tickers = universe.DefaultTickers
	}
	univ, err := universe.New(tickers, norm)
	if err != nil {
		logger.Error("invalid universe", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"primary_url", cfg.Sources.Primary.URL,
		"secondary_url", cfg.Sources.Secondary.URL,
		"tickers", univ.Len(),
		"interval", cfg.Poller.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	m := metrics.New()
	userAgent := "bistwatch/" + version.Version

	// Upstream adapters
	primaryClient := api.NewClient(
		cfg.Sources.Primary.URL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Sources.Primary.Timeout),
		api.WithRetries(cfg.Sources.Primary.MaxRetries, 500*time.Millisecond),
		api.WithUserAgent(userAgent),
		api.WithHeader("Accept", "application/json"),
	)
	primary := source.NewPrimary(primaryClient, cfg.Sources.Primary.Path, norm, logger,
		source.WithTimeout(cfg.Sources.Primary.Timeout),
	)

	secondaryClient := api.NewClient(
		cfg.Sources.Secondary.URL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Sources.Secondary.Timeout),
		api.WithRetries(cfg.Sources.Secondary.MaxRetries, 500*time.Millisecond),
		api.WithUserAgent(userAgent),
		api.WithHeader("Accept", "application/json"),
	)
	secondary := source.NewSecondary(secondaryClient, source.SecondaryConfig{
		Path:     cfg.Sources.Secondary.Path,
		Interval: cfg.Sources.Secondary.Interval,
		Range:    cfg.Sources.Secondary.Range,
	}, norm, logger, source.WithTimeout(cfg.Sources.Secondary.Timeout))
	logger.Info("upstream feeds configured",
		"primary", primaryClient.BaseURL()+cfg.Sources.Primary.Path,
		"secondary", secondaryClient.BaseURL()+cfg.Sources.Secondary.Path,
	)

	// Notification sinks
	sink, closers := buildSink(cfg.Notify, logger)
	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		QueueSize:   cfg.Notify.QueueSize,
		Workers:     cfg.Notify.Workers,
		SendTimeout: cfg.Notify.SendTimeout,
		Recipients:  cfg.Notify.Telegram.ChatIDs,
	}, sink, m, logger)

	hub := httpapi.NewHub(httpapi.DefaultHubConfig(), logger)

	// Reconciliation
	state := recon.NewState(cfg.Signals.Capacity)
	engine := recon.NewEngine(
		recon.Config{Concurrency: cfg.Sources.Secondary.Concurrency},
		univ.Tickers(),
		primary,
		secondary,
		signal.NewDetector(cfg.Signals.PctThreshold, cfg.Signals.TimeThreshold),
		state,
		logger,
		recon.WithHandler(dispatcher),
		recon.WithHandler(hub),
		recon.WithMetrics(m),
	)

	server := httpapi.New(httpapi.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		MetricsPath: cfg.Metrics.Path,
	}, state, hub, m, logger)

	p := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		PassTimeout: cfg.Poller.PassTimeout,
	}, engine, logger)

	pinger := keepalive.New(keepalive.Config{
		URL:      cfg.Keepalive.URL,
		Interval: cfg.Keepalive.Interval,
	}, logger)

	// Start components
	if err := startAll(ctx, []component{
		{"http server", server.Start},
		{"notification dispatcher", dispatcher.Start},
		{"poller", p.Start},
		{"keepalive", pinger.Start},
	}); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	logger.Info("bistwatch running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	pinger.Stop(shutdownCtx)
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop", "error", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("dispatcher stop", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("sink close", "error", err)
		}
	}
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Warn("http server stop", "error", err)
	}

	logger.Info("bistwatch stopped")
}

// newLogger builds the configured slog logger.
// component is a named start step run in startup order.
type component struct {
	name  string
	start func(context.Context) error
}

// startAll starts comps in order and stops at the first failure.
func startAll(ctx context.Context, comps []component) error {
	for _, c := range comps {
		if err := c.start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", c.name, err)
		}
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// buildSink assembles every configured sink. With none configured messages
// are only logged.
func buildSink(cfg config.NotifyConfig, logger *slog.Logger) (notify.Sink, []io.Closer) {
	var (
		sinks   notify.Multi
		closers []io.Closer
	)

	if cfg.Telegram.Token != "" {
		sinks = append(sinks, notify.NewTelegramSink(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.SendTimeout, logger))
		logger.Info("telegram notifications enabled", "chats", len(cfg.Telegram.ChatIDs))
	}

	if cfg.Redis.Addr != "" {
		rs := notify.NewRedisSink(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Redis.Channel)
		sinks = append(sinks, rs)
		closers = append(closers, rs)
		logger.Info("redis notifications enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		ks := notify.NewKafkaSink(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		sinks = append(sinks, ks)
		closers = append(closers, ks)
		logger.Info("kafka notifications enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	switch len(sinks) {
	case 0:
		logger.Info("no notification sink configured, logging signals only")
		return notify.LogSink{Logger: logger}, nil
	case 1:
		return sinks[0], closers
	default:
		return sinks, closers
	}
}
