package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration of a bistwatch instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Server    ServerConfig    `yaml:"server"`
	Sources   SourcesConfig   `yaml:"sources"`
	Universe  UniverseConfig  `yaml:"universe"`
	Poller    PollerConfig    `yaml:"poller"`
	Signals   SignalsConfig   `yaml:"signals"`
	Notify    NotifyConfig    `yaml:"notify"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// InstanceConfig identifies this instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SourcesConfig holds both upstream feeds.
type SourcesConfig struct {
	Primary   PrimaryConfig   `yaml:"primary"`
	Secondary SecondaryConfig `yaml:"secondary"`
}

// PrimaryConfig holds the bulk feed settings.
type PrimaryConfig struct {
	URL        string        `yaml:"url"`  // Base URL
	Path       string        `yaml:"path"` // Endpoint returning every ticker
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// SecondaryConfig holds the per-symbol chart feed settings.
type SecondaryConfig struct {
	URL         string        `yaml:"url"`
	Path        string        `yaml:"path"`     // Chart endpoint prefix; the symbol is appended
	Interval    string        `yaml:"interval"` // Bar interval query parameter
	Range       string        `yaml:"range"`    // Range query parameter
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
	Concurrency int           `yaml:"concurrency"` // Max in-flight symbol requests
}

// UniverseConfig lists the tracked tickers. Empty uses the built-in list.
type UniverseConfig struct {
	Tickers []string `yaml:"tickers"`
}

// PollerConfig holds pass scheduling settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	PassTimeout time.Duration `yaml:"pass_timeout"`
}

// SignalsConfig holds discrepancy detection settings.
type SignalsConfig struct {
	Capacity      int           `yaml:"capacity"`       // Signal log bound
	PctThreshold  float64       `yaml:"pct_threshold"`  // Percent, strict
	TimeThreshold time.Duration `yaml:"time_threshold"` // Strict
}

// NotifyConfig holds notification delivery settings.
type NotifyConfig struct {
	QueueSize   int            `yaml:"queue_size"`
	Workers     int            `yaml:"workers"`
	SendTimeout time.Duration  `yaml:"send_timeout"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Redis       RedisConfig    `yaml:"redis"`
	Kafka       KafkaConfig    `yaml:"kafka"`
}

// TelegramConfig enables the Telegram sink when Token is set.
type TelegramConfig struct {
	Token   string   `yaml:"token"`
	ChatIDs []string `yaml:"chat_ids"` // Entries may be comma-separated lists
	APIURL  string   `yaml:"api_url"`
}

// RedisConfig enables the Redis sink when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// KafkaConfig enables the Kafka sink when Brokers is set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// KeepaliveConfig enables self-pinging when URL is set.
type KeepaliveConfig struct {
	URL      string        `yaml:"url"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SlogLevel returns the configured level, info when unrecognized.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
