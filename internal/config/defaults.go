package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID        = "bistwatch"
	DefaultPort              = 10000
	DefaultPrimaryURL        = "https://api.asenax.com"
	DefaultPrimaryPath       = "/bist"
	DefaultSecondaryURL      = "https://query1.finance.yahoo.com"
	DefaultSecondaryPath     = "/v8/finance/chart/"
	DefaultSecondaryInterval = "1m"
	DefaultSecondaryRange    = "1d"
	DefaultSourceTimeout     = 15 * time.Second
	DefaultMaxRetries        = 1
	DefaultSecondaryFanout   = 8
	DefaultPollInterval      = 60 * time.Second
	MinPollInterval          = 10 * time.Second
	DefaultSignalCapacity    = 500
	DefaultPctThreshold      = 0.5
	DefaultTimeThreshold     = 10 * time.Second
	DefaultNotifyQueueSize   = 256
	DefaultNotifyWorkers     = 2
	DefaultNotifySendTimeout = 15 * time.Second
	DefaultTelegramURL       = "https://api.telegram.org"
	DefaultRedisChannel      = "bistwatch.signals"
	DefaultKafkaTopic        = "bistwatch.signals"
	DefaultKeepaliveInterval = 4 * time.Minute
	MinKeepaliveInterval     = 30 * time.Second
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	// Source defaults
	p := &c.Sources.Primary
	if p.URL == "" {
		p.URL = DefaultPrimaryURL
	}
	if p.Path == "" {
		p.Path = DefaultPrimaryPath
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultSourceTimeout
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = DefaultMaxRetries
	}

	s := &c.Sources.Secondary
	if s.URL == "" {
		s.URL = DefaultSecondaryURL
	}
	if s.Path == "" {
		s.Path = DefaultSecondaryPath
	}
	if s.Interval == "" {
		s.Interval = DefaultSecondaryInterval
	}
	if s.Range == "" {
		s.Range = DefaultSecondaryRange
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultSourceTimeout
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultMaxRetries
	}
	if s.Concurrency == 0 {
		s.Concurrency = DefaultSecondaryFanout
	}

	c.Universe.Tickers = splitList(c.Universe.Tickers)

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Interval < MinPollInterval {
		c.Poller.Interval = MinPollInterval
	}
	if c.Poller.PassTimeout == 0 {
		c.Poller.PassTimeout = c.Poller.Interval
	}

	// Signal defaults
	if c.Signals.Capacity == 0 {
		c.Signals.Capacity = DefaultSignalCapacity
	}
	if c.Signals.PctThreshold == 0 {
		c.Signals.PctThreshold = DefaultPctThreshold
	}
	if c.Signals.TimeThreshold == 0 {
		c.Signals.TimeThreshold = DefaultTimeThreshold
	}

	// Notify defaults
	n := &c.Notify
	if n.QueueSize == 0 {
		n.QueueSize = DefaultNotifyQueueSize
	}
	if n.Workers == 0 {
		n.Workers = DefaultNotifyWorkers
	}
	if n.SendTimeout == 0 {
		n.SendTimeout = DefaultNotifySendTimeout
	}
	if n.Telegram.APIURL == "" {
		n.Telegram.APIURL = DefaultTelegramURL
	}
	n.Telegram.ChatIDs = splitList(n.Telegram.ChatIDs)
	if n.Redis.Channel == "" {
		n.Redis.Channel = DefaultRedisChannel
	}
	n.Kafka.Brokers = splitList(n.Kafka.Brokers)
	if n.Kafka.Topic == "" {
		n.Kafka.Topic = DefaultKafkaTopic
	}

	// Keepalive defaults
	if c.Keepalive.Interval == 0 {
		c.Keepalive.Interval = DefaultKeepaliveInterval
	}
	if c.Keepalive.Interval < MinKeepaliveInterval {
		c.Keepalive.Interval = MinKeepaliveInterval
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
