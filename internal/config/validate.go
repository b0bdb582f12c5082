package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if err := validateURL("sources.primary.url", c.Sources.Primary.URL); err != nil {
		return err
	}
	if c.Sources.Primary.Timeout <= 0 {
		return errors.New("sources.primary.timeout must be > 0")
	}
	if c.Sources.Primary.MaxRetries < 0 {
		return errors.New("sources.primary.max_retries must be >= 0")
	}

	if err := validateURL("sources.secondary.url", c.Sources.Secondary.URL); err != nil {
		return err
	}
	if c.Sources.Secondary.Timeout <= 0 {
		return errors.New("sources.secondary.timeout must be > 0")
	}
	if c.Sources.Secondary.MaxRetries < 0 {
		return errors.New("sources.secondary.max_retries must be >= 0")
	}
	if c.Sources.Secondary.Concurrency < 1 {
		return errors.New("sources.secondary.concurrency must be >= 1")
	}

	if c.Poller.Interval < MinPollInterval {
		return fmt.Errorf("poller.interval must be >= %v", MinPollInterval)
	}
	if c.Poller.PassTimeout <= 0 {
		return errors.New("poller.pass_timeout must be > 0")
	}

	if c.Signals.Capacity < 1 {
		return errors.New("signals.capacity must be >= 1")
	}
	if c.Signals.PctThreshold <= 0 {
		return errors.New("signals.pct_threshold must be > 0")
	}
	if c.Signals.TimeThreshold <= 0 {
		return errors.New("signals.time_threshold must be > 0")
	}

	if c.Notify.QueueSize < 1 {
		return errors.New("notify.queue_size must be >= 1")
	}
	if c.Notify.Workers < 1 {
		return errors.New("notify.workers must be >= 1")
	}
	if c.Notify.Telegram.Token != "" {
		if len(c.Notify.Telegram.ChatIDs) == 0 {
			return errors.New("notify.telegram.chat_ids is required when a token is set")
		}
		if err := validateURL("notify.telegram.api_url", c.Notify.Telegram.APIURL); err != nil {
			return err
		}
	}
	if len(c.Notify.Kafka.Brokers) > 0 && c.Notify.Kafka.Topic == "" {
		return errors.New("notify.kafka.topic is required when brokers are set")
	}

	if c.Keepalive.URL != "" {
		if err := validateURL("keepalive.url", c.Keepalive.URL); err != nil {
			return err
		}
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host", field)
	}
	return nil
}
