package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Compile-time interface checks.
var (
	_ Sink = (*RedisSink)(nil)
	_ Sink = (*KafkaSink)(nil)
	_ Sink = (*TelegramSink)(nil)
	_ Sink = Multi(nil)
	_ Sink = LogSink{}
)

// Message is one notification.
type Message struct {
	Key        string // Stable identifier, used as the bus message key
	Text       string // HTML-formatted body
	Recipients []string
}

// Sink delivers a message.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(context.Context, Message) error

func (f SinkFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// envelope is the JSON form published on message buses.
type envelope struct {
	Key        string    `json:"key,omitempty"`
	Text       string    `json:"text"`
	Recipients []string  `json:"recipients,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// Multi sends every message to all sinks and joins their errors.
type Multi []Sink

func (m Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes messages to a logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification",
		"key", msg.Key,
		"recipients", len(msg.Recipients),
		"text", msg.Text,
	)
	return nil
}
