package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the channel notifications are published on.
const DefaultRedisChannel = "bistwatch.signals"

// RedisSink publishes messages on a Redis pub/sub channel.
type RedisSink struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisSink creates a sink publishing on channel.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisSink{client: client, channel: channel, now: time.Now}
}

func (s *RedisSink) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(envelope{
		Key:        msg.Key,
		Text:       msg.Text,
		Recipients: msg.Recipients,
		SentAt:     s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", s.channel, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
