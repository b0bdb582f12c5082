package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSink_Send(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, "test.signals")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sentAt := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	sink := NewRedisSink(rdb, "test.signals")
	sink.now = func() time.Time { return sentAt }

	err := sink.Send(ctx, Message{Key: "k1", Text: "hello", Recipients: []string{"42"}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Key != "k1" || env.Text != "hello" {
		t.Errorf("envelope = %+v", env)
	}
	if len(env.Recipients) != 1 || env.Recipients[0] != "42" {
		t.Errorf("Recipients = %v, want [42]", env.Recipients)
	}
	if !env.SentAt.Equal(sentAt) {
		t.Errorf("SentAt = %v, want %v", env.SentAt, sentAt)
	}
}

func TestRedisSink_DefaultChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sink := NewRedisSink(rdb, "")
	if sink.channel != DefaultRedisChannel {
		t.Errorf("channel = %q, want %q", sink.channel, DefaultRedisChannel)
	}
}

func TestRedisSink_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := NewRedisSink(rdb, "x").Send(ctx, Message{Text: "hi"}); err == nil {
		t.Error("expected error with server down")
	}
}
