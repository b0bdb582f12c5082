package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/bistwatch/internal/model"
)

type recordingSink struct {
	mu    sync.Mutex
	msgs  []Message
	err   error
	block chan struct{}
}

func (s *recordingSink) Send(ctx context.Context, msg Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDispatcher_Delivers(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(DispatcherConfig{Recipients: []string{"42"}}, sink, nil, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop(context.Background())

	at := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	id := uuid.New()
	d.HandleSignals([]model.SignalEvent{{
		ID:          id,
		Ticker:      "GARAN",
		Type:        model.SignalDiscrepancy,
		Description: "pctDiff=-0.5515%, timeDiff=0s",
		Time:        at,
	}})

	waitFor(t, func() bool { return d.Stats().Sent == 1 })

	sink.mu.Lock()
	msg := sink.msgs[0]
	sink.mu.Unlock()
	if msg.Key != id.String() {
		t.Errorf("Key = %q, want %q", msg.Key, id)
	}
	want := "⚠️ <b>VERI FARKI:</b> GARAN\npctDiff=-0.5515%, timeDiff=0s\nZaman: 2024-01-15T09:30:00Z"
	if msg.Text != want {
		t.Errorf("Text = %q, want %q", msg.Text, want)
	}
	if len(msg.Recipients) != 1 || msg.Recipients[0] != "42" {
		t.Errorf("Recipients = %v", msg.Recipients)
	}
}

func TestDispatcher_FailuresCounted(t *testing.T) {
	sink := &recordingSink{err: errors.New("down")}
	d := NewDispatcher(DispatcherConfig{}, sink, nil, nil)
	d.Start(context.Background())
	defer d.Stop(context.Background())

	d.Enqueue(Message{Text: "a"})
	d.Enqueue(Message{Text: "b"})

	waitFor(t, func() bool { return d.Stats().Failed == 2 })
	if s := d.Stats(); s.Sent != 0 {
		t.Errorf("Sent = %d, want 0", s.Sent)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{QueueSize: 2, Workers: 1}, sink, nil, nil)
	d.Start(context.Background())

	// Worker holds one, queue holds two, the rest drop.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Enqueue(Message{Text: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	stats := d.Stats()
	if stats.Dropped < 7 {
		t.Errorf("Dropped = %d, want at least 7", stats.Dropped)
	}
	if stats.Enqueued+stats.Dropped != 10 {
		t.Errorf("Enqueued+Dropped = %d, want 10", stats.Enqueued+stats.Dropped)
	}

	close(sink.block)
	d.Stop(context.Background())
}

func TestDispatcher_StopTimeout(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, &recordingSink{}, nil, nil)
	d.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
