package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/bistwatch/internal/recon"
)

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name        string
		in          Config
		wantInt     time.Duration
		wantTimeout time.Duration
	}{
		{"zero uses default", Config{}, DefaultInterval, DefaultInterval},
		{"below minimum clamps", Config{Interval: 3 * time.Second}, MinInterval, MinInterval},
		{"minimum kept", Config{Interval: MinInterval}, MinInterval, MinInterval},
		{"custom kept", Config{Interval: 2 * time.Minute, PassTimeout: time.Minute}, 2 * time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Interval != tt.wantInt {
				t.Errorf("Interval = %v, want %v", got.Interval, tt.wantInt)
			}
			if got.PassTimeout != tt.wantTimeout {
				t.Errorf("PassTimeout = %v, want %v", got.PassTimeout, tt.wantTimeout)
			}
		})
	}
}

func TestPoller_StartStop(t *testing.T) {
	var calls atomic.Int32
	runner := PassRunnerFunc(func(ctx context.Context) recon.PassResult {
		calls.Add(1)
		return recon.PassResult{}
	})

	p := New(Config{Interval: time.Hour}, runner, nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait for the immediate pass.
	deadline := time.Now().Add(time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if got := p.Stats().Passes; got != 1 {
		t.Errorf("Passes = %d, want 1", got)
	}
}

func TestPoller_NoOverlap(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int32
	runner := PassRunnerFunc(func(ctx context.Context) recon.PassResult {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := maxInFlight.Load()
			if current <= old || maxInFlight.CompareAndSwap(old, current) {
				break
			}
		}
		calls.Add(1)
		// Longer than the interval.
		time.Sleep(50 * time.Millisecond)
		return recon.PassResult{}
	})

	p := New(Config{Interval: time.Hour}, runner, nil)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.wg.Add(1)
	go p.run(10 * time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("maxInFlight = %d, want 1", got)
	}
	if p.Stats().Skipped == 0 {
		t.Error("Skipped = 0, want overrunning passes to skip ticks")
	}
	if calls.Load() < 2 {
		t.Errorf("calls = %d, want repeated passes", calls.Load())
	}
}

func TestPoller_PassDeadline(t *testing.T) {
	got := make(chan time.Duration, 1)
	runner := PassRunnerFunc(func(ctx context.Context) recon.PassResult {
		deadline, ok := ctx.Deadline()
		if !ok {
			got <- 0
		} else {
			got <- time.Until(deadline)
		}
		return recon.PassResult{}
	})

	p := New(Config{Interval: time.Hour, PassTimeout: 30 * time.Second}, runner, nil)
	p.Start(context.Background())
	defer p.Stop(context.Background())

	select {
	case d := <-got:
		if d <= 0 || d > 30*time.Second {
			t.Errorf("pass deadline in %v, want within 30s", d)
		}
	case <-time.After(time.Second):
		t.Fatal("pass never ran")
	}
}
