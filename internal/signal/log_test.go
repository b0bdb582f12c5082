package signal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rickgao/bistwatch/internal/model"
)

func ev(key string) model.SignalEvent {
	return model.SignalEvent{Key: key, Ticker: "GARAN", Type: model.SignalDiscrepancy}
}

func keys(events []model.SignalEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Key
	}
	return out
}

func TestLog_NewestFirst(t *testing.T) {
	l := NewLog(10)
	l.Prepend(ev("a"))
	l.Prepend(ev("b"), ev("c"))

	got := keys(l.Snapshot())
	want := []string{"c", "b", "a"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestLog_EvictsOldest(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Prepend(ev(fmt.Sprint(i)))
	}

	got := keys(l.Snapshot())
	want := []string{"4", "3", "2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}

	stats := l.Stats()
	if stats.TotalAppended != 5 {
		t.Errorf("TotalAppended = %d, want 5", stats.TotalAppended)
	}
	if stats.TotalEvicted != 2 {
		t.Errorf("TotalEvicted = %d, want 2", stats.TotalEvicted)
	}
}

// TestLog_NeverExceedsCapacity inserts far more than the bound, in batches of varying size.
func TestLog_NeverExceedsCapacity(t *testing.T) {
	l := NewLog(DefaultCapacity)

	n := 0
	for batch := 1; batch <= 60; batch++ {
		events := make([]model.SignalEvent, batch)
		for i := range events {
			events[i] = ev(fmt.Sprint(n))
			n++
		}
		l.Prepend(events...)

		if l.Len() > DefaultCapacity {
			t.Fatalf("Len() = %d exceeds capacity %d", l.Len(), DefaultCapacity)
		}
	}

	snap := l.Snapshot()
	if len(snap) != DefaultCapacity {
		t.Fatalf("len(Snapshot()) = %d, want %d", len(snap), DefaultCapacity)
	}
	if snap[0].Key != fmt.Sprint(n-1) {
		t.Errorf("newest = %s, want %d", snap[0].Key, n-1)
	}
	if snap[len(snap)-1].Key != fmt.Sprint(n-DefaultCapacity) {
		t.Errorf("oldest = %s, want %d", snap[len(snap)-1].Key, n-DefaultCapacity)
	}
}

func TestLog_DefaultCapacity(t *testing.T) {
	if got := NewLog(0).Cap(); got != DefaultCapacity {
		t.Errorf("NewLog(0).Cap() = %d, want %d", got, DefaultCapacity)
	}
	if got := NewLog(-1).Cap(); got != DefaultCapacity {
		t.Errorf("NewLog(-1).Cap() = %d, want %d", got, DefaultCapacity)
	}
}

func TestLog_SnapshotIsCopy(t *testing.T) {
	l := NewLog(2)
	l.Prepend(ev("a"))

	snap := l.Snapshot()
	snap[0].Key = "mutated"

	if l.Snapshot()[0].Key != "a" {
		t.Error("mutating snapshot changed the log")
	}
}

func TestLog_ConcurrentReaders(t *testing.T) {
	l := NewLog(50)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if n := len(l.Snapshot()); n > 50 {
					t.Errorf("snapshot len %d exceeds capacity", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		l.Prepend(ev(fmt.Sprint(i)))
	}
	wg.Wait()
}
