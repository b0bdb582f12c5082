package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.PassCompleted(2*time.Second, 12, 3)
	m.Fetch("primary", true)
	m.Fetch("secondary", false)
	m.Fetch("secondary", false)
	m.SignalsEmitted(3)
	m.Notification(NotifySent)
	m.Notification(NotifyDropped)

	if got := testutil.ToFloat64(m.passes); got != 1 {
		t.Errorf("passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.records); got != 12 {
		t.Errorf("records = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("secondary", "unavailable")); got != 2 {
		t.Errorf("secondary unavailable = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.signals); got != 3 {
		t.Errorf("signals = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues(NotifyDropped)); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	m.PassCompleted(time.Second, 1, 1)
	m.Fetch("primary", true)
	m.SignalsEmitted(1)
	m.Notification(NotifyFailed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SignalsEmitted(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bistwatch_signals_total 2") {
		t.Errorf("exposition missing signals counter:\n%s", rec.Body.String())
	}
}

func TestMetrics_Registry(t *testing.T) {
	m := New()
	m.Fetch("primary", true)
	m.Fetch("secondary", false)

	n, err := testutil.GatherAndCount(m.Registry(), "bistwatch_fetches_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("fetches_total series = %d, want 2", n)
	}

	n, err = testutil.GatherAndCount(m.Registry(), "go_goroutines")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Errorf("go_goroutines series = %d, want 1", n)
	}
}
