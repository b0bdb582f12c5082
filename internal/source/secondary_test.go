package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/bistwatch/internal/api"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/symbol"
)

func chartBody(timestamps string, closes string) string {
	return fmt.Sprintf(`{"chart": {"result": [{
		"meta": {"symbol": "GARAN.IS", "currency": "TRY"},
		"timestamp": %s,
		"indicators": {"quote": [{"close": %s}]}
	}], "error": null}}`, timestamps, closes)
}

func TestParseChart(t *testing.T) {
	q, err := ParseChart([]byte(chartBody(`[1705310880, 1705310940, 1705311000]`, `[54.2, 54.3, 54.4]`)))
	if err != nil {
		t.Fatalf("ParseChart failed: %v", err)
	}

	if q.Price != 54.4 {
		t.Errorf("Price = %v, want 54.4", q.Price)
	}
	want := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	if !q.ObservedAt.Equal(want) {
		t.Errorf("ObservedAt = %v, want %v", q.ObservedAt, want)
	}
	if q.Source != model.SourceSecondary {
		t.Errorf("Source = %q, want secondary", q.Source)
	}
	if len(q.Raw) == 0 {
		t.Error("Raw should carry chart meta")
	}
}

func TestParseChart_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html/>`},
		{"chart error", `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`},
		{"no result", `{"chart": {"result": []}}`},
		{"no timestamps", chartBody(`[]`, `[]`)},
		{"null last close", chartBody(`[1705310940, 1705311000]`, `[54.3, null]`)},
		{"short close series", chartBody(`[1705310940, 1705311000]`, `[54.3]`)},
		{"no quote block", `{"chart": {"result": [{"timestamp": [1705311000], "indicators": {"quote": []}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChart([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("error %v does not wrap ErrUnavailable", err)
			}
		})
	}
}

func TestSecondary_FetchOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/GARAN.IS" {
			t.Errorf("path = %q, want /v8/finance/chart/GARAN.IS", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1m" || r.URL.Query().Get("range") != "1d" {
			t.Errorf("query = %q, want interval=1m&range=1d", r.URL.RawQuery)
		}
		w.Write([]byte(chartBody(`[1705311000]`, `[54.40]`)))
	}))
	defer server.Close()

	s := NewSecondary(api.NewClient(server.URL), SecondaryConfig{}, symbol.Default(), nil)

	q, err := s.FetchOne(context.Background(), "GARAN")
	if err != nil {
		t.Fatalf("FetchOne failed: %v", err)
	}
	if q.Price != 54.40 {
		t.Errorf("Price = %v, want 54.40", q.Price)
	}
}

func TestSecondary_FetchOneUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, api.WithRetries(0, 0))
	s := NewSecondary(client, SecondaryConfig{Interval: "5m", Range: "5d"}, symbol.Default(), nil)

	_, err := s.FetchOne(context.Background(), "GARAN")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("error %v should carry the upstream status", err)
	}
}
