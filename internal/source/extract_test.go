package source

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"number", `54.1`, 54.1, true},
		{"integer", `54`, 54, true},
		{"zero", `0`, 0, true},
		{"string", `"54.10"`, 54.1, true},
		{"comma decimal", `"54,10"`, 54.1, true},
		{"thousands dot comma decimal", `"1.234,50"`, 1234.5, true},
		{"thousands comma dot decimal", `"1,234.50"`, 1234.5, true},
		{"padded string", `" 54.1 "`, 54.1, true},
		{"empty string", `""`, 0, false},
		{"word", `"n/a"`, 0, false},
		{"NaN string", `"NaN"`, 0, false},
		{"Inf string", `"+Inf"`, 0, false},
		{"null", `null`, 0, false},
		{"bool", `true`, 0, false},
		{"object", `{"v": 1}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePrice(json.RawMessage(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("parsePrice(%s) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parsePrice(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"unix seconds", `1705311000`, true},
		{"unix millis", `1705311000000`, true},
		{"unix seconds string", `"1705311000"`, true},
		{"rfc3339", `"2024-01-15T09:30:00Z"`, true},
		{"rfc3339 offset", `"2024-01-15T12:30:00+03:00"`, true},
		{"no zone", `"2024-01-15T09:30:00"`, true},
		{"space separated", `"2024-01-15 09:30:00"`, true},
		{"zero", `0`, false},
		{"negative", `-5`, false},
		{"garbage", `"yesterday"`, false},
		{"null", `null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTime(json.RawMessage(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("parseTime(%s) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && !got.Equal(want) {
				t.Errorf("parseTime(%s) = %v, want %v", tt.raw, got, want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    shape
		entries int
		wantErr bool
	}{
		{"array", `[{"symbol":"GARAN","price":1}]`, shapeArray, 1, false},
		{"data envelope", `{"data":[{},{}]}`, shapeEnvelope, 2, false},
		{"result envelope", `{"result":[{}]}`, shapeEnvelope, 1, false},
		{"rows envelope", `{"rows":[]}`, shapeEnvelope, 0, false},
		{"items envelope", `{"items":[{}]}`, shapeEnvelope, 1, false},
		{"nested dictionary", `{"data":{"GARAN":1,"THYAO":2}}`, shapeDictionary, 2, false},
		{"null envelope falls back", `{"data":null,"GARAN":1}`, shapeDictionary, 2, false},
		{"dictionary", `{"GARAN":{"last":1}}`, shapeDictionary, 1, false},
		{"scalar", `42`, shapeUnknown, 0, false},
		{"empty", ``, shapeUnknown, 0, false},
		{"broken", `{"data":[`, shapeUnknown, 0, true},
		{"string scalar", `"hello"`, shapeUnknown, 0, false},
		{"html page", `<html>rate limited</html>`, shapeUnknown, 0, true},
		{"plain text", `not json at all`, shapeUnknown, 0, true},
		{"trailing garbage", `garbage{`, shapeUnknown, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := decodePayload([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodePayload error = %v, wantErr %v", err, tt.wantErr)
			}
			if pl.shape != tt.want {
				t.Errorf("shape = %v, want %v", pl.shape, tt.want)
			}
			n := len(pl.entries) + len(pl.dict)
			if n != tt.entries {
				t.Errorf("entries = %d, want %d", n, tt.entries)
			}
		})
	}
}

func TestRecordExtractors(t *testing.T) {
	rec, ok := asRecord(json.RawMessage(`{"kod":"GARAN","fiyat":"abc","kapanis":"54,10","tarih":"2024-01-15 09:30:00"}`))
	if !ok {
		t.Fatal("asRecord failed on object")
	}

	sym, ok := rec.extractSymbol()
	if !ok || sym != "GARAN" {
		t.Errorf("extractSymbol = %q, %v; want GARAN, true", sym, ok)
	}

	// "fiyat" is unparsable, so the next candidate wins.
	price, ok := rec.extractPrice()
	if !ok || price != 54.1 {
		t.Errorf("extractPrice = %v, %v; want 54.1, true", price, ok)
	}

	ts, ok := rec.extractTime()
	if !ok || !ts.Equal(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("extractTime = %v, %v", ts, ok)
	}

	if _, ok := asRecord(json.RawMessage(`[1,2]`)); ok {
		t.Error("asRecord should reject arrays")
	}
}
