package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Candidate field names, tried in order until one yields a valid value.
var (
	symbolKeys   = []string{"symbol", "code", "ticker", "s", "kod", "name"}
	priceKeys    = []string{"price", "last", "close", "fiyat", "p", "kapanis", "c"}
	timeKeys     = []string{"time", "timestamp", "ts", "updated_at", "tarih"}
	envelopeKeys = []string{"data", "result", "rows", "items"}
)

// shape tags the layout of a bulk response.
type shape int

const (
	shapeUnknown    shape = iota
	shapeArray            // [ {...}, {...} ]
	shapeEnvelope         // { "data": [ {...} ] }
	shapeDictionary       // { "GARAN": {...} | 54.1 }
)

func (s shape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeEnvelope:
		return "envelope"
	case shapeDictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}

// record is one upstream entry with its fields left undecoded.
type record map[string]json.RawMessage

// payload is a decoded bulk response.
type payload struct {
	shape   shape
	entries []json.RawMessage          // array, envelope
	dict    map[string]json.RawMessage // dictionary
}

// decodePayload classifies body without interpreting individual entries.
func decodePayload(body []byte) (payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return payload{}, nil
	}

	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return payload{}, err
		}
		return payload{shape: shapeArray, entries: entries}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return payload{}, err
		}
		for _, key := range envelopeKeys {
			raw, ok := obj[key]
			if !ok || isNull(raw) {
				continue
			}
			var entries []json.RawMessage
			if err := json.Unmarshal(raw, &entries); err == nil {
				return payload{shape: shapeEnvelope, entries: entries}, nil
			}
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err == nil {
				return payload{shape: shapeDictionary, dict: nested}, nil
			}
		}
		return payload{shape: shapeDictionary, dict: obj}, nil
	}

	if !json.Valid(trimmed) {
		return payload{}, errors.New("body is not valid JSON")
	}
	// Scalars carry no quotes.
	return payload{}, nil
}

// asRecord decodes raw as an object; ok is false for scalars and arrays.
func asRecord(raw json.RawMessage) (record, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return rec, true
}

// extractSymbol returns the first non-empty symbol candidate.
func (r record) extractSymbol() (string, bool) {
	for _, key := range symbolKeys {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if s, ok := parseText(raw); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// extractPrice returns the first candidate that parses as a finite number.
func (r record) extractPrice() (float64, bool) {
	for _, key := range priceKeys {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if p, ok := parsePrice(raw); ok {
			return p, true
		}
	}
	return 0, false
}

// extractTime returns the first candidate that parses as a timestamp.
func (r record) extractTime() (time.Time, bool) {
	for _, key := range timeKeys {
		raw, ok := r[key]
		if !ok {
			continue
		}
		if ts, ok := parseTime(raw); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseText accepts JSON strings and numbers.
func parseText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// parsePrice accepts JSON numbers and numeric strings, including "54,10" and "1.234,50".
func parsePrice(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, finite(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	return parseNumeric(s)
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

// parseTime accepts unix seconds or milliseconds (number or string) and RFC 3339.
func parseTime(raw json.RawMessage) (time.Time, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return fromUnix(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromUnix(f)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// fromUnix treats values above 1e12 as milliseconds.
func fromUnix(f float64) (time.Time, bool) {
	if !finite(f) || f <= 0 {
		return time.Time{}, false
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
