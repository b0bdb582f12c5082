// Package symbol maps between canonical tickers and the naming conventions of each upstream feed.
//
// Observed upstream forms for the same ticker:
//   - bare code:           "GARAN"
//   - exchange-prefixed:   "BIST:GARAN"
//   - suffixed:            "GARAN.IS"
//   - suffixed with space: "GARAN.IS " (and "GARAN ")
package symbol

import (
	"strings"

	"github.com/rickgao/bistwatch/internal/model"
)

// Normalizer converts upstream symbol keys to canonical tickers and back.
type Normalizer struct {
	Prefix          string   // Exchange prefix used by the primary feed (e.g. "BIST:")
	Suffixes        []string // Known suffixes stripped during normalization, longest match wins
	SecondarySuffix string   // Suffix appended for the secondary feed (e.g. ".IS")
}

// Default returns the Borsa Istanbul conventions.
func Default() Normalizer {
	return Normalizer{
		Prefix:          "BIST:",
		Suffixes:        []string{".IS", ".E"},
		SecondarySuffix: ".IS",
	}
}

// Normalize converts an arbitrary upstream key to a canonical ticker.
// It never fails: when stripping would leave nothing, the trimmed uppercased input is returned.
func (n Normalizer) Normalize(raw string) model.Ticker {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	s := upper

	// Any exchange prefix, not only ours.
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}

	best := ""
	for _, suffix := range n.Suffixes {
		suffix = strings.ToUpper(suffix)
		if suffix != "" && strings.HasSuffix(s, suffix) && len(suffix) > len(best) {
			best = suffix
		}
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, best))

	if s == "" {
		return model.Ticker(upper)
	}
	return model.Ticker(s)
}

// PrimaryKey returns the key the bulk feed uses for t.
func (n Normalizer) PrimaryKey(t model.Ticker) string {
	return string(t)
}

// SecondaryKey returns the query symbol the per-symbol feed expects for t.
func (n Normalizer) SecondaryKey(t model.Ticker) string {
	return string(t) + n.SecondarySuffix
}

// Variants returns the upstream spellings of t seen in the wild.
func (n Normalizer) Variants(t model.Ticker) []string {
	s := string(t)
	out := []string{s, n.Prefix + s}
	for _, suffix := range n.Suffixes {
		out = append(out, s+suffix, s+suffix+" ")
	}
	return append(out, s+" ")
}
