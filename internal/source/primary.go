package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rickgao/bistwatch/internal/api"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/symbol"
)

// Primary fetches the bulk feed: every symbol in one request.
type Primary struct {
	client *api.Client
	path   string
	norm   symbol.Normalizer
	opts   options
	logger *slog.Logger
}

// NewPrimary creates a bulk adapter that GETs path on client.
func NewPrimary(client *api.Client, path string, n symbol.Normalizer, logger *slog.Logger, opts ...Option) *Primary {
	if logger == nil {
		logger = slog.Default()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Primary{
		client: client,
		path:   path,
		norm:   n,
		opts:   o,
		logger: logger,
	}
}

// FetchAll returns the latest quote of every symbol the feed reported.
// A response in no recognizable shape yields an empty map, not an error.
func (p *Primary) FetchAll(ctx context.Context) (map[model.Ticker]model.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.timeout)
	defer cancel()

	body, err := p.client.GetRaw(ctx, p.path, nil)
	if err != nil {
		if api.IsTimeout(err) {
			p.logger.Debug("primary fetch timed out", "timeout", p.opts.timeout)
		}
		return nil, unavailableErr("fetch primary", err)
	}

	quotes, stats, err := ParseBulk(body, p.norm, p.opts.now())
	if err != nil {
		return nil, unavailableErr("decode primary", err)
	}

	p.logger.Debug("primary feed fetched",
		"shape", stats.Shape,
		"entries", stats.Entries,
		"quotes", len(quotes),
		"dropped", stats.Dropped,
	)

	return quotes, nil
}

// BulkStats describes how a bulk response was interpreted.
type BulkStats struct {
	Shape   string
	Entries int // Entries seen in the response
	Dropped int // Entries without a usable symbol or price
}

// ParseBulk extracts quotes from a bulk response of any supported shape.
// Entries without an observation time are stamped with fetchedAt.
func ParseBulk(body []byte, n symbol.Normalizer, fetchedAt time.Time) (map[model.Ticker]model.Quote, BulkStats, error) {
	pl, err := decodePayload(body)
	if err != nil {
		return nil, BulkStats{}, err
	}

	stats := BulkStats{Shape: pl.shape.String()}
	quotes := make(map[model.Ticker]model.Quote)
	fetchedAt = fetchedAt.UTC()

	add := func(rawSymbol string, price float64, observedAt time.Time, raw json.RawMessage) {
		t := n.Normalize(rawSymbol)
		if t == "" {
			stats.Dropped++
			return
		}
		quotes[t] = model.Quote{
			Price:      price,
			ObservedAt: observedAt,
			Source:     model.SourcePrimary,
			Raw:        raw,
		}
	}

	switch pl.shape {
	case shapeArray, shapeEnvelope:
		stats.Entries = len(pl.entries)
		for _, raw := range pl.entries {
			rec, ok := asRecord(raw)
			if !ok {
				stats.Dropped++
				continue
			}
			sym, okSym := rec.extractSymbol()
			price, okPrice := rec.extractPrice()
			if !okSym || !okPrice {
				stats.Dropped++
				continue
			}
			add(sym, price, observedAt(rec, fetchedAt), raw)
		}

	case shapeDictionary:
		stats.Entries = len(pl.dict)
		for key, raw := range pl.dict {
			if rec, ok := asRecord(raw); ok {
				price, ok := rec.extractPrice()
				if !ok {
					stats.Dropped++
					continue
				}
				add(key, price, observedAt(rec, fetchedAt), raw)
				continue
			}
			price, ok := parsePrice(raw)
			if !ok {
				stats.Dropped++
				continue
			}
			add(key, price, fetchedAt, raw)
		}
	}

	return quotes, stats, nil
}

func observedAt(rec record, fallback time.Time) time.Time {
	if ts, ok := rec.extractTime(); ok {
		return ts
	}
	return fallback
}
