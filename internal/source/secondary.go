package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/rickgao/bistwatch/internal/api"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/symbol"
)

// DefaultChartPath is the chart endpoint prefix; the escaped symbol is appended.
const DefaultChartPath = "/v8/finance/chart/"

// chartResponse mirrors GET /v8/finance/chart/{symbol}.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       json.RawMessage `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Secondary fetches the per-symbol chart feed.
type Secondary struct {
	client   *api.Client
	path     string
	interval string
	rng      string
	norm     symbol.Normalizer
	opts     options
	logger   *slog.Logger
}

// SecondaryConfig holds the chart query parameters.
type SecondaryConfig struct {
	Path     string // Default: DefaultChartPath
	Interval string // Bar interval, default "1m"
	Range    string // Lookback range, default "1d"
}

// NewSecondary creates a per-symbol adapter.
func NewSecondary(client *api.Client, cfg SecondaryConfig, n symbol.Normalizer, logger *slog.Logger, opts ...Option) *Secondary {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultChartPath
	}
	if cfg.Interval == "" {
		cfg.Interval = "1m"
	}
	if cfg.Range == "" {
		cfg.Range = "1d"
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Secondary{
		client:   client,
		path:     cfg.Path,
		interval: cfg.Interval,
		rng:      cfg.Range,
		norm:     n,
		opts:     o,
		logger:   logger,
	}
}

// FetchOne returns the latest bar close for t.
func (s *Secondary) FetchOne(ctx context.Context, t model.Ticker) (model.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	key := s.norm.SecondaryKey(t)
	query := url.Values{
		"interval": {s.interval},
		"range":    {s.rng},
	}

	body, err := s.client.GetRaw(ctx, s.path+url.PathEscape(key), query)
	if err != nil {
		if api.IsTimeout(err) {
			s.logger.Debug("secondary fetch timed out", "ticker", t, "timeout", s.opts.timeout)
		}
		return model.Quote{}, unavailableErr("fetch "+key, err)
	}

	q, err := ParseChart(body)
	if err != nil {
		return model.Quote{}, err
	}

	s.logger.Debug("secondary quote fetched",
		"ticker", t,
		"price", q.Price,
		"observed_at", q.ObservedAt,
	)
	return q, nil
}

// ParseChart extracts the last timestamp/close pair of a chart response.
func ParseChart(body []byte) (model.Quote, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Quote{}, unavailableErr("decode chart", err)
	}

	if e := resp.Chart.Error; e != nil {
		return model.Quote{}, unavailable("chart error %s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return model.Quote{}, unavailable("chart has no result")
	}

	res := resp.Chart.Result[0]
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return model.Quote{}, unavailable("chart has no bars")
	}

	last := len(res.Timestamp) - 1
	closes := res.Indicators.Quote[0].Close
	if last >= len(closes) {
		return model.Quote{}, unavailable("chart close series shorter than timestamps (%d < %d)", len(closes), len(res.Timestamp))
	}

	price := closes[last]
	if price == nil || !finite(*price) {
		return model.Quote{}, unavailable("chart last close missing")
	}

	return model.Quote{
		Price:      *price,
		ObservedAt: time.Unix(res.Timestamp[last], 0).UTC(),
		Source:     model.SourceSecondary,
		Raw:        res.Meta,
	}, nil
}
