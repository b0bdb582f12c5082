package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rickgao/bistwatch/internal/metrics"
	"github.com/rickgao/bistwatch/internal/model"
	"github.com/rickgao/bistwatch/internal/recon"
	"github.com/rickgao/bistwatch/internal/version"
)

// Config holds server configuration.
type Config struct {
	Addr        string // Listen address (default: ":8080")
	MetricsPath string // Exposition path (default: "/metrics")
}

// Server serves the query API.
type Server struct {
	cfg     Config
	state   *recon.State
	hub     *Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	srv *http.Server
	wg  sync.WaitGroup
}

// New creates a Server over state. hub and m may be nil.
func New(cfg Config, state *recon.State, hub *Hub, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		cfg:     cfg,
		state:   state,
		hub:     hub,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/comparisons", s.handleComparisons)
	mux.HandleFunc("GET /api/signals", s.handleSignals)
	mux.HandleFunc("GET /api/last/{source}", s.handleLast)
	mux.Handle("GET "+s.cfg.MetricsPath, s.metrics.Handler())
	if s.hub != nil {
		mux.Handle("GET /ws/signals", s.hub)
	}
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "err", err)
		}
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the server down and closes stream subscribers.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.wg.Wait()
	s.logger.Info("http server stopped")
	return err
}

type healthResponse struct {
	OK       bool       `json:"ok"`
	TS       time.Time  `json:"ts"`
	Version  string     `json:"version"`
	LastPass *time.Time `json:"lastPass,omitempty"`
	Signals  int        `json:"signals"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		OK:      true,
		TS:      s.now().UTC(),
		Version: version.String(),
		Signals: s.state.SignalLog().Len(),
	}
	if lp := s.state.LastPass(); !lp.IsZero() {
		resp.LastPass = &lp
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComparisons(w http.ResponseWriter, r *http.Request) {
	records := s.state.Records()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"count": len(records),
		"data":  records,
	})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	signals := s.state.Signals()
	if signals == nil {
		signals = []model.SignalEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"total": len(signals),
		"data":  signals,
	})
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	src := model.Source(r.PathValue("source"))
	switch src {
	case model.SourcePrimary, model.SourceSecondary:
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"ok":    false,
			"error": "unknown source: " + string(src),
		})
		return
	}

	quotes := s.state.LastQuotes(src)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"count": len(quotes),
		"data":  quotes,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
