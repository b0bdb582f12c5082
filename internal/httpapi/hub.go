package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/bistwatch/internal/model"
)

// HubConfig holds stream configuration.
type HubConfig struct {
	BufferSize   int           // Per-subscriber queued messages (default: 64)
	WriteTimeout time.Duration // Deadline per write (default: 10s)
	PingInterval time.Duration // Keepalive ping period (default: 30s)
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:   64,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Hub fans signals out to WebSocket subscribers. A subscriber that cannot
// keep up is disconnected rather than slowing the publisher.
type Hub struct {
	cfg      HubConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool

	published atomic.Int64
	dropped   atomic.Int64
}

type subscriber struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// NewHub creates a Hub.
func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultHubConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	return &Hub{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// HandleSignals publishes each event to every subscriber without blocking.
func (h *Hub) HandleSignals(events []model.SignalEvent) {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.Warn("failed to encode signal", "key", ev.Key, "err", err)
			continue
		}
		h.broadcast(data)
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.send <- data:
		default:
			h.dropped.Add(1)
			h.logger.Warn("signal subscriber too slow, disconnecting", "remote", s.remote)
			delete(h.subs, s)
			s.close()
		}
	}
	h.published.Add(1)
}

// HubStats contains runtime statistics.
type HubStats struct {
	Subscribers int
	Published   int64 // Messages broadcast
	Dropped     int64 // Subscribers disconnected for falling behind
}

// Stats returns current statistics.
func (h *Hub) Stats() HubStats {
	h.mu.Lock()
	n := len(h.subs)
	h.mu.Unlock()
	return HubStats{
		Subscribers: n,
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// ServeHTTP upgrades the request and streams signals until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	s := &subscriber{
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan []byte, h.cfg.BufferSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("signal subscriber connected", "remote", s.remote)

	go h.readLoop(s)
	h.writeLoop(s)

	h.remove(s)
	conn.Close()
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		s.close()
	}
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

// readLoop discards client frames; it exists to process control frames and
// notice disconnects.
func (h *Hub) readLoop(s *subscriber) {
	defer s.close()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("signal write failed", "err", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.logger.Debug("failed to send ping", "err", err)
				return
			}
		}
	}
}
