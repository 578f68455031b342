package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fbwsim/pkg/sim"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1024
)

// StreamHandler serves the telemetry websocket. Each connection pushes
// telemetry at a fixed interval and accepts InputEvent messages. A dropped
// connection releases every held key so nothing stays pressed.
type StreamHandler struct {
	client   sim.ControlClient
	interval time.Duration
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewStreamHandler(client sim.ControlClient, interval time.Duration) *StreamHandler {
	return &StreamHandler{
		client:   client,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		sessions: make(map[string]time.Time),
	}
}

// Sessions returns the number of open connections.
func (h *StreamHandler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	logger := slog.With("session", id)
	h.mu.Lock()
	h.sessions[id] = time.Now()
	h.mu.Unlock()
	logger.Info("Stream connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		h.writeLoop(ctx, conn, logger)
	}()

	h.readLoop(ctx, conn, logger)

	cancel()
	wg.Wait()
	conn.Close()

	if err := h.client.Blur(); err != nil {
		logger.Debug("Blur after disconnect failed", "error", err)
	}
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	logger.Info("Stream disconnected")
}

func (h *StreamHandler) readLoop(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Closing the connection from the write side unblocks ReadJSON
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		var ev InputEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Stream read ended", "error", err)
			}
			return
		}
		if _, err := ApplyInput(h.client, ev); err != nil {
			logger.Warn("Stream input rejected", "type", ev.Type, "code", ev.Code, "error", err)
		}
	}
}

func (h *StreamHandler) writeLoop(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			tel, err := h.client.GetTelemetry(ctx)
			if err != nil {
				logger.Debug("Stream telemetry unavailable", "error", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(TelemetryResponse{
				Telemetry: tel,
				SimState:  string(h.client.GetState()),
			}); err != nil {
				logger.Debug("Stream write failed", "error", err)
				return
			}
		}
	}
}
