package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fbwsim/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, tel *TelemetryHandler, ctl *ControlHandler, stream *StreamHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Telemetry and status
	mux.HandleFunc("GET /api/telemetry", tel.handleTelemetry)
	mux.HandleFunc("GET /api/status", ctl.HandleStatus)

	// 4. Pilot input
	mux.HandleFunc("POST /api/input", ctl.HandleInput)
	mux.HandleFunc("POST /api/reset", ctl.HandleReset)

	// 5. Telemetry stream (websocket)
	if stream != nil {
		mux.Handle("GET /api/stream", stream)
	}

	// 6. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 7. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Let the response flush before the server goes away
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
