package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fbwsim/pkg/sim"
)

// TelemetryResponse is the API response structure.
type TelemetryResponse struct {
	sim.Telemetry
	SimState string `json:"simState"`
}

type TelemetryHandler struct {
	client sim.Client
}

func NewTelemetryHandler(client sim.Client) *TelemetryHandler {
	return &TelemetryHandler{client: client}
}

func (h *TelemetryHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	tel, err := h.client.GetTelemetry(r.Context())
	if err != nil {
		writeSimError(w, err)
		return
	}
	resp := TelemetryResponse{
		Telemetry: tel,
		SimState:  string(h.client.GetState()),
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeSimError maps client errors onto status codes: a closed simulation is
// unavailable, anything else is a server error.
func writeSimError(w http.ResponseWriter, err error) {
	if errors.Is(err, sim.ErrClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
