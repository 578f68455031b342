package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-gl/mathgl/mgl64"

	"fbwsim/pkg/flight"
	"fbwsim/pkg/geo"
	"fbwsim/pkg/sim"
)

// Controllable is the simulation surface the control endpoints drive.
type Controllable interface {
	sim.ControlClient
	ResetToStart() error
	Frame() geo.LocalFrame
}

// Input event types.
const (
	InputKeyDown = "keydown"
	InputKeyUp   = "keyup"
	InputBlur    = "blur"
)

var errUnknownInput = errors.New("unknown input type")

func isUnknownInput(err error) bool {
	return errors.Is(err, errUnknownInput)
}

// InputEvent is one keyboard event as sent by the browser.
type InputEvent struct {
	Type string `json:"type"`
	Code string `json:"code,omitempty"`
}

// InputResponse reports whether the key is bound to a command.
type InputResponse struct {
	Bound bool `json:"bound"`
}

// Vec3 is a scene position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EulerDeg is an attitude in degrees.
type EulerDeg struct {
	Pitch   float64 `json:"pitch"`
	Heading float64 `json:"heading"`
	Bank    float64 `json:"bank"`
}

// Quat is an orientation quaternion.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// ResetRequest teleports the aircraft. Omitted fields keep their value;
// Quaternion wins over Euler. Start resets to the configured start first.
// Location places the aircraft by latitude/longitude; its height comes from
// Position.Y when set, else the current height.
type ResetRequest struct {
	Position   *Vec3      `json:"position,omitempty"`
	Location   *geo.Point `json:"location,omitempty"`
	Euler      *EulerDeg  `json:"euler,omitempty"`
	Quaternion *Quat      `json:"quaternion,omitempty"`
	Throttle   *float64   `json:"throttle,omitempty"`
	Start      bool       `json:"start,omitempty"`
}

// TransformReset converts the request into controller terms.
func (r *ResetRequest) TransformReset() (flight.TransformReset, error) {
	var out flight.TransformReset
	if r.Position != nil {
		out.Position = &mgl64.Vec3{r.Position.X, r.Position.Y, r.Position.Z}
	}
	if r.Quaternion != nil {
		q := mgl64.Quat{W: r.Quaternion.W, V: mgl64.Vec3{r.Quaternion.X, r.Quaternion.Y, r.Quaternion.Z}}
		if q.Len() == 0 {
			return out, fmt.Errorf("quaternion must not be zero")
		}
		out.Orientation = &q
	}
	if r.Euler != nil {
		out.Euler = &flight.Euler{
			Pitch:   mgl64.DegToRad(r.Euler.Pitch),
			Heading: mgl64.DegToRad(r.Euler.Heading),
			Bank:    mgl64.DegToRad(r.Euler.Bank),
		}
	}
	out.Throttle = r.Throttle
	return out, nil
}

// placeAt converts Location into a scene position in frame.
func (r *ResetRequest) placeAt(frame geo.LocalFrame, currentY float64) (*mgl64.Vec3, error) {
	loc := r.Location
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
		return nil, fmt.Errorf("location out of range: %v", *loc)
	}
	y := currentY
	if r.Position != nil {
		y = r.Position.Y
	}
	pos := frame.ToLocal(*loc, y)
	return &pos, nil
}

func (r *ResetRequest) empty() bool {
	return r.Position == nil && r.Location == nil && r.Euler == nil && r.Quaternion == nil && r.Throttle == nil
}

type ControlHandler struct {
	client Controllable
}

func NewControlHandler(client Controllable) *ControlHandler {
	return &ControlHandler{client: client}
}

// ApplyInput forwards one event to the simulation.
func ApplyInput(c sim.ControlClient, ev InputEvent) (bool, error) {
	switch ev.Type {
	case InputKeyDown:
		return c.KeyDown(ev.Code)
	case InputKeyUp:
		return c.KeyUp(ev.Code)
	case InputBlur:
		return true, c.Blur()
	default:
		return false, fmt.Errorf("%w: %q", errUnknownInput, ev.Type)
	}
}

func (h *ControlHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	var ev InputEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if ev.Type != InputBlur && ev.Code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	bound, err := ApplyInput(h.client, ev)
	if err != nil {
		if isUnknownInput(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InputResponse{Bound: bound})
}

// HandleReset applies a ResetRequest and answers with the resulting
// telemetry. A request with no fields changes nothing.
func (h *ControlHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tr, err := req.TransformReset()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Start {
		if err := h.client.ResetToStart(); err != nil {
			writeSimError(w, err)
			return
		}
	}
	if req.Location != nil {
		cur, err := h.client.GetTelemetry(r.Context())
		if err != nil {
			writeSimError(w, err)
			return
		}
		if tr.Position, err = req.placeAt(h.client.Frame(), cur.PositionY); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if !req.empty() {
		if err := h.client.Reset(tr); err != nil {
			writeSimError(w, err)
			return
		}
	}
	slog.Debug("Reset applied via API", "start", req.Start, "noop", !req.Start && req.empty())

	tel, err := h.client.GetTelemetry(r.Context())
	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tel)
}

func (h *ControlHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.client.Status()
	if err != nil {
		writeSimError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
