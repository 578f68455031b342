package sim

import (
	"context"
	"errors"
	"time"

	"fbwsim/pkg/flight"
)

var (
	// ErrClosed is returned by every client call after Close.
	ErrClosed = errors.New("simulation closed")
)

// Client defines the read side of a running simulation.
type Client interface {
	// GetTelemetry returns the current state of the aircraft.
	GetTelemetry(ctx context.Context) (Telemetry, error)
	// GetState returns the current activity state.
	GetState() State
	// Close stops the simulation and releases its resources.
	Close() error
}

// ControlClient is a Client that also accepts pilot input.
type ControlClient interface {
	Client
	// KeyDown reports a pressed key code. It returns false for unbound keys.
	KeyDown(code string) (bool, error)
	// KeyUp reports a released key code. It returns false for unbound keys.
	KeyUp(code string) (bool, error)
	// Blur releases every held key, as when the input surface loses focus.
	Blur() error
	// Reset teleports the aircraft.
	Reset(r flight.TransformReset) error
	// Status returns the display summary of the flight model.
	Status() (flight.Status, error)
}

// Telemetry represents a snapshot of aircraft state. Lengths are scene units
// (meters), angles degrees.
type Telemetry struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`      // height above the scene origin
	AltitudeAGL   float64 `json:"altitudeAgl"`   // height above the ground plane
	Heading       float64 `json:"heading"`       // compass degrees
	Track         float64 `json:"track"`         // ground track, compass degrees
	Pitch         float64 `json:"pitch"`         // nose up positive
	Bank          float64 `json:"bank"`          // left wing up positive
	GroundSpeed   float64 `json:"groundSpeed"`   // units/s along the nose
	VerticalSpeed float64 `json:"verticalSpeed"` // units/min, smoothed
	Throttle      float64 `json:"throttle"`
	Authority     float64 `json:"authority"`
	Regime        string  `json:"regime"`

	PositionX float64 `json:"x"`
	PositionY float64 `json:"y"`
	PositionZ float64 `json:"z"`

	SimTime     time.Duration `json:"simTime"`
	IsOnGround  bool          `json:"onGround"`
	EngineOn    bool          `json:"engineOn"`
	FlightStage string        `json:"flightStage"`
	StageTime   time.Duration `json:"stageTime"`  // sim time in the current stage
	FlightTime  time.Duration `json:"flightTime"` // sim time since the last take-off
}
