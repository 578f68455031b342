// Package flightsim hosts a flight.Controller in a fixed-rate loop and
// exposes it as a sim.ControlClient.
package flightsim

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"fbwsim/pkg/config"
	"fbwsim/pkg/flight"
	"fbwsim/pkg/geo"
	"fbwsim/pkg/input"
	"fbwsim/pkg/logging"
	"fbwsim/pkg/sim"
)

const (
	vsWindow    = 2 * time.Second
	trackWindow = 10
	// idleThrottle and below reads as engine off in telemetry.
	idleThrottle = 0.001
)

// Config holds the host loop settings and the start position.
type Config struct {
	TickRate      time.Duration
	MaxStep       time.Duration // dt clamp for stalls and pauses
	Origin        geo.Point
	StartHeading  float64 // compass degrees
	StartAltitude float64
	StartThrottle float64
	Airframe      flight.Config
	Bindings      input.Bindings
	// Manual disables the ticker; the caller advances time with Step.
	Manual bool
}

// DefaultConfig returns a 60 Hz loop with a 50 ms step clamp.
func DefaultConfig() Config {
	return Config{
		TickRate: time.Second / 60,
		MaxStep:  50 * time.Millisecond,
		Airframe: flight.DefaultConfig(),
		Bindings: input.DefaultBindings(),
	}
}

// ConfigFrom builds the host settings from the application config.
func ConfigFrom(c *config.Config) (Config, error) {
	b, err := input.ParseBindings(c.Controls.Names())
	if err != nil {
		return Config{}, err
	}
	return Config{
		TickRate:      time.Duration(c.Sim.TickRate),
		MaxStep:       time.Duration(c.Sim.MaxStep),
		Origin:        geo.Point{Lat: c.Sim.OriginLat, Lon: c.Sim.OriginLon},
		StartHeading:  c.Sim.StartHeading,
		StartAltitude: float64(c.Sim.StartAltitude),
		StartThrottle: c.Sim.StartThrottle,
		Airframe:      c.Airframe.FlightConfig(),
		Bindings:      b,
	}, nil
}

// Client implements sim.ControlClient. Every touch of the controller, the
// body and the keyboard happens under mu.
type Client struct {
	mu     sync.Mutex
	cfg    Config
	logger *slog.Logger

	body  *flight.Transform
	kb    *input.Keyboard
	ctl   *flight.Controller
	frame geo.LocalFrame

	tel      sim.Telemetry
	state    sim.State
	simTime  time.Duration
	vsBuf    *sim.VerticalSpeedBuffer
	trackBuf *geo.TrackBuffer
	stages   *sim.StageMachine

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewClient creates the aircraft at its start position and, unless
// cfg.Manual is set, starts the tick loop.
func NewClient(cfg Config) *Client {
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = DefaultConfig().MaxStep
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.Bindings == nil {
		cfg.Bindings = input.DefaultBindings()
	}

	c := &Client{
		cfg:      cfg,
		logger:   slog.Default().With("component", "flightsim"),
		body:     flight.NewTransform(mgl64.Vec3{}, mgl64.QuatIdent()),
		kb:       input.NewKeyboard(cfg.Bindings),
		frame:    geo.LocalFrame{Origin: cfg.Origin},
		state:    sim.StateInactive,
		vsBuf:    sim.NewVerticalSpeedBuffer(vsWindow),
		trackBuf: geo.NewTrackBuffer(trackWindow),
		stages:   sim.NewStageMachine(),
		stopCh:   make(chan struct{}),
	}
	c.ctl = flight.New(c.body, cfg.Airframe, c.kb)
	c.ctl.SetLogger(slog.Default().With("component", "flight"))
	c.ctl.SetTransform(c.startTransform())
	c.refreshTelemetry()

	if !cfg.Manual {
		c.state = sim.StateActive
		c.wg.Add(1)
		go c.loop()
	}

	c.logger.Info("Flight sim started",
		"tick", cfg.TickRate,
		"max_step", cfg.MaxStep,
		"manual", cfg.Manual,
		"origin", cfg.Origin)
	return c
}

func (c *Client) startTransform() flight.TransformReset {
	pos := mgl64.Vec3{0, c.cfg.StartAltitude, 0}
	e := flight.Euler{Heading: -mgl64.DegToRad(c.cfg.StartHeading)}
	throttle := c.cfg.StartThrottle
	return flight.TransformReset{Position: &pos, Euler: &e, Throttle: &throttle}
}

func (c *Client) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.TickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Step advances the simulation by dt seconds, clamped to MaxStep. It returns
// the step actually taken; non-positive dt and a closed client take none.
func (c *Client) Step(dt float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == sim.StateDisconnected || dt <= 0 || math.IsNaN(dt) {
		return 0
	}
	dt = math.Min(dt, c.cfg.MaxStep.Seconds())

	c.ctl.Update(dt)
	c.simTime += time.Duration(math.Round(dt * float64(time.Second)))
	c.refreshTelemetry()

	logging.Trace(c.logger, "Tick", "dt", dt, "speed", c.tel.GroundSpeed, "y", c.tel.PositionY)
	return dt
}

func (c *Client) refreshTelemetry() {
	pos := c.body.Position()
	snap := c.ctl.Snapshot()
	here := c.frame.ToGeo(pos)
	heading := geo.CompassHeading(snap.Heading)

	t := sim.Telemetry{
		Latitude:    here.Lat,
		Longitude:   here.Lon,
		Altitude:    pos.Y(),
		AltitudeAGL: math.Max(0, pos.Y()-c.cfg.Airframe.MinY),
		Heading:     heading,
		Track:       heading,
		Pitch:       mgl64.RadToDeg(snap.Pitch),
		Bank:        mgl64.RadToDeg(snap.Bank),
		GroundSpeed: snap.Speed,
		Throttle:    snap.Throttle,
		Authority:   snap.Authority,
		Regime:      snap.Regime.String(),
		PositionX:   pos.X(),
		PositionY:   pos.Y(),
		PositionZ:   pos.Z(),
		SimTime:     c.simTime,
		IsOnGround:  !snap.Airborne,
		EngineOn:    snap.Throttle > idleThrottle,
	}
	t.VerticalSpeed = c.vsBuf.Update(c.simTime, pos.Y())

	if t.IsOnGround {
		c.trackBuf.Reset()
	} else {
		t.Track = c.trackBuf.Push(here, heading)
	}

	prev := c.tel.FlightStage
	t.FlightStage = c.stages.Update(&t)
	if at, ok := c.stages.LastTransition(t.FlightStage); ok {
		t.StageTime = c.simTime - at
	}
	t.FlightTime = c.stages.FlightDuration()
	if prev != "" && prev != t.FlightStage {
		c.logger.Info("Flight stage changed", "from", prev, "to", t.FlightStage)
	}
	c.tel = t
}

// GetTelemetry returns the telemetry of the last tick.
func (c *Client) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	if err := ctx.Err(); err != nil {
		return sim.Telemetry{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return sim.Telemetry{}, sim.ErrClosed
	}
	return c.tel, nil
}

// GetState returns active while the loop runs, inactive in manual mode.
func (c *Client) GetState() sim.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// KeyDown forwards a pressed key to the keyboard.
func (c *Client) KeyDown(code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return false, sim.ErrClosed
	}
	return c.kb.KeyDown(code), nil
}

// KeyUp forwards a released key to the keyboard.
func (c *Client) KeyUp(code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return false, sim.ErrClosed
	}
	return c.kb.KeyUp(code), nil
}

// Blur releases every held key.
func (c *Client) Blur() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return sim.ErrClosed
	}
	c.kb.Blur()
	return nil
}

// Reset teleports the aircraft and restarts the derived telemetry history.
func (c *Client) Reset(r flight.TransformReset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return sim.ErrClosed
	}
	c.reset(r)
	return nil
}

// ResetToStart puts the aircraft back at its configured start.
func (c *Client) ResetToStart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return sim.ErrClosed
	}
	c.reset(c.startTransform())
	return nil
}

func (c *Client) reset(r flight.TransformReset) {
	c.ctl.SetTransform(r)
	c.vsBuf.Reset()
	c.trackBuf.Reset()
	c.stages.Reset()
	c.tel = sim.Telemetry{}
	c.refreshTelemetry()
	c.logger.Info("Aircraft reset",
		"x", c.tel.PositionX, "y", c.tel.PositionY, "z", c.tel.PositionZ,
		"heading", c.tel.Heading, "throttle", c.tel.Throttle)
}

// Frame returns the frame that ties scene positions to the globe.
func (c *Client) Frame() geo.LocalFrame {
	return c.frame
}

// Status returns the display summary of the flight model.
func (c *Client) Status() (flight.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == sim.StateDisconnected {
		return flight.Status{}, sim.ErrClosed
	}
	return c.ctl.Status(), nil
}

// Snapshot returns the full controller state.
func (c *Client) Snapshot() flight.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctl.Snapshot()
}

// Close stops the loop and releases the controller. Later calls do nothing.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state = sim.StateDisconnected
		c.kb.Blur()
		c.ctl.Dispose()
		c.logger.Info("Flight sim stopped", "sim_time", c.simTime)
	})
	return nil
}

var _ sim.ControlClient = (*Client)(nil)
