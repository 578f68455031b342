package flight

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// groundEpsilon keeps the airborne test from flickering at the boundary.
	groundEpsilon = 1e-4
	// idleThrottle and below counts as engine off for the vertical model.
	idleThrottle = 0.001
	// minSpeedNorm guards the speed fraction against a zero MaxSpeed.
	minSpeedNorm = 1e-3
	// attitudeFloor is the share of nominal filter response kept at zero authority.
	attitudeFloor = 0.4
)

// Status is the display summary of the controller.
type Status struct {
	Throttle float64 `json:"throttle"`
	Speed    float64 `json:"speed"`
	PitchDeg float64 `json:"pitchDeg"`
	BankDeg  float64 `json:"bankDeg"`
}

// Snapshot is a read-only copy of the full controller state.
type Snapshot struct {
	Heading          float64
	Pitch            float64
	Bank             float64
	PitchTarget      float64
	BankTarget       float64
	Throttle         float64
	Speed            float64
	VerticalVelocity float64
	Authority        float64
	Regime           Regime
	Airborne         bool
}

// TransformReset describes an instantaneous reset. Nil fields are left as they
// are. Orientation takes precedence over Euler when both are set.
type TransformReset struct {
	Position    *mgl64.Vec3
	Orientation *mgl64.Quat
	Euler       *Euler
	Throttle    *float64
}

// Controller is the flight model. It is not safe for concurrent use: the
// host calls Update, SetTransform and the input source from one goroutine,
// or serializes them.
type Controller struct {
	body   Body
	src    CommandSource
	cfg    Config
	logger *slog.Logger
	cancel func()

	heading float64
	pitch   float64
	bank    float64

	pitchTarget float64
	bankTarget  float64

	throttle         float64
	speed            float64
	verticalVelocity float64

	regime   Regime
	airborne bool
}

// New creates a controller for body. The attitude is seeded from the body's
// orientation; bank target starts level. src may be nil for a controller
// driven only through Press.
func New(body Body, cfg Config, src CommandSource) *Controller {
	c := &Controller{
		body:   body,
		src:    src,
		cfg:    cfg,
		logger: slog.Default().With("component", "flight"),
	}

	e := EulerFromQuat(body.Orientation())
	c.heading = e.Heading
	c.pitch = e.Pitch
	c.bank = e.Bank
	c.pitchTarget = c.pitch
	c.bankTarget = 0
	c.airborne = c.aboveGround(body.Position())

	if src != nil {
		c.cancel = src.OnPress(c.Press)
	}
	return c
}

// SetLogger replaces the logger used for regime and ground-contact events.
func (c *Controller) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Config returns the tuning the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// Dispose releases the input subscription. Calling it again does nothing.
func (c *Controller) Dispose() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Press applies an edge-triggered command. Only the throttle commands act on
// presses; attitude commands are read as held state in Update.
func (c *Controller) Press(cmd Command) {
	switch cmd {
	case ThrottleUp:
		c.throttle = math.Min(1, c.throttle+c.cfg.ThrottleStep)
	case ThrottleDown:
		c.throttle = math.Max(0, c.throttle-c.cfg.ThrottleStep)
	}
}

// Update advances the model by dt seconds. dt is used as given; callers clamp
// it to keep steps small.
func (c *Controller) Update(dt float64) {
	up, dn := c.held(PitchUp), c.held(PitchDown)
	lt, rt := c.held(BankLeft), c.held(BankRight)

	// 1. Input -> targets
	c.updateTargets(up, dn, lt, rt, dt)

	// 2. Attitude follows targets
	a := c.Authority()
	c.filterAttitude(a, dt)

	// 3. Heading
	c.updateHeading(a, lt-rt, dt)

	// 4. Orientation
	q := Euler{Pitch: c.pitch, Heading: c.heading, Bank: c.bank}.Quat()
	c.body.SetOrientation(q)

	// 5. Speed
	c.updateSpeed(dt)

	// 6. Move along the nose, then gravity and ground
	pos := c.body.Position().Add(ForwardAxis(q).Mul(c.speed * dt))
	pos = c.integrateVertical(pos, dt)
	c.body.SetPosition(pos)
}

func (c *Controller) held(cmd Command) float64 {
	if c.src != nil && c.src.Held(cmd) {
		return 1
	}
	return 0
}

// updateTargets integrates the command targets. The key mapping is inverted on
// purpose: pitch-down raises the pitch target and bank-left raises bank.
func (c *Controller) updateTargets(up, dn, lt, rt, dt float64) {
	pitchCmd := (dn - up) * c.cfg.PitchCmdRate
	bankCmd := (lt - rt) * c.cfg.BankCmdRate

	c.pitchTarget = mgl64.Clamp(c.pitchTarget+pitchCmd*dt, -c.cfg.PitchLimit, c.cfg.PitchLimit)
	c.bankTarget = mgl64.Clamp(c.bankTarget+bankCmd*dt, -c.cfg.BankLimit, c.cfg.BankLimit)

	if up == 0 && dn == 0 {
		c.pitchTarget = relax(c.pitchTarget, 0, c.cfg.PitchCentering, dt)
	}
	if lt == 0 && rt == 0 {
		c.bankTarget = relax(c.bankTarget, 0, c.cfg.BankCentering, dt)
	}
}

func (c *Controller) filterAttitude(authority, dt float64) {
	scale := attitudeFloor + (1-attitudeFloor)*authority
	c.pitch = relax(c.pitch, c.pitchTarget, c.cfg.PitchResponse*scale, dt)
	c.bank = relax(c.bank, c.bankTarget, c.cfg.BankResponse*scale, dt)
}

func (c *Controller) updateHeading(authority, steer, dt float64) {
	regime := RegimeFor(authority)
	if regime != c.regime {
		c.logger.Debug("Flight regime changed", "from", c.regime, "to", regime, "speed", c.speed)
		c.regime = regime
	}

	if regime == RegimeTaxi {
		c.heading += c.cfg.YawTaxiRate * steer * dt
		return
	}
	// tan(bank) is unbounded near 90°; BankLimit keeps it finite.
	speedNorm := mgl64.Clamp(c.speed/math.Max(c.cfg.MaxSpeed, minSpeedNorm), 0, 1)
	c.heading += c.cfg.TurnRateGain * math.Tan(c.bank) * speedNorm * dt
}

func (c *Controller) updateSpeed(dt float64) {
	target := c.throttle * c.cfg.MaxSpeed
	c.speed = relax(c.speed, target, c.cfg.AccelResponse, dt)
	c.speed = math.Max(0, c.speed-c.cfg.Drag*c.speed*dt)
}

// integrateVertical applies gravity or powered damping while airborne and
// then clamps to the ground. The clamp runs every tick.
func (c *Controller) integrateVertical(pos mgl64.Vec3, dt float64) mgl64.Vec3 {
	if c.aboveGround(pos) {
		if c.throttle <= idleThrottle {
			c.verticalVelocity -= c.cfg.Gravity * dt
		} else {
			c.verticalVelocity *= math.Exp(-c.cfg.VerticalDampingWhenPowered * dt)
		}
		pos[1] += c.verticalVelocity * dt
	}

	if pos[1] <= c.cfg.MinY {
		pos[1] = c.cfg.MinY
		c.verticalVelocity = 0
	}

	if airborne := c.aboveGround(pos); airborne != c.airborne {
		if airborne {
			c.logger.Debug("Liftoff", "speed", c.speed, "y", pos[1])
		} else {
			c.logger.Debug("Ground contact", "speed", c.speed)
		}
		c.airborne = airborne
	}
	return pos
}

func (c *Controller) aboveGround(pos mgl64.Vec3) bool {
	return pos[1] > c.cfg.MinY+groundEpsilon
}

// SetTransform overwrites position, orientation and throttle-derived speed in
// one step. Targets are realigned to the resulting attitude so the filters
// start settled, the body is lifted to the ground if below it, and vertical
// velocity is zeroed.
func (c *Controller) SetTransform(r TransformReset) {
	if r.Position != nil {
		c.body.SetPosition(*r.Position)
	}
	switch {
	case r.Orientation != nil:
		c.body.SetOrientation(r.Orientation.Normalize())
	case r.Euler != nil:
		c.body.SetOrientation(r.Euler.Quat())
	}
	if r.Throttle != nil {
		c.throttle = mgl64.Clamp(*r.Throttle, 0, 1)
		c.speed = c.throttle * c.cfg.MaxSpeed
	}

	e := EulerFromQuat(c.body.Orientation())
	c.heading = e.Heading
	c.pitch = e.Pitch
	c.bank = e.Bank
	c.pitchTarget = c.pitch
	c.bankTarget = c.bank

	pos := c.body.Position()
	if pos[1] < c.cfg.MinY {
		pos[1] = c.cfg.MinY
		c.body.SetPosition(pos)
	}
	c.verticalVelocity = 0
	c.airborne = c.aboveGround(pos)
	c.regime = RegimeFor(c.Authority())
}

// EnginePower returns the throttle in [0,1].
func (c *Controller) EnginePower() float64 {
	return c.throttle
}

// Authority returns the control authority at the current speed.
func (c *Controller) Authority() float64 {
	return Authority(c.speed, c.cfg.StallSpeed, c.cfg.CtrlVRange)
}

// IsAirborne reports whether the body is above the ground band.
func (c *Controller) IsAirborne() bool {
	return c.aboveGround(c.body.Position())
}

// Status returns throttle, speed and attitude in degrees for display.
func (c *Controller) Status() Status {
	return Status{
		Throttle: c.throttle,
		Speed:    c.speed,
		PitchDeg: mgl64.RadToDeg(c.pitch),
		BankDeg:  mgl64.RadToDeg(c.bank),
	}
}

// Snapshot returns a copy of the full controller state.
func (c *Controller) Snapshot() Snapshot {
	a := c.Authority()
	return Snapshot{
		Heading:          c.heading,
		Pitch:            c.pitch,
		Bank:             c.bank,
		PitchTarget:      c.pitchTarget,
		BankTarget:       c.bankTarget,
		Throttle:         c.throttle,
		Speed:            c.speed,
		VerticalVelocity: c.verticalVelocity,
		Authority:        a,
		Regime:           RegimeFor(a),
		Airborne:         c.IsAirborne(),
	}
}

// relax moves x toward target by the exponential fraction 1 - e^(-rate*dt).
func relax(x, target, rate, dt float64) float64 {
	return x + (target-x)*(1-math.Exp(-rate*dt))
}
