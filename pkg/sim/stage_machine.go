package sim

import (
	"strings"
	"time"
)

const (
	StageParked   = "parked"
	StageHold     = "hold"
	StageTaxi     = "taxi"
	StageTakeOff  = "take-off"
	StageAirborne = "airborne"
	StageClimb    = "climb"
	StageCruise   = "cruise"
	StageDescend  = "descend"
	StageLanded   = "landed"
)

// Thresholds in scene units: speeds per second, vertical rates per minute.
const (
	stationarySpeed = 0.5
	takeOffSpeed    = 20.0
	landedSpeed     = 15.0
	climbRate       = 60.0
	levelRate       = 40.0
	// takeOffWindow is how recently the aircraft must have taxied or held
	// for a fast ground roll to count as a take-off.
	takeOffWindow = 10 * time.Minute
)

// StageMachine tracks the flight phase across telemetry ticks. It runs on
// simulation time (Telemetry.SimTime), so it is deterministic under a
// manually stepped host.
type StageMachine struct {
	current         string
	candidate       string
	confirmations   int
	wasOnGround     bool
	wasAirborne     bool
	lastGroundSpeed float64
	isAccelerating  bool
	isDecelerating  bool
	now             time.Duration
	lastTransition  map[string]time.Duration
}

// NewStageMachine creates a stage machine in an uninitialized state.
func NewStageMachine() *StageMachine {
	return &StageMachine{
		lastTransition: make(map[string]time.Duration),
	}
}

// Update evaluates telemetry and returns the current stage. A change needs
// two consecutive ticks to take effect.
func (m *StageMachine) Update(t *Telemetry) string {
	m.now = t.SimTime

	if m.current != "" {
		m.isAccelerating = t.GroundSpeed > m.lastGroundSpeed+1e-3
		m.isDecelerating = t.GroundSpeed < m.lastGroundSpeed-1e-3
	}
	m.lastGroundSpeed = t.GroundSpeed

	// First tick: pick a stage from ground status without hysteresis
	if m.current == "" {
		if t.IsOnGround {
			m.current = m.detectGroundCandidate(t)
			m.wasOnGround = true
		} else {
			m.current = StageAirborne
			m.wasAirborne = true
		}
		m.lastTransition[m.current] = m.now
		return m.current
	}

	candidate := m.detectCandidate(t)

	switch {
	case candidate == m.current:
		m.candidate = ""
		m.confirmations = 0
	case candidate == m.candidate:
		m.confirmations++
		if m.confirmations >= 1 {
			m.current = candidate
			m.lastTransition[m.current] = m.now
			m.candidate = ""
			m.confirmations = 0
		}
	default:
		m.candidate = candidate
		m.confirmations = 0
	}

	if t.IsOnGround {
		m.wasOnGround = true
	} else {
		m.wasAirborne = true
	}

	switch m.current {
	case StageClimb, StageCruise, StageDescend:
		m.wasOnGround = false
	case StageTaxi, StageHold, StageParked:
		m.wasAirborne = false
	}

	return m.current
}

// Current returns the confirmed stage.
func (m *StageMachine) Current() string {
	return m.current
}

// Reset forgets all history. The next Update starts fresh.
func (m *StageMachine) Reset() {
	*m = StageMachine{lastTransition: make(map[string]time.Duration)}
}

// LastTransition returns the simulation time of the last transition into
// stage and whether one happened.
func (m *StageMachine) LastTransition(stage string) (time.Duration, bool) {
	at, ok := m.lastTransition[stage]
	return at, ok
}

func (m *StageMachine) recently(stages ...string) bool {
	for _, s := range stages {
		if at, ok := m.lastTransition[s]; ok && m.now-at < takeOffWindow {
			return true
		}
	}
	return false
}

func (m *StageMachine) detectCandidate(t *Telemetry) string {
	if t.IsOnGround {
		return m.detectGroundCandidate(t)
	}
	return m.detectAirborneCandidate(t)
}

func (m *StageMachine) detectGroundCandidate(t *Telemetry) string {
	// Landed covers the roll-out only; once stopped the ground stages take over
	if m.wasAirborne && t.GroundSpeed >= stationarySpeed && (m.isDecelerating || t.GroundSpeed < landedSpeed) {
		return StageLanded
	}

	if t.GroundSpeed > takeOffSpeed && m.isAccelerating && m.recently(StageTaxi, StageHold) {
		return StageTakeOff
	}

	if t.GroundSpeed < stationarySpeed {
		if t.EngineOn {
			return StageHold
		}
		return StageParked
	}
	if t.EngineOn && t.GroundSpeed <= takeOffSpeed {
		return StageTaxi
	}

	// Keep the current ground stage while coasting or rolling out
	switch m.current {
	case StageParked, StageTaxi, StageHold, StageTakeOff, StageLanded:
		return m.current
	}
	return StageTaxi
}

func (m *StageMachine) detectAirborneCandidate(t *Telemetry) string {
	if t.VerticalSpeed > climbRate {
		return StageClimb
	}
	if t.VerticalSpeed < -climbRate {
		return StageDescend
	}
	if t.VerticalSpeed > -levelRate && t.VerticalSpeed < levelRate {
		return StageCruise
	}

	if m.wasOnGround && m.recently(StageTaxi, StageHold, StageTakeOff) {
		return StageTakeOff
	}

	switch m.current {
	case StageAirborne, StageClimb, StageCruise, StageDescend, StageTakeOff:
		return m.current
	}
	return StageAirborne
}

// FormatStage returns a human-readable title for the stage.
func FormatStage(s string) string {
	if s == "" {
		return "Unknown"
	}
	// take-off -> Take-Off
	sub := strings.Split(s, "-")
	for i, p := range sub {
		if p != "" {
			sub[i] = strings.ToUpper(p[0:1]) + p[1:]
		}
	}
	return strings.Join(sub, "-")
}

// FlightDuration returns the simulation time since the last take-off, or 0
// if there was none.
func (m *StageMachine) FlightDuration() time.Duration {
	at, ok := m.lastTransition[StageTakeOff]
	if !ok {
		return 0
	}
	return m.now - at
}
