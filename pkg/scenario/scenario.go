// Package scenario drives a manually stepped simulation from a scripted
// timeline of key events and waits.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"fbwsim/pkg/config"
	"fbwsim/pkg/flight"
	"fbwsim/pkg/sim"
)

var errStalled = errors.New("simulation did not advance")

// Step types.
const (
	TypeHold    = "HOLD"
	TypeRelease = "RELEASE"
	TypePress   = "PRESS"
	TypeWait    = "WAIT"
	TypeBlur    = "BLUR"
	TypeReset   = "RESET"
)

// Step is one timeline entry.
type Step struct {
	Type     string          `yaml:"type"`
	Key      string          `yaml:"key,omitempty"`
	Count    int             `yaml:"count,omitempty"`    // PRESS repeats
	Duration config.Duration `yaml:"duration,omitempty"` // WAIT
	Throttle *float64        `yaml:"throttle,omitempty"` // RESET
	Altitude *float64        `yaml:"altitude,omitempty"` // RESET
	Heading  *float64        `yaml:"heading,omitempty"`  // RESET, compass degrees
}

// Driver is a simulation the runner can step by hand.
type Driver interface {
	sim.ControlClient
	Step(dt float64) float64
	ResetToStart() error
}

// Load reads a YAML list of steps.
func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	for i := range steps {
		steps[i].Type = strings.ToUpper(steps[i].Type)
		if err := steps[i].validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return steps, nil
}

func (s *Step) validate() error {
	switch s.Type {
	case TypeHold, TypeRelease, TypePress:
		if s.Key == "" {
			return fmt.Errorf("%s needs a key", s.Type)
		}
		if s.Count < 0 {
			return fmt.Errorf("%s count must not be negative", s.Type)
		}
	case TypeWait:
		if s.Duration <= 0 {
			return fmt.Errorf("WAIT needs a positive duration")
		}
	case TypeBlur, TypeReset:
	default:
		return fmt.Errorf("unknown step type %q", s.Type)
	}
	return nil
}

// Takeoff is the built-in scenario: full power, rotate once flying speed
// builds, climb out and level off.
func Takeoff() []Step {
	return []Step{
		{Type: TypeReset},
		{Type: TypePress, Key: "PageUp", Count: 20},
		{Type: TypeWait, Duration: config.Duration(6 * time.Second)},
		{Type: TypeHold, Key: "ArrowDown"},
		{Type: TypeWait, Duration: config.Duration(time.Second)},
		{Type: TypeRelease, Key: "ArrowDown"},
		{Type: TypeWait, Duration: config.Duration(10 * time.Second)},
		{Type: TypeHold, Key: "ArrowLeft"},
		{Type: TypeWait, Duration: config.Duration(2 * time.Second)},
		{Type: TypeBlur},
		{Type: TypeWait, Duration: config.Duration(10 * time.Second)},
	}
}

// Run executes steps against d with a fixed dt. sample, if set, receives the
// telemetry after every tick.
func Run(ctx context.Context, d Driver, steps []Step, dt float64, sample func(sim.Telemetry)) error {
	if dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", dt)
	}

	for i := range steps {
		s := &steps[i]
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := runStep(ctx, d, s, dt, sample); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Type, err)
		}
	}
	return nil
}

func runStep(ctx context.Context, d Driver, s *Step, dt float64, sample func(sim.Telemetry)) error {
	switch s.Type {
	case TypeHold:
		return requireBound(d.KeyDown(s.Key))
	case TypeRelease:
		return requireBound(d.KeyUp(s.Key))
	case TypePress:
		n := max(s.Count, 1)
		for range n {
			if err := requireBound(d.KeyDown(s.Key)); err != nil {
				return err
			}
		}
		return requireBound(d.KeyUp(s.Key))
	case TypeBlur:
		return d.Blur()
	case TypeReset:
		return reset(d, s)
	case TypeWait:
		// Step may clamp dt; elapsed counts the time it took
		want := time.Duration(s.Duration)
		for elapsed := time.Duration(0); elapsed < want; {
			if err := ctx.Err(); err != nil {
				return err
			}
			step := d.Step(dt)
			if step <= 0 {
				return errStalled
			}
			elapsed += time.Duration(math.Round(step * float64(time.Second)))
			if sample != nil {
				tel, err := d.GetTelemetry(ctx)
				if err != nil {
					return err
				}
				sample(tel)
			}
		}
	}
	return nil
}

func reset(d Driver, s *Step) error {
	if err := d.ResetToStart(); err != nil {
		return err
	}
	if s.Throttle == nil && s.Altitude == nil && s.Heading == nil {
		return nil
	}

	var r flight.TransformReset
	if s.Altitude != nil {
		r.Position = &mgl64.Vec3{0, *s.Altitude, 0}
	}
	if s.Heading != nil {
		r.Euler = &flight.Euler{Heading: -mgl64.DegToRad(*s.Heading)}
	}
	r.Throttle = s.Throttle
	return d.Reset(r)
}

func requireBound(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key is not bound to a command")
	}
	return nil
}
