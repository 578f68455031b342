// Package probe runs the startup checks that decide whether fbwsim can serve.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"fbwsim/pkg/flight"
	"fbwsim/pkg/sim"
)

// DefaultTimeout bounds a single check when the probe sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc is a function that performs a health check.
// It returns nil if the check passes, or an error if it fails.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // If true, a failure here should prevent application startup.
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes probes in order and returns their results.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs every result and joins the errors of failed critical
// probes.
func AnalyzeResults(logger *slog.Logger, results []Result) error {
	if logger == nil {
		logger = slog.Default()
	}
	var criticalErrors []error

	logger.Info("Startup Checks Summary", "probes", len(results))

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-14s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			logger.Info(msg)
			continue
		}
		if !r.Probe.Critical {
			logger.Warn(msg, "error", r.Error)
			continue
		}
		logger.Error(msg, "error", r.Error)
		criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
	}

	return errors.Join(criticalErrors...)
}

// Listen checks that addr can be bound.
func Listen(addr string) Probe {
	return Probe{
		Name:     "Listen",
		Critical: true,
		Check: func(ctx context.Context) error {
			var lc net.ListenConfig
			l, err := lc.Listen(ctx, "tcp", addr)
			if err != nil {
				return err
			}
			return l.Close()
		},
	}
}

// Telemetry checks that the simulation answers and reports finite values.
func Telemetry(client sim.Client) Probe {
	return Probe{
		Name:     "Telemetry",
		Critical: true,
		Check: func(ctx context.Context) error {
			t, err := client.GetTelemetry(ctx)
			if err != nil {
				return err
			}
			for name, v := range map[string]float64{
				"x": t.PositionX, "y": t.PositionY, "z": t.PositionZ,
				"heading": t.Heading, "pitch": t.Pitch, "bank": t.Bank,
			} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%s is not finite", name)
				}
			}
			return nil
		},
	}
}

// airframeRun is the sim time a full-power ground roll gets to reach flying
// speed.
const airframeRun = 20 * time.Second

// Airframe rolls a throwaway aircraft at full power and checks that the tuning
// can reach stall speed. A tuning that cannot is flyable only in taxi mode.
func Airframe(cfg flight.Config) Probe {
	return Probe{
		Name: "Airframe",
		Check: func(ctx context.Context) error {
			ctl := flight.New(flight.NewTransform(mgl64.Vec3{0, cfg.MinY, 0}, mgl64.QuatIdent()), cfg, nil)
			defer ctl.Dispose()
			for ctl.EnginePower() < 1 {
				before := ctl.EnginePower()
				ctl.Press(flight.ThrottleUp)
				if ctl.EnginePower() == before {
					return fmt.Errorf("throttle stuck at %.2f", before)
				}
			}

			const dt = 1.0 / 60
			steps := int(airframeRun.Seconds() / dt)
			for i := 0; i < steps; i++ {
				if i%60 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				ctl.Update(dt)
			}

			speed := ctl.Snapshot().Speed
			if math.IsNaN(speed) || speed < cfg.StallSpeed {
				return fmt.Errorf("full power reaches %.1f, stall speed is %.1f", speed, cfg.StallSpeed)
			}
			return nil
		},
	}
}
