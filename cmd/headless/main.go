// Package main flies a scripted scenario against the flight model without the
// HTTP server and prints a status line at a fixed sim-time interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fbwsim/pkg/config"
	"fbwsim/pkg/scenario"
	"fbwsim/pkg/sim"
	"fbwsim/pkg/sim/flightsim"
)

type options struct {
	configPath   string
	scenarioPath string
	dt           float64
	every        time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file (defaults when empty)")
	flag.StringVar(&opts.scenarioPath, "scenario", "", "Scenario YAML (built-in take-off when empty)")
	flag.Float64Var(&opts.dt, "dt", 1.0/60.0, "Fixed step in seconds")
	flag.DurationVar(&opts.every, "every", time.Second, "Sim time between status lines")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "headless run failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	appCfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if appCfg, err = config.Load(opts.configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	steps := scenario.Takeoff()
	if opts.scenarioPath != "" {
		var err error
		if steps, err = scenario.Load(opts.scenarioPath); err != nil {
			return err
		}
	}

	simCfg, err := flightsim.ConfigFrom(appCfg)
	if err != nil {
		return fmt.Errorf("failed to build sim config: %w", err)
	}
	simCfg.Manual = true
	client := flightsim.NewClient(simCfg)
	defer client.Close()

	fmt.Fprintln(out, header)
	next := time.Duration(0)
	sample := func(t sim.Telemetry) {
		if t.SimTime < next {
			return
		}
		next = t.SimTime + opts.every
		fmt.Fprintln(out, formatLine(&t))
	}

	if err := scenario.Run(ctx, client, steps, opts.dt, sample); err != nil {
		return err
	}

	st, err := client.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "done: throttle=%.2f speed=%.1f pitch=%.1f bank=%.1f airborne=%v\n",
		st.Throttle, st.Speed, st.PitchDeg, st.BankDeg, client.Snapshot().Airborne)
	return nil
}

const header = "    time  stage      regime  thr   spd    alt     vs  hdg  pitch   bank  flight"

func formatLine(t *sim.Telemetry) string {
	return fmt.Sprintf("%8.2f  %-9s  %-6s  %.2f  %5.1f  %5.1f  %5.0f  %03.0f  %5.1f  %5.1f  %6.1f",
		t.SimTime.Seconds(), sim.FormatStage(t.FlightStage), t.Regime, t.Throttle, t.GroundSpeed,
		t.Altitude, t.VerticalSpeed, t.Heading, t.Pitch, t.Bank, t.FlightTime.Seconds())
}
