package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbwsim/pkg/sim"
)

func TestRun_BuiltInTakeoff(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{dt: 1.0 / 60, every: time.Second}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Greater(t, len(lines), 10)
	assert.Equal(t, header, lines[0])
	assert.Contains(t, out.String(), sim.FormatStage(sim.StageClimb))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "done:"))
	assert.Contains(t, lines[len(lines)-1], "airborne=true")
}

func TestRun_ScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- type: press
  key: PageUp
  count: 4
- type: wait
  duration: 2s
`), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), options{scenarioPath: path, dt: 0.05, every: 500 * time.Millisecond}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6) // header, four samples, summary
	assert.Contains(t, lines[len(lines)-1], "throttle=0.20")
	assert.Contains(t, lines[len(lines)-1], "airborne=false")
}

func TestRun_LargeDtStillCoversWait(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wait.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- type: wait\n  duration: 2s\n"), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), options{scenarioPath: path, dt: 0.1, every: 500 * time.Millisecond}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[4], "    1.55"), lines[4])
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"MissingScenario", options{scenarioPath: "does-not-exist.yaml", dt: 0.05}},
		{"ZeroDt", options{dt: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(context.Background(), tt.opts, &bytes.Buffer{}))
		})
	}
}

func TestFormatLine(t *testing.T) {
	line := formatLine(&sim.Telemetry{
		SimTime:     1500 * time.Millisecond,
		FlightStage: sim.StageTaxi,
		Regime:      "taxi",
		Throttle:    0.25,
		GroundSpeed: 12.34,
		Heading:     7,
		FlightTime:  90 * time.Second,
	})
	assert.True(t, strings.HasPrefix(line, "    1.50  Taxi"), line)
	assert.Contains(t, line, "0.25")
	assert.Contains(t, line, " 12.3")
	assert.Contains(t, line, "007")
	assert.True(t, strings.HasSuffix(line, "  90.0"), line)
}
