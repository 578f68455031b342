package sim

import (
	"testing"
	"time"
)

// seq stamps each telemetry sample with a one-second simulation clock.
func seq(samples ...Telemetry) []Telemetry {
	for i := range samples {
		samples[i].SimTime = time.Duration(i) * time.Second
	}
	return samples
}

func TestStageMachine(t *testing.T) {
	tests := []struct {
		name     string
		sequence []Telemetry
		expected string
	}{
		{
			name: "Start Mid-Air (Initial)",
			sequence: seq(
				Telemetry{IsOnGround: false, AltitudeAGL: 500, VerticalSpeed: 0},
			),
			expected: StageAirborne,
		},
		{
			name: "Start Mid-Air (Confirm Cruise)",
			sequence: seq(
				Telemetry{IsOnGround: false, AltitudeAGL: 500},
				Telemetry{IsOnGround: false, AltitudeAGL: 500},
				Telemetry{IsOnGround: false, AltitudeAGL: 500},
			),
			expected: StageCruise,
		},
		{
			name: "Start On Ground Parked",
			sequence: seq(
				Telemetry{IsOnGround: true, EngineOn: false, GroundSpeed: 0},
			),
			expected: StageParked,
		},
		{
			name: "Normal Flow: Parked -> Taxi -> TakeOff -> Climb -> Cruise",
			sequence: seq(
				Telemetry{IsOnGround: true, EngineOn: false, GroundSpeed: 0},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 5},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 5},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 25},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 30},
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 40, VerticalSpeed: 120},
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 50, VerticalSpeed: 120},
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 60, VerticalSpeed: 0},
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 60, VerticalSpeed: 0},
			),
			expected: StageCruise,
		},
		{
			name: "Landing Roll-Out",
			sequence: seq(
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 60, VerticalSpeed: -120},
				Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 60, VerticalSpeed: -120},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 40},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 35},
			),
			expected: StageLanded,
		},
		{
			name: "Landing Then Stop",
			sequence: seq(
				Telemetry{IsOnGround: false, GroundSpeed: 60, VerticalSpeed: -120},
				Telemetry{IsOnGround: true, GroundSpeed: 40},
				Telemetry{IsOnGround: true, GroundSpeed: 35},
				Telemetry{IsOnGround: true, GroundSpeed: 0},
				Telemetry{IsOnGround: true, GroundSpeed: 0},
			),
			expected: StageParked,
		},
		{
			name: "Touchdown And Stop With Engine On",
			sequence: seq(
				Telemetry{IsOnGround: false, GroundSpeed: 60},
				Telemetry{IsOnGround: false, GroundSpeed: 60},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 0},
				Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 0},
			),
			expected: StageHold,
		},
		{
			name: "Single-Tick Blip Is Ignored",
			sequence: seq(
				Telemetry{IsOnGround: false},
				Telemetry{IsOnGround: false},
				Telemetry{IsOnGround: false},
				Telemetry{IsOnGround: false, VerticalSpeed: 200},
				Telemetry{IsOnGround: false},
			),
			expected: StageCruise,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStageMachine()
			var got string
			for i := range tt.sequence {
				got = m.Update(&tt.sequence[i])
			}
			if got != tt.expected {
				t.Errorf("Stage = %q, want %q", got, tt.expected)
			}
			if m.Current() != got {
				t.Errorf("Current() = %q, want %q", m.Current(), got)
			}
		})
	}
}

func TestStageMachine_FlightDuration(t *testing.T) {
	m := NewStageMachine()
	if d := m.FlightDuration(); d != 0 {
		t.Errorf("FlightDuration before take-off = %v, want 0", d)
	}

	for _, s := range seq(
		Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 5},
		Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 25},
		Telemetry{IsOnGround: true, EngineOn: true, GroundSpeed: 30}, // take-off at 2s
		Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 40},
		Telemetry{IsOnGround: false, EngineOn: true, GroundSpeed: 50}, // now 4s
	) {
		m.Update(&s)
	}

	at, ok := m.LastTransition(StageTakeOff)
	if !ok || at != 2*time.Second {
		t.Fatalf("LastTransition(take-off) = %v, %v; want 2s, true", at, ok)
	}
	if d := m.FlightDuration(); d != 2*time.Second {
		t.Errorf("FlightDuration = %v, want 2s", d)
	}

	m.Reset()
	if m.Current() != "" || m.FlightDuration() != 0 {
		t.Error("Reset must clear state")
	}
}

func TestFormatStage(t *testing.T) {
	tests := map[string]string{
		"":           "Unknown",
		StageTaxi:    "Taxi",
		StageTakeOff: "Take-Off",
		StageCruise:  "Cruise",
	}
	for in, want := range tests {
		if got := FormatStage(in); got != want {
			t.Errorf("FormatStage(%q) = %q, want %q", in, got, want)
		}
	}
}
