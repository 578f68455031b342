package sim

import (
	"testing"
	"time"
)

func TestVerticalSpeedBuffer(t *testing.T) {
	buf := NewVerticalSpeedBuffer(5 * time.Second)

	// 1. Initial state
	if vs := buf.Update(0, 100); vs != 0 {
		t.Errorf("Expected 0 VS for first sample, got %.2f", vs)
	}

	// 2. Constant altitude
	if vs := buf.Update(time.Second, 100); vs != 0 {
		t.Errorf("Expected 0 VS for constant altitude, got %.2f", vs)
	}

	// 3. Simple climb: 30 units in 6s -> 300 units/min
	buf.Reset()
	buf.Update(0, 100)
	vs := buf.Update(6*time.Second, 130)
	if vs < 299.9 || vs > 300.1 {
		t.Errorf("Expected ~300/min, got %.2f", vs)
	}

	// 4. Window keeps the oldest sample until the second one leaves it.
	// samples: [0, 100], [6, 130], [7, 127]. dt=7, da=27 -> 231.43/min
	vs = buf.Update(7*time.Second, 127)
	if vs < 231 || vs > 232 {
		t.Errorf("Expected ~231/min, got %.2f", vs)
	}

	// 5. Old samples are dropped: cutoff = 20-5 = 15, so [0] and [6] go.
	// samples: [7, 127], [20, 127]
	if vs := buf.Update(20*time.Second, 127); vs != 0 {
		t.Errorf("Expected 0 after level flight, got %.2f", vs)
	}
}

func TestVerticalSpeedBuffer_SameTimestamp(t *testing.T) {
	buf := NewVerticalSpeedBuffer(time.Second)
	buf.Update(time.Second, 10)
	if vs := buf.Update(time.Second, 50); vs != 0 {
		t.Errorf("Expected 0 for zero dt, got %.2f", vs)
	}
}
