package sim

import (
	"sync"
	"time"
)

// VerticalSpeedBuffer maintains a rolling window of altitude samples to
// smooth the vertical rate.
type VerticalSpeedBuffer struct {
	mu         sync.RWMutex
	samples    []altSample
	windowSize time.Duration
}

type altSample struct {
	at  time.Duration
	alt float64
}

// NewVerticalSpeedBuffer creates a buffer with the specified window of
// simulation time (e.g. 2s).
func NewVerticalSpeedBuffer(window time.Duration) *VerticalSpeedBuffer {
	return &VerticalSpeedBuffer{
		windowSize: window,
	}
}

// Update adds an altitude sample taken at simulation time at and returns the
// vertical speed in units per minute.
func (b *VerticalSpeedBuffer) Update(at time.Duration, alt float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, altSample{at: at, alt: alt})

	// Remove old samples outside window
	cutoff := at - b.windowSize
	for len(b.samples) > 2 && b.samples[1].at < cutoff {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return 0
	}

	first := b.samples[0]
	last := b.samples[len(b.samples)-1]

	dt := (last.at - first.at).Seconds()
	if dt <= 0 {
		return 0
	}

	return (last.alt - first.alt) / dt * 60.0
}

// Reset clears the buffer.
func (b *VerticalSpeedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
