package geo

import "sync"

// minTrackDistance is the ground distance in meters below which the window
// counts as stationary and the track falls back to the heading.
const minTrackDistance = 0.5

// TrackBuffer keeps a rolling window of positions and derives the ground track.
type TrackBuffer struct {
	mu         sync.RWMutex
	samples    []Point
	windowSize int
}

// NewTrackBuffer creates a new buffer with the specified sample window size.
func NewTrackBuffer(windowSize int) *TrackBuffer {
	if windowSize < 2 {
		windowSize = 2
	}
	return &TrackBuffer{
		windowSize: windowSize,
	}
}

// Push adds a point and returns the bearing from the oldest to the newest
// sample. With fewer than two samples, or while the aircraft is stationary,
// it returns heading.
func (b *TrackBuffer) Push(p Point, heading float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, p)
	if len(b.samples) > b.windowSize {
		b.samples = b.samples[1:]
	}

	if len(b.samples) < 2 {
		return heading
	}
	first, last := b.samples[0], b.samples[len(b.samples)-1]
	if Distance(first, last) < minTrackDistance {
		return heading
	}
	return Bearing(first, last)
}

// Len returns the number of samples in the window.
func (b *TrackBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Reset clears the buffer history.
func (b *TrackBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
}
