package geo

import (
	"math"
	"testing"
)

func TestTrackBuffer(t *testing.T) {
	tests := []struct {
		name       string
		windowSize int
		points     []Point
		wantTracks []float64 // expected track after each push
	}{
		{
			name:       "Standard 3-Sample Window",
			windowSize: 3,
			points: []Point{
				{Lat: 10, Lon: 20},
				{Lat: 11, Lon: 20},
				{Lat: 11, Lon: 21},
				{Lat: 10, Lon: 21},
			},
			wantTracks: []float64{
				99,  // default
				0,   // 10,20 -> 11,20
				45,  // 10,20 -> 11,21
				135, // 11,20 -> 10,21
			},
		},
		{
			name:       "Stationary Falls Back To Heading",
			windowSize: 4,
			points: []Point{
				{Lat: 28.4728, Lon: -16.3386},
				{Lat: 28.4728, Lon: -16.3386},
				{Lat: 28.4728, Lon: -16.3386},
			},
			wantTracks: []float64{99, 99, 99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTrackBuffer(tt.windowSize)
			for i, p := range tt.points {
				got := b.Push(p, 99)
				if math.Abs(got-tt.wantTracks[i]) > 1.0 {
					t.Errorf("Step %d: Push() = %v, want approx %v", i, got, tt.wantTracks[i])
				}
			}
		})
	}
}

func TestTrackBuffer_Reset(t *testing.T) {
	b := NewTrackBuffer(5)
	b.Push(Point{10, 20}, 0)
	b.Push(Point{11, 20}, 0)

	if b.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Expected 0 samples after reset, got %d", b.Len())
	}
}
