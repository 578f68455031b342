package geo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Point
		p2   Point
		want float64
	}{
		{
			name: "Same Point",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   Point{Lat: 51.5074, Lon: -0.1278},
			p2:   Point{Lat: 48.8566, Lon: 2.3522},
			want: 344000, // Approx 344km
		},
		{
			name: "Equator 1 degree",
			p1:   Point{Lat: 0, Lon: 0},
			p2:   Point{Lat: 0, Lon: 1},
			want: 111319, // Approx 111km
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			// Allow 1% margin for the earth radius
			margin := tt.want * 0.01
			if tt.want == 0 {
				margin = 1e-6
			}
			if math.Abs(got-tt.want) > margin {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"North", Point{Lat: 1, Lon: 0}, 0},
		{"East", Point{Lat: 0, Lon: 1}, 90},
		{"South", Point{Lat: -1, Lon: 0}, 180},
		{"West", Point{Lat: 0, Lon: -1}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(origin, tt.to), 1e-6)
		})
	}
}

func TestDestinationPoint(t *testing.T) {
	start := Point{Lat: 28.4728, Lon: -16.3386}
	for _, brg := range []float64{0, 45, 90, 200, 315} {
		p := DestinationPoint(start, 5000, brg)
		assert.InDelta(t, 5000, Distance(start, p), 1, "bearing %v", brg)
		assert.InDelta(t, 0, NormalizeAngle(Bearing(start, p)-brg), 0.1, "bearing %v", brg)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, -170.0, NormalizeAngle(190))
	assert.Equal(t, 170.0, NormalizeAngle(-190))
	assert.Equal(t, 10.0, NormalizeAngle(370))

	assert.Equal(t, 350.0, NormalizeHeading(-10))
	assert.Equal(t, 0.0, NormalizeHeading(360))
	assert.Equal(t, 90.0, NormalizeHeading(450))
}

func TestLocalFrame(t *testing.T) {
	f := LocalFrame{Origin: Point{Lat: 28.4728, Lon: -16.3386}}

	assert.Equal(t, f.Origin, f.ToGeo(mgl64.Vec3{0, 100, 0}))

	north := f.ToGeo(mgl64.Vec3{0, 0, -1000})
	assert.Greater(t, north.Lat, f.Origin.Lat)
	assert.InDelta(t, f.Origin.Lon, north.Lon, 1e-9)

	east := f.ToGeo(mgl64.Vec3{1000, 0, 0})
	assert.Greater(t, east.Lon, f.Origin.Lon)

	pos := mgl64.Vec3{-2500, 40, 1200}
	back := f.ToLocal(f.ToGeo(pos), pos.Y())
	assert.InDelta(t, pos.X(), back.X(), 0.5)
	assert.InDelta(t, pos.Y(), back.Y(), 1e-12)
	assert.InDelta(t, pos.Z(), back.Z(), 0.5)
}

func TestCompassHeading(t *testing.T) {
	// Positive scene heading turns the nose toward -X, which is west.
	assert.InDelta(t, 0, CompassHeading(0), 1e-9)
	assert.InDelta(t, 270, CompassHeading(math.Pi/2), 1e-9)
	assert.InDelta(t, 90, CompassHeading(-math.Pi/2), 1e-9)
	assert.InDelta(t, 180, CompassHeading(3*math.Pi), 1e-9)
}
