package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func fromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

// Distance returns the Haversine distance between two points in meters.
func Distance(p1, p2 Point) float64 {
	return geo.DistanceHaversine(p1.orb(), p2.orb())
}

// DestinationPoint calculates the destination point from a start point, given
// distance (in meters) and bearing (in degrees).
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	return fromOrb(geo.PointAtBearingAndDistance(start.orb(), bearing, distMeters))
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees [0, 360).
func Bearing(p1, p2 Point) float64 {
	return NormalizeHeading(geo.Bearing(p1.orb(), p2.orb()))
}

// NormalizeAngle normalizes an angle difference to the range [-180, 180].
func NormalizeAngle(angleDeg float64) float64 {
	for angleDeg > 180 {
		angleDeg -= 360
	}
	for angleDeg < -180 {
		angleDeg += 360
	}
	return angleDeg
}

// NormalizeHeading maps any angle in degrees onto [0, 360).
func NormalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// LocalFrame ties the scene to the globe. Scene units are meters with -Z
// pointing north, +X east and +Y up; Origin is where the scene origin sits.
type LocalFrame struct {
	Origin Point
}

// ToGeo returns the geographic point under a scene position. Height is ignored.
func (f LocalFrame) ToGeo(pos mgl64.Vec3) Point {
	east, north := pos.X(), -pos.Z()
	dist := math.Hypot(east, north)
	if dist == 0 {
		return f.Origin
	}
	brg := mgl64.RadToDeg(math.Atan2(east, north))
	return DestinationPoint(f.Origin, dist, brg)
}

// ToLocal returns the scene position of p at height y.
func (f LocalFrame) ToLocal(p Point, y float64) mgl64.Vec3 {
	dist := Distance(f.Origin, p)
	if dist == 0 {
		return mgl64.Vec3{0, y, 0}
	}
	brg := mgl64.DegToRad(Bearing(f.Origin, p))
	return mgl64.Vec3{dist * math.Sin(brg), y, -dist * math.Cos(brg)}
}

// CompassHeading converts a scene heading angle (radians, positive turns the
// nose toward -X) into a compass bearing in degrees.
func CompassHeading(heading float64) float64 {
	return NormalizeHeading(-mgl64.RadToDeg(heading))
}
