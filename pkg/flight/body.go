package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is the host-owned object the controller steers. The controller only
// ever reads and writes its position and orientation.
type Body interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Orientation() mgl64.Quat
	SetOrientation(q mgl64.Quat)
}

// Transform is a minimal Body for hosts without a scene graph.
type Transform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// NewTransform creates a transform at pos with the given orientation.
func NewTransform(pos mgl64.Vec3, rot mgl64.Quat) *Transform {
	return &Transform{Pos: pos, Rot: rot}
}

func (t *Transform) Position() mgl64.Vec3 { return t.Pos }

func (t *Transform) SetPosition(p mgl64.Vec3) { t.Pos = p }

// Orientation returns the stored rotation; the zero quaternion reads as identity.
func (t *Transform) Orientation() mgl64.Quat {
	if t.Rot == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return t.Rot
}

func (t *Transform) SetOrientation(q mgl64.Quat) { t.Rot = q }

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}

	// Forward is the body's local nose direction (-Z); up is +Y, right is +X.
	Forward = mgl64.Vec3{0, 0, -1}
)

// Euler holds aircraft angles in radians, applied heading first (about Y),
// then pitch (about X), then bank (about Z).
type Euler struct {
	Pitch   float64
	Heading float64
	Bank    float64
}

// Quat composes the YXZ rotation.
func (e Euler) Quat() mgl64.Quat {
	yaw := mgl64.QuatRotate(e.Heading, axisY)
	pitch := mgl64.QuatRotate(e.Pitch, axisX)
	roll := mgl64.QuatRotate(e.Bank, axisZ)
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// EulerFromQuat decomposes q into YXZ angles. Near ±90° pitch the heading
// absorbs the bank and bank is reported as 0.
func EulerFromQuat(q mgl64.Quat) Euler {
	m := q.Normalize().Mat4()
	m13, m21, m22 := m.At(0, 2), m.At(1, 0), m.At(1, 1)
	m23, m31, m11, m33 := m.At(1, 2), m.At(2, 0), m.At(0, 0), m.At(2, 2)

	e := Euler{Pitch: math.Asin(-mgl64.Clamp(m23, -1, 1))}
	if math.Abs(m23) < 0.9999999 {
		e.Heading = math.Atan2(m13, m33)
		e.Bank = math.Atan2(m21, m22)
	} else {
		e.Heading = math.Atan2(-m31, m11)
	}
	return e
}

// ForwardAxis returns the nose direction of a body with orientation q.
func ForwardAxis(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(Forward)
}
