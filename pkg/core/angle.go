// pkg/core/angle.go
package core

import "math"

const (
	toRad = math.Pi / 180
	toDeg = 180 / math.Pi
)

// Angle is a heading in degrees, normalized to [-180, 180). Zero points "up"
// (toward negative Y) and angles increase clockwise.
type Angle struct {
	deg float64
}

// NewAngle creates an angle from a value in degrees.
func NewAngle(degrees float64) Angle {
	return Angle{deg: normalize(degrees)}
}

// AngleOf returns the heading that points along p. The zero point yields a
// zero angle.
func AngleOf(p Point) Angle {
	if p.IsZero() {
		return Angle{}
	}
	return NewAngle(math.Atan2(p.X, -p.Y) * toDeg)
}

func normalize(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return a.deg
}

// Radians returns the angle in radians.
func (a Angle) Radians() float64 {
	return a.deg * toRad
}

// Add returns a + b.
func (a Angle) Add(b Angle) Angle {
	return NewAngle(a.deg + b.deg)
}

// Sub returns a - b.
func (a Angle) Sub(b Angle) Angle {
	return NewAngle(a.deg - b.deg)
}

// Neg returns -a.
func (a Angle) Neg() Angle {
	return NewAngle(-a.deg)
}

// Unit returns the unit vector pointing along this heading.
func (a Angle) Unit() Point {
	s, c := math.Sincos(a.Radians())
	return Point{X: s, Y: -c}
}

// Rotate rotates p by this angle. A point expressed in a body's local frame
// (forward = (0, -1)) rotated by the body's facing gives its world offset.
func (a Angle) Rotate(p Point) Point {
	u := a.Unit()
	return Point{
		X: -u.Y*p.X - u.X*p.Y,
		Y: -u.Y*p.Y + u.X*p.X,
	}
}
