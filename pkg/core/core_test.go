package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "X")
	assert.InDelta(t, want.Y, got.Y, eps, "Y")
}

func TestNewAngle_Normalizes(t *testing.T) {
	assert.InDelta(t, -90.0, NewAngle(270).Degrees(), eps)
	assert.InDelta(t, -180.0, NewAngle(180).Degrees(), eps)
	assert.InDelta(t, 10.0, NewAngle(-350).Degrees(), eps)
	assert.InDelta(t, 0.0, NewAngle(720).Degrees(), eps)
	assert.Equal(t, 0.0, NewAngle(math.NaN()).Degrees())
}

func TestAngle_Unit(t *testing.T) {
	assertPoint(t, Point{0, -1}, NewAngle(0).Unit())
	assertPoint(t, Point{1, 0}, NewAngle(90).Unit())
	assertPoint(t, Point{0, 1}, NewAngle(180).Unit())
	assertPoint(t, Point{-1, 0}, NewAngle(-90).Unit())
}

func TestAngle_RotateIdentity(t *testing.T) {
	p := Point{3, -7}
	assertPoint(t, p, NewAngle(0).Rotate(p))
}

func TestAngle_RotateMatchesUnit(t *testing.T) {
	// Rotating "forward" by any angle yields that angle's unit vector.
	for _, deg := range []float64{0, 15, 90, 135, -45, 179} {
		a := NewAngle(deg)
		assertPoint(t, a.Unit(), a.Rotate(Point{0, -1}))
	}
}

func TestAngle_RotateInverse(t *testing.T) {
	p := Point{12, 30}
	a := NewAngle(37)
	assertPoint(t, p, a.Neg().Rotate(a.Rotate(p)))
}

func TestAngleOf(t *testing.T) {
	assert.InDelta(t, 0.0, AngleOf(Point{0, -5}).Degrees(), eps)
	assert.InDelta(t, 90.0, AngleOf(Point{5, 0}).Degrees(), eps)
	assert.InDelta(t, -90.0, AngleOf(Point{-5, 0}).Degrees(), eps)
	assert.InDelta(t, 45.0, AngleOf(Point{1, -1}).Degrees(), eps)
	assert.Equal(t, 0.0, AngleOf(Point{}).Degrees())
}

func TestAngle_AddSub(t *testing.T) {
	a := NewAngle(170)
	b := NewAngle(20)
	assert.InDelta(t, -170.0, a.Add(b).Degrees(), eps)
	assert.InDelta(t, 150.0, a.Sub(b).Degrees(), eps)
}

func TestPoint_Arithmetic(t *testing.T) {
	a := NewPoint(3, 4)
	b := NewPoint(1, -2)

	assertPoint(t, Point{4, 2}, a.Add(b))
	assertPoint(t, Point{2, 6}, a.Sub(b))
	assertPoint(t, Point{6, 8}, a.Mul(2))
	assert.InDelta(t, -5.0, a.Dot(b), eps)
	assert.InDelta(t, 5.0, a.Length(), eps)
	assert.InDelta(t, math.Hypot(2, 6), a.Distance(b), eps)
	assertPoint(t, Point{0.6, 0.8}, a.Unit())
	assert.True(t, Point{}.Unit().IsZero())
}
