// Package geo converts simulation coordinates to simplefeatures geometries
// for storage and export.
package geo

import (
	"errors"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/starwake/engine/pkg/core"
)

// Simulation space is flat and unprojected. Points are stored as XY with no
// SRID, screen coordinates with y pointing down.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Point converts a core.Point to a geom.Point.
func Point(p core.Point) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.X, Y: p.Y},
		Type: geom.DimXY,
	})
}

// FromPoint converts a geom.Point back to a core.Point. Empty points yield
// the origin.
func FromPoint(p geom.Point) core.Point {
	coords, ok := p.Coordinates()
	if !ok {
		return core.Point{}
	}
	return core.Point{X: coords.XY.X, Y: coords.XY.Y}
}

// PointFromString parses "x,y" into a core.Point.
func PointFromString(s string) (core.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return core.Point{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	return core.Point{X: x, Y: y}, nil
}

// Path builds a LineString through the given points. Fewer than two points
// yield an empty LineString.
func Path(points ...core.Point) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	coords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		coords = append(coords, p.X, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
}

// Trajectory is the straight path a projectile covers from origin at
// velocity over lifetime ticks, ignoring collisions.
func Trajectory(origin, velocity core.Point, lifetime int) geom.LineString {
	if lifetime <= 0 {
		return geom.LineString{}
	}
	return Path(origin, origin.Add(velocity.Mul(float64(lifetime))))
}

// FromPath returns the vertices of a LineString.
func FromPath(ls geom.LineString) []core.Point {
	seq := ls.Coordinates()
	if seq.Length() == 0 {
		return nil
	}
	out := make([]core.Point, seq.Length())
	for i := range out {
		xy := seq.GetXY(i)
		out[i] = core.Point{X: xy.X, Y: xy.Y}
	}
	return out
}

// Slots collects formation slot positions into a MultiPoint.
func Slots(points []core.Point) geom.MultiPoint {
	pts := make([]geom.Point, len(points))
	for i, p := range points {
		pts[i] = Point(p)
	}
	return geom.NewMultiPoint(pts)
}

// SlotsWKT renders slot positions as WKT, e.g. "MULTIPOINT((0 0),(-80 80))".
func SlotsWKT(points []core.Point) string {
	return Slots(points).AsText()
}
