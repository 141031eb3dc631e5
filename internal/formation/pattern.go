// Package formation computes the slot positions of ships flying in formation
// around a leader.
//
// A Pattern is a set of lines. Every line contributes its initial slots on the
// first pass (ring 0); lines with a repeat rule then contribute again on each
// following ring, shifted by their repeat vector and growing by their
// increase. Patterns are immutable once loaded and may be shared by any
// number of Positioners.
package formation

import "github.com/starwake/engine/pkg/core"

// Line is one row of slots in a pattern.
type Line struct {
	Anchor       core.Point
	InitialSlots int
	Direction    core.Angle
	Spacing      float64
	RepeatVector core.Point
	// SlotsIncrease is the number of slots added per ring. Negative means the
	// line does not repeat.
	SlotsIncrease int
}

// NewLine creates a non-repeating line.
func NewLine(x, y float64, slots int, direction float64) Line {
	return Line{
		Anchor:        core.NewPoint(x, y),
		InitialSlots:  slots,
		Direction:     core.NewAngle(direction),
		SlotsIncrease: -1,
	}
}

// Repeats reports whether the line contributes slots after the first ring.
func (l Line) Repeats() bool {
	return l.SlotsIncrease >= 0
}

// Pattern is a named formation shape.
type Pattern struct {
	name  string
	lines []Line

	rotatable  int
	flippableX bool
	flippableY bool
}

// NewPattern builds a pattern from lines.
func NewPattern(name string, lines ...Line) *Pattern {
	return &Pattern{name: name, lines: lines, rotatable: -1}
}

func (p *Pattern) Name() string { return p.name }

// Lines returns the number of lines.
func (p *Pattern) Lines() int { return len(p.lines) }

// Line returns line i. It panics on a bad index, like a slice.
func (p *Pattern) Line(i int) Line { return p.lines[i] }

// Grows reports whether any repeating line gains slots on every ring.
func (p *Pattern) Grows() bool {
	for _, l := range p.lines {
		if l.SlotsIncrease > 0 {
			return true
		}
	}
	return false
}

// Rotatable is the symmetry angle in degrees under which the pattern maps to
// itself, or -1 if it has none.
func (p *Pattern) Rotatable() int { return p.rotatable }

// FlippableX reports whether mirroring across the X axis yields the same shape.
func (p *Pattern) FlippableX() bool { return p.flippableX }

// FlippableY reports whether mirroring across the Y axis yields the same shape.
func (p *Pattern) FlippableY() bool { return p.flippableY }

// Position returns the pattern-space position of a slot. A bad line index
// yields the zero point.
func (p *Pattern) Position(iteration, line, slot int) core.Point {
	if line < 0 || line >= len(p.lines) {
		return core.Point{}
	}
	l := p.lines[line]
	return l.Anchor.
		Add(l.RepeatVector.Mul(float64(iteration))).
		Add(l.Direction.Rotate(core.NewPoint(0, -l.Spacing*float64(slot))))
}

// PositionsOnLine returns how many slots a line holds on the given ring.
func (p *Pattern) PositionsOnLine(iteration, line int) int {
	if line < 0 || line >= len(p.lines) {
		return 0
	}
	l := p.lines[line]
	if iteration == 0 {
		return l.InitialSlots
	}
	if !l.Repeats() {
		return 0
	}
	return l.InitialSlots + l.SlotsIncrease*iteration
}

// NextLine returns the line that follows line on the given ring, or -1 when
// no line can hold more ships. On ring 0 every line takes part; afterwards
// only repeating lines do. A result that is not greater than line means the
// scan wrapped into the next ring.
func (p *Pattern) NextLine(iteration, line int) int {
	n := len(p.lines)
	if n == 0 {
		return -1
	}
	if iteration == 0 && line < n-1 {
		return line + 1
	}
	for scanned := 0; scanned <= n; scanned++ {
		line = (line + 1) % n
		if line < 0 {
			line += n
		}
		if p.lines[line].Repeats() {
			return line
		}
	}
	return -1
}
