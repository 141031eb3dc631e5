package sim

import (
	"github.com/starwake/engine/internal/formation"
	"github.com/starwake/engine/pkg/core"
)

// columnPattern is used by fleets without a formation: one ship behind the
// other.
var columnPattern = formation.NewPattern("Column", formation.Line{
	Anchor:        core.NewPoint(0, 80),
	InitialSlots:  1,
	RepeatVector:  core.NewPoint(0, 80),
	SlotsIncrease: 0,
})

// Fleet is one team's ships. The first surviving ship leads; the rest hold
// formation slots around it.
type Fleet struct {
	Team   string
	Target string

	ships      []*Ship
	pattern    *formation.Pattern
	leader     *Ship
	positioner *formation.Positioner
	scale      float64
}

// NewFleet groups ships under the first one.
func NewFleet(team, target string, pattern *formation.Pattern, scale float64, ships ...*Ship) *Fleet {
	if pattern == nil || pattern.Lines() == 0 {
		pattern = columnPattern
	}
	if scale <= 0 {
		scale = 1
	}
	return &Fleet{Team: team, Target: target, ships: ships, pattern: pattern, scale: scale}
}

// Ships returns every ship of the fleet, destroyed ones included.
func (f *Fleet) Ships() []*Ship { return f.ships }

// Pattern returns the formation being flown.
func (f *Fleet) Pattern() *formation.Pattern { return f.pattern }

// Leader returns the first surviving ship, or nil if none is left.
func (f *Fleet) Leader() *Ship {
	for _, s := range f.ships {
		if !s.destroyed {
			if s != f.leader {
				f.leader = s
				f.positioner = formation.NewPositioner(s, f.pattern, formation.WithScale(f.scale))
			}
			return s
		}
	}
	return nil
}

// Alive reports whether any ship of the fleet survives.
func (f *Fleet) Alive() bool {
	return f.Leader() != nil
}

// Slot is a follower's assigned formation position for this tick.
type Slot struct {
	Ship     *Ship
	Index    int
	Position core.Point
}

// Slots assigns every surviving follower its position, in fleet order.
func (f *Fleet) Slots() []Slot {
	leader := f.Leader()
	if leader == nil {
		return nil
	}
	f.positioner.Start()
	var slots []Slot
	for _, s := range f.ships {
		if s == leader || s.destroyed {
			continue
		}
		slots = append(slots, Slot{Ship: s, Index: len(slots), Position: f.positioner.NextPosition()})
	}
	return slots
}

// Deploy places the fleet at pos with every follower in its slot.
func (f *Fleet) Deploy(pos core.Point, facing core.Angle) {
	leader := f.Leader()
	if leader == nil {
		return
	}
	leader.Place(pos, facing)
	for _, slot := range f.Slots() {
		slot.Ship.Place(slot.Position, facing)
	}
}

// Nearest returns the surviving ship of the fleet closest to p.
func (f *Fleet) Nearest(p core.Point) *Ship {
	var best *Ship
	bestDist := 0.0
	for _, s := range f.ships {
		if s.destroyed {
			continue
		}
		if d := s.position.Distance(p); best == nil || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}
