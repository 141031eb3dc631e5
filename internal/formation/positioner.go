package formation

import "github.com/starwake/engine/pkg/core"

// Lead is the body a formation is flown around.
type Lead interface {
	Position() core.Point
	Facing() core.Angle
}

// Positioner hands out slot positions around a leader, one ship at a time.
// The sequence is unbounded: once a ring is full the next one starts. Call
// Start at the beginning of every placement pass.
type Positioner struct {
	lead    Lead
	pattern *Pattern
	scale   float64

	started    bool
	exhausted  bool
	ring       int
	activeLine int
	lineSlot   int
	lineSlots  int
}

// PositionerOption configures a Positioner.
type PositionerOption func(*Positioner)

// WithScale multiplies pattern coordinates before they are placed around the
// leader.
func WithScale(f float64) PositionerOption {
	return func(p *Positioner) {
		p.scale = f
	}
}

// NewPositioner binds a pattern to a leader.
func NewPositioner(lead Lead, pattern *Pattern, opts ...PositionerOption) *Positioner {
	p := &Positioner{lead: lead, pattern: pattern, scale: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pattern returns the pattern being followed.
func (p *Positioner) Pattern() *Pattern { return p.pattern }

// Ring returns the ring the next position will be taken from.
func (p *Positioner) Ring() int { return p.ring }

// Start resets the cursor to the first slot of the first line.
func (p *Positioner) Start() {
	p.started = true
	p.ring = 0
	p.activeLine = 0
	p.lineSlot = 0
	p.exhausted = p.pattern.Lines() == 0
	p.lineSlots = p.pattern.PositionsOnLine(0, 0)
	if p.lineSlots <= 0 {
		p.skipEmptyLines()
	}
}

// NextPosition returns the world position of the next slot. If the pattern
// has no slots left it returns the leader's position.
func (p *Positioner) NextPosition() core.Point {
	if !p.started {
		p.Start()
	}
	if p.exhausted {
		return p.lead.Position()
	}

	local := p.pattern.Position(p.ring, p.activeLine, p.lineSlot).Mul(p.scale)
	pos := p.lead.Position().Add(p.lead.Facing().Rotate(local))

	p.lineSlot++
	if p.lineSlot >= p.lineSlots {
		p.advanceLine()
		p.skipEmptyLines()
	}
	return pos
}

func (p *Positioner) advanceLine() {
	next := p.pattern.NextLine(p.ring, p.activeLine)
	if next < 0 {
		p.exhausted = true
		return
	}
	if next <= p.activeLine {
		p.ring++
	}
	p.activeLine = next
	p.lineSlot = 0
	p.lineSlots = p.pattern.PositionsOnLine(p.ring, p.activeLine)
}

// A line may hold no slots on some ring; move past those. A line that grows
// always reaches a slot eventually. Without one, ring counts stop changing
// after ring 1, so a scan through ring 0 and one full ring that finds nothing
// means the pattern is exhausted.
func (p *Positioner) skipEmptyLines() {
	grows := p.pattern.Grows()
	for attempts := 0; !p.exhausted && p.lineSlots <= 0; attempts++ {
		if !grows && attempts > 2*p.pattern.Lines()+1 {
			p.exhausted = true
			return
		}
		p.advanceLine()
	}
}
