package sim

import (
	"math"

	"github.com/starwake/engine/internal/catalog"
	"github.com/starwake/engine/internal/hardpoint"
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

const defaultRadius = 20

// Ship is a single vessel taking part in an engagement.
type Ship struct {
	name  string
	team  string
	model *catalog.ShipModel

	position core.Point
	velocity core.Point
	facing   core.Angle

	hardpoints []*hardpoint.Hardpoint
	ammo       map[*weapon.Outfit]int

	energy    float64
	heat      float64
	fuel      float64
	shields   float64
	hull      float64
	destroyed bool
}

var _ hardpoint.Ship = (*Ship)(nil)

// NewShip builds a ship from its model with every mount installed and its
// starting ammunition loaded.
func NewShip(name, team string, model *catalog.ShipModel, opts ...hardpoint.Option) *Ship {
	s := &Ship{
		name:    name,
		team:    team,
		model:   model,
		ammo:    make(map[*weapon.Outfit]int),
		energy:  model.Get("energy capacity"),
		fuel:    model.Get("fuel"),
		shields: model.Get("shields"),
		hull:    model.Get("hull"),
	}
	for _, m := range model.Mounts {
		s.hardpoints = append(s.hardpoints,
			hardpoint.New(m.Point, m.BaseAngle, m.Turret, m.Parallel, m.Under, m.Outfit, opts...))
	}
	for _, a := range model.Ammo {
		s.ammo[a.Outfit] += a.Count
	}
	return s
}

func (s *Ship) Name() string                        { return s.name }
func (s *Ship) Team() string                        { return s.team }
func (s *Ship) Model() *catalog.ShipModel           { return s.model }
func (s *Ship) Position() core.Point                { return s.position }
func (s *Ship) Velocity() core.Point                { return s.velocity }
func (s *Ship) Facing() core.Angle                  { return s.facing }
func (s *Ship) Hardpoints() []*hardpoint.Hardpoint  { return s.hardpoints }
func (s *Ship) Energy() float64                     { return s.energy }
func (s *Ship) Heat() float64                       { return s.heat }
func (s *Ship) Fuel() float64                       { return s.fuel }
func (s *Ship) Shields() float64                    { return s.shields }
func (s *Ship) Hull() float64                       { return s.hull }
func (s *Ship) IsDestroyed() bool                   { return s.destroyed }
func (s *Ship) AmmoCount(outfit *weapon.Outfit) int { return s.ammo[outfit] }

// Place sets the ship's position and facing and stops it.
func (s *Ship) Place(pos core.Point, facing core.Angle) {
	s.position = pos
	s.facing = facing
	s.velocity = core.Point{}
}

// Mass is never below 1 so forces stay finite.
func (s *Ship) Mass() float64 {
	return math.Max(1, s.model.Get("mass"))
}

// Radius is the ship's collision radius.
func (s *Ship) Radius() float64 {
	if r := s.model.Get("radius"); r > 0 {
		return r
	}
	return defaultRadius
}

// ApplyForce changes the ship's velocity by force / mass.
func (s *Ship) ApplyForce(force core.Point) {
	s.velocity = s.velocity.Add(force.Mul(1 / s.Mass()))
}

// ExpendAmmo pays the cost of one shot of w.
func (s *Ship) ExpendAmmo(w *weapon.Weapon) {
	if w.Ammo != nil {
		s.ammo[w.Ammo] = max(0, s.ammo[w.Ammo]-w.AmmoUsage)
	}
	s.energy -= w.FiringEnergy
	s.heat += w.FiringHeat
	s.fuel -= w.FiringFuel
}

// CanFire reports whether the ship can pay for one shot of w.
func (s *Ship) CanFire(w *weapon.Weapon) bool {
	if w.Ammo != nil && s.ammo[w.Ammo] < w.AmmoUsage {
		return false
	}
	return s.energy >= w.FiringEnergy && s.fuel >= w.FiringFuel
}

// AddAmmo adds picked-up ammunition.
func (s *Ship) AddAmmo(outfit *weapon.Outfit, count int) {
	s.ammo[outfit] += count
}

// TakeHit applies one hit of w. Shields absorb shield damage first; hull
// damage lands in proportion to the part of the hit the shields did not
// absorb, so a weapon with no shield damage goes straight to the hull. It
// returns the damage dealt.
func (s *Ship) TakeHit(w *weapon.Weapon) float64 {
	if s.destroyed {
		return 0
	}
	through := 1.0
	var dealt float64
	if s.shields > 0 && w.ShieldDamage > 0 {
		absorbed := math.Min(s.shields, w.ShieldDamage)
		s.shields -= absorbed
		dealt = absorbed
		through = 1 - absorbed/w.ShieldDamage
	}
	hull := w.HullDamage * through
	s.hull -= hull
	if s.hull <= 0 {
		s.hull = 0
		s.destroyed = true
	}
	return dealt + hull
}

// turnToward rotates the facing toward heading by at most the ship's turn rate.
func (s *Ship) turnToward(heading core.Angle) {
	turn := s.model.Get("turning")
	diff := heading.Sub(s.facing).Degrees()
	s.facing = s.facing.Add(core.NewAngle(math.Max(-turn, math.Min(turn, diff))))
}

func (s *Ship) thrust(scale float64) {
	s.ApplyForce(s.facing.Unit().Mul(s.model.Get("thrust") * scale))
}

// steer flies toward target, braking once within stop distance.
func (s *Ship) steer(target core.Point, stop float64) {
	offset := target.Sub(s.position)
	if offset.Length() <= stop {
		s.brake()
		return
	}
	heading := core.AngleOf(offset)
	s.turnToward(heading)
	if math.Abs(heading.Sub(s.facing).Degrees()) < 30 {
		s.thrust(1)
	}
}

// hold keeps station at target while matching facing.
func (s *Ship) hold(target core.Point, facing core.Angle) {
	if s.position.Distance(target) > s.Radius() {
		s.steer(target, s.Radius())
		return
	}
	s.brake()
	s.turnToward(facing)
}

func (s *Ship) brake() {
	s.velocity = s.velocity.Mul(.9)
}

// step integrates motion and regenerates energy for one tick.
func (s *Ship) step() {
	s.position = s.position.Add(s.velocity)
	drag := math.Min(1, s.model.Get("drag")/s.Mass())
	s.velocity = s.velocity.Mul(1 - drag)

	s.energy = math.Min(s.model.Get("energy capacity"), s.energy+s.model.Get("energy generation"))
	s.heat = math.Max(0, s.heat-s.heat*s.model.Get("heat dissipation")*.01)
}
