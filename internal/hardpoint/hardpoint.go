// Package hardpoint implements the per-mount weapon state machine: reload and
// burst timers, aim, and the fire, jam and install protocol.
//
// A combat loop calls Step once per tick for every hardpoint, then decides
// whether to Aim, Fire or Jam it. Callers must only Fire a hardpoint that
// IsReady.
package hardpoint

import (
	"math"

	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// InaccuracyFunc draws an angular offset for a weapon's spread.
type InaccuracyFunc func(spread float64, dist weapon.Distribution) core.Angle

// Hardpoint is one weapon mount on a ship.
type Hardpoint struct {
	// Mount configuration, fixed at construction.
	point      core.Point
	baseAngle  core.Angle
	isTurret   bool
	isParallel bool
	isUnder    bool

	// Installed outfit. Both are nil for an empty mount.
	outfit *weapon.Outfit
	weapon *weapon.Weapon

	angle       core.Angle
	reload      float64
	burstReload float64
	burstCount  int
	isFiring    bool
	wasFiring   bool

	rng        weapon.Rand
	inaccuracy InaccuracyFunc
}

// Option configures a Hardpoint.
type Option func(*Hardpoint)

// WithRandom sets the random source used for anti-missile rolls and, unless
// WithInaccuracy is also given, for inaccuracy.
func WithRandom(r weapon.Rand) Option {
	return func(h *Hardpoint) {
		h.rng = r
	}
}

// WithInaccuracy overrides how inaccuracy offsets are drawn.
func WithInaccuracy(f InaccuracyFunc) Option {
	return func(h *Hardpoint) {
		h.inaccuracy = f
	}
}

// New creates a hardpoint at the given ship-local point. Points are given in
// sprite coordinates and stored at half scale. If outfit is non-nil it is
// installed.
func New(point core.Point, baseAngle core.Angle, isTurret, isParallel, isUnder bool, outfit *weapon.Outfit, opts ...Option) *Hardpoint {
	h := &Hardpoint{
		point:      point.Mul(.5),
		baseAngle:  baseAngle,
		isTurret:   isTurret,
		isParallel: isParallel,
		isUnder:    isUnder,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = weapon.DefaultRand
	}
	if h.inaccuracy == nil {
		h.inaccuracy = weapon.Inaccuracy(h.rng)
	}
	if outfit != nil {
		h.Install(outfit)
	}
	return h
}

// Outfit returns the installed outfit, or nil.
func (h *Hardpoint) Outfit() *weapon.Outfit { return h.outfit }

// Weapon returns the installed weapon profile, or nil.
func (h *Hardpoint) Weapon() *weapon.Weapon { return h.weapon }

// Point is the mount location relative to the ship center, at half scale.
func (h *Hardpoint) Point() core.Point { return h.point }

// Angle is the current aim relative to the ship's facing.
func (h *Hardpoint) Angle() core.Angle { return h.angle }

// BaseAngle is the default facing of a gun mount.
func (h *Hardpoint) BaseAngle() core.Angle { return h.baseAngle }

func (h *Hardpoint) IsTurret() bool   { return h.isTurret }
func (h *Hardpoint) IsParallel() bool { return h.isParallel }
func (h *Hardpoint) IsUnder() bool    { return h.isUnder }

// IsHoming reports whether the installed weapon tracks its target.
func (h *Hardpoint) IsHoming() bool {
	return h.weapon != nil && h.weapon.Homing
}

// IsSpecial reports whether the installed weapon is an anti-missile or
// tractor beam system.
func (h *Hardpoint) IsSpecial() bool {
	return h.weapon != nil && h.weapon.IsSpecial()
}

// CanAim reports whether the installed weapon can turn.
func (h *Hardpoint) CanAim() bool {
	return h.weapon != nil && h.weapon.TurretTurn != 0
}

// IsReady reports whether the weapon can fire this tick.
func (h *Hardpoint) IsReady() bool {
	return h.outfit != nil && h.burstReload <= 0 && h.burstCount > 0
}

// WasFiring reports whether the weapon fired the last time it was able to.
func (h *Hardpoint) WasFiring() bool { return h.wasFiring }

// BurstRemaining is the number of shots left before a full reload.
func (h *Hardpoint) BurstRemaining() int { return h.burstCount }

// ReloadRemaining is the number of ticks until the burst refills.
func (h *Hardpoint) ReloadRemaining() float64 { return h.reload }

// BurstReloadRemaining is the number of ticks until the next shot of a burst.
func (h *Hardpoint) BurstReloadRemaining() float64 { return h.burstReload }

// HarmonizedAngle is the inward correction that makes a gun's shots cross the
// ship's centerline at the end of their range.
func (h *Hardpoint) HarmonizedAngle() core.Angle {
	if h.weapon == nil {
		return core.Angle{}
	}
	ref := h.baseAngle.Neg().Rotate(h.point)
	d := h.weapon.Range()
	if d <= 0 {
		return core.Angle{}
	}
	ratio := math.Max(-1, math.Min(1, ref.X/d))
	return core.NewAngle(-math.Asin(ratio) * 180 / math.Pi)
}

// Step advances the reload timers by one tick.
func (h *Hardpoint) Step() {
	if h.outfit == nil {
		return
	}
	h.wasFiring = h.isFiring
	if h.reload > 0 {
		h.reload--
	}
	if h.reload <= 0 {
		h.burstCount = h.weapon.BurstCount
	}
	if h.burstReload > 0 {
		h.burstReload--
	}
	if h.burstReload <= 0 {
		h.isFiring = false
	}
}

// Aim turns the weapon by amount times its turret turn rate.
func (h *Hardpoint) Aim(amount float64) {
	if h.weapon == nil {
		return
	}
	h.angle = h.angle.Add(core.NewAngle(h.weapon.TurretTurn * amount))
}

// Fire launches one projectile from ship and returns it. An empty mount
// fires nothing and returns nil.
func (h *Hardpoint) Fire(ship Ship, sink Sink) *Projectile {
	if h.weapon == nil {
		return nil
	}
	aim := ship.Facing()
	start := ship.Position().Add(aim.Rotate(h.point))

	aim = aim.Add(h.angle)
	start = start.Add(aim.Rotate(h.weapon.HardpointOffset))

	// Fire effects share the projectile's inaccuracy.
	aim = aim.Add(h.inaccuracy(h.weapon.Inaccuracy, h.weapon.Distribution))

	// Projectiles are drawn half a tick back along the ship's motion.
	p := NewProjectile(ship, start.Sub(ship.Velocity().Mul(.5)), aim, h.weapon)
	sink.AddProjectile(p)

	EmitEffects(sink, h.weapon.FireEffects, start, ship.Velocity(), aim)
	h.fired(ship, sink, start, aim)
	return p
}

// FireAntiMissile tries to shoot down missile. It reports whether the missile
// was destroyed.
func (h *Hardpoint) FireAntiMissile(ship Ship, missile Missile, sink Sink) bool {
	if h.weapon == nil {
		return false
	}
	strength := h.weapon.AntiMissile
	if strength == 0 {
		return false
	}
	if !h.fireSpecial(ship, missile, sink) {
		return false
	}
	attack := weapon.IntN(h.rng, strength)
	defense := weapon.IntN(h.rng, missile.MissileStrength())
	return attack > defense
}

// FireTractorBeam tries to pull in flotsam. It reports whether it was in range.
func (h *Hardpoint) FireTractorBeam(ship Ship, flotsam Body, sink Sink) bool {
	if h.weapon == nil || h.weapon.TractorBeam == 0 {
		return false
	}
	return h.fireSpecial(ship, flotsam, sink)
}

// Special systems resolve within a single tick, so their velocity is their range.
func (h *Hardpoint) fireSpecial(ship Ship, target Body, sink Sink) bool {
	rng := h.weapon.Velocity

	start := ship.Position().Add(ship.Facing().Rotate(h.point))
	offset := target.Position().Sub(start)
	if offset.Length() > rng {
		return false
	}

	aim := core.AngleOf(offset)
	h.angle = aim.Sub(ship.Facing())
	start = start.Add(aim.Rotate(h.weapon.HardpointOffset))

	EmitEffects(sink, h.weapon.FireEffects, start, ship.Velocity(), aim)
	EmitEffects(sink, h.weapon.HitEffects, start.Add(aim.Unit().Mul(.5*rng)), ship.Velocity(), aim)
	EmitEffects(sink, h.weapon.DieEffects, target.Position(), target.Velocity(), aim)

	h.fired(ship, sink, start, aim)
	return true
}

func (h *Hardpoint) fired(ship Ship, sink Sink, start core.Point, aim core.Angle) {
	h.reload += h.weapon.Reload
	h.burstReload += h.weapon.BurstReload
	h.burstCount--
	h.isFiring = true

	if h.weapon.Sound != "" {
		sink.PlaySound(h.weapon.Sound, start)
	}
	if force := h.weapon.FiringForce; force != 0 {
		ship.ApplyForce(aim.Unit().Mul(-force))
	}
	// Last, in case the outfit is its own ammunition.
	ship.ExpendAmmo(h.weapon)
}

// Jam consumes a reload cycle without firing.
func (h *Hardpoint) Jam() {
	if h.weapon == nil {
		return
	}
	h.reload += h.weapon.Reload
	h.burstReload += h.weapon.BurstReload
}

// Install mounts outfit here. Anything that is not a weapon of the matching
// mount type leaves the hardpoint empty.
func (h *Hardpoint) Install(outfit *weapon.Outfit) {
	if !outfit.IsWeapon() || h.isTurret != (outfit.Weapon.Mount == weapon.MountTurret) {
		h.Uninstall()
		return
	}
	h.outfit = outfit
	h.weapon = outfit.Weapon
	h.Reload()

	if h.isTurret {
		h.angle = core.AngleOf(h.point)
		return
	}
	h.angle = h.baseAngle
	if !h.isParallel && !h.weapon.Parallel {
		h.angle = h.angle.Add(h.HarmonizedAngle())
	}
}

// Reload resets the timers and refills the burst.
func (h *Hardpoint) Reload() {
	h.reload = 0
	h.burstReload = 0
	h.burstCount = 0
	if h.weapon != nil {
		h.burstCount = h.weapon.BurstCount
	}
}

// Uninstall empties the hardpoint.
func (h *Hardpoint) Uninstall() {
	h.outfit = nil
	h.weapon = nil
}
