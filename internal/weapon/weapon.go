// Package weapon holds the immutable descriptors loaded from data files:
// effects, outfits and the weapon stats an outfit may carry.
package weapon

import "github.com/starwake/engine/pkg/core"

// Mount tells which kind of hardpoint a weapon can be installed in.
type Mount int

const (
	MountGun Mount = iota
	MountTurret
)

func (m Mount) String() string {
	if m == MountTurret {
		return "turret"
	}
	return "gun"
}

// Weapon is the firing profile of an outfit. It is shared by every hardpoint
// the outfit is installed in and must not be modified after loading.
type Weapon struct {
	// Name is the name of the outfit carrying this profile.
	Name  string
	Mount Mount

	// Timers are in ticks.
	Reload      float64
	BurstCount  int
	BurstReload float64
	Lifetime    int

	Velocity      float64
	RangeOverride float64

	Inaccuracy   float64
	Distribution Distribution
	TurretTurn   float64

	FiringForce  float64
	FiringEnergy float64
	FiringHeat   float64
	FiringFuel   float64

	Homing          bool
	AntiMissile     int
	TractorBeam     int
	MissileStrength int

	Parallel        bool
	HardpointOffset core.Point

	Ammo      *Outfit
	AmmoUsage int

	FireEffects []EffectCount
	HitEffects  []EffectCount
	DieEffects  []EffectCount
	Sound       string

	ShieldDamage float64
	HullDamage   float64
}

// Range is the distance a projectile travels before expiring.
func (w *Weapon) Range() float64 {
	if w.RangeOverride > 0 {
		return w.RangeOverride
	}
	return w.Velocity * float64(w.Lifetime)
}

// IsSpecial reports whether the weapon is an anti-missile or tractor beam
// system, which resolves instantly instead of spawning projectiles.
func (w *Weapon) IsSpecial() bool {
	return w.AntiMissile > 0 || w.TractorBeam > 0
}

// ShotsPerSecond assumes 60 ticks per second.
func (w *Weapon) ShotsPerSecond() float64 {
	if w.Reload <= 0 {
		return 0
	}
	return 60 / w.Reload
}
