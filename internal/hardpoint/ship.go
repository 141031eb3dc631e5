package hardpoint

import (
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// Body is anything with a position and velocity in the world.
type Body interface {
	Position() core.Point
	Velocity() core.Point
}

// Ship is the actor a hardpoint is mounted on.
type Ship interface {
	Body
	Facing() core.Angle
	ApplyForce(force core.Point)
	// ExpendAmmo deducts whatever firing w once costs the ship.
	ExpendAmmo(w *weapon.Weapon)
}

// Missile is a body an anti-missile system can shoot down.
type Missile interface {
	Body
	MissileStrength() int
}
