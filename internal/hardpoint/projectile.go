package hardpoint

import (
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// Projectile is a shot in flight. It keeps a reference to the shared weapon
// descriptor and to the ship that fired it.
type Projectile struct {
	weapon   *weapon.Weapon
	owner    Ship
	position core.Point
	velocity core.Point
	angle    core.Angle
	lifetime int
}

// NewProjectile launches a shot along aim, inheriting the owner's velocity.
func NewProjectile(owner Ship, position core.Point, aim core.Angle, w *weapon.Weapon) *Projectile {
	return &Projectile{
		weapon:   w,
		owner:    owner,
		position: position,
		velocity: owner.Velocity().Add(aim.Unit().Mul(w.Velocity)),
		angle:    aim,
		lifetime: w.Lifetime,
	}
}

func (p *Projectile) Weapon() *weapon.Weapon { return p.weapon }
func (p *Projectile) Owner() Ship            { return p.owner }
func (p *Projectile) Position() core.Point   { return p.position }
func (p *Projectile) Velocity() core.Point   { return p.velocity }
func (p *Projectile) Angle() core.Angle      { return p.angle }
func (p *Projectile) Lifetime() int          { return p.lifetime }

// MissileStrength is the weapon's resistance to anti-missile fire. Zero means
// the projectile cannot be targeted.
func (p *Projectile) MissileStrength() int {
	return p.weapon.MissileStrength
}

// Move advances the projectile by one tick. Projectiles fly straight; a
// homing weapon is not steered toward its target.
func (p *Projectile) Move() {
	p.position = p.position.Add(p.velocity)
	p.lifetime--
}

// Kill marks the projectile as expired.
func (p *Projectile) Kill() {
	p.lifetime = 0
}

// IsDead reports whether the projectile has run out of lifetime.
func (p *Projectile) IsDead() bool {
	return p.lifetime <= 0
}
