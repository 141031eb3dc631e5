package hardpoint

import (
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// Visual is a request to spawn an effect.
type Visual struct {
	Effect   *weapon.Effect
	Position core.Point
	Velocity core.Point
	Angle    core.Angle
}

// Sound is a request to play a sound at a world position.
type Sound struct {
	Name     string
	Position core.Point
}

// Sink receives everything a hardpoint produces while firing.
type Sink interface {
	AddProjectile(p *Projectile)
	AddVisual(v Visual)
	PlaySound(name string, at core.Point)
}

// Batch collects output in memory until the caller drains it.
type Batch struct {
	Projectiles []*Projectile
	Visuals     []Visual
	Sounds      []Sound
}

var _ Sink = (*Batch)(nil)

func (b *Batch) AddProjectile(p *Projectile) {
	b.Projectiles = append(b.Projectiles, p)
}

func (b *Batch) AddVisual(v Visual) {
	b.Visuals = append(b.Visuals, v)
}

func (b *Batch) PlaySound(name string, at core.Point) {
	b.Sounds = append(b.Sounds, Sound{Name: name, Position: at})
}

// Reset empties the batch, keeping its storage.
func (b *Batch) Reset() {
	b.Projectiles = b.Projectiles[:0]
	b.Visuals = b.Visuals[:0]
	b.Sounds = b.Sounds[:0]
}

// EmitEffects adds Count visuals for every effect in effects.
func EmitEffects(sink Sink, effects []weapon.EffectCount, pos, vel core.Point, angle core.Angle) {
	for _, ec := range effects {
		for range ec.Count {
			sink.AddVisual(Visual{Effect: ec.Effect, Position: pos, Velocity: vel, Angle: angle})
		}
	}
}
