package sim

import (
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

const flotsamLifetime = 600

// Flotsam is cargo left behind by a destroyed ship.
type Flotsam struct {
	outfit    *weapon.Outfit
	count     int
	position  core.Point
	velocity  core.Point
	lifetime  int
	collected bool
}

func (f *Flotsam) Position() core.Point   { return f.position }
func (f *Flotsam) Velocity() core.Point   { return f.velocity }
func (f *Flotsam) Outfit() *weapon.Outfit { return f.outfit }
func (f *Flotsam) Count() int             { return f.count }

// pull accelerates the flotsam toward p.
func (f *Flotsam) pull(p core.Point, strength float64) {
	f.velocity = f.velocity.Add(p.Sub(f.position).Unit().Mul(strength * .1))
}

func (f *Flotsam) step() {
	f.position = f.position.Add(f.velocity)
	f.velocity = f.velocity.Mul(.99)
	f.lifetime--
}

func (f *Flotsam) gone() bool {
	return f.collected || f.lifetime <= 0
}

// dropFlotsam scatters the ammunition a destroyed ship was carrying.
func dropFlotsam(s *Ship) []*Flotsam {
	var out []*Flotsam
	seen := make(map[*weapon.Outfit]bool)
	for _, stock := range s.model.Ammo {
		outfit := stock.Outfit
		count := s.ammo[outfit]
		if seen[outfit] || count <= 0 {
			continue
		}
		seen[outfit] = true
		out = append(out, &Flotsam{
			outfit:   outfit,
			count:    count,
			position: s.position,
			velocity: s.velocity,
			lifetime: flotsamLifetime,
		})
	}
	return out
}
