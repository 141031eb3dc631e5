package sim

import (
	"math"

	"github.com/starwake/engine/internal/hardpoint"
	"github.com/starwake/engine/pkg/core"
)

// Guns only fire when the target is within this many degrees of their aim.
const (
	gunArc    = 10.0
	turretArc = 3.0
)

// aimTurret turns h toward a ship-relative bearing as far as its turn rate allows.
func aimTurret(h *hardpoint.Hardpoint, bearing core.Angle) {
	turn := h.Weapon().TurretTurn
	if turn == 0 {
		return
	}
	diff := bearing.Sub(h.Angle()).Degrees()
	h.Aim(math.Max(-1, math.Min(1, diff/turn)))
}

// fireArmament runs every hardpoint of s for one tick.
func (e *Engagement) fireArmament(s *Ship, target *Ship) {
	for i, h := range s.hardpoints {
		h.Step()
		w := h.Weapon()
		if w == nil {
			continue
		}
		if h.IsSpecial() {
			e.fireSpecial(s, i, h)
			continue
		}
		if target == nil {
			continue
		}

		origin := s.position.Add(s.facing.Rotate(h.Point()))
		bearing := core.AngleOf(target.position.Sub(origin))
		if h.IsTurret() {
			aimTurret(h, bearing.Sub(s.facing))
		}
		if !h.IsReady() || !s.CanFire(w) {
			continue
		}
		if origin.Distance(target.position) > w.Range()+target.Radius() {
			continue
		}
		arc := gunArc
		if h.IsTurret() {
			arc = turretArc
		}
		if math.Abs(bearing.Sub(s.facing.Add(h.Angle())).Degrees()) > arc {
			continue
		}

		if jam := s.model.Get("jam chance"); jam > 0 && e.rng.Float64() < jam {
			h.Jam()
			e.recordJam(s, i, h)
			continue
		}
		p := h.Fire(s, &e.batch)
		e.recordShot(s, i, h, p)
	}
}

// fireSpecial runs an anti-missile or tractor beam hardpoint against the
// first eligible body in range.
func (e *Engagement) fireSpecial(s *Ship, index int, h *hardpoint.Hardpoint) {
	w := h.Weapon()
	if !h.IsReady() || !s.CanFire(w) {
		return
	}
	origin := s.position.Add(s.facing.Rotate(h.Point()))

	if w.AntiMissile > 0 {
		for _, p := range e.projectiles {
			if p.IsDead() || p.MissileStrength() == 0 || ownerTeam(p) == s.team {
				continue
			}
			if origin.Distance(p.Position()) > w.Velocity {
				continue
			}
			killed := h.FireAntiMissile(s, p, &e.batch)
			if killed {
				p.Kill()
			}
			e.recordSpecial(s, index, h, origin, p.Position(), killed)
			return
		}
	}
	if w.TractorBeam > 0 {
		for _, f := range e.flotsam {
			if f.collected || origin.Distance(f.position) > w.Velocity {
				continue
			}
			if h.FireTractorBeam(s, f, &e.batch) {
				f.pull(s.position, float64(w.TractorBeam))
				e.recordSpecial(s, index, h, origin, f.position, true)
				return
			}
		}
	}
}

func ownerTeam(p *hardpoint.Projectile) string {
	if owner, ok := p.Owner().(*Ship); ok {
		return owner.team
	}
	return ""
}
