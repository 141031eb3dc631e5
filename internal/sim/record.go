package sim

import (
	"github.com/starwake/engine/internal/dispatcher"
	"github.com/starwake/engine/internal/hardpoint"
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

func (e *Engagement) publish(command string, payload any) {
	if e.publisher == nil {
		return
	}
	_, err := e.publisher.Dispatch(dispatcher.Event{
		Command:   command,
		Tick:      e.tick,
		Payload:   payload,
		Timestamp: e.now(),
	})
	if err != nil {
		e.logger.Debug("Event not recorded", "command", command, "tick", e.tick, "error", err)
	}
}

func effectCounts(list []weapon.EffectCount) []core.EffectCount {
	if len(list) == 0 {
		return nil
	}
	out := make([]core.EffectCount, 0, len(list))
	for _, ec := range list {
		out = append(out, core.EffectCount{Effect: ec.Effect.Name, Count: ec.Count})
	}
	return out
}

func (e *Engagement) recordShot(s *Ship, index int, h *hardpoint.Hardpoint, p *hardpoint.Projectile) {
	e.summary.Shots++
	w := h.Weapon()
	e.publish(CommandFired, core.ShotEvent{
		Tick:        e.tick,
		Time:        e.now(),
		Ship:        s.name,
		Team:        s.team,
		Hardpoint:   index,
		Weapon:      w.Name,
		Origin:      p.Position(),
		Angle:       p.Angle().Degrees(),
		Velocity:    p.Velocity(),
		Lifetime:    p.Lifetime(),
		FireEffects: effectCounts(w.FireEffects),
	})
}

func (e *Engagement) recordSpecial(s *Ship, index int, h *hardpoint.Hardpoint, origin, target core.Point, success bool) {
	e.summary.Specials++
	w := h.Weapon()
	kind := core.SpecialAntiMissile
	if w.AntiMissile == 0 {
		kind = core.SpecialTractorBeam
	}
	e.publish(CommandSpecial, core.SpecialEvent{
		Tick:      e.tick,
		Time:      e.now(),
		Ship:      s.name,
		Team:      s.team,
		Hardpoint: index,
		Weapon:    w.Name,
		Kind:      kind,
		Origin:    origin,
		Target:    target,
		Success:   success,
	})
}

func (e *Engagement) recordJam(s *Ship, index int, h *hardpoint.Hardpoint) {
	e.summary.Jams++
	e.publish(CommandJam, core.JamEvent{
		Tick:      e.tick,
		Time:      e.now(),
		Ship:      s.name,
		Team:      s.team,
		Hardpoint: index,
		Weapon:    h.Weapon().Name,
	})
}
