package convert

import (
	"encoding/json"

	"github.com/starwake/engine/internal/geo"
	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/pkg/core"
)

// EngagementToCore converts a GORM Engagement to a core.Engagement.
func EngagementToCore(m *model.Engagement) core.Engagement {
	return core.Engagement{
		ID:        m.ID,
		Name:      m.Name,
		DataFile:  m.DataFile,
		Seed:      m.Seed,
		StartTime: m.StartTime,
		EndTick:   m.EndTick,
	}
}

// SurvivorsToCore decodes the survivors column. Malformed data yields nil.
func SurvivorsToCore(m *model.Engagement) map[string]int {
	if len(m.Survivors) == 0 {
		return nil
	}
	var out map[string]int
	if err := json.Unmarshal(m.Survivors, &out); err != nil {
		return nil
	}
	return out
}

// ShotToCore converts a GORM Shot to a core.ShotEvent.
func ShotToCore(s model.Shot) core.ShotEvent {
	var effects []core.EffectCount
	if len(s.FireEffects) > 0 {
		_ = json.Unmarshal(s.FireEffects, &effects)
	}
	if len(effects) == 0 {
		effects = nil
	}

	return core.ShotEvent{
		Tick:        s.Tick,
		Time:        s.Time,
		Ship:        s.Ship,
		Team:        s.Team,
		Hardpoint:   int(s.Hardpoint),
		Weapon:      s.Weapon,
		Origin:      geo.FromPoint(s.Origin),
		Angle:       float64(s.Angle),
		Velocity:    geo.FromPoint(s.Velocity),
		Lifetime:    s.Lifetime,
		FireEffects: effects,
	}
}

// SpecialToCore converts a GORM Special to a core.SpecialEvent.
func SpecialToCore(s model.Special) core.SpecialEvent {
	return core.SpecialEvent{
		Tick:      s.Tick,
		Time:      s.Time,
		Ship:      s.Ship,
		Team:      s.Team,
		Hardpoint: int(s.Hardpoint),
		Weapon:    s.Weapon,
		Kind:      core.SpecialKind(s.Kind),
		Origin:    geo.FromPoint(s.Origin),
		Target:    geo.FromPoint(s.Target),
		Success:   s.Success,
	}
}

// JamToCore converts a GORM Jam to a core.JamEvent.
func JamToCore(j model.Jam) core.JamEvent {
	return core.JamEvent{
		Tick:      j.Tick,
		Time:      j.Time,
		Ship:      j.Ship,
		Team:      j.Team,
		Hardpoint: int(j.Hardpoint),
		Weapon:    j.Weapon,
	}
}

// HitToCore converts a GORM Hit to a core.HitEvent.
func HitToCore(h model.Hit) core.HitEvent {
	return core.HitEvent{
		Tick:      h.Tick,
		Time:      h.Time,
		Shooter:   h.Shooter,
		Victim:    h.Victim,
		Weapon:    h.Weapon,
		Position:  geo.FromPoint(h.Position),
		Damage:    float64(h.Damage),
		HullLeft:  float64(h.HullLeft),
		Destroyed: h.Destroyed,
	}
}

// SlotToCore converts a GORM Slot to a core.SlotEvent.
func SlotToCore(s model.Slot) core.SlotEvent {
	return core.SlotEvent{
		Tick:      s.Tick,
		Time:      s.Time,
		Team:      s.Team,
		Formation: s.Formation,
		Leader:    s.Leader,
		Ship:      s.Ship,
		Index:     s.SlotIndex,
		Position:  geo.FromPoint(s.Position),
	}
}
