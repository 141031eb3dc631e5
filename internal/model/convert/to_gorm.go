// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/starwake/engine/internal/geo"
	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/pkg/core"
	"gorm.io/datatypes"
)

// effectsToJSON converts an effect multiset to datatypes.JSON for DB storage.
func effectsToJSON(effects []core.EffectCount) datatypes.JSON {
	if len(effects) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(effects)
	return datatypes.JSON(data)
}

// SurvivorsToJSON converts the per-team survivor counts to datatypes.JSON.
func SurvivorsToJSON(survivors map[string]int) datatypes.JSON {
	if len(survivors) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(survivors)
	return datatypes.JSON(data)
}

// CoreToEngagement converts a core.Engagement to a GORM model.Engagement.
func CoreToEngagement(e core.Engagement) model.Engagement {
	m := model.Engagement{
		Name:      e.Name,
		DataFile:  e.DataFile,
		Seed:      e.Seed,
		StartTime: e.StartTime,
		EndTick:   e.EndTick,
		Survivors: datatypes.JSON("{}"),
	}
	m.ID = e.ID
	return m
}

// CoreToShot converts a core.ShotEvent to a GORM model.Shot. The trajectory
// is the straight line the projectile would cover over its lifetime.
func CoreToShot(e core.ShotEvent) model.Shot {
	return model.Shot{
		Time:        e.Time,
		Tick:        e.Tick,
		Ship:        e.Ship,
		Team:        e.Team,
		Hardpoint:   uint16(e.Hardpoint),
		Weapon:      e.Weapon,
		Angle:       float32(e.Angle),
		Lifetime:    e.Lifetime,
		Origin:      geo.Point(e.Origin),
		Velocity:    geo.Point(e.Velocity),
		Trajectory:  geo.Trajectory(e.Origin, e.Velocity, e.Lifetime),
		FireEffects: effectsToJSON(e.FireEffects),
	}
}

// CoreToSpecial converts a core.SpecialEvent to a GORM model.Special.
func CoreToSpecial(e core.SpecialEvent) model.Special {
	return model.Special{
		Time:      e.Time,
		Tick:      e.Tick,
		Ship:      e.Ship,
		Team:      e.Team,
		Hardpoint: uint16(e.Hardpoint),
		Weapon:    e.Weapon,
		Kind:      string(e.Kind),
		Origin:    geo.Point(e.Origin),
		Target:    geo.Point(e.Target),
		Success:   e.Success,
	}
}

// CoreToJam converts a core.JamEvent to a GORM model.Jam.
func CoreToJam(e core.JamEvent) model.Jam {
	return model.Jam{
		Time:      e.Time,
		Tick:      e.Tick,
		Ship:      e.Ship,
		Team:      e.Team,
		Hardpoint: uint16(e.Hardpoint),
		Weapon:    e.Weapon,
	}
}

// CoreToHit converts a core.HitEvent to a GORM model.Hit.
func CoreToHit(e core.HitEvent) model.Hit {
	return model.Hit{
		Time:      e.Time,
		Tick:      e.Tick,
		Shooter:   e.Shooter,
		Victim:    e.Victim,
		Weapon:    e.Weapon,
		Position:  geo.Point(e.Position),
		Damage:    float32(e.Damage),
		HullLeft:  float32(e.HullLeft),
		Destroyed: e.Destroyed,
	}
}

// CoreToSlot converts a core.SlotEvent to a GORM model.Slot.
func CoreToSlot(e core.SlotEvent) model.Slot {
	return model.Slot{
		Time:      e.Time,
		Tick:      e.Tick,
		Team:      e.Team,
		Formation: e.Formation,
		Leader:    e.Leader,
		Ship:      e.Ship,
		SlotIndex: e.Index,
		Position:  geo.Point(e.Position),
	}
}
