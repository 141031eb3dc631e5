// pkg/core/events.go
package core

import (
	"time"
)

// Engagement describes one recorded simulation run.
type Engagement struct {
	ID        uint
	Name      string
	DataFile  string
	Seed      uint64
	StartTime time.Time
	EndTick   uint64
}

// EffectCount is one entry of an effect multiset, resolved to its name.
type EffectCount struct {
	Effect string `json:"effect"`
	Count  int    `json:"count"`
}

// ShotEvent represents a projectile weapon being fired from a hardpoint.
type ShotEvent struct {
	Tick        uint64
	Time        time.Time
	Ship        string
	Team        string
	Hardpoint   int
	Weapon      string
	Origin      Point
	Angle       float64 // degrees, after inaccuracy
	Velocity    Point
	Lifetime    int // ticks the projectile lives if it hits nothing
	FireEffects []EffectCount
}

// SpecialKind identifies single-tick special systems.
type SpecialKind string

const (
	SpecialAntiMissile SpecialKind = "anti-missile"
	SpecialTractorBeam SpecialKind = "tractor-beam"
)

// SpecialEvent represents an anti-missile or tractor beam activation.
type SpecialEvent struct {
	Tick      uint64
	Time      time.Time
	Ship      string
	Team      string
	Hardpoint int
	Weapon    string
	Kind      SpecialKind
	Origin    Point
	Target    Point
	Success   bool // missile destroyed or flotsam pulled
}

// JamEvent represents a weapon that consumed its reload cycle without firing.
type JamEvent struct {
	Tick      uint64
	Time      time.Time
	Ship      string
	Team      string
	Hardpoint int
	Weapon    string
}

// HitEvent represents a projectile striking a ship.
type HitEvent struct {
	Tick      uint64
	Time      time.Time
	Shooter   string
	Victim    string
	Weapon    string
	Position  Point
	Damage    float64
	HullLeft  float64
	Destroyed bool
}

// SlotEvent records the formation slot assigned to a follower.
type SlotEvent struct {
	Tick      uint64
	Time      time.Time
	Team      string
	Formation string
	Leader    string
	Ship      string
	Index     int
	Position  Point
}
