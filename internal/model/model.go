package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Engagement{},
	&Shot{},
	&Special{},
	&Jam{},
	&Hit{},
	&Slot{},
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Engagement is one recorded simulation run
type Engagement struct {
	gorm.Model
	Name      string         `json:"name" gorm:"size:127;index:idx_engagement_name"`
	DataFile  string         `json:"dataFile" gorm:"size:255"`
	Seed      uint64         `json:"seed"`
	StartTime time.Time      `json:"startTime" gorm:"type:timestamptz;index:idx_engagement_start"`
	EndTick   uint64         `json:"endTick"`
	Survivors datatypes.JSON `json:"survivors"` // ships left per team, set when the engagement ends

	Shots    []Shot
	Specials []Special
	Jams     []Jam
	Hits     []Hit
	Slots    []Slot
}

func (*Engagement) TableName() string {
	return "engagements"
}

// Shot is a projectile leaving a hardpoint
//
// Command: :FIRED:
type Shot struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	EngagementID uint       `json:"engagementId" gorm:"index:idx_shot_engagement_id"`
	Engagement   Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EngagementID;"`
	Tick         uint64     `json:"tick" gorm:"index:idx_shot_tick;"`
	Ship         string     `json:"ship" gorm:"size:127;index:idx_shot_ship"`
	Team         string     `json:"team" gorm:"size:64"`
	Hardpoint    uint16     `json:"hardpoint"` // index into the ship's mounts
	Weapon       string     `json:"weapon" gorm:"size:127"`
	Angle        float32    `json:"angle"` // degrees after inaccuracy, 0 = up, clockwise
	Lifetime     int        `json:"lifetime"`

	Origin      geom.Point      `json:"origin"`
	Velocity    geom.Point      `json:"velocity"`   // per tick
	Trajectory  geom.LineString `json:"-"`          // origin to where the projectile expires
	FireEffects datatypes.JSON  `json:"fireEffects"` // [{"effect":..,"count":..}]
}

func (*Shot) TableName() string {
	return "shots"
}

// Special is an anti-missile or tractor beam activation
//
// Command: :SPECIAL:
type Special struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	EngagementID uint       `json:"engagementId" gorm:"index:idx_special_engagement_id"`
	Engagement   Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EngagementID;"`
	Tick         uint64     `json:"tick" gorm:"index:idx_special_tick;"`
	Ship         string     `json:"ship" gorm:"size:127"`
	Team         string     `json:"team" gorm:"size:64"`
	Hardpoint    uint16     `json:"hardpoint"`
	Weapon       string     `json:"weapon" gorm:"size:127"`
	Kind         string     `json:"kind" gorm:"size:32"` // anti-missile, tractor-beam
	Origin       geom.Point `json:"origin"`
	Target       geom.Point `json:"target"`
	Success      bool       `json:"success"`
}

func (*Special) TableName() string {
	return "specials"
}

// Jam is a reload cycle spent without firing
//
// Command: :JAM:
type Jam struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	EngagementID uint       `json:"engagementId" gorm:"index:idx_jam_engagement_id"`
	Engagement   Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EngagementID;"`
	Tick         uint64     `json:"tick" gorm:"index:idx_jam_tick;"`
	Ship         string     `json:"ship" gorm:"size:127"`
	Team         string     `json:"team" gorm:"size:64"`
	Hardpoint    uint16     `json:"hardpoint"`
	Weapon       string     `json:"weapon" gorm:"size:127"`
}

func (*Jam) TableName() string {
	return "jams"
}

// Hit is a projectile striking a ship
//
// Command: :HIT:
type Hit struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	EngagementID uint       `json:"engagementId" gorm:"index:idx_hit_engagement_id"`
	Engagement   Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EngagementID;"`
	Tick         uint64     `json:"tick" gorm:"index:idx_hit_tick;"`
	Shooter      string     `json:"shooter" gorm:"size:127;index:idx_hit_shooter"`
	Victim       string     `json:"victim" gorm:"size:127;index:idx_hit_victim"`
	Weapon       string     `json:"weapon" gorm:"size:127"`
	Position     geom.Point `json:"position"`
	Damage       float32    `json:"damage"`
	HullLeft     float32    `json:"hullLeft"`
	Destroyed    bool       `json:"destroyed"`
}

func (*Hit) TableName() string {
	return "hits"
}

// Slot is the formation position assigned to a follower
//
// Command: :SLOT:
type Slot struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time" gorm:"type:timestamptz;"`
	EngagementID uint       `json:"engagementId" gorm:"index:idx_slot_engagement_id"`
	Engagement   Engagement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EngagementID;"`
	Tick         uint64     `json:"tick" gorm:"index:idx_slot_tick;"`
	Team         string     `json:"team" gorm:"size:64"`
	Formation    string     `json:"formation" gorm:"size:127"`
	Leader       string     `json:"leader" gorm:"size:127"`
	Ship         string     `json:"ship" gorm:"size:127"`
	SlotIndex    int        `json:"slotIndex"`
	Position     geom.Point `json:"position"`
}

func (*Slot) TableName() string {
	return "slots"
}
