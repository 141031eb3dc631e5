package catalog

import (
	"github.com/starwake/engine/internal/datafile"
	"github.com/starwake/engine/internal/formation"
	"github.com/starwake/engine/pkg/core"
)

// Squadron is a group of identical ships in a fleet.
type Squadron struct {
	Model string
	Count int
}

// FleetDef is one side's starting fleet. The first ship is its leader.
type FleetDef struct {
	Team      string
	Squadrons []Squadron
	Formation *formation.Pattern
	Position  core.Point
	Facing    core.Angle
	Target    string
}

// EngagementDef is a battle setup: fleets and their starting positions.
type EngagementDef struct {
	Name   string
	Fleets []FleetDef
}

func (e *EngagementDef) load(node *datafile.Node, formations *Set[formation.Pattern]) {
	e.Name = node.Token(1)
	for _, child := range node.Children() {
		if child.Token(0) != "fleet" || child.Size() < 2 {
			continue
		}
		f := FleetDef{Team: child.Token(1)}
		for _, grand := range child.Children() {
			switch grand.Token(0) {
			case "ship":
				if grand.Size() < 2 {
					continue
				}
				count := 1
				if grand.Size() >= 3 {
					count = int(grand.Value(2))
				}
				if count > 0 {
					f.Squadrons = append(f.Squadrons, Squadron{Model: grand.Token(1), Count: count})
				}
			case "formation":
				if grand.Size() >= 2 {
					f.Formation = formations.Get(grand.Token(1))
				}
			case "position":
				f.Position = core.NewPoint(grand.Value(1), grand.Value(2))
			case "facing":
				f.Facing = core.NewAngle(grand.Value(1))
			case "target":
				f.Target = grand.Token(1)
			}
		}
		e.Fleets = append(e.Fleets, f)
	}
}
