package catalog

import (
	"github.com/starwake/engine/internal/datafile"
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// Mount is a hardpoint slot on a ship model.
type Mount struct {
	Point     core.Point
	BaseAngle core.Angle
	Turret    bool
	Parallel  bool
	Under     bool
	Outfit    *weapon.Outfit
}

// AmmoStock is the starting supply of an ammunition outfit.
type AmmoStock struct {
	Outfit *weapon.Outfit
	Count  int
}

// ShipModel is a ship design: base attributes and its hardpoints.
type ShipModel struct {
	Name       string
	Attributes map[string]float64
	Mounts     []Mount
	Ammo       []AmmoStock
}

// Get returns a numeric attribute, or 0 when unset.
func (s *ShipModel) Get(attribute string) float64 {
	return s.Attributes[attribute]
}

func (s *ShipModel) load(node *datafile.Node, outfits *Set[weapon.Outfit]) {
	s.Name = node.Token(1)
	if s.Attributes == nil {
		s.Attributes = make(map[string]float64)
	}
	for _, child := range node.Children() {
		switch key := child.Token(0); key {
		case "attributes":
			for _, attr := range child.Children() {
				if attr.Size() >= 2 && attr.IsNumber(1) {
					s.Attributes[attr.Token(0)] = attr.Value(1)
				}
			}
		case "gun", "turret":
			if child.Size() < 3 {
				continue
			}
			m := Mount{
				Point:  core.NewPoint(child.Value(1), child.Value(2)),
				Turret: key == "turret",
			}
			if child.Size() >= 4 {
				m.Outfit = outfits.Get(child.Token(3))
			}
			for _, grand := range child.Children() {
				switch grand.Token(0) {
				case "angle":
					m.BaseAngle = core.NewAngle(grand.Value(1))
				case "parallel":
					m.Parallel = true
				case "under":
					m.Under = true
				}
			}
			s.Mounts = append(s.Mounts, m)
		case "ammo":
			if child.Size() < 2 {
				continue
			}
			count := 1
			if child.Size() >= 3 {
				count = int(child.Value(2))
			}
			s.Ammo = append(s.Ammo, AmmoStock{Outfit: outfits.Get(child.Token(1)), Count: count})
		}
	}
}
