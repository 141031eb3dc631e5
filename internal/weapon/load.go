package weapon

import "github.com/starwake/engine/internal/datafile"

// Resolver returns the named effect or outfit, creating a placeholder if it
// has not been defined yet so data files may reference entries defined later.
type Resolver interface {
	Effect(name string) *Effect
	Outfit(name string) *Outfit
}

// Load fills the outfit from an `outfit <name>` node. Any child that is not a
// known keyword and has a numeric value is stored as an attribute.
func (o *Outfit) Load(node *datafile.Node, r Resolver) {
	if node.Size() >= 2 {
		o.Name = node.Token(1)
	}
	if o.Attributes == nil {
		o.Attributes = make(map[string]float64)
	}
	var weaponNode *datafile.Node
	for _, child := range node.Children() {
		switch key := child.Token(0); {
		case key == "category" && child.Size() >= 2:
			o.Category = child.Token(1)
		case key == "weapon":
			weaponNode = child
		case child.Size() >= 2 && child.IsNumber(1):
			o.Attributes[key] += child.Value(1)
		}
	}
	if weaponNode != nil {
		if o.Weapon == nil {
			o.Weapon = &Weapon{}
		}
		o.Weapon.Name = o.Name
		o.Weapon.load(weaponNode, r)
		if o.Get("turret mounts") != 0 {
			o.Weapon.Mount = MountTurret
		} else {
			o.Weapon.Mount = MountGun
		}
	}
}

func (w *Weapon) load(node *datafile.Node, r Resolver) {
	w.Reload = 1
	w.BurstCount = 1
	w.BurstReload = 1
	w.AmmoUsage = 1
	w.Distribution = Distribution{Type: Triangular}
	for _, child := range node.Children() {
		key := child.Token(0)
		switch key {
		case "parallel":
			w.Parallel = true
			continue
		case "inaccuracy":
			w.Inaccuracy = child.Value(1)
			for i := 2; i < child.Size(); i++ {
				w.Distribution.apply(child.Token(i))
			}
			for _, grand := range child.Children() {
				w.Distribution.apply(grand.Token(0))
			}
			continue
		}
		if child.Size() < 2 {
			continue
		}
		switch key {
		case "ammo":
			w.Ammo = r.Outfit(child.Token(1))
			if child.Size() >= 3 {
				w.AmmoUsage = max(0, int(child.Value(2)))
			}
		case "sound":
			w.Sound = child.Token(1)
		case "fire effect", "hit effect", "die effect":
			count := 1
			if child.Size() >= 3 {
				count = int(child.Value(2))
			}
			effect := r.Effect(child.Token(1))
			switch key {
			case "fire effect":
				w.FireEffects = addEffect(w.FireEffects, effect, count)
			case "hit effect":
				w.HitEffects = addEffect(w.HitEffects, effect, count)
			default:
				w.DieEffects = addEffect(w.DieEffects, effect, count)
			}
		case "offset":
			w.HardpointOffset.X = child.Value(1)
			w.HardpointOffset.Y = child.Value(2)
		default:
			w.loadValue(key, child.Value(1))
		}
	}
}

func (w *Weapon) loadValue(key string, v float64) {
	switch key {
	case "reload":
		w.Reload = max(1, v)
	case "burst count":
		w.BurstCount = max(1, int(v))
	case "burst reload":
		w.BurstReload = max(1, v)
	case "lifetime":
		w.Lifetime = max(0, int(v))
	case "velocity":
		w.Velocity = v
	case "range override":
		w.RangeOverride = max(0, v)
	case "turret turn":
		w.TurretTurn = v
	case "firing force":
		w.FiringForce = v
	case "firing energy":
		w.FiringEnergy = v
	case "firing heat":
		w.FiringHeat = v
	case "firing fuel":
		w.FiringFuel = v
	case "homing":
		w.Homing = v != 0
	case "anti-missile":
		w.AntiMissile = max(0, int(v))
	case "tractor beam":
		w.TractorBeam = max(0, int(v))
	case "missile strength":
		w.MissileStrength = max(0, int(v))
	case "shield damage":
		w.ShieldDamage = v
	case "hull damage":
		w.HullDamage = v
	}
}

func (d *Distribution) apply(token string) {
	if token == "inverted" {
		d.Inverted = true
		return
	}
	if t, ok := ParseDistributionType(token); ok {
		d.Type = t
	}
}
