package weapon

// Outfit is a named piece of equipment. Weapon is nil for outfits that are
// not weapons (ammunition, generators, hull plating, ...).
type Outfit struct {
	Name       string
	Category   string
	Attributes map[string]float64
	Weapon     *Weapon
}

// Get returns a numeric attribute, or 0 when unset.
func (o *Outfit) Get(attribute string) float64 {
	if o == nil {
		return 0
	}
	return o.Attributes[attribute]
}

// IsWeapon reports whether the outfit carries a weapon profile.
func (o *Outfit) IsWeapon() bool {
	return o != nil && o.Weapon != nil
}
