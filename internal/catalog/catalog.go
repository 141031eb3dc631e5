// Package catalog holds every definition loaded from game data files: effects,
// outfits, ship models, formation patterns and engagement setups.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starwake/engine/internal/datafile"
	"github.com/starwake/engine/internal/formation"
	"github.com/starwake/engine/internal/weapon"
)

var (
	ErrUnknownShip       = errors.New("unknown ship model")
	ErrUnknownEngagement = errors.New("unknown engagement")
)

// Catalog is the registry of loaded game data.
type Catalog struct {
	Effects     *Set[weapon.Effect]
	Outfits     *Set[weapon.Outfit]
	Ships       *Set[ShipModel]
	Formations  *Set[formation.Pattern]
	Engagements *Set[EngagementDef]

	logger *slog.Logger
}

var _ weapon.Resolver = (*Catalog)(nil)

// New creates an empty catalog. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		Effects:     NewSet[weapon.Effect](),
		Outfits:     NewSet[weapon.Outfit](),
		Ships:       NewSet[ShipModel](),
		Formations:  NewSet[formation.Pattern](),
		Engagements: NewSet[EngagementDef](),
		logger:      logger,
	}
}

// Effect returns the named effect, creating a placeholder if needed.
func (c *Catalog) Effect(name string) *weapon.Effect {
	e := c.Effects.Get(name)
	if e.Name == "" {
		e.Name = name
	}
	return e
}

// Outfit returns the named outfit, creating a placeholder if needed.
func (c *Catalog) Outfit(name string) *weapon.Outfit {
	o := c.Outfits.Get(name)
	if o.Name == "" {
		o.Name = name
	}
	return o
}

// Load reads every top-level block under root. Blocks without a name and
// unknown block types are skipped with a warning.
func (c *Catalog) Load(root *datafile.Node) {
	for _, node := range root.Children() {
		key := node.Token(0)
		if node.Size() < 2 {
			c.logger.Warn("Skipping unnamed data block", "type", key, "line", node.Line())
			continue
		}
		name := node.Token(1)
		switch key {
		case "effect":
			c.Effects.Define(name).Load(node)
		case "outfit":
			c.Outfits.Define(name).Load(node, c)
		case "ship":
			c.Ships.Define(name).load(node, c.Outfits)
		case "formation":
			c.Formations.Define(name).Load(node)
		case "engagement":
			c.Engagements.Define(name).load(node, c.Formations)
		default:
			c.logger.Warn("Skipping unknown data block", "type", key, "name", name, "line", node.Line())
		}
	}
}

// LoadFiles parses and loads each data file in order.
func (c *Catalog) LoadFiles(paths ...string) error {
	for _, path := range paths {
		root, err := datafile.ParseFile(path)
		if err != nil {
			return err
		}
		c.Load(root)
		c.logger.Debug("Loaded data file", "path", path)
	}
	for _, name := range c.Outfits.Undefined() {
		c.logger.Warn("Outfit referenced but never defined", "name", name)
	}
	return nil
}

// Engagement returns a defined engagement after checking that every ship
// model it uses exists.
func (c *Catalog) Engagement(name string) (*EngagementDef, error) {
	e, ok := c.Engagements.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngagement, name)
	}
	for _, fleet := range e.Fleets {
		for _, sq := range fleet.Squadrons {
			if !c.Ships.Has(sq.Model) {
				return nil, fmt.Errorf("engagement %q fleet %q: %w: %q", name, fleet.Team, ErrUnknownShip, sq.Model)
			}
		}
	}
	return e, nil
}

// Ship returns a defined ship model.
func (c *Catalog) Ship(name string) (*ShipModel, error) {
	s, ok := c.Ships.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShip, name)
	}
	return s, nil
}

// Weapons returns every defined outfit that carries a weapon and has a
// category, sorted by name. Uncategorized weapons are submunitions.
func (c *Catalog) Weapons() []*weapon.Outfit {
	var out []*weapon.Outfit
	for _, name := range c.Outfits.Names() {
		o, _ := c.Outfits.Find(name)
		if o.IsWeapon() && o.Category != "" {
			out = append(out, o)
		}
	}
	return out
}
