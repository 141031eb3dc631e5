// Package sim runs an engagement between fleets: ships fly their formations,
// fire their hardpoints and take hits, one tick at a time. Everything that
// happens is published as events for recording.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starwake/engine/internal/catalog"
	"github.com/starwake/engine/internal/dispatcher"
	"github.com/starwake/engine/internal/hardpoint"
	"github.com/starwake/engine/internal/weapon"
	"github.com/starwake/engine/pkg/core"
)

// Event commands published by an engagement.
const (
	CommandFired   = ":FIRED:"
	CommandSpecial = ":SPECIAL:"
	CommandJam     = ":JAM:"
	CommandHit     = ":HIT:"
	CommandSlot    = ":SLOT:"
)

// TicksPerSecond converts ticks to simulated time.
const TicksPerSecond = 60

// Publisher receives engagement events. *dispatcher.Dispatcher satisfies it.
type Publisher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Observer is called after every tick with the state of all ships.
type Observer interface {
	ObserveTick(ctx context.Context, tick uint64, at time.Time, ships []*Ship)
}

// Summary counts what happened during a run.
type Summary struct {
	Ticks     uint64
	Shots     int
	Specials  int
	Jams      int
	Hits      int
	Visuals   int
	Sounds    int
	Destroyed []string
	Survivors map[string]int
}

// Engagement is a running battle.
type Engagement struct {
	name   string
	fleets []*Fleet
	ships  []*Ship

	projectiles []*hardpoint.Projectile
	flotsam     []*Flotsam
	batch       hardpoint.Batch

	rng          weapon.Rand
	publisher    Publisher
	observer     Observer
	logger       *slog.Logger
	start        time.Time
	slotInterval int
	scale        float64

	tick    uint64
	summary Summary
}

// Option configures an Engagement.
type Option func(*Engagement)

// WithSeed makes the run reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engagement) { e.rng = weapon.NewRand(seed) }
}

// WithRandom sets the random source shared by every hardpoint.
func WithRandom(r weapon.Rand) Option {
	return func(e *Engagement) { e.rng = r }
}

func WithPublisher(p Publisher) Option {
	return func(e *Engagement) { e.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(e *Engagement) { e.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engagement) { e.logger = l }
}

// WithStartTime sets the wall clock time of tick zero.
func WithStartTime(t time.Time) Option {
	return func(e *Engagement) { e.start = t }
}

// WithSlotInterval publishes formation slots every n ticks. Zero disables it.
func WithSlotInterval(n int) Option {
	return func(e *Engagement) { e.slotInterval = n }
}

// WithFormationScale scales every fleet's formation pattern.
func WithFormationScale(f float64) Option {
	return func(e *Engagement) { e.scale = f }
}

// New sets up the named engagement from the catalog with every fleet
// deployed at its starting position.
func New(c *catalog.Catalog, name string, opts ...Option) (*Engagement, error) {
	def, err := c.Engagement(name)
	if err != nil {
		return nil, err
	}

	e := &Engagement{
		name:         def.Name,
		slotInterval: TicksPerSecond,
		scale:        1,
		start:        time.Now(),
		summary:      Summary{Survivors: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = weapon.DefaultRand
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	hpOpts := []hardpoint.Option{hardpoint.WithRandom(e.rng)}

	for _, fd := range def.Fleets {
		var ships []*Ship
		for _, sq := range fd.Squadrons {
			model, err := c.Ship(sq.Model)
			if err != nil {
				return nil, fmt.Errorf("fleet %q: %w", fd.Team, err)
			}
			for n := range sq.Count {
				shipName := fmt.Sprintf("%s %s %d", fd.Team, sq.Model, n+1)
				ships = append(ships, NewShip(shipName, fd.Team, model, hpOpts...))
			}
		}
		fleet := NewFleet(fd.Team, fd.Target, fd.Formation, e.scale, ships...)
		fleet.Deploy(fd.Position, fd.Facing)
		e.fleets = append(e.fleets, fleet)
		e.ships = append(e.ships, ships...)
	}

	e.logger.Info("Engagement ready", "name", e.name, "fleets", len(e.fleets), "ships", len(e.ships))
	return e, nil
}

func (e *Engagement) Name() string                         { return e.name }
func (e *Engagement) Tick() uint64                         { return e.tick }
func (e *Engagement) Fleets() []*Fleet                     { return e.fleets }
func (e *Engagement) Ships() []*Ship                       { return e.ships }
func (e *Engagement) Projectiles() []*hardpoint.Projectile { return e.projectiles }

// Summary returns the counters collected so far.
func (e *Engagement) Summary() Summary {
	s := e.summary
	s.Ticks = e.tick
	s.Survivors = make(map[string]int)
	for _, ship := range e.ships {
		if !ship.destroyed {
			s.Survivors[ship.team]++
		}
	}
	return s
}

// Finished reports whether at most one fleet has ships left.
func (e *Engagement) Finished() bool {
	alive := 0
	for _, f := range e.fleets {
		if f.Alive() {
			alive++
		}
	}
	return alive <= 1
}

// Run advances the engagement up to ticks times, stopping early when only one
// side is left or ctx is done.
func (e *Engagement) Run(ctx context.Context, ticks int) (Summary, error) {
	for range ticks {
		if err := ctx.Err(); err != nil {
			return e.Summary(), err
		}
		e.Step(ctx)
		if e.Finished() {
			e.logger.Info("Engagement decided", "name", e.name, "tick", e.tick)
			break
		}
	}
	return e.Summary(), nil
}

// Step advances the engagement by one tick.
func (e *Engagement) Step(ctx context.Context) {
	e.tick++

	for _, f := range e.fleets {
		e.fly(f)
	}
	for _, f := range e.fleets {
		enemy := e.enemyOf(f)
		for _, s := range f.ships {
			if s.destroyed {
				continue
			}
			var target *Ship
			if enemy != nil {
				target = enemy.Nearest(s.position)
			}
			e.fireArmament(s, target)
		}
	}
	e.collectBatch()

	for _, s := range e.ships {
		if !s.destroyed {
			s.step()
		}
	}
	e.moveProjectiles()
	e.moveFlotsam()
	e.collectBatch()

	if e.observer != nil {
		e.observer.ObserveTick(ctx, e.tick, e.now(), e.ships)
	}
}

func (e *Engagement) now() time.Time {
	return e.start.Add(time.Duration(e.tick) * time.Second / TicksPerSecond)
}

func (e *Engagement) enemyOf(f *Fleet) *Fleet {
	for _, other := range e.fleets {
		if other != f && other.Team == f.Target && other.Alive() {
			return other
		}
	}
	for _, other := range e.fleets {
		if other != f && other.Alive() {
			return other
		}
	}
	return nil
}

// fly moves the leader toward the enemy and the followers to their slots.
func (e *Engagement) fly(f *Fleet) {
	leader := f.Leader()
	if leader == nil {
		return
	}
	if enemy := e.enemyOf(f); enemy != nil {
		if target := enemy.Nearest(leader.position); target != nil {
			leader.steer(target.position, .8*standoff(leader))
		}
	}

	publish := e.slotInterval > 0 && e.tick%uint64(e.slotInterval) == 0
	for _, slot := range f.Slots() {
		slot.Ship.hold(slot.Position, leader.facing)
		if publish {
			e.publish(CommandSlot, core.SlotEvent{
				Tick:      e.tick,
				Time:      e.now(),
				Team:      f.Team,
				Formation: f.pattern.Name(),
				Leader:    leader.name,
				Ship:      slot.Ship.name,
				Index:     slot.Index,
				Position:  slot.Position,
			})
		}
	}
}

// standoff is the shortest range among the ship's direct-fire weapons.
func standoff(s *Ship) float64 {
	best := 0.0
	for _, h := range s.hardpoints {
		w := h.Weapon()
		if w == nil || w.IsSpecial() {
			continue
		}
		if r := w.Range(); best == 0 || r < best {
			best = r
		}
	}
	return best
}

func (e *Engagement) collectBatch() {
	e.projectiles = append(e.projectiles, e.batch.Projectiles...)
	e.summary.Visuals += len(e.batch.Visuals)
	e.summary.Sounds += len(e.batch.Sounds)
	e.batch.Reset()
}

func (e *Engagement) moveProjectiles() {
	live := e.projectiles[:0]
	for _, p := range e.projectiles {
		if p.IsDead() {
			continue
		}
		p.Move()
		e.resolveHit(p)
		if !p.IsDead() {
			live = append(live, p)
		}
	}
	clear(e.projectiles[len(live):])
	e.projectiles = live
}

func (e *Engagement) resolveHit(p *hardpoint.Projectile) {
	team := ownerTeam(p)
	for _, s := range e.ships {
		if s.destroyed || s.team == team {
			continue
		}
		if p.Position().Distance(s.position) > s.Radius() {
			continue
		}
		w := p.Weapon()
		damage := s.TakeHit(w)
		p.Kill()
		e.summary.Hits++
		hardpoint.EmitEffects(&e.batch, w.HitEffects, p.Position(), s.velocity, p.Angle())

		var shooter string
		if owner, ok := p.Owner().(*Ship); ok {
			shooter = owner.name
		}
		e.publish(CommandHit, core.HitEvent{
			Tick:      e.tick,
			Time:      e.now(),
			Shooter:   shooter,
			Victim:    s.name,
			Weapon:    w.Name,
			Position:  p.Position(),
			Damage:    damage,
			HullLeft:  s.hull,
			Destroyed: s.destroyed,
		})
		if s.destroyed {
			e.summary.Destroyed = append(e.summary.Destroyed, s.name)
			e.flotsam = append(e.flotsam, dropFlotsam(s)...)
			e.logger.Info("Ship destroyed", "ship", s.name, "by", shooter, "tick", e.tick)
		}
		return
	}
}

func (e *Engagement) moveFlotsam() {
	live := e.flotsam[:0]
	for _, f := range e.flotsam {
		f.step()
		for _, s := range e.ships {
			if !s.destroyed && s.position.Distance(f.position) <= s.Radius() {
				s.AddAmmo(f.outfit, f.count)
				f.collected = true
				break
			}
		}
		if !f.gone() {
			live = append(live, f)
		}
	}
	clear(e.flotsam[len(live):])
	e.flotsam = live
}
