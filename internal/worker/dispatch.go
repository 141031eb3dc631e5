package worker

import (
	"fmt"

	"github.com/starwake/engine/internal/dispatcher"
	"github.com/starwake/engine/internal/sim"
	"github.com/starwake/engine/pkg/core"
)

// Queue sizes per command. Shots dominate the event volume.
const (
	shotBuffer  = 10000
	eventBuffer = 2000
)

// RegisterHandlers registers all event handlers with the dispatcher.
// Buffered handlers block instead of dropping so a recording holds every
// event the engagement produced.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Slots are assigned once per interval - sync
	d.Register(sim.CommandSlot, m.handleSlot, dispatcher.Logged())

	// Combat events - buffered
	d.Register(sim.CommandFired, m.handleShot, dispatcher.Buffered(shotBuffer), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(sim.CommandSpecial, m.handleSpecial, dispatcher.Buffered(eventBuffer), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(sim.CommandJam, m.handleJam, dispatcher.Buffered(eventBuffer), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(sim.CommandHit, m.handleHit, dispatcher.Buffered(eventBuffer), dispatcher.Blocking(), dispatcher.Logged())
}

// payload accepts both T and *T so publishers may send either.
func payload[T any](e dispatcher.Event) (*T, error) {
	switch p := e.Payload.(type) {
	case T:
		return &p, nil
	case *T:
		if p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w %T", e.Command, ErrUnexpectedPayload, e.Payload)
}

func (m *Manager) handleShot(e dispatcher.Event) (any, error) {
	obj, err := payload[core.ShotEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordShot(obj); err != nil {
		return nil, fmt.Errorf("failed to record shot: %w", err)
	}
	m.count(e.Command)
	return nil, nil
}

func (m *Manager) handleSpecial(e dispatcher.Event) (any, error) {
	obj, err := payload[core.SpecialEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordSpecial(obj); err != nil {
		return nil, fmt.Errorf("failed to record special: %w", err)
	}
	m.count(e.Command)
	return nil, nil
}

func (m *Manager) handleJam(e dispatcher.Event) (any, error) {
	obj, err := payload[core.JamEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordJam(obj); err != nil {
		return nil, fmt.Errorf("failed to record jam: %w", err)
	}
	m.count(e.Command)
	return nil, nil
}

func (m *Manager) handleHit(e dispatcher.Event) (any, error) {
	obj, err := payload[core.HitEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordHit(obj); err != nil {
		return nil, fmt.Errorf("failed to record hit: %w", err)
	}
	if obj.Destroyed {
		m.logger.Info("Ship destroyed", "victim", obj.Victim, "shooter", obj.Shooter, "tick", obj.Tick)
	}
	m.count(e.Command)
	return nil, nil
}

func (m *Manager) handleSlot(e dispatcher.Event) (any, error) {
	obj, err := payload[core.SlotEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordSlot(obj); err != nil {
		return nil, fmt.Errorf("failed to record slot: %w", err)
	}
	m.count(e.Command)
	return nil, nil
}
