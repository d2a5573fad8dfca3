package ecs

import (
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/physics"
)

// World owns entities, their components and shared resources.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue
	// lastEvents are the events of the most recently completed frame.
	lastEvents []Event

	physics *physics.World
	frame   uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity drops e and all its components. It reports whether e was
// alive.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	for _, set := range w.stores {
		set.Remove(e)
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns every live entity.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.alive()
}

// AddComponent stores value for e, replacing any previous value of the same
// kind.
func (w *World) AddComponent(e Entity, id component.ComponentID, value any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	set, ok := w.stores[id]
	if !ok {
		set = &SparseSet{}
		w.stores[id] = set
	}
	set.Set(e, value)
	return nil
}

func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	v := w.stores[id].Get(e)
	return v, v != nil
}

func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	return w != nil && w.stores[id].Has(e)
}

func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	return w != nil && w.stores[id].Remove(e)
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// LastEvents returns the events pushed during the last completed frame.
func (w *World) LastEvents() []Event {
	if w == nil {
		return nil
	}
	return w.lastEvents
}

// SetPhysicsWorld attaches a physics world to this ECS world.
func (w *World) SetPhysicsWorld(pw *physics.World) {
	if w == nil {
		return
	}
	w.physics = pw
}

// PhysicsWorld returns the attached physics world, if any.
func (w *World) PhysicsWorld() *physics.World {
	if w == nil {
		return nil
	}
	return w.physics
}

// Frame is the number of completed scheduler updates.
func (w *World) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}
