package system

import (
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
)

// PhysicsSystem steps the physics world and copies body poses into
// Transform components.
type PhysicsSystem struct {
	dt float64
}

func NewPhysicsSystem(dt float64) *PhysicsSystem {
	return &PhysicsSystem{dt: dt}
}

func (p *PhysicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	pw.Step(p.dt)

	ecs.ForEach2(w, component.PhysicsBodyComponent, component.TransformComponent, func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if !pb.Body.Alive() {
			return
		}
		t.Position, t.Rotation = pb.Body.Transform()
	})
}
