package system

import (
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
)

type CameraSystem struct{}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Update eases each camera toward its target's position plus offset and aims
// it just above the target.
func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.CameraComponent, func(_ ecs.Entity, cam *component.Camera) {
		target := ecs.Entity(cam.Target)
		if !w.IsAlive(target) {
			e, ok := w.First(component.VehicleComponent.Kind().ID(), component.TransformComponent.Kind().ID())
			if !ok {
				return
			}
			target = e
			cam.Target = uint64(e)
			cam.Snapped = false
		}
		t, ok := ecs.Get(w, target, component.TransformComponent)
		if !ok || !common.FiniteVec(t.Position) {
			return
		}

		goal := t.Position.Add(cam.Offset)
		cam.LookAt = t.Position.Add(common.Up)
		if !cam.Snapped {
			cam.Position = goal
			cam.Snapped = true
			return
		}
		k := cam.Smoothing
		if k <= 0 || k > 1 {
			k = 1
		}
		for i := 0; i < 3; i++ {
			cam.Position[i] = common.Lerp(cam.Position[i], goal[i], k)
		}
	})
}
