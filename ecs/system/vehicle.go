package system

import (
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/vehicle"
)

// VehicleSystem runs one vehicle frame per entity and publishes the results
// for rendering. It must run before the physics step so the impulses it
// submits are integrated the same frame.
type VehicleSystem struct {
	dt float64
}

func NewVehicleSystem(dt float64) *VehicleSystem {
	return &VehicleSystem{dt: dt}
}

func (s *VehicleSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.VehicleComponent, component.ControlComponent, func(e ecs.Entity, v *component.Vehicle, c *component.Control) {
		if v.State == nil {
			return
		}
		before := v.State.Frame
		vehicle.Step(v.State, c.State, s.dt)
		if v.State.Frame == before {
			return
		}

		grounded := v.State.LastReport.Grounded
		switch {
		case v.Grounded == 0 && grounded > 0:
			w.Events().Push(ecs.Event{Type: ecs.VehicleEventType, Data: ecs.VehicleEvent{Entity: e, Kind: ecs.VehicleEventLanded}})
		case v.Grounded > 0 && grounded == 0:
			w.Events().Push(ecs.Event{Type: ecs.VehicleEventType, Data: ecs.VehicleEvent{Entity: e, Kind: ecs.VehicleEventAirborne}})
		}
		v.Grounded = grounded

		if wv, ok := ecs.GetPtr(w, e, component.WheelVisualsComponent); ok {
			wv.Wheels = v.State.Visuals
			for i, sample := range v.State.Samples {
				wv.Contact[i] = sample.Contact
			}
		}
	})
}
