package system

import (
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/controls"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/logging"
	"github.com/milk9111/arcadecar/vehicle"
	"github.com/rs/zerolog"
)

// ScriptDriverSystem runs tengo driver scripts. A failing script releases
// every control for that frame.
type ScriptDriverSystem struct {
	dt  float64
	log zerolog.Logger
	// failed keeps one error log per script until it recovers.
	failed map[ecs.Entity]bool
}

func NewScriptDriverSystem(dt float64) *ScriptDriverSystem {
	return &ScriptDriverSystem{
		dt:     dt,
		log:    logging.For("script_driver"),
		failed: make(map[ecs.Entity]bool),
	}
}

func (s *ScriptDriverSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.DriverComponent, component.ControlComponent, func(e ecs.Entity, d *component.Driver, c *component.Control) {
		if d.Kind != component.DriverScript || d.Script == nil {
			return
		}
		ctx := s.context(w, e)
		state, err := d.Script.Update(ctx)
		if err != nil {
			if !s.failed[e] {
				s.log.Error().Err(err).Str("entity", e.String()).Str("script", d.Script.Name()).Msg("driver script failed")
			}
			s.failed[e] = true
			c.State = vehicle.ControlState{}
			return
		}
		if s.failed[e] {
			s.log.Info().Str("entity", e.String()).Str("script", d.Script.Name()).Msg("driver script recovered")
			delete(s.failed, e)
		}
		c.State = state
	})
}

func (s *ScriptDriverSystem) context(w *ecs.World, e ecs.Entity) controls.ScriptContext {
	ctx := controls.ScriptContext{Frame: w.Frame(), Time: float64(w.Frame()) * s.dt}
	v, ok := ecs.Get(w, e, component.VehicleComponent)
	if !ok || v.State == nil || v.State.Body == nil {
		return ctx
	}
	_, rot := v.State.Body.Transform()
	vel := v.State.Body.LinearVelocity()
	ctx.Speed = common.HorizontalSpeed(vel)
	ctx.ForwardSpeed = vel.Dot(rot.Rotate(common.Forward))
	ctx.MaxSpeed = v.State.Params().Drive.MaxSpeed
	ctx.Grounded = v.Grounded
	return ctx
}
