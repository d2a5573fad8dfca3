package system

import (
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/logging"
	"github.com/rs/zerolog"
)

// TelemetrySystem accumulates per-vehicle stats and logs them every interval
// frames. Vehicle events are logged at debug level as they happen.
type TelemetrySystem struct {
	interval uint64
	dt       float64
	log      zerolog.Logger
}

func NewTelemetrySystem(interval uint64, dt float64) *TelemetrySystem {
	return &TelemetrySystem{interval: interval, dt: dt, log: logging.For("telemetry")}
}

func (s *TelemetrySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for _, evt := range w.Events().Pending() {
		ve, ok := evt.Data.(ecs.VehicleEvent)
		if evt.Type != ecs.VehicleEventType || !ok {
			continue
		}
		s.log.Debug().Str("entity", ve.Entity.String()).Str("event", string(ve.Kind)).Uint64("frame", w.Frame()).Msg("vehicle event")
	}

	ecs.ForEach2(w, component.VehicleComponent, component.TelemetryComponent, func(e ecs.Entity, v *component.Vehicle, t *component.Telemetry) {
		if v.State == nil {
			return
		}
		r := v.State.LastReport
		t.Frames++
		if r.Grounded == 0 {
			t.Airborne++
		}
		if r.Clamped {
			t.Clamped++
		}
		t.Discarded += r.Discarded
		if r.HorizontalSpeed > t.TopSpeed {
			t.TopSpeed = r.HorizontalSpeed
		}
		t.Distance += r.HorizontalSpeed * s.dt

		if s.interval == 0 || w.Frame()-t.LastReported < s.interval {
			return
		}
		t.LastReported = w.Frame()

		evt := s.log.Info().
			Str("entity", e.String()).
			Str("vehicle", v.Name).
			Uint64("frame", w.Frame()).
			Int("grounded", r.Grounded).
			Float64("speed", r.HorizontalSpeed).
			Float64("top_speed", t.TopSpeed).
			Float64("distance", t.Distance).
			Float64("steer", r.Steer).
			Int("airborne_frames", t.Airborne).
			Int("clamped_frames", t.Clamped)
		if pos, ok := ecs.Get(w, e, component.TransformComponent); ok {
			evt = evt.Floats64("position", pos.Position[:])
		}
		if t.Discarded > 0 {
			evt = evt.Int("discarded", t.Discarded)
		}
		evt.Msg("vehicle telemetry")
	})
}
