package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/logging"
	"github.com/rs/zerolog"
)

// DefaultKillHeight is the height below which a vehicle is considered lost.
const DefaultKillHeight = -25.0

// RespawnSystem teleports vehicles that fell off the terrain, or whose body
// state went non-finite, back to their spawn pose.
type RespawnSystem struct {
	killHeight float64
	log        zerolog.Logger
}

func NewRespawnSystem(killHeight float64) *RespawnSystem {
	return &RespawnSystem{killHeight: killHeight, log: logging.For("respawn")}
}

func (s *RespawnSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.PhysicsBodyComponent, component.TransformComponent, func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		body := pb.Body
		if !body.Alive() {
			return
		}
		pos, _ := body.Transform()
		if common.FiniteVec(pos) && common.FiniteVec(body.LinearVelocity()) && common.FiniteVec(body.AngularVelocity()) && pos[1] >= s.killHeight {
			return
		}

		rot := pb.Config.Rotation
		if rot == (mgl64.Quat{}) {
			rot = mgl64.QuatIdent()
		}
		if err := body.SetTransform(pb.Config.Position, rot); err != nil {
			s.log.Error().Err(err).Str("entity", e.String()).Msg("respawn failed")
			return
		}
		body.SetLinearVelocity(mgl64.Vec3{})
		body.SetAngularVelocity(mgl64.Vec3{})
		t.Position, t.Rotation = body.Transform()

		if v, ok := ecs.GetPtr(w, e, component.VehicleComponent); ok {
			v.Grounded = 0
		}
		w.Events().Push(ecs.Event{Type: ecs.VehicleEventType, Data: ecs.VehicleEvent{Entity: e, Kind: ecs.VehicleEventRespawned}})
		s.log.Info().Str("entity", e.String()).Float64("y", pos[1]).Msg("vehicle respawned")
	})
}
