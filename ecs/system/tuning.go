package system

import (
	"math"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/controls"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/ecs/entity"
	"github.com/milk9111/arcadecar/logging"
	"github.com/milk9111/arcadecar/prefabs"
	"github.com/rs/zerolog"
)

// ChangeSource yields edited prefab files. *prefabs.Watcher satisfies it.
type ChangeSource interface {
	Poll() []prefabs.Change
}

// TuningSystem applies edited prefabs at the frame boundary. Vehicles are
// rebuilt in place with their new tuning, terrain is rebuilt and scripts are
// recompiled. A file that fails to load leaves the running state untouched.
type TuningSystem struct {
	source  ChangeSource
	terrain string
	log     zerolog.Logger
}

func NewTuningSystem(source ChangeSource, terrain string) *TuningSystem {
	if terrain == "" {
		terrain = prefabs.TerrainSpecFile
	}
	return &TuningSystem{source: source, terrain: terrain, log: logging.For("tuning")}
}

func (s *TuningSystem) Update(w *ecs.World) {
	if w == nil || s.source == nil {
		return
	}

	seen := make(map[string]bool)
	for _, change := range s.source.Poll() {
		if seen[change.Name] {
			continue
		}
		seen[change.Name] = true

		switch {
		case change.Script:
			s.reloadScript(w, change.Name)
		case change.Name == s.terrain:
			s.reloadTerrain(w)
		default:
			s.reloadVehicles(w, change.Name)
		}
	}
}

func (s *TuningSystem) reloadScript(w *ecs.World, name string) {
	key := scriptKey(name)
	ecs.ForEach(w, component.DriverComponent, func(e ecs.Entity, d *component.Driver) {
		if d.Kind != component.DriverScript || scriptKey(d.ScriptName) != key {
			return
		}
		script, err := controls.LoadScriptDriver(d.ScriptName)
		if err != nil {
			s.log.Error().Err(err).Str("script", name).Msg("script reload failed")
			return
		}
		d.Script = script
		s.log.Info().Str("entity", e.String()).Str("script", name).Msg("script reloaded")
	})
}

func (s *TuningSystem) reloadTerrain(w *ecs.World) {
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	spec, err := prefabs.LoadTerrainSpec(s.terrain)
	if err != nil {
		s.log.Error().Err(err).Str("prefab", s.terrain).Msg("terrain reload failed")
		return
	}
	pw.ClearGround()
	if err := spec.Build(pw); err != nil {
		s.log.Error().Err(err).Str("prefab", s.terrain).Msg("terrain rebuild failed")
		return
	}
	s.log.Info().Str("prefab", s.terrain).Int("segments", pw.GroundSegments()).Msg("terrain reloaded")
}

func (s *TuningSystem) reloadVehicles(w *ecs.World, name string) {
	var targets []ecs.Entity
	ecs.ForEach(w, component.TuningComponent, func(e ecs.Entity, t *component.Tuning) {
		if t.Prefab == name {
			targets = append(targets, e)
		}
	})
	if len(targets) == 0 {
		return
	}

	spec, err := prefabs.LoadVehicleSpec(name)
	if err != nil {
		s.log.Error().Err(err).Str("prefab", name).Msg("vehicle reload failed")
		return
	}

	for _, e := range targets {
		prev, hasPose := ecs.Get(w, e, component.TransformComponent)
		if err := entity.BuildVehicle(w, e, name, spec); err != nil {
			s.log.Error().Err(err).Str("entity", e.String()).Str("prefab", name).Msg("vehicle rebuild failed")
			continue
		}
		if hasPose && common.FiniteVec(prev.Position) {
			s.keepPose(w, e, prev)
		}
		w.Events().Push(ecs.Event{Type: ecs.VehicleEventType, Data: ecs.VehicleEvent{Entity: e, Kind: ecs.VehicleEventRespawned}})
		s.log.Info().Str("entity", e.String()).Str("prefab", name).Msg("vehicle retuned")
	}
}

// keepPose moves a rebuilt body to where the old one was, upright with the
// same heading and a little higher so the new suspension settles instead of
// starting loaded. The spawn point stays the prefab's.
func (s *TuningSystem) keepPose(w *ecs.World, e ecs.Entity, prev component.Transform) {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
	if !ok {
		return
	}
	rot := mgl64.QuatIdent()
	f := prev.Rotation.Rotate(common.Forward)
	if math.Hypot(f[0], f[2]) > 1e-6 {
		rot = mgl64.QuatRotate(math.Atan2(-f[0], -f[2]), common.Up)
	}
	pos := prev.Position.Add(common.Up.Mul(0.5))
	if err := pb.Body.SetTransform(pos, rot); err != nil {
		s.log.Warn().Err(err).Str("entity", e.String()).Msg("keep pose")
		return
	}
	if t, ok := ecs.GetPtr(w, e, component.TransformComponent); ok {
		t.Position, t.Rotation = pos, rot
	}
}

func scriptKey(name string) string {
	return strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), ".tengo")
}
