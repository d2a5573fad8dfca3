// Package sim assembles the ECS world, physics world and systems shared by
// the windowed sandbox and the headless runner.
package sim

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/config"
	"github.com/milk9111/arcadecar/controls"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/ecs/entity"
	"github.com/milk9111/arcadecar/ecs/system"
	"github.com/milk9111/arcadecar/logging"
	"github.com/milk9111/arcadecar/physics"
	"github.com/milk9111/arcadecar/prefabs"
	"github.com/rs/zerolog"
)

type Options struct {
	Settings config.Settings
	// KeyState feeds keyboard drivers. Nil disables keyboard input.
	KeyState system.KeyState
	// Script drives the vehicle instead of the keyboard when set.
	Script string
}

type Sim struct {
	World   *ecs.World
	Physics *physics.World
	Vehicle ecs.Entity
	Camera  ecs.Entity

	scheduler *ecs.Scheduler
	watcher   *prefabs.Watcher
	log       zerolog.Logger
}

func New(opts Options) (*Sim, error) {
	cfg := opts.Settings
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.For("sim")
	if cfg.PrefabDir != "" {
		prefabs.DiskRoot = cfg.PrefabDir
	}

	pw := physics.NewWorld()
	terrain, err := prefabs.LoadTerrainSpec(cfg.Terrain)
	if err != nil {
		return nil, err
	}
	if err := terrain.Build(pw); err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	w.SetPhysicsWorld(pw)

	keys, err := controls.ParseKeyMap(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Sim{World: w, Physics: pw, log: log}
	s.Vehicle, err = entity.NewVehicle(w, entity.VehicleOptions{Prefab: cfg.Vehicle, Script: opts.Script, Keys: keys})
	if err != nil {
		return nil, fmt.Errorf("sim: spawn vehicle: %w", err)
	}

	s.Camera = w.CreateEntity()
	if err := ecs.Add(w, s.Camera, component.CameraComponent, component.Camera{
		Target:    uint64(s.Vehicle),
		Offset:    mgl64.Vec3{0, 1.5, 5},
		Smoothing: 0.1,
	}); err != nil {
		return nil, fmt.Errorf("sim: add camera: %w", err)
	}

	var source system.ChangeSource
	if cfg.Watch {
		if watcher, err := prefabs.NewWatcher(prefabs.DiskRoot, filepath.Join(prefabs.DiskRoot, "scripts")); err != nil {
			log.Warn().Err(err).Str("dir", prefabs.DiskRoot).Msg("prefab hot reload disabled")
		} else {
			s.watcher = watcher
			source = watcher
		}
	}

	dt := cfg.Dt()
	s.scheduler = ecs.NewScheduler(
		system.NewInputSystem(opts.KeyState),
		system.NewScriptDriverSystem(dt),
		system.NewVehicleSystem(dt),
		system.NewPhysicsSystem(dt),
		system.NewRespawnSystem(cfg.KillHeight),
		system.NewTuningSystem(source, cfg.Terrain),
		system.NewCameraSystem(),
		system.NewTelemetrySystem(uint64(cfg.TelemetryInterval), dt),
	)

	log.Info().
		Str("vehicle", cfg.Vehicle).
		Str("terrain", terrain.Name).
		Str("script", opts.Script).
		Int("tick_rate", cfg.TickRate).
		Bool("watch", s.watcher != nil).
		Msg("sim ready")
	return s, nil
}

// Update advances one fixed frame.
func (s *Sim) Update() {
	if s == nil {
		return
	}
	if s.watcher != nil {
		select {
		case err, ok := <-s.watcher.Errors:
			if ok {
				s.log.Warn().Err(err).Msg("prefab watcher")
			}
		default:
		}
	}
	s.scheduler.Update(s.World)
}

func (s *Sim) Log() *zerolog.Logger {
	return &s.log
}

func (s *Sim) Close() error {
	if s == nil || s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
