package entity

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/controls"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/prefabs"
	"github.com/milk9111/arcadecar/vehicle"
)

var ErrNoPhysicsWorld = errors.New("entity: world has no physics world")

// VehicleOptions selects the prefab and the driver of a new vehicle.
type VehicleOptions struct {
	// Prefab defaults to prefabs.VehicleSpecFile.
	Prefab string
	// Script, when set, drives the vehicle from prefabs/scripts instead of
	// the keyboard.
	Script string
	Keys   controls.KeyMap
	// Spawn overrides the prefab spawn point when non-nil.
	Spawn *mgl64.Vec3
}

func NewVehicle(w *ecs.World, opts VehicleOptions) (ecs.Entity, error) {
	if opts.Prefab == "" {
		opts.Prefab = prefabs.VehicleSpecFile
	}
	spec, err := prefabs.LoadVehicleSpec(opts.Prefab)
	if err != nil {
		return 0, err
	}

	driver := component.Driver{Kind: component.DriverKeyboard}
	if opts.Script != "" {
		script, err := controls.LoadScriptDriver(opts.Script)
		if err != nil {
			return 0, err
		}
		driver = component.Driver{Kind: component.DriverScript, Script: script, ScriptName: opts.Script}
	} else {
		driver.Keyboard = controls.NewKeyboard(opts.Keys, nil)
	}

	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.DriverComponent, driver); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("vehicle: add driver: %w", err)
	}
	if err := ecs.Add(w, e, component.ControlComponent, component.Control{}); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("vehicle: add control: %w", err)
	}
	if err := ecs.Add(w, e, component.TelemetryComponent, component.Telemetry{}); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("vehicle: add telemetry: %w", err)
	}
	if opts.Spawn != nil {
		spec.Body.Spawn = prefabs.YAMLVec3(*opts.Spawn)
	}
	if err := BuildVehicle(w, e, opts.Prefab, spec); err != nil {
		w.DestroyEntity(e)
		return 0, err
	}
	return e, nil
}

// BuildVehicle creates the body and vehicle state for e from spec. Any body
// e already owns is removed first, so this is also the respawn path.
func BuildVehicle(w *ecs.World, e ecs.Entity, prefab string, spec prefabs.VehicleSpec) error {
	pw := w.PhysicsWorld()
	if pw == nil {
		return ErrNoPhysicsWorld
	}
	mounts, err := spec.Mounts()
	if err != nil {
		return err
	}
	cfg := spec.BodyConfig()

	body, err := pw.AddBody(cfg)
	if err != nil {
		return fmt.Errorf("vehicle %q: %w", spec.Name, err)
	}
	state, err := vehicle.New(body, pw, spec.Params(), mounts)
	if err != nil {
		pw.RemoveBody(body)
		return fmt.Errorf("vehicle %q: %w", spec.Name, err)
	}

	revision := 0
	if old, ok := ecs.Get(w, e, component.TuningComponent); ok {
		revision = old.Revision + 1
	}
	releaseVehicle(w, e)

	pos, rot := body.Transform()
	var radius [vehicle.WheelCount]float64
	for i, m := range mounts {
		radius[i] = m.Radius
	}
	adds := []func() error{
		func() error {
			return ecs.Add(w, e, component.VehicleComponent, component.Vehicle{Name: spec.Name, State: state})
		},
		func() error {
			return ecs.Add(w, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: body, Config: cfg})
		},
		func() error {
			return ecs.Add(w, e, component.TransformComponent, component.Transform{Position: pos, Rotation: rot})
		},
		func() error {
			return ecs.Add(w, e, component.WheelVisualsComponent, component.WheelVisuals{Wheels: state.Visuals, Radius: radius})
		},
		func() error {
			return ecs.Add(w, e, component.TuningComponent, component.Tuning{Prefab: prefab, Color: spec.Color.Color, Revision: revision})
		},
	}
	for _, add := range adds {
		if err := add(); err != nil {
			pw.RemoveBody(body)
			return fmt.Errorf("vehicle %q: %w", spec.Name, err)
		}
	}
	return nil
}

// DestroyVehicle removes e and its body.
func DestroyVehicle(w *ecs.World, e ecs.Entity) bool {
	releaseVehicle(w, e)
	return w.DestroyEntity(e)
}

func releaseVehicle(w *ecs.World, e ecs.Entity) {
	if v, ok := ecs.GetPtr(w, e, component.VehicleComponent); ok && v.State != nil {
		v.State.Detach()
	}
	if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok && pb.Body != nil {
		w.PhysicsWorld().RemoveBody(pb.Body)
	}
}
