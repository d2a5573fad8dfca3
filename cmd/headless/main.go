// Command headless drives the vehicle with a script for a fixed number of
// frames and logs telemetry. It never opens a window.
package main

import (
	"flag"
	"os"

	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/config"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/logging"
	"github.com/milk9111/arcadecar/sim"
)

func main() {
	configPath := flag.String("config", "", "config file (default ./arcadecar.yaml if present)")
	script := flag.String("script", "", "driver script name (overrides headless.script)")
	frames := flag.Int("frames", -1, "frames to simulate (overrides headless.frames)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logging.Logger()
		log.Fatal().Err(err).Msg("load config")
	}
	if *script != "" {
		cfg.Script = *script
	}
	if *frames >= 0 {
		cfg.Frames = *frames
	}
	// Nothing edits prefabs during a batch run.
	cfg.Watch = false

	log := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogJSON)

	s, err := sim.New(sim.Options{Settings: cfg, Script: cfg.Script})
	if err != nil {
		log.Fatal().Err(err).Msg("start sim")
	}
	defer s.Close()

	landings := 0
	for i := 0; i < cfg.Frames; i++ {
		s.Update()
		for _, evt := range s.World.LastEvents() {
			if ve, ok := evt.Data.(ecs.VehicleEvent); ok && ve.Kind == ecs.VehicleEventLanded {
				landings++
			}
		}
	}

	t, _ := ecs.Get(s.World, s.Vehicle, component.TelemetryComponent)
	tr, _ := ecs.Get(s.World, s.Vehicle, component.TransformComponent)
	log.Info().
		Int("frames", cfg.Frames).
		Str("script", cfg.Script).
		Float64("top_speed", t.TopSpeed).
		Float64("distance", t.Distance).
		Int("airborne_frames", t.Airborne).
		Int("clamped_frames", t.Clamped).
		Int("landings", landings).
		Float64("final_height", tr.Position[1]).
		Bool("final_pose_finite", common.FiniteVec(tr.Position)).
		Msg("run complete")
}
