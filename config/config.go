// Package config loads sandbox settings from defaults, an optional config
// file and ARCADECAR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/arcadecar/common"
	"github.com/spf13/viper"
)

const EnvPrefix = "ARCADECAR"

type Settings struct {
	LogLevel string
	LogJSON  bool

	PrefabDir string
	Vehicle   string
	Terrain   string
	// Watch enables hot reload of prefab and script files.
	Watch bool

	TickRate          int
	TelemetryInterval int
	KillHeight        float64

	// Keys rebinds the keyboard, key name to action name. Empty keeps the
	// default WASD and arrow layout. Viper lowercases the key names.
	Keys map[string]string

	// Script drives the vehicle headlessly; empty means keyboard.
	Script string
	Frames int

	WindowWidth  int
	WindowHeight int
	WindowTitle  string
	Scale        float64
	Debug        bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logJSON", false)

	v.SetDefault("prefabs.dir", "prefabs")
	v.SetDefault("prefabs.vehicle", "vehicle.yaml")
	v.SetDefault("prefabs.terrain", "terrain.yaml")
	v.SetDefault("prefabs.watch", true)

	v.SetDefault("sim.tickRate", common.TickRate)
	v.SetDefault("sim.telemetryInterval", 60)
	v.SetDefault("sim.killHeight", -25.0)

	v.SetDefault("headless.script", "figure_eight")
	v.SetDefault("headless.frames", 1800)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "arcadecar")
	v.SetDefault("window.scale", 12.0)
	v.SetDefault("window.debug", true)
}

// New returns a viper instance with defaults and environment bindings.
// Nested keys map to env vars with dots replaced, e.g. sim.tickRate is
// ARCADECAR_SIM_TICKRATE.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path if non-empty, otherwise looks for arcadecar.yaml in the
// working directory. A missing default file is not an error.
func Load(path string) (Settings, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("arcadecar")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Settings, error) {
	s := Settings{
		LogLevel:          v.GetString("logLevel"),
		LogJSON:           v.GetBool("logJSON"),
		PrefabDir:         v.GetString("prefabs.dir"),
		Vehicle:           v.GetString("prefabs.vehicle"),
		Terrain:           v.GetString("prefabs.terrain"),
		Watch:             v.GetBool("prefabs.watch"),
		TickRate:          v.GetInt("sim.tickRate"),
		TelemetryInterval: v.GetInt("sim.telemetryInterval"),
		KillHeight:        v.GetFloat64("sim.killHeight"),
		Keys:              v.GetStringMapString("controls.keys"),
		Script:            v.GetString("headless.script"),
		Frames:            v.GetInt("headless.frames"),
		WindowWidth:       v.GetInt("window.width"),
		WindowHeight:      v.GetInt("window.height"),
		WindowTitle:       v.GetString("window.title"),
		Scale:             v.GetFloat64("window.scale"),
		Debug:             v.GetBool("window.debug"),
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	if s.TickRate <= 0 {
		return fmt.Errorf("config: sim.tickRate must be positive, got %d", s.TickRate)
	}
	if s.TelemetryInterval < 0 {
		return fmt.Errorf("config: sim.telemetryInterval must not be negative, got %d", s.TelemetryInterval)
	}
	if s.Frames < 0 {
		return fmt.Errorf("config: headless.frames must not be negative, got %d", s.Frames)
	}
	if s.Vehicle == "" || s.Terrain == "" {
		return fmt.Errorf("config: prefabs.vehicle and prefabs.terrain are required")
	}
	if s.WindowWidth <= 0 || s.WindowHeight <= 0 {
		return fmt.Errorf("config: window size must be positive, got %dx%d", s.WindowWidth, s.WindowHeight)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("config: window.scale must be positive, got %v", s.Scale)
	}
	return nil
}

// Dt is the fixed frame step.
func (s Settings) Dt() float64 {
	return 1 / float64(s.TickRate)
}
