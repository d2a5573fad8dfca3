package controls

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/arcadecar/prefabs"
	"github.com/milk9111/arcadecar/vehicle"
)

const scriptDispatch = `
__result := update(__ctx)
`

// ScriptContext is what a driver script sees each frame as ctx.
type ScriptContext struct {
	Frame        uint64
	Time         float64
	Speed        float64
	ForwardSpeed float64
	MaxSpeed     float64
	Grounded     int
}

// ScriptDriver runs a tengo script exposing update(ctx) and reads back a
// {forward, backward, left, right} map. ctx.state persists between frames.
type ScriptDriver struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// LoadScriptDriver compiles a script from prefabs/scripts.
func LoadScriptDriver(name string) (*ScriptDriver, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("controls: load script %s: %w", name, err)
	}
	return NewScriptDriver(name, src)
}

func NewScriptDriver(name string, src []byte) (*ScriptDriver, error) {
	script := tengo.NewScript(append(append([]byte(nil), src...), scriptDispatch...))
	if err := script.Add("__ctx", map[string]any{}); err != nil {
		return nil, fmt.Errorf("controls: script %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("controls: compile script %s: %w", name, err)
	}
	return &ScriptDriver{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (d *ScriptDriver) Name() string {
	return d.name
}

// Update runs one frame of the script.
func (d *ScriptDriver) Update(ctx ScriptContext) (vehicle.ControlState, error) {
	if d == nil || d.compiled == nil {
		return vehicle.ControlState{}, fmt.Errorf("controls: nil script driver")
	}
	obj := &tengo.Map{Value: map[string]tengo.Object{
		"frame":         &tengo.Int{Value: int64(ctx.Frame)},
		"time":          &tengo.Float{Value: ctx.Time},
		"speed":         &tengo.Float{Value: ctx.Speed},
		"forward_speed": &tengo.Float{Value: ctx.ForwardSpeed},
		"max_speed":     &tengo.Float{Value: ctx.MaxSpeed},
		"grounded":      &tengo.Int{Value: int64(ctx.Grounded)},
		"state":         d.state,
	}}
	if err := d.compiled.Set("__ctx", obj); err != nil {
		return vehicle.ControlState{}, fmt.Errorf("controls: script %s: %w", d.name, err)
	}
	if err := d.compiled.Run(); err != nil {
		return vehicle.ControlState{}, fmt.Errorf("controls: run script %s: %w", d.name, err)
	}

	result := d.compiled.Get("__result").Map()
	if result == nil {
		return vehicle.ControlState{}, fmt.Errorf("controls: script %s: update must return a map", d.name)
	}
	return vehicle.ControlState{
		Forward:  asBool(result["forward"]),
		Backward: asBool(result["backward"]),
		Left:     asBool(result["left"]),
		Right:    asBool(result["right"]),
	}, nil
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
