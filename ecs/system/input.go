package system

import (
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
)

// KeyState reports whether a named key is held this frame.
type KeyState func(key string) bool

// InputSystem feeds keyboard drivers from a KeyState source.
type InputSystem struct {
	isDown KeyState
}

func NewInputSystem(isDown KeyState) *InputSystem {
	return &InputSystem{isDown: isDown}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil || i.isDown == nil {
		return
	}

	ecs.ForEach2(w, component.DriverComponent, component.ControlComponent, func(_ ecs.Entity, d *component.Driver, c *component.Control) {
		if d.Kind != component.DriverKeyboard || d.Keyboard == nil {
			return
		}
		d.Keyboard.Poll(i.isDown)
		c.State = d.Keyboard.Controller().Snapshot()
	})
}
