package component

import "github.com/milk9111/arcadecar/vehicle"

// Control is the snapshot a driver produced for this frame.
type Control struct {
	State vehicle.ControlState
}

var ControlComponent = NewComponent[Control]()
