package component

import "github.com/milk9111/arcadecar/vehicle"

// Vehicle holds the raycast vehicle state driven each frame.
type Vehicle struct {
	Name  string
	State *vehicle.State
	// Grounded is the wheel contact count seen at the end of the last frame.
	Grounded int
}

var VehicleComponent = NewComponent[Vehicle]()
