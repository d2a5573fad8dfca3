package component

import "github.com/milk9111/arcadecar/vehicle"

// WheelVisuals mirrors the vehicle's wheel poses for rendering.
type WheelVisuals struct {
	Wheels [vehicle.WheelCount]vehicle.WheelVisual
	Radius [vehicle.WheelCount]float64
	// Contact marks wheels whose probe hit ground this frame.
	Contact [vehicle.WheelCount]bool
}

var WheelVisualsComponent = NewComponent[WheelVisuals]()
