package component

import "github.com/go-gl/mathgl/mgl64"

// Camera trails a target entity from behind and above.
type Camera struct {
	// Target is an ecs.Entity; zero follows the first vehicle.
	Target   uint64
	Position mgl64.Vec3
	LookAt   mgl64.Vec3
	// Offset is relative to the target position in world space.
	Offset mgl64.Vec3
	// Smoothing is the lerp factor applied each frame, in (0, 1].
	Smoothing float64
	Snapped   bool
}

var CameraComponent = NewComponent[Camera]()
