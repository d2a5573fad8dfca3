package common

import "github.com/go-gl/mathgl/mgl64"

const (
	// Gravity is the magnitude of world gravity along -Y, in m/s².
	Gravity = 9.81

	// TickRate is the default fixed simulation rate in frames per second.
	TickRate = 60
)

// World axes. Vehicles face -Z.
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Down    = mgl64.Vec3{0, -1, 0}
	Forward = mgl64.Vec3{0, 0, -1}
	Right   = mgl64.Vec3{1, 0, 0}
)
