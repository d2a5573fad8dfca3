package vehicle

import "github.com/go-gl/mathgl/mgl64"

// Body is the rigid body a vehicle drives. The physics engine owns it; the
// vehicle only reads its state and submits impulses.
type Body interface {
	Transform() (mgl64.Vec3, mgl64.Quat)
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3)
	ApplyImpulse(j mgl64.Vec3)
	ApplyImpulseAtPoint(j, point mgl64.Vec3)
	ApplyTorqueImpulse(t mgl64.Vec3)
}

// RayCaster finds the first hit along a ray. The returned distance is the
// time of impact along dir (dir is unit length). exclude, when non-nil, is
// skipped by the hit test.
type RayCaster interface {
	CastRay(origin, dir mgl64.Vec3, maxDist float64, exclude Body) (float64, bool)
}

// ControlState is a snapshot of the driver's four buttons.
type ControlState struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

// Any reports whether at least one control is asserted.
func (c ControlState) Any() bool {
	return c.Forward || c.Backward || c.Left || c.Right
}

// WheelMount is a wheel's fixed attachment on the chassis.
type WheelMount struct {
	Name    string
	Offset  mgl64.Vec3
	Radius  float64
	Driven  bool
	Steered bool
	// Corrected wheels receive lateral anti-drift impulses.
	Corrected bool
}

// Wheel indices for the default four-wheel layout.
const (
	FrontLeft = iota
	FrontRight
	RearLeft
	RearRight

	WheelCount
)

const defaultWheelRadius = 0.35

// DefaultMounts returns the arcade layout: steered front axle at -Z, driven
// and drift-corrected rear axle at +Z.
func DefaultMounts() [WheelCount]WheelMount {
	return [WheelCount]WheelMount{
		FrontLeft:  {Name: "front_left", Offset: mgl64.Vec3{-0.9, -0.25, -1.1}, Radius: defaultWheelRadius, Steered: true},
		FrontRight: {Name: "front_right", Offset: mgl64.Vec3{0.9, -0.25, -1.1}, Radius: defaultWheelRadius, Steered: true},
		RearLeft:   {Name: "rear_left", Offset: mgl64.Vec3{-0.9, -0.25, 1.1}, Radius: defaultWheelRadius, Driven: true, Corrected: true},
		RearRight:  {Name: "rear_right", Offset: mgl64.Vec3{0.9, -0.25, 1.1}, Radius: defaultWheelRadius, Driven: true, Corrected: true},
	}
}

// WheelSample is what one wheel probe found this frame. It is rebuilt every
// frame and never carried over.
type WheelSample struct {
	Origin       mgl64.Vec3
	Distance     float64
	Contact      bool
	Compression  float64
	ContactPoint mgl64.Vec3

	SuspensionForce float64
}

// WheelVisual is the derived render transform of a wheel proxy.
type WheelVisual struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	// Roll accumulates rolling rotation around the axle, in radians.
	Roll float64
	Yaw  float64
}

// Report carries per-frame diagnostics.
type Report struct {
	Grounded        int
	HorizontalSpeed float64
	Steer           float64
	SpeedFactor     float64
	Traction        float64
	Clamped         bool
	// Discarded counts impulses dropped for containing non-finite values.
	Discarded int
}
