package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

var (
	ErrInvalidTransform = errors.New("physics: invalid transform")
	ErrInvalidBody      = errors.New("physics: invalid body config")
)

// BodyConfig describes a box-shaped dynamic body.
type BodyConfig struct {
	Mass           float64
	HalfExtents    mgl64.Vec3
	Position       mgl64.Vec3
	Rotation       mgl64.Quat
	LinearDamping  float64
	AngularDamping float64
	// Friction scales tangential impulses at chassis-ground contacts.
	Friction float64
}

// DefaultBodyConfig is the arcade car chassis.
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		Mass:           1.8,
		HalfExtents:    mgl64.Vec3{0.9, 0.3, 1.6},
		Position:       mgl64.Vec3{0, 8, 0},
		Rotation:       mgl64.QuatIdent(),
		LinearDamping:  0.06,
		AngularDamping: 0.45,
		Friction:       0.8,
	}
}

func (c BodyConfig) validate() error {
	if !common.Finite(c.Mass) || c.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidBody, c.Mass)
	}
	for i := 0; i < 3; i++ {
		if !common.Finite(c.HalfExtents[i]) || c.HalfExtents[i] <= 0 {
			return fmt.Errorf("%w: half extents must be positive, got %v", ErrInvalidBody, c.HalfExtents)
		}
	}
	if c.LinearDamping < 0 || c.AngularDamping < 0 || c.Friction < 0 {
		return fmt.Errorf("%w: damping and friction must be non-negative", ErrInvalidBody)
	}
	return nil
}

// Body is a rigid box. Impulses change its velocity immediately; position and
// orientation only move when the owning World steps.
type Body struct {
	id    int
	alive bool

	mass       float64
	invMass    float64
	invInertia mgl64.Vec3
	half       mgl64.Vec3
	friction   float64

	position mgl64.Vec3
	rotation mgl64.Quat
	linVel   mgl64.Vec3
	angVel   mgl64.Vec3

	linearDamping  float64
	angularDamping float64
}

func newBody(id int, cfg BodyConfig) (*Body, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	h := cfg.HalfExtents
	inertia := mgl64.Vec3{
		cfg.Mass / 3 * (h[1]*h[1] + h[2]*h[2]),
		cfg.Mass / 3 * (h[0]*h[0] + h[2]*h[2]),
		cfg.Mass / 3 * (h[0]*h[0] + h[1]*h[1]),
	}
	b := &Body{
		id:             id,
		alive:          true,
		mass:           cfg.Mass,
		invMass:        1 / cfg.Mass,
		invInertia:     mgl64.Vec3{1 / inertia[0], 1 / inertia[1], 1 / inertia[2]},
		half:           h,
		friction:       cfg.Friction,
		linearDamping:  cfg.LinearDamping,
		angularDamping: cfg.AngularDamping,
	}
	rot := cfg.Rotation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	if err := b.SetTransform(cfg.Position, rot); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Body) ID() int {
	return b.id
}

// Alive reports whether the body is still part of its world.
func (b *Body) Alive() bool {
	return b != nil && b.alive
}

func (b *Body) Mass() float64 {
	return b.mass
}

func (b *Body) HalfExtents() mgl64.Vec3 {
	return b.half
}

func (b *Body) Transform() (mgl64.Vec3, mgl64.Quat) {
	return b.position, b.rotation
}

// SetTransform teleports the body. The rotation is normalized; non-finite
// values or a zero quaternion are rejected.
func (b *Body) SetTransform(pos mgl64.Vec3, rot mgl64.Quat) error {
	if !common.FiniteVec(pos) || !common.FiniteVec(rot.V) || !common.Finite(rot.W) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidTransform)
	}
	l := rot.Len()
	if l < 1e-9 {
		return fmt.Errorf("%w: zero-length rotation", ErrInvalidTransform)
	}
	b.position = pos
	b.rotation = rot.Scale(1 / l)
	return nil
}

func (b *Body) LinearVelocity() mgl64.Vec3 {
	return b.linVel
}

func (b *Body) SetLinearVelocity(v mgl64.Vec3) {
	if !b.alive || !common.FiniteVec(v) {
		return
	}
	b.linVel = v
}

func (b *Body) AngularVelocity() mgl64.Vec3 {
	return b.angVel
}

func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if !b.alive || !common.FiniteVec(w) {
		return
	}
	b.angVel = w
}

// ApplyImpulse pushes the body at its centre of mass.
func (b *Body) ApplyImpulse(j mgl64.Vec3) {
	if !b.alive || !common.FiniteVec(j) {
		return
	}
	b.linVel = b.linVel.Add(j.Mul(b.invMass))
}

// ApplyImpulseAtPoint pushes the body at a world-space point, which also
// spins it about its centre of mass.
func (b *Body) ApplyImpulseAtPoint(j, point mgl64.Vec3) {
	if !b.alive || !common.FiniteVec(j) || !common.FiniteVec(point) {
		return
	}
	b.linVel = b.linVel.Add(j.Mul(b.invMass))
	r := point.Sub(b.position)
	b.angVel = b.angVel.Add(b.applyInvInertia(r.Cross(j)))
}

func (b *Body) ApplyTorqueImpulse(t mgl64.Vec3) {
	if !b.alive || !common.FiniteVec(t) {
		return
	}
	b.angVel = b.angVel.Add(b.applyInvInertia(t))
}

// PointVelocity is the world velocity of a point rigidly attached to the body.
func (b *Body) PointVelocity(point mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(point.Sub(b.position)))
}

// applyInvInertia multiplies a world-space vector by the world inverse
// inertia tensor.
func (b *Body) applyInvInertia(v mgl64.Vec3) mgl64.Vec3 {
	local := b.rotation.Conjugate().Rotate(v)
	local = mgl64.Vec3{local[0] * b.invInertia[0], local[1] * b.invInertia[1], local[2] * b.invInertia[2]}
	return b.rotation.Rotate(local)
}

func (b *Body) integrate(gravity mgl64.Vec3, dt float64) {
	b.linVel = b.linVel.Add(gravity.Mul(dt))
	b.linVel = b.linVel.Mul(1 / (1 + dt*b.linearDamping))
	b.angVel = b.angVel.Mul(1 / (1 + dt*b.angularDamping))

	b.position = b.position.Add(b.linVel.Mul(dt))

	spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(b.rotation).Scale(0.5 * dt)
	b.rotation = b.rotation.Add(spin).Normalize()
}

// corners returns the eight box corners in world space.
func (b *Body) corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{sx * b.half[0], sy * b.half[1], sz * b.half[2]}
				out[i] = b.position.Add(b.rotation.Rotate(local))
				i++
			}
		}
	}
	return out
}

// rayHit intersects a ray with the body's oriented box using the slab test.
// A ray starting inside the box hits at distance 0.
func (b *Body) rayHit(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	inv := b.rotation.Conjugate()
	o := inv.Rotate(origin.Sub(b.position))
	d := inv.Rotate(dir)

	tmin, tmax := 0.0, maxDist
	for i := 0; i < 3; i++ {
		if d[i] > -1e-12 && d[i] < 1e-12 {
			if o[i] < -b.half[i] || o[i] > b.half[i] {
				return 0, false
			}
			continue
		}
		t1 := (-b.half[i] - o[i]) / d[i]
		t2 := (b.half[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
