package vehicle

import "github.com/go-gl/mathgl/mgl64"

type recordedImpulse struct {
	j      mgl64.Vec3
	point  mgl64.Vec3
	atCtr  bool
}

// fakeBody applies linear impulses to its velocity immediately and records
// everything it is asked to do.
type fakeBody struct {
	pos  mgl64.Vec3
	rot  mgl64.Quat
	vel  mgl64.Vec3
	mass float64
	dead bool

	impulses []recordedImpulse
	torques  []mgl64.Vec3
	setVel   int
}

func newFakeBody() *fakeBody {
	return &fakeBody{pos: mgl64.Vec3{0, 1, 0}, rot: mgl64.QuatIdent(), mass: 1.8}
}

func (b *fakeBody) Transform() (mgl64.Vec3, mgl64.Quat) { return b.pos, b.rot }
func (b *fakeBody) LinearVelocity() mgl64.Vec3          { return b.vel }
func (b *fakeBody) Alive() bool                         { return !b.dead }

func (b *fakeBody) SetLinearVelocity(v mgl64.Vec3) {
	b.setVel++
	b.vel = v
}

func (b *fakeBody) ApplyImpulse(j mgl64.Vec3) {
	b.impulses = append(b.impulses, recordedImpulse{j: j, atCtr: true})
	b.vel = b.vel.Add(j.Mul(1 / b.mass))
}

func (b *fakeBody) ApplyImpulseAtPoint(j, point mgl64.Vec3) {
	b.impulses = append(b.impulses, recordedImpulse{j: j, point: point})
	b.vel = b.vel.Add(j.Mul(1 / b.mass))
}

func (b *fakeBody) ApplyTorqueImpulse(t mgl64.Vec3) {
	b.torques = append(b.torques, t)
}

// netTorque sums r x j about the body centre plus pure torque impulses.
func (b *fakeBody) netTorque() mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, imp := range b.impulses {
		if imp.atCtr {
			continue
		}
		sum = sum.Add(imp.point.Sub(b.pos).Cross(imp.j))
	}
	for _, t := range b.torques {
		sum = sum.Add(t)
	}
	return sum
}

// fakeCaster reports a fixed distance, optionally only for some origins.
type fakeCaster struct {
	dist  float64
	hit   func(origin mgl64.Vec3) bool
	calls int
	// excluded records the exclude argument of the last call.
	excluded Body
}

func (c *fakeCaster) CastRay(origin, dir mgl64.Vec3, maxDist float64, exclude Body) (float64, bool) {
	c.calls++
	c.excluded = exclude
	if c.hit != nil && !c.hit(origin) {
		return 0, false
	}
	return c.dist, true
}

func missCaster() *fakeCaster {
	return &fakeCaster{hit: func(mgl64.Vec3) bool { return false }}
}
