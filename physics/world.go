// Package physics is a small rigid-body world the vehicle core drives. Ground
// is a side profile of Chipmunk segments in the XY plane, extruded along Z.
package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/logging"
	"github.com/milk9111/arcadecar/vehicle"
	"github.com/rs/zerolog"
)

var (
	_ vehicle.Body      = (*Body)(nil)
	_ vehicle.RayCaster = (*World)(nil)
)

const (
	contactSlop       = 0.005
	contactCorrection = 0.8
)

// World owns the terrain profile and every dynamic body.
type World struct {
	space   *cp.Space
	gravity mgl64.Vec3
	// depth bounds the terrain along Z; zero means unbounded.
	depth float64

	ground []*cp.Shape
	bodies []*Body
	nextID int

	log zerolog.Logger
}

// NewWorld creates an empty world with standard gravity.
func NewWorld() *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: -common.Gravity})
	return &World{
		space:   space,
		gravity: mgl64.Vec3{0, -common.Gravity, 0},
		log:     logging.For("physics"),
	}
}

// Space returns the Chipmunk space holding the terrain.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

func (w *World) SetGravity(g mgl64.Vec3) {
	if w == nil || !common.FiniteVec(g) {
		return
	}
	w.gravity = g
	w.space.SetGravity(cp.Vector{X: g[0], Y: g[1]})
}

// SetTerrainDepth limits terrain hits to |z| <= depth. Zero removes the limit.
func (w *World) SetTerrainDepth(depth float64) {
	if w == nil || depth < 0 || !common.Finite(depth) {
		return
	}
	w.depth = depth
}

// AddGround adds a polyline of ground segments given as (x, y) points.
func (w *World) AddGround(points []cp.Vector, friction float64) error {
	if w == nil || w.space == nil {
		return fmt.Errorf("physics: add ground: nil world")
	}
	if len(points) < 2 {
		return fmt.Errorf("physics: add ground: need at least 2 points, got %d", len(points))
	}
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		if a == b {
			continue
		}
		shape := cp.NewSegment(w.space.StaticBody, a, b, 0)
		shape.SetFriction(friction)
		w.space.AddShape(shape)
		w.ground = append(w.ground, shape)
	}
	w.log.Debug().Int("points", len(points)).Msg("ground added")
	return nil
}

// ClearGround removes every terrain segment.
func (w *World) ClearGround() {
	if w == nil || w.space == nil {
		return
	}
	for _, shape := range w.ground {
		w.space.RemoveShape(shape)
	}
	w.log.Debug().Int("segments", len(w.ground)).Msg("ground cleared")
	w.ground = nil
}

// GroundSegments returns the number of terrain segments.
func (w *World) GroundSegments() int {
	if w == nil {
		return 0
	}
	return len(w.ground)
}

// AddBody creates a dynamic box body.
func (w *World) AddBody(cfg BodyConfig) (*Body, error) {
	if w == nil {
		return nil, fmt.Errorf("physics: add body: nil world")
	}
	w.nextID++
	b, err := newBody(w.nextID, cfg)
	if err != nil {
		return nil, fmt.Errorf("physics: add body: %w", err)
	}
	w.bodies = append(w.bodies, b)
	w.log.Debug().Int("body", b.id).Float64("mass", cfg.Mass).Msg("body added")
	return b, nil
}

// RemoveBody destroys b. Later calls on b are no-ops.
func (w *World) RemoveBody(b *Body) {
	if w == nil || b == nil {
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.alive = false
	w.log.Debug().Int("body", b.id).Msg("body removed")
}

// Bodies returns the live bodies in creation order.
func (w *World) Bodies() []*Body {
	if w == nil {
		return nil
	}
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Step advances every body by dt and resolves chassis contact with the
// ground.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 || !common.Finite(dt) {
		return
	}
	for _, b := range w.bodies {
		if !b.alive {
			continue
		}
		b.integrate(w.gravity, dt)
		w.resolveGround(b)
	}
}

// CastRay returns the distance to the first terrain or body hit along dir.
// exclude is skipped.
func (w *World) CastRay(origin, dir mgl64.Vec3, maxDist float64, exclude vehicle.Body) (float64, bool) {
	if w == nil || !common.FiniteVec(origin) || !common.FiniteVec(dir) || !common.Finite(maxDist) || maxDist <= 0 {
		return 0, false
	}
	l := dir.Len()
	if l < 1e-12 {
		return 0, false
	}
	dir = dir.Mul(1 / l)

	best, hit := maxDist, false
	if t, ok := w.castTerrain(origin, dir, maxDist); ok && t <= best {
		best, hit = t, true
	}
	for _, b := range w.bodies {
		if !b.alive || (exclude != nil && exclude == vehicle.Body(b)) {
			continue
		}
		if t, ok := b.rayHit(origin, dir, best); ok && t <= best {
			best, hit = t, true
		}
	}
	return best, hit
}

func (w *World) castTerrain(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	if w.space == nil || math.Hypot(dir[0], dir[1]) < 1e-12 {
		return 0, false
	}
	start := cp.Vector{X: origin[0], Y: origin[1]}
	end := cp.Vector{X: origin[0] + dir[0]*maxDist, Y: origin[1] + dir[1]*maxDist}
	info := w.space.SegmentQueryFirst(start, end, 0, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return 0, false
	}
	t := info.Alpha * maxDist
	if w.depth > 0 && math.Abs(origin[2]+dir[2]*t) > w.depth {
		return 0, false
	}
	return t, true
}

// GroundHeight samples the terrain surface below (x, fromY).
func (w *World) GroundHeight(x, fromY, depth float64) (float64, bool) {
	if w == nil || w.space == nil {
		return 0, false
	}
	start := cp.Vector{X: x, Y: fromY}
	end := cp.Vector{X: x, Y: fromY - depth}
	info := w.space.SegmentQueryFirst(start, end, 0, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return 0, false
	}
	return info.Point.Y, true
}

// resolveGround pushes box corners that sank below the terrain back out and
// removes their into-ground velocity.
func (w *World) resolveGround(b *Body) {
	deepest := 0.0
	var deepestNormal mgl64.Vec3
	for _, c := range b.corners() {
		if c[1] >= b.position[1] {
			continue
		}
		if w.depth > 0 && math.Abs(c[2]) > w.depth {
			continue
		}
		start := cp.Vector{X: c[0], Y: b.position[1]}
		end := cp.Vector{X: c[0], Y: c[1]}
		info := w.space.SegmentQueryFirst(start, end, 0, cp.SHAPE_FILTER_ALL)
		if info.Shape == nil {
			continue
		}
		n := mgl64.Vec3{info.Normal.X, info.Normal.Y, 0}
		if n.Len() < 1e-9 {
			n = common.Up
		}
		n = n.Normalize()
		penetration := info.Point.Y - c[1]
		if penetration > deepest {
			deepest = penetration
			deepestNormal = n
		}
		b.resolveContact(c, n)
	}
	if deepest > contactSlop {
		b.position = b.position.Add(deepestNormal.Mul((deepest - contactSlop) * contactCorrection))
	}
}

// resolveContact applies a normal impulse that stops the point moving into
// the ground, plus Coulomb-clamped friction.
func (b *Body) resolveContact(point, n mgl64.Vec3) {
	r := point.Sub(b.position)
	vp := b.PointVelocity(point)
	vn := vp.Dot(n)
	if vn >= 0 {
		return
	}
	k := b.invMass + b.applyInvInertia(r.Cross(n)).Cross(r).Dot(n)
	if k <= 0 {
		return
	}
	jn := -vn / k
	b.ApplyImpulseAtPoint(n.Mul(jn), point)

	vt := vp.Sub(n.Mul(vn))
	speed := vt.Len()
	if speed < 1e-9 || b.friction == 0 {
		return
	}
	t := vt.Mul(1 / speed)
	kt := b.invMass + b.applyInvInertia(r.Cross(t)).Cross(r).Dot(t)
	if kt <= 0 {
		return
	}
	jt := math.Min(speed/kt, b.friction*jn)
	b.ApplyImpulseAtPoint(t.Mul(-jt), point)
}
