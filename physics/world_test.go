package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arcadecar/vehicle"
)

const testDt = 1.0 / 60

func flatWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld()
	w.SetTerrainDepth(50)
	if err := w.AddGround([]cp.Vector{{X: -50, Y: 0}, {X: 50, Y: 0}}, 0.9); err != nil {
		t.Fatalf("AddGround: %v", err)
	}
	return w
}

func bodyAt(t *testing.T, w *World, pos mgl64.Vec3) *Body {
	t.Helper()
	cfg := DefaultBodyConfig()
	cfg.Position = pos
	b, err := w.AddBody(cfg)
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	return b
}

func TestAddGroundRejectsShortProfiles(t *testing.T) {
	w := NewWorld()
	if err := w.AddGround([]cp.Vector{{X: 0, Y: 0}}, 1); err == nil {
		t.Fatalf("expected error for a single point")
	}
	if err := w.AddGround([]cp.Vector{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}}, 1); err != nil {
		t.Fatalf("AddGround: %v", err)
	}
	if got := w.GroundSegments(); got != 1 {
		t.Fatalf("duplicate points should be skipped, got %d segments", got)
	}
	w.ClearGround()
	if got := w.GroundSegments(); got != 0 {
		t.Fatalf("ClearGround left %d segments", got)
	}
	if _, ok := w.CastRay(mgl64.Vec3{0.5, 1, 0}, mgl64.Vec3{0, -1, 0}, 5, nil); ok {
		t.Fatalf("cleared ground should not be hit")
	}
}

func TestAddBodyValidates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BodyConfig)
	}{
		{"zero_mass", func(c *BodyConfig) { c.Mass = 0 }},
		{"nan_mass", func(c *BodyConfig) { c.Mass = math.NaN() }},
		{"flat_box", func(c *BodyConfig) { c.HalfExtents[1] = 0 }},
		{"negative_damping", func(c *BodyConfig) { c.LinearDamping = -1 }},
		{"nan_position", func(c *BodyConfig) { c.Position[0] = math.Inf(1) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultBodyConfig()
			c.mutate(&cfg)
			if _, err := NewWorld().AddBody(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCastRayTerrain(t *testing.T) {
	w := flatWorld(t)
	cases := []struct {
		name    string
		origin  mgl64.Vec3
		maxDist float64
		want    float64
		hit     bool
	}{
		{"straight_down", mgl64.Vec3{3, 2, 4}, 5, 2, true},
		{"too_short", mgl64.Vec3{3, 2, 4}, 1.5, 0, false},
		{"outside_depth", mgl64.Vec3{3, 2, 80}, 5, 0, false},
		{"past_profile_end", mgl64.Vec3{60, 2, 0}, 5, 0, false},
		{"below_ground", mgl64.Vec3{0, -1, 0}, 5, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, ok := w.CastRay(c.origin, mgl64.Vec3{0, -1, 0}, c.maxDist, nil)
			if ok != c.hit {
				t.Fatalf("hit = %v, want %v (d=%v)", ok, c.hit, d)
			}
			if ok && math.Abs(d-c.want) > 1e-9 {
				t.Fatalf("distance = %v, want %v", d, c.want)
			}
		})
	}
}

func TestCastRayBodiesAndExclude(t *testing.T) {
	w := flatWorld(t)
	target := bodyAt(t, w, mgl64.Vec3{0, 5, 0})
	origin := mgl64.Vec3{0, 10, 0}
	down := mgl64.Vec3{0, -1, 0}

	d, ok := w.CastRay(origin, down, 20, nil)
	if !ok || math.Abs(d-(10-5-0.3)) > 1e-9 {
		t.Fatalf("expected hit on box top at 4.7, got %v %v", d, ok)
	}

	d, ok = w.CastRay(origin, down, 20, target)
	if !ok || math.Abs(d-10) > 1e-9 {
		t.Fatalf("excluded body should be skipped, got %v %v", d, ok)
	}

	w.RemoveBody(target)
	if target.Alive() {
		t.Fatalf("removed body should not be alive")
	}
	if d, ok = w.CastRay(origin, down, 20, nil); !ok || math.Abs(d-10) > 1e-9 {
		t.Fatalf("removed body should not be hit, got %v %v", d, ok)
	}
}

func TestCastRayRejectsBadInput(t *testing.T) {
	w := flatWorld(t)
	cases := []struct {
		name    string
		origin  mgl64.Vec3
		dir     mgl64.Vec3
		maxDist float64
	}{
		{"zero_dir", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 5},
		{"nan_origin", mgl64.Vec3{math.NaN(), 1, 0}, mgl64.Vec3{0, -1, 0}, 5},
		{"zero_dist", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, ok := w.CastRay(c.origin, c.dir, c.maxDist, nil); ok {
				t.Fatalf("expected miss")
			}
		})
	}
}

func TestImpulses(t *testing.T) {
	w := NewWorld()
	b := bodyAt(t, w, mgl64.Vec3{})

	b.ApplyImpulse(mgl64.Vec3{1.8, 0, 0})
	if v := b.LinearVelocity(); math.Abs(v[0]-1) > 1e-12 {
		t.Fatalf("impulse should change velocity by j/m immediately, got %v", v)
	}

	b.SetLinearVelocity(mgl64.Vec3{})
	b.ApplyImpulseAtPoint(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0.5, 0, 0})
	if av := b.AngularVelocity(); av[2] <= 0 {
		t.Fatalf("upward push right of centre should spin +Z, got %v", av)
	}

	before := b.LinearVelocity()
	b.ApplyImpulse(mgl64.Vec3{math.NaN(), 0, 0})
	b.ApplyTorqueImpulse(mgl64.Vec3{0, math.Inf(1), 0})
	if b.LinearVelocity() != before {
		t.Fatalf("non-finite impulse must be ignored")
	}

	if err := b.SetTransform(mgl64.Vec3{}, mgl64.Quat{}); !errors.Is(err, ErrInvalidTransform) {
		t.Fatalf("zero quaternion should be rejected, got %v", err)
	}
	if err := b.SetTransform(mgl64.Vec3{1, 2, 3}, mgl64.Quat{W: 2}); err != nil {
		t.Fatalf("SetTransform: %v", err)
	}
	if _, rot := b.Transform(); math.Abs(rot.Len()-1) > 1e-12 {
		t.Fatalf("rotation should be normalized, got %v", rot)
	}
}

func TestBoxRestsOnGround(t *testing.T) {
	w := flatWorld(t)
	b := bodyAt(t, w, mgl64.Vec3{0, 2, 0})

	for i := 0; i < 600; i++ {
		w.Step(testDt)
	}

	pos, rot := b.Transform()
	if pos[1] < 0.25 || pos[1] > 0.35 {
		t.Fatalf("box should rest on its half height, got y=%v", pos[1])
	}
	if v := b.LinearVelocity(); v.Len() > 0.1 {
		t.Fatalf("box should be at rest, velocity %v", v)
	}
	if up := rot.Rotate(mgl64.Vec3{0, 1, 0}); up[1] < 0.99 {
		t.Fatalf("box should stay upright, up=%v", up)
	}
}

// TestVehicleEquilibrium runs the vehicle on flat ground with no input and
// checks every spring settles where it carries a quarter of the weight.
func TestVehicleEquilibrium(t *testing.T) {
	w := flatWorld(t)
	b := bodyAt(t, w, mgl64.Vec3{0, 0.8, 0})
	params := vehicle.DefaultParams()
	s, err := vehicle.New(b, w, params, vehicle.DefaultMounts())
	if err != nil {
		t.Fatalf("vehicle.New: %v", err)
	}

	const frames = 900
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < frames; i++ {
		vehicle.Step(s, vehicle.ControlState{}, testDt)
		w.Step(testDt)
		if i >= frames-120 {
			y, _ := b.Transform()
			minY = math.Min(minY, y[1])
			maxY = math.Max(maxY, y[1])
		}
	}

	if maxY-minY > 0.01 {
		t.Fatalf("vehicle still oscillating: y in [%v, %v]", minY, maxY)
	}
	want := b.Mass() * 9.81 / (4 * params.Suspension.Stiffness)
	for i, sample := range s.Samples {
		if !sample.Contact {
			t.Fatalf("wheel %d lost contact", i)
		}
		if math.Abs(sample.Compression-want) > 0.01 {
			t.Fatalf("wheel %d compression = %v, want about %v", i, sample.Compression, want)
		}
	}
	if v := b.LinearVelocity(); math.Abs(v[1]) > 0.05 {
		t.Fatalf("vertical velocity %v should have settled", v[1])
	}
}

func TestVehicleDrivesForward(t *testing.T) {
	w := flatWorld(t)
	b := bodyAt(t, w, mgl64.Vec3{0, 0.7, 0})
	s, err := vehicle.New(b, w, vehicle.DefaultParams(), vehicle.DefaultMounts())
	if err != nil {
		t.Fatalf("vehicle.New: %v", err)
	}
	for i := 0; i < 120; i++ {
		vehicle.Step(s, vehicle.ControlState{}, testDt)
		w.Step(testDt)
	}
	start, _ := b.Transform()
	for i := 0; i < 180; i++ {
		vehicle.Step(s, vehicle.ControlState{Forward: true}, testDt)
		w.Step(testDt)
	}
	end, _ := b.Transform()
	if end[2] >= start[2]-1 {
		t.Fatalf("vehicle should move toward -Z, z %v -> %v", start[2], end[2])
	}
	if s.LastReport.HorizontalSpeed > s.Params().Drive.MaxSpeed+1e-9 {
		t.Fatalf("speed %v above max", s.LastReport.HorizontalSpeed)
	}
}
