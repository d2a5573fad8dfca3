package vehicle

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

const testDt = 1.0 / 60

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func scenarioParams() Params {
	p := DefaultParams()
	p.Suspension = SuspensionParams{RestLength: 0.45, Stiffness: 8, Damping: 1.8, MaxForce: 80, RaySlack: 0.35}
	return p
}

func newTestState(t *testing.T, body Body, caster RayCaster, p Params) *State {
	t.Helper()
	s, err := New(body, caster, p, DefaultMounts())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSuspensionForce(t *testing.T) {
	p := scenarioParams().Suspension
	cases := []struct {
		name     string
		distance float64
		closing  float64
		want     float64
	}{
		{"scenario_at_rest", 0.40, 0, 0.4},
		{"closing_adds_damping", 0.40, 1, 0.4 + 1.8},
		{"extension_is_not_damped", 0.40, -2, 0.4},
		{"beyond_rest_length", 0.60, 0, 0},
		{"clamped_to_max_force", 0, 100, 80},
		{"exactly_rest_length", 0.45, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SuspensionForce(p, c.distance, c.closing)
			if !near(got, c.want, 1e-9) {
				t.Fatalf("SuspensionForce(%v, %v) = %v, want %v", c.distance, c.closing, got, c.want)
			}
		})
	}
}

func TestStepScenarioCompression(t *testing.T) {
	body := newFakeBody()
	s := newTestState(t, body, &fakeCaster{dist: 0.40}, scenarioParams())

	Step(s, ControlState{}, testDt)

	for i, w := range s.Samples {
		if !w.Contact {
			t.Fatalf("wheel %d: expected contact", i)
		}
		if !near(w.Compression, 0.05, 1e-9) {
			t.Fatalf("wheel %d: compression = %v, want 0.05", i, w.Compression)
		}
		if !near(w.SuspensionForce, 0.4, 1e-9) {
			t.Fatalf("wheel %d: force = %v, want 0.4", i, w.SuspensionForce)
		}
	}
	if len(body.impulses) != WheelCount {
		t.Fatalf("expected %d suspension impulses, got %d", WheelCount, len(body.impulses))
	}
	for _, imp := range body.impulses {
		want := mgl64.Vec3{0, 0.4 * testDt, 0}
		if !imp.j.ApproxEqualThreshold(want, 1e-12) {
			t.Fatalf("impulse = %v, want %v", imp.j, want)
		}
	}
	if s.LastReport.Grounded != WheelCount {
		t.Fatalf("grounded = %d, want %d", s.LastReport.Grounded, WheelCount)
	}
}

func TestStepPassesSelfAsExclude(t *testing.T) {
	body := newFakeBody()
	caster := &fakeCaster{dist: 0.4}
	s := newTestState(t, body, caster, DefaultParams())
	Step(s, ControlState{}, testDt)
	if caster.calls != WheelCount {
		t.Fatalf("expected %d ray casts, got %d", WheelCount, caster.calls)
	}
	if caster.excluded != Body(body) {
		t.Fatalf("ray cast should exclude the vehicle body")
	}
}

func TestStepDiscardsOutOfRangeHits(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name string
		dist float64
	}{
		{"negative", -0.1},
		{"beyond_probe", p.Suspension.RestLength + p.Suspension.RaySlack + 0.01},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := newFakeBody()
			s := newTestState(t, body, &fakeCaster{dist: c.dist}, p)
			Step(s, ControlState{Forward: true}, testDt)
			if s.LastReport.Grounded != 0 {
				t.Fatalf("grounded = %d, want 0", s.LastReport.Grounded)
			}
			if len(body.impulses) != 0 {
				t.Fatalf("expected no impulses, got %d", len(body.impulses))
			}
		})
	}
}

func TestSpeedClamp(t *testing.T) {
	cases := []struct {
		name        string
		vel         mgl64.Vec3
		wantClamped bool
	}{
		{"over_limit", mgl64.Vec3{30, 5, -40}, true},
		{"under_limit", mgl64.Vec3{3, -2, 4}, false},
		{"vertical_only", mgl64.Vec3{0, -50, 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := newFakeBody()
			body.vel = c.vel
			s := newTestState(t, body, missCaster(), DefaultParams())
			max := s.Params().Drive.MaxSpeed

			Step(s, ControlState{}, testDt)

			h := math.Hypot(body.vel[0], body.vel[2])
			if h > max+1e-9 {
				t.Fatalf("horizontal speed %v exceeds max %v", h, max)
			}
			if body.vel[1] != c.vel[1] {
				t.Fatalf("vertical velocity changed: %v -> %v", c.vel[1], body.vel[1])
			}
			if s.LastReport.Clamped != c.wantClamped {
				t.Fatalf("clamped = %v, want %v", s.LastReport.Clamped, c.wantClamped)
			}
			if c.wantClamped {
				if !near(h, max, 1e-9) {
					t.Fatalf("clamped speed = %v, want %v", h, max)
				}
				// Direction is preserved.
				if !near(body.vel[0]/body.vel[2], c.vel[0]/c.vel[2], 1e-9) {
					t.Fatalf("clamp changed direction: %v -> %v", c.vel, body.vel)
				}
			} else if body.setVel != 0 {
				t.Fatalf("velocity should not be rewritten under the limit")
			}
		})
	}
}

func TestClampHorizontal(t *testing.T) {
	v, ok := ClampHorizontal(mgl64.Vec3{6, 1, 8}, 5)
	if !ok {
		t.Fatalf("expected clamp")
	}
	if !v.ApproxEqualThreshold(mgl64.Vec3{3, 1, 4}, 1e-12) {
		t.Fatalf("ClampHorizontal = %v, want [3 1 4]", v)
	}
	if _, ok := ClampHorizontal(mgl64.Vec3{3, 0, 4}, 5); ok {
		t.Fatalf("speed exactly at the limit should not clamp")
	}
}

func TestSymmetryAtRest(t *testing.T) {
	body := newFakeBody()
	s := newTestState(t, body, &fakeCaster{dist: 0.38}, DefaultParams())

	Step(s, ControlState{}, testDt)

	pairs := [][2]int{{FrontLeft, FrontRight}, {RearLeft, RearRight}}
	for _, p := range pairs {
		a, b := s.Samples[p[0]].SuspensionForce, s.Samples[p[1]].SuspensionForce
		if a == 0 || !near(a, b, 1e-12) {
			t.Fatalf("pair %v: forces %v and %v should be equal and non-zero", p, a, b)
		}
	}
	if tq := body.netTorque(); tq.Len() > 1e-12 {
		t.Fatalf("net torque = %v, want zero", tq)
	}
	if len(body.torques) != 0 {
		t.Fatalf("no steering torque expected, got %v", body.torques)
	}
}

func TestAirborneNoOp(t *testing.T) {
	body := newFakeBody()
	// Sideways drift that would trigger correction on the ground.
	body.vel = mgl64.Vec3{2, -1, -3}
	s := newTestState(t, body, missCaster(), DefaultParams())

	Step(s, ControlState{Forward: true}, testDt)

	if len(body.impulses) != 0 {
		t.Fatalf("airborne frame applied %d impulses: %+v", len(body.impulses), body.impulses)
	}
	for i, w := range s.Samples {
		if w.Contact || w.SuspensionForce != 0 {
			t.Fatalf("wheel %d: unexpected contact sample %+v", i, w)
		}
	}
	if s.LastReport.Traction == 0 {
		t.Fatalf("traction force should still be reported")
	}
}

func TestAirborneCentralizedTraction(t *testing.T) {
	p := DefaultParams()
	p.Drive.Traction = TractionCentralized
	body := newFakeBody()
	s := newTestState(t, body, missCaster(), p)
	Step(s, ControlState{Forward: true}, testDt)
	if len(body.impulses) != 0 {
		t.Fatalf("centralized traction must not push while airborne")
	}
}

func TestSteeringSign(t *testing.T) {
	cases := []struct {
		name     string
		controls ControlState
		sign     float64
	}{
		{"left", ControlState{Left: true}, 1},
		{"right", ControlState{Right: true}, -1},
		{"both", ControlState{Left: true, Right: true}, 0},
		{"none", ControlState{}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := newFakeBody()
			s := newTestState(t, body, &fakeCaster{dist: 0.38}, DefaultParams())
			Step(s, c.controls, testDt)

			if c.sign == 0 {
				if len(body.torques) != 0 {
					t.Fatalf("expected no torque, got %v", body.torques)
				}
				if s.Steer != 0 {
					t.Fatalf("steer = %v, want 0", s.Steer)
				}
				return
			}
			if len(body.torques) != 1 {
				t.Fatalf("expected one torque impulse, got %d", len(body.torques))
			}
			tq := body.torques[0]
			if tq[1]*c.sign <= 0 {
				t.Fatalf("torque %v has wrong sign, want sign %v about Y", tq, c.sign)
			}
			if tq[0] != 0 || tq[2] != 0 {
				t.Fatalf("upright body should only yaw, got %v", tq)
			}
			want := c.sign * s.Params().Drive.SteerAngleMax
			if s.Steer != want {
				t.Fatalf("steer = %v, want %v", s.Steer, want)
			}
		})
	}
}

func TestSteeringAttenuatesWithSpeed(t *testing.T) {
	d := DefaultParams().Drive
	if got := SpeedFactor(d, 0); got != 1 {
		t.Fatalf("SpeedFactor at rest = %v, want 1", got)
	}
	if got := SpeedFactor(d, 5); !near(got, 1-5*d.SpeedAttenuation, 1e-12) {
		t.Fatalf("SpeedFactor(5) = %v", got)
	}
	if got := SpeedFactor(d, 1000); got != d.MinSpeedFactor {
		t.Fatalf("SpeedFactor floor = %v, want %v", got, d.MinSpeedFactor)
	}

	slow, fast := newFakeBody(), newFakeBody()
	fast.vel = mgl64.Vec3{0, 0, -10}
	for _, b := range []*fakeBody{slow, fast} {
		s := newTestState(t, b, missCaster(), DefaultParams())
		Step(s, ControlState{Left: true}, testDt)
	}
	if fast.torques[0][1] >= slow.torques[0][1] {
		t.Fatalf("fast torque %v should be weaker than slow torque %v", fast.torques[0], slow.torques[0])
	}
}

func TestTractionForce(t *testing.T) {
	d := DefaultParams().Drive
	cases := []struct {
		name     string
		controls ControlState
		want     float64
	}{
		{"forward", ControlState{Forward: true}, d.EngineForce},
		{"backward", ControlState{Backward: true}, -d.ReverseForce - d.BrakeForce*d.BrakeShare},
		{"both_forward_wins", ControlState{Forward: true, Backward: true}, d.EngineForce},
		{"coast", ControlState{}, 0},
		{"steer_only", ControlState{Left: true}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := TractionForce(d, c.controls); got != c.want {
				t.Fatalf("TractionForce = %v, want %v", got, c.want)
			}
		})
	}
}

func TestTractionOnlyAtGroundedDrivenWheels(t *testing.T) {
	body := newFakeBody()
	mounts := DefaultMounts()
	rearLeft := body.pos.Add(mounts[RearLeft].Offset)
	caster := &fakeCaster{dist: 0.5, hit: func(o mgl64.Vec3) bool {
		return o.ApproxEqualThreshold(rearLeft, 1e-9)
	}}
	p := DefaultParams()
	// Probe hits past the rest length: contact without suspension force.
	s := newTestState(t, body, caster, p)

	Step(s, ControlState{Forward: true}, testDt)

	if len(body.impulses) != 1 {
		t.Fatalf("expected one traction impulse, got %d: %+v", len(body.impulses), body.impulses)
	}
	imp := body.impulses[0]
	want := mgl64.Vec3{0, 0, -p.Drive.EngineForce / 2 * testDt}
	if !imp.j.ApproxEqualThreshold(want, 1e-12) {
		t.Fatalf("traction impulse = %v, want %v", imp.j, want)
	}
	if !imp.point.ApproxEqualThreshold(s.Samples[RearLeft].ContactPoint, 1e-12) {
		t.Fatalf("traction applied at %v, want contact point %v", imp.point, s.Samples[RearLeft].ContactPoint)
	}
}

func TestTractionFollowsHeading(t *testing.T) {
	body := newFakeBody()
	// Yawed a quarter turn left: forward is -X.
	body.rot = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	p := DefaultParams()
	p.Drive.Traction = TractionCentralized
	s := newTestState(t, body, &fakeCaster{dist: 0.6}, p)

	Step(s, ControlState{Backward: true}, testDt)

	if len(body.impulses) != 1 || !body.impulses[0].atCtr {
		t.Fatalf("expected one centre impulse, got %+v", body.impulses)
	}
	j := body.impulses[0].j
	if j[0] <= 0 || !near(j[1], 0, 1e-12) || !near(j[2], 0, 1e-9) {
		t.Fatalf("reverse impulse %v should point +X", j)
	}
}

func TestDriftCorrection(t *testing.T) {
	body := newFakeBody()
	body.vel = mgl64.Vec3{3, 0, 0}
	p := DefaultParams()
	s := newTestState(t, body, &fakeCaster{dist: 0.6}, p)

	Step(s, ControlState{}, testDt)

	corr := LateralCorrection(p.Drive, 3)
	if corr != -p.Drive.MaxLateralCorrection {
		t.Fatalf("correction = %v, want clamp at %v", corr, -p.Drive.MaxLateralCorrection)
	}
	want := mgl64.Vec3{corr * p.Drive.CorrectionFactor * testDt, 0, 0}
	got := 0
	for _, imp := range body.impulses {
		if !imp.j.ApproxEqualThreshold(want, 1e-12) {
			t.Fatalf("drift impulse = %v, want %v", imp.j, want)
		}
		got++
	}
	if got != 2 {
		t.Fatalf("expected correction on the 2 rear wheels, got %d", got)
	}
	for _, i := range []int{RearLeft, RearRight} {
		found := false
		for _, imp := range body.impulses {
			if imp.point.ApproxEqualThreshold(s.Samples[i].Origin, 1e-12) {
				found = true
			}
		}
		if !found {
			t.Fatalf("no correction at wheel %d origin", i)
		}
	}
}

func TestLateralCorrectionUnclamped(t *testing.T) {
	d := DefaultParams().Drive
	if got := LateralCorrection(d, -0.5); !near(got, 0.5*d.LateralGrip, 1e-12) {
		t.Fatalf("LateralCorrection(-0.5) = %v", got)
	}
	if got := LateralCorrection(d, 0); got != 0 {
		t.Fatalf("LateralCorrection(0) = %v", got)
	}
}

func TestWheelVisuals(t *testing.T) {
	body := newFakeBody()
	body.vel = mgl64.Vec3{0, 0, -5}
	s := newTestState(t, body, missCaster(), DefaultParams())

	Step(s, ControlState{Left: true}, testDt)

	mounts := s.Mounts()
	for i, v := range s.Visuals {
		if !v.Position.ApproxEqualThreshold(body.pos.Add(mounts[i].Offset), 1e-12) {
			t.Fatalf("wheel %d position = %v", i, v.Position)
		}
		wantRoll := 5 * testDt / mounts[i].Radius
		if !near(v.Roll, wantRoll, 1e-12) {
			t.Fatalf("wheel %d roll = %v, want %v", i, v.Roll, wantRoll)
		}
		wantYaw := 0.0
		if mounts[i].Steered {
			wantYaw = s.Steer
		}
		if v.Yaw != wantYaw {
			t.Fatalf("wheel %d yaw = %v, want %v", i, v.Yaw, wantYaw)
		}
		if !near(v.Rotation.Len(), 1, 1e-9) {
			t.Fatalf("wheel %d rotation not normalized: %v", i, v.Rotation)
		}
	}
}

func TestWheelRollWraps(t *testing.T) {
	body := newFakeBody()
	body.vel = mgl64.Vec3{0, 0, -18}
	s := newTestState(t, body, missCaster(), DefaultParams())
	for i := 0; i < 600; i++ {
		Step(s, ControlState{}, testDt)
	}
	for i, v := range s.Visuals {
		if math.Abs(v.Roll) > math.Pi+1e-9 {
			t.Fatalf("wheel %d roll %v escaped [-pi, pi]", i, v.Roll)
		}
	}
}

func TestStepNoOps(t *testing.T) {
	cases := []struct {
		name  string
		setup func() (*State, *fakeBody)
		dt    float64
	}{
		{"nil_state", func() (*State, *fakeBody) { return nil, nil }, testDt},
		{"zero_dt", func() (*State, *fakeBody) {
			b := newFakeBody()
			return newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams()), b
		}, 0},
		{"nan_dt", func() (*State, *fakeBody) {
			b := newFakeBody()
			return newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams()), b
		}, math.NaN()},
		{"detached", func() (*State, *fakeBody) {
			b := newFakeBody()
			s := newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams())
			s.Detach()
			return s, b
		}, testDt},
		{"dead_body", func() (*State, *fakeBody) {
			b := newFakeBody()
			s := newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams())
			b.dead = true
			return s, b
		}, testDt},
		{"zero_rotation", func() (*State, *fakeBody) {
			b := newFakeBody()
			s := newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams())
			b.rot = mgl64.Quat{}
			return s, b
		}, testDt},
		{"nan_position", func() (*State, *fakeBody) {
			b := newFakeBody()
			s := newTestState(t, b, &fakeCaster{dist: 0.4}, DefaultParams())
			b.pos = mgl64.Vec3{math.NaN(), 0, 0}
			return s, b
		}, testDt},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, b := c.setup()
			Step(s, ControlState{Forward: true, Left: true}, c.dt)
			if s != nil && s.Frame != 0 {
				t.Fatalf("frame advanced to %d", s.Frame)
			}
			if b != nil && (len(b.impulses) != 0 || len(b.torques) != 0) {
				t.Fatalf("no-op frame touched the body")
			}
		})
	}
}

func TestNewValidates(t *testing.T) {
	badMounts := DefaultMounts()
	badMounts[RearRight].Radius = 0
	nanMounts := DefaultMounts()
	nanMounts[FrontLeft].Offset = mgl64.Vec3{math.NaN(), 0, 0}
	badParams := DefaultParams()
	badParams.Drive.MaxSpeed = 0

	cases := []struct {
		name   string
		body   Body
		params Params
		mounts [WheelCount]WheelMount
		want   error
	}{
		{"nil_body", nil, DefaultParams(), DefaultMounts(), ErrNilBody},
		{"bad_radius", newFakeBody(), DefaultParams(), badMounts, ErrInvalidParams},
		{"nan_offset", newFakeBody(), DefaultParams(), nanMounts, ErrInvalidParams},
		{"bad_params", newFakeBody(), badParams, DefaultMounts(), ErrInvalidParams},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.body, missCaster(), c.params, c.mounts)
			if !errors.Is(err, c.want) {
				t.Fatalf("New error = %v, want %v", err, c.want)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(*Params) {}, true},
		{"negative_stiffness", func(p *Params) { p.Suspension.Stiffness = -1 }, false},
		{"zero_rest_length", func(p *Params) { p.Suspension.RestLength = 0 }, false},
		{"nan_grip", func(p *Params) { p.Drive.LateralGrip = math.NaN() }, false},
		{"min_factor_above_one", func(p *Params) { p.Drive.MinSpeedFactor = 1.5 }, false},
		{"correction_above_one", func(p *Params) { p.Drive.CorrectionFactor = 2 }, false},
		{"unknown_traction", func(p *Params) { p.Drive.Traction = "awd" }, false},
		{"centralized", func(p *Params) { p.Drive.Traction = TractionCentralized }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := DefaultParams()
			c.mutate(&p)
			err := p.Validate()
			if c.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestStepDiscardsNonFiniteImpulses(t *testing.T) {
	extreme := scenarioParams()
	extreme.Drive.SteerAngleMax = 1e308
	extreme.Drive.SteerTorqueGain = 1e308
	extreme.Drive.EngineForce = 1e308
	extreme.Suspension.MaxForce = 1e308
	extreme.Suspension.Stiffness = 1e308

	tests := []struct {
		name          string
		params        Params
		wantDiscarded bool
	}{
		{"overflowing_steer_torque", extreme, true},
		{"default_tuning", scenarioParams(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := newFakeBody()
			s := newTestState(t, body, &fakeCaster{dist: 0.40}, tc.params)

			Step(s, ControlState{Forward: true, Left: true}, testDt)

			if got := s.LastReport.Discarded > 0; got != tc.wantDiscarded {
				t.Fatalf("discarded = %d, want discards %v", s.LastReport.Discarded, tc.wantDiscarded)
			}
			if tc.wantDiscarded && len(body.torques) != 0 {
				t.Fatalf("overflowing torque reached the body: %v", body.torques)
			}
			for i, imp := range body.impulses {
				if !common.FiniteVec(imp.j) || !common.FiniteVec(imp.point) {
					t.Fatalf("impulse %d is not finite: %+v", i, imp)
				}
			}
			for i, tq := range body.torques {
				if !common.FiniteVec(tq) {
					t.Fatalf("torque %d is not finite: %v", i, tq)
				}
			}
			if len(body.impulses) == 0 {
				t.Fatalf("finite impulses should still be applied")
			}
		})
	}
}

func TestSuspensionDampsMotionTowardGround(t *testing.T) {
	tests := []struct {
		name string
		vy   float64
		want float64
	}{
		{"falling_is_damped", -1, 0.4 + 1.8},
		{"rising_is_not_damped", 1, 0.4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := newFakeBody()
			body.vel = mgl64.Vec3{0, tc.vy, 0}
			s := newTestState(t, body, &fakeCaster{dist: 0.40}, scenarioParams())

			Step(s, ControlState{}, testDt)

			for i, w := range s.Samples {
				if !near(w.SuspensionForce, tc.want, 1e-9) {
					t.Fatalf("wheel %d force = %v, want %v", i, w.SuspensionForce, tc.want)
				}
			}
			if len(body.impulses) != WheelCount {
				t.Fatalf("expected %d suspension impulses, got %d", WheelCount, len(body.impulses))
			}
			for i, imp := range body.impulses {
				if !near(imp.j[1], tc.want*testDt, 1e-12) {
					t.Fatalf("impulse %d = %v, want up %v", i, imp.j, tc.want*testDt)
				}
			}
		})
	}
}
