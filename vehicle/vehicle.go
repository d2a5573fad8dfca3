// Package vehicle implements arcade raycast vehicle dynamics: a per-frame
// update that turns four buttons into impulses on a rigid body owned by an
// external physics engine.
package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

// State is one vehicle: the body it drives, its fixed mounts and tuning, and
// the per-frame results the presentation layer reads.
type State struct {
	Body   Body
	Caster RayCaster

	mounts [WheelCount]WheelMount
	params Params

	Samples [WheelCount]WheelSample
	Visuals [WheelCount]WheelVisual
	Steer   float64

	Frame      uint64
	LastReport Report
}

// New builds a vehicle around body. Mounts and params are copied and never
// change afterwards.
func New(body Body, caster RayCaster, params Params, mounts [WheelCount]WheelMount) (*State, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, m := range mounts {
		if !common.FiniteVec(m.Offset) {
			return nil, fmt.Errorf("%w: mount %d (%s) offset is not finite", ErrInvalidParams, i, m.Name)
		}
		if !common.Finite(m.Radius) || m.Radius <= 0 {
			return nil, fmt.Errorf("%w: mount %d (%s) radius must be positive", ErrInvalidParams, i, m.Name)
		}
	}

	s := &State{
		Body:   body,
		Caster: caster,
		mounts: mounts,
		params: params,
	}
	pos, rot := body.Transform()
	for i, m := range mounts {
		s.Visuals[i] = WheelVisual{Position: pos.Add(rot.Rotate(m.Offset)), Rotation: rot}
	}
	return s, nil
}

// Params returns the vehicle's tuning.
func (s *State) Params() Params {
	return s.params
}

// Mounts returns the vehicle's wheel mounts.
func (s *State) Mounts() [WheelCount]WheelMount {
	return s.mounts
}

// Detach drops the body reference; later frames are no-ops.
func (s *State) Detach() {
	if s == nil {
		return
	}
	s.Body = nil
	s.Samples = [WheelCount]WheelSample{}
}

type aliveChecker interface {
	Alive() bool
}

func (s *State) ready() bool {
	if s == nil || s.Body == nil {
		return false
	}
	if a, ok := s.Body.(aliveChecker); ok && !a.Alive() {
		return false
	}
	return true
}

type frame struct {
	dt  float64
	pos mgl64.Vec3
	rot mgl64.Quat
	vel mgl64.Vec3

	report Report
}

// Step runs one frame of the vehicle pipeline: wheel probes, suspension,
// traction, steering, drift correction, speed clamp and wheel visuals.
// A missing body, a degenerate transform or a non-positive dt skips the
// frame entirely.
func Step(s *State, controls ControlState, dt float64) {
	if !s.ready() || !common.Finite(dt) || dt <= 0 {
		return
	}

	f, ok := s.beginFrame(dt)
	if !ok {
		return
	}

	s.castWheels(f)
	s.applySuspension(f)
	s.applyTraction(f, controls)
	s.applySteering(f, controls)
	s.applyDriftCorrection(f)
	vel := s.limitSpeed(f)
	s.syncVisuals(f, vel)

	s.Frame++
	s.LastReport = f.report
}

func (s *State) beginFrame(dt float64) (*frame, bool) {
	pos, rot := s.Body.Transform()
	if !common.FiniteVec(pos) || !common.FiniteVec(rot.V) || !common.Finite(rot.W) {
		return nil, false
	}
	l := rot.Len()
	if l < 1e-9 {
		return nil, false
	}
	if l != 1 {
		rot = rot.Scale(1 / l)
	}
	vel := s.Body.LinearVelocity()
	if !common.FiniteVec(vel) {
		vel = mgl64.Vec3{}
	}
	return &frame{dt: dt, pos: pos, rot: rot, vel: vel}, true
}

func (s *State) impulse(f *frame, j mgl64.Vec3) {
	if !common.FiniteVec(j) {
		f.report.Discarded++
		return
	}
	s.Body.ApplyImpulse(j)
}

func (s *State) impulseAt(f *frame, j, point mgl64.Vec3) {
	if !common.FiniteVec(j) || !common.FiniteVec(point) {
		f.report.Discarded++
		return
	}
	s.Body.ApplyImpulseAtPoint(j, point)
}

func (s *State) torque(f *frame, t mgl64.Vec3) {
	if !common.FiniteVec(t) {
		f.report.Discarded++
		return
	}
	s.Body.ApplyTorqueImpulse(t)
}
