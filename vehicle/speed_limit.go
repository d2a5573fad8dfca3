package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

// ClampHorizontal rescales the XZ part of v down to maxSpeed, leaving Y alone.
// It reports false when v is already within the limit.
func ClampHorizontal(v mgl64.Vec3, maxSpeed float64) (mgl64.Vec3, bool) {
	h := common.HorizontalSpeed(v)
	if h == 0 || !common.Finite(h) || h <= maxSpeed {
		return v, false
	}
	scale := maxSpeed / h
	return mgl64.Vec3{v[0] * scale, v[1], v[2] * scale}, true
}

// limitSpeed rewrites the body velocity after this frame's impulses and
// returns the velocity the body ends the frame with.
func (s *State) limitSpeed(f *frame) mgl64.Vec3 {
	v := s.Body.LinearVelocity()
	if !common.FiniteVec(v) {
		return f.vel
	}
	f.report.HorizontalSpeed = common.HorizontalSpeed(v)
	clamped, ok := ClampHorizontal(v, s.params.Drive.MaxSpeed)
	if !ok {
		return v
	}
	s.Body.SetLinearVelocity(clamped)
	f.report.Clamped = true
	f.report.HorizontalSpeed = common.HorizontalSpeed(clamped)
	return clamped
}
