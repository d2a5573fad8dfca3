package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

// LateralCorrection is the clamped force opposing sideways speed.
func LateralCorrection(d DriveParams, lateralSpeed float64) float64 {
	return mgl64.Clamp(-lateralSpeed*d.LateralGrip, -d.MaxLateralCorrection, d.MaxLateralCorrection)
}

// applyDriftCorrection pushes grounded corrected wheels against the body's
// sideways velocity. The push stays in the horizontal plane and is softened
// by CorrectionFactor so the car can still slide.
func (s *State) applyDriftCorrection(f *frame) {
	d := s.params.Drive
	right := f.rot.Rotate(common.Right)
	correction := LateralCorrection(d, right.Dot(f.vel))
	if correction == 0 {
		return
	}
	j := common.Horizontal(right.Mul(correction * d.CorrectionFactor * f.dt))
	for i, m := range s.mounts {
		if !m.Corrected || !s.Samples[i].Contact {
			continue
		}
		s.impulseAt(f, j, s.Samples[i].Origin)
	}
}
