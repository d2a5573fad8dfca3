package vehicle

import (
	"math"

	"github.com/milk9111/arcadecar/common"
)

// SteerInput maps left/right to +1/-1; both or neither give 0.
func SteerInput(c ControlState) float64 {
	in := 0.0
	if c.Left {
		in++
	}
	if c.Right {
		in--
	}
	return in
}

// SpeedFactor shrinks steering authority with horizontal speed, floored at
// MinSpeedFactor.
func SpeedFactor(d DriveParams, horizontalSpeed float64) float64 {
	return math.Max(d.MinSpeedFactor, 1-horizontalSpeed*d.SpeedAttenuation)
}

func (s *State) applySteering(f *frame, c ControlState) {
	d := s.params.Drive
	s.Steer = SteerInput(c) * d.SteerAngleMax
	f.report.Steer = s.Steer

	factor := SpeedFactor(d, common.HorizontalSpeed(f.vel))
	f.report.SpeedFactor = factor

	strength := s.Steer * d.SteerTorqueGain * factor * f.dt
	if strength == 0 {
		return
	}
	s.torque(f, f.rot.Rotate(common.Up).Mul(strength))
}
