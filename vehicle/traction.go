package vehicle

import "github.com/milk9111/arcadecar/common"

// TractionForce is the signed longitudinal force the controls ask for.
// Forward wins when both pedals are held; reversing adds the brake share on
// top of the reverse force.
func TractionForce(d DriveParams, c ControlState) float64 {
	switch {
	case c.Forward:
		return d.EngineForce
	case c.Backward:
		return -d.ReverseForce - d.BrakeForce*d.BrakeShare
	}
	return 0
}

func (s *State) applyTraction(f *frame, c ControlState) {
	d := s.params.Drive
	force := TractionForce(d, c)
	f.report.Traction = force
	if force == 0 {
		return
	}

	forward := common.Horizontal(f.rot.Rotate(common.Forward))

	if d.Traction == TractionCentralized {
		if f.report.Grounded == 0 {
			return
		}
		s.impulse(f, forward.Mul(force*f.dt))
		return
	}

	driven := 0
	for _, m := range s.mounts {
		if m.Driven {
			driven++
		}
	}
	if driven == 0 {
		return
	}
	j := forward.Mul(force / float64(driven) * f.dt)
	for i, m := range s.mounts {
		if !m.Driven || !s.Samples[i].Contact {
			continue
		}
		s.impulseAt(f, j, s.Samples[i].ContactPoint)
	}
}
