package vehicle

import "github.com/milk9111/arcadecar/common"

// castWheels probes straight down from every mount. A wheel is grounded only
// when the caster reports a finite distance within the probe length.
func (s *State) castWheels(f *frame) {
	maxDist := s.params.Suspension.RestLength + s.params.Suspension.RaySlack
	for i, m := range s.mounts {
		sample := WheelSample{Origin: f.pos.Add(f.rot.Rotate(m.Offset))}
		if s.Caster != nil {
			d, ok := s.Caster.CastRay(sample.Origin, common.Down, maxDist, s.Body)
			if ok && common.Finite(d) && d >= 0 && d <= maxDist {
				sample.Contact = true
				sample.Distance = d
				sample.ContactPoint = sample.Origin.Add(common.Down.Mul(d))
				f.report.Grounded++
			}
		}
		s.Samples[i] = sample
	}
}
