package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

// SuspensionForce is the spring-damper force for one wheel at the given hit
// distance. closingSpeed is the body's speed toward the ground; extension is
// never damped.
func SuspensionForce(p SuspensionParams, distance, closingSpeed float64) float64 {
	compression := math.Max(0, p.RestLength-distance)
	spring := p.Stiffness * compression
	damping := p.Damping * math.Max(0, closingSpeed)
	return mgl64.Clamp(spring+damping, 0, p.MaxForce)
}

func (s *State) applySuspension(f *frame) {
	sp := s.params.Suspension
	// Closing speed is motion toward the ground, v·down. Damping the other
	// direction leaves a settling chassis short of support and it never
	// reaches the k·compression = m·g/4 rest state (TestVehicleEquilibrium).
	closing := f.vel.Dot(common.Down)
	for i := range s.Samples {
		w := &s.Samples[i]
		if !w.Contact {
			continue
		}
		w.Compression = math.Max(0, sp.RestLength-w.Distance)
		w.SuspensionForce = SuspensionForce(sp, w.Distance, closing)
		if w.SuspensionForce == 0 {
			continue
		}
		s.impulseAt(f, common.Up.Mul(w.SuspensionForce*f.dt), w.ContactPoint)
	}
}
