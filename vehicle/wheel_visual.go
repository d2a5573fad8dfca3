package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/arcadecar/common"
)

func (s *State) syncVisuals(f *frame, vel mgl64.Vec3) {
	speed := f.rot.Rotate(common.Forward).Dot(vel)
	for i, m := range s.mounts {
		v := &s.Visuals[i]
		v.Position = f.pos.Add(f.rot.Rotate(m.Offset))
		v.Roll = math.Remainder(v.Roll+speed*f.dt/m.Radius, 2*math.Pi)
		v.Yaw = 0
		if m.Steered {
			v.Yaw = s.Steer
		}
		// Rolling forward (-Z) turns the wheel negatively about +X.
		v.Rotation = f.rot.
			Mul(mgl64.QuatRotate(v.Yaw, common.Up)).
			Mul(mgl64.QuatRotate(-v.Roll, common.Right))
	}
}
