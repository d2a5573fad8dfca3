// Package render draws the sandbox debug view with ebiten.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arcadecar/common"
	"github.com/milk9111/arcadecar/ecs"
	"github.com/milk9111/arcadecar/ecs/component"
	"github.com/milk9111/arcadecar/vehicle"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4

	// topViewSize is the side of the square top-down inset, in pixels.
	topViewSize  = 220
	topViewScale = 24
)

// View maps world units to screen pixels for the side view.
type View struct {
	Scale  float64
	Width  float64
	Height float64
	Center mgl64.Vec3
}

func (v View) toScreen(p cp.Vector) (float32, float32) {
	x := (p.X-v.Center[0])*v.Scale + v.Width/2
	y := (v.Center[1]-p.Y)*v.Scale + v.Height/2
	return float32(x), float32(y)
}

// ViewFor centres a view on the first camera, or the origin.
func ViewFor(w *ecs.World, scale, width, height float64) View {
	v := View{Scale: scale, Width: width, Height: height}
	if e, ok := w.First(component.CameraComponent.Kind().ID()); ok {
		if cam, ok := ecs.Get(w, e, component.CameraComponent); ok && common.FiniteVec(cam.LookAt) {
			v.Center = cam.LookAt
		}
	}
	return v
}

// DrawDebug draws the terrain profile, vehicle chassis and wheels. With
// overlay set it also draws wheel probes, a top-down inset and telemetry.
func DrawDebug(w *ecs.World, screen *ebiten.Image, view View, overlay bool) {
	if w == nil || screen == nil {
		return
	}
	screen.Fill(colornames.Midnightblue)

	if pw := w.PhysicsWorld(); pw != nil && pw.Space() != nil {
		cp.DrawSpace(pw.Space(), &physicsDebugDrawer{screen: screen, view: view})
	}

	ecs.ForEach2(w, component.PhysicsBodyComponent, component.TuningComponent, func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Tuning) {
		if !pb.Body.Alive() {
			return
		}
		drawChassisSide(screen, view, pb, tint(t.Color))
	})

	ecs.ForEach2(w, component.VehicleComponent, component.WheelVisualsComponent, func(_ ecs.Entity, v *component.Vehicle, wv *component.WheelVisuals) {
		drawWheelsSide(screen, view, v, wv, overlay)
	})

	if !overlay {
		return
	}
	drawTopView(w, screen)
	drawOverlay(w, screen)
}

func tint(c color.Color) color.Color {
	if c == nil {
		return colornames.Limegreen
	}
	return c
}

func drawChassisSide(screen *ebiten.Image, view View, pb *component.PhysicsBody, clr color.Color) {
	pos, rot := pb.Body.Transform()
	h := pb.Body.HalfExtents()
	// Side profile: the four corners of the z=0 slice.
	local := [4]mgl64.Vec3{{-h[0], -h[1], 0}, {h[0], -h[1], 0}, {h[0], h[1], 0}, {-h[0], h[1], 0}}
	var pts [4]cp.Vector
	for i, l := range local {
		p := pos.Add(rot.Rotate(l))
		pts[i] = cp.Vector{X: p[0], Y: p[1]}
	}
	for i := range pts {
		x1, y1 := view.toScreen(pts[i])
		x2, y2 := view.toScreen(pts[(i+1)%len(pts)])
		vector.StrokeLine(screen, x1, y1, x2, y2, 2, clr, true)
	}
}

func drawWheelsSide(screen *ebiten.Image, view View, v *component.Vehicle, wv *component.WheelVisuals, probes bool) {
	if v.State == nil {
		return
	}
	for i, wheel := range wv.Wheels {
		if !common.FiniteVec(wheel.Position) {
			continue
		}
		c := cp.Vector{X: wheel.Position[0], Y: wheel.Position[1]}
		x, y := view.toScreen(c)
		r := float32(wv.Radius[i] * view.Scale)
		clr := color.Color(colornames.Gray)
		if wv.Contact[i] {
			clr = colornames.White
		}
		vector.StrokeCircle(screen, x, y, r, 1.5, clr, true)
		// Spoke shows roll.
		spoke := wheel.Rotation.Rotate(mgl64.Vec3{0, wv.Radius[i], 0})
		sx, sy := view.toScreen(cp.Vector{X: c.X + spoke[0], Y: c.Y + spoke[1]})
		vector.StrokeLine(screen, x, y, sx, sy, 1, clr, true)

		sample := v.State.Samples[i]
		if !probes || !common.FiniteVec(sample.Origin) {
			continue
		}
		ox, oy := view.toScreen(cp.Vector{X: sample.Origin[0], Y: sample.Origin[1]})
		end := sample.Origin.Add(common.Down.Mul(v.State.Params().Suspension.RestLength + v.State.Params().Suspension.RaySlack))
		rayClr := color.Color(colornames.Orangered)
		if sample.Contact {
			end = sample.ContactPoint
			rayClr = colornames.Gold
		}
		ex, ey := view.toScreen(cp.Vector{X: end[0], Y: end[1]})
		vector.StrokeLine(screen, ox, oy, ex, ey, 1, rayClr, true)
	}
}

// drawTopView renders an XZ inset in the top-right corner, centred on each
// vehicle, with -Z pointing up the screen.
func drawTopView(w *ecs.World, screen *ebiten.Image) {
	sw := float32(screen.Bounds().Dx())
	left := sw - topViewSize - 10
	top := float32(10)
	vector.FillRect(screen, left, top, topViewSize, topViewSize, color.NRGBA{0, 0, 0, 0x90}, false)
	vector.StrokeRect(screen, left, top, topViewSize, topViewSize, 1, colornames.Slategray, false)
	cx, cy := left+topViewSize/2, top+topViewSize/2

	ecs.ForEach2(w, component.VehicleComponent, component.WheelVisualsComponent, func(e ecs.Entity, v *component.Vehicle, wv *component.WheelVisuals) {
		if v.State == nil || v.State.Body == nil {
			return
		}
		pos, rot := v.State.Body.Transform()
		project := func(p mgl64.Vec3) (float32, float32) {
			d := p.Sub(pos)
			return cx + float32(d[0]*topViewScale), cy + float32(d[2]*topViewScale)
		}

		clr := color.Color(colornames.Limegreen)
		if t, ok := ecs.Get(w, e, component.TuningComponent); ok {
			clr = tint(t.Color)
		}
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok {
			h := pb.Body.HalfExtents()
			local := [4]mgl64.Vec3{{-h[0], 0, -h[2]}, {h[0], 0, -h[2]}, {h[0], 0, h[2]}, {-h[0], 0, h[2]}}
			for i := range local {
				x1, y1 := project(pos.Add(rot.Rotate(local[i])))
				x2, y2 := project(pos.Add(rot.Rotate(local[(i+1)%len(local)])))
				vector.StrokeLine(screen, x1, y1, x2, y2, 1.5, clr, true)
			}
		}

		mounts := v.State.Mounts()
		for i, wheel := range wv.Wheels {
			heading := wheel.Rotation.Rotate(common.Forward).Mul(mounts[i].Radius)
			x1, y1 := project(wheel.Position.Sub(heading))
			x2, y2 := project(wheel.Position.Add(heading))
			wheelClr := color.Color(colornames.Gray)
			if wv.Contact[i] {
				wheelClr = colornames.White
			}
			vector.StrokeLine(screen, x1, y1, x2, y2, 3, wheelClr, true)
		}

		vel := common.Horizontal(v.State.Body.LinearVelocity())
		vx, vy := project(pos.Add(vel.Mul(0.25)))
		vector.StrokeLine(screen, cx, cy, vx, vy, 1, colornames.Deepskyblue, true)
	})
}

func drawOverlay(w *ecs.World, screen *ebiten.Image) {
	text := fmt.Sprintf("FPS: %.1f  Frame: %d", ebiten.ActualFPS(), w.Frame())
	ecs.ForEach(w, component.VehicleComponent, func(_ ecs.Entity, v *component.Vehicle) {
		if v.State == nil {
			return
		}
		r := v.State.LastReport
		text += fmt.Sprintf("\n%s  speed %.2f / %.1f  grounded %d/%d  steer %+.2f  factor %.2f",
			v.Name, r.HorizontalSpeed, v.State.Params().Drive.MaxSpeed, r.Grounded, vehicle.WheelCount, r.Steer, r.SpeedFactor)
		if r.Clamped {
			text += "  [clamped]"
		}
	})
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   View
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.view.toScreen(pos)
	vector.FillCircle(d.screen, x, y, float32(size/2), toNRGBA(fill), true)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.6, G: 0.8, B: 0.6, A: 1}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.4, G: 0.7, B: 0.4, A: 1}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.view.toScreen(a)
	x2, y2 := d.view.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 2, toNRGBA(c), true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
