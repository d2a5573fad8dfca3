package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FiniteVec reports whether every component of v is finite.
func FiniteVec(v mgl64.Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}

// Horizontal drops the vertical component of v.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// HorizontalSpeed is the length of v projected on the XZ plane.
func HorizontalSpeed(v mgl64.Vec3) float64 {
	return math.Hypot(v[0], v[2])
}
