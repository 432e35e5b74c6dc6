package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Bounds is an axis-aligned box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the centre of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the half-diagonal.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Scale(0.5).Length()
}

// DirectionalLightMatrices returns the light view matrix and the
// view-projection covering bounds. toLight is the normalized direction
// towards the light.
func DirectionalLightMatrices(toLight math.Vec3, bounds Bounds) (view, viewProj math.Mat4) {
	center := bounds.Center()
	radius := bounds.Radius()

	// Far enough back to enclose the whole box.
	lightDistance := radius * 2
	lightPos := center.Add(toLight.Scale(lightDistance))

	up := math.Vec3{Y: 1}
	if gomath.Abs(float64(toLight.Y)) > 0.99 {
		up = math.Vec3{Z: 1}
	}
	view = math.LookAt(lightPos, center, up)

	padding := radius * 0.1
	halfSize := radius + padding
	far := lightDistance + radius + padding
	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, 0.1, far)

	return view, proj.Mul(view)
}
