// Package camera provides the scene camera driven by camera motions.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Default camera pose.
var (
	DefaultLookAt = math.Vec3{X: 0, Y: 10, Z: 0}
	DefaultAngle  = math.Vec3{}
)

// Defaults for the scalar camera parameters. Distance is stored negated,
// so the camera sits 50 units in front of the look-at point.
const (
	DefaultDistance float32 = -50
	DefaultFOV      float32 = 30
	DefaultAspect   float32 = 16.0 / 9.0

	nearPlane float32 = 0.5
	farPlane  float32 = 10000
)

// Camera orbits a look-at point at a signed distance.
type Camera struct {
	lookAt      math.Vec3
	angle       math.Vec3 // degrees
	distance    float32
	fov         float32 // degrees
	perspective bool
	aspect      float32

	position   math.Vec3
	view       math.Mat4
	projection math.Mat4

	motion *motion.Motion
}

// New creates a camera with the default pose.
func New() *Camera {
	c := &Camera{aspect: DefaultAspect}
	c.ResetDefault()
	return c
}

// ResetDefault restores the default pose and refreshes the matrices.
func (c *Camera) ResetDefault() {
	c.lookAt = DefaultLookAt
	c.angle = DefaultAngle
	c.distance = DefaultDistance
	c.fov = DefaultFOV
	c.perspective = true
	c.UpdateTransform()
}

// UpdateTransform recomputes the view and projection matrices:
// view = translate(0,0,distance) * R(angle) * translate(-lookAt).
func (c *Camera) UpdateTransform() {
	q := c.orientation()
	view := math.Translate(math.Vec3{Z: c.distance}).
		Mul(q.Conjugate().ToMat4()).
		Mul(math.Translate(c.lookAt.Negate()))
	c.view = view
	c.position = c.lookAt.Add(q.Rotate(math.Vec3{Z: -c.distance}))

	if c.perspective {
		c.projection = math.Perspective(c.fov*gomath.Pi/180, c.aspect, nearPlane, farPlane)
		return
	}
	// Orthographic extent follows the orbit distance.
	h := float32(gomath.Abs(float64(c.distance))) * float32(gomath.Tan(float64(c.fov)*gomath.Pi/360))
	w := h * c.aspect
	c.projection = math.Ortho(-w, w, -h, h, nearPlane, farPlane)
}

func (c *Camera) orientation() math.Quat {
	const toRad = gomath.Pi / 180
	return math.QuatFromEulerZXY(c.angle.X*toRad, c.angle.Y*toRad, c.angle.Z*toRad)
}

// Motion returns the linked camera motion.
func (c *Camera) Motion() *motion.Motion { return c.motion }

// SetMotion unlinks the current motion, then links m. nil unlinks only.
func (c *Camera) SetMotion(m *motion.Motion) {
	if c.motion == m {
		return
	}
	if c.motion != nil {
		c.motion.SetCamera(nil)
	}
	c.motion = m
	if m != nil {
		m.SetCamera(c)
	}
}

// SetLookAt sets the orbit centre.
func (c *Camera) SetLookAt(v math.Vec3) { c.lookAt = v }

// SetAngle sets the orbit angles in degrees.
func (c *Camera) SetAngle(degrees math.Vec3) { c.angle = degrees }

// SetDistance sets the signed orbit distance.
func (c *Camera) SetDistance(d float32) { c.distance = d }

// SetFOV sets the vertical field of view in degrees, clamped to [1,135].
func (c *Camera) SetFOV(degrees float32) {
	c.fov = float32(gomath.Max(1, gomath.Min(135, float64(degrees))))
}

// SetPerspective switches between perspective and orthographic projection.
func (c *Camera) SetPerspective(enabled bool) { c.perspective = enabled }

// SetAspect sets the viewport aspect ratio (width / height).
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// LookAt returns the orbit centre.
func (c *Camera) LookAt() math.Vec3 { return c.lookAt }

// Angle returns the orbit angles in degrees.
func (c *Camera) Angle() math.Vec3 { return c.angle }

// Distance returns the signed orbit distance.
func (c *Camera) Distance() float32 { return c.distance }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.fov }

// IsPerspective reports whether the projection is perspective.
func (c *Camera) IsPerspective() bool { return c.perspective }

// Position returns the eye position as of the last UpdateTransform.
func (c *Camera) Position() math.Vec3 { return c.position }

// ViewMatrix returns the view matrix as of the last UpdateTransform.
func (c *Camera) ViewMatrix() math.Mat4 { return c.view }

// ProjectionMatrix returns the projection matrix as of the last UpdateTransform.
func (c *Camera) ProjectionMatrix() math.Mat4 { return c.projection }
