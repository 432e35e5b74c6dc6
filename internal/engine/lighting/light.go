// Package lighting provides the scene's directional light.
package lighting

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Default light state.
var (
	DefaultColor     = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
	DefaultDirection = math.Vec3{X: -0.5, Y: -1, Z: 0.5}
)

// Self-shadow modes.
const (
	ShadowOff uint8 = iota
	ShadowMode1
	ShadowMode2
)

// DefaultShadowDistance is the half extent of the shadowed region.
const DefaultShadowDistance float32 = 100

// Light is a directional light. Direction points from the light into the
// scene.
type Light struct {
	color     colorful.Color
	direction math.Vec3

	shadowMode     uint8
	shadowDistance float32
	shadowCenter   math.Vec3

	unitDirection math.Vec3
	view          math.Mat4
	shadow        math.Mat4

	motion *motion.Motion
}

// New creates a light with the default state.
func New() *Light {
	l := &Light{}
	l.ResetDefault()
	return l
}

// ResetDefault restores the default colour and direction.
func (l *Light) ResetDefault() {
	l.color = DefaultColor
	l.direction = DefaultDirection
	l.shadowMode = ShadowMode1
	l.shadowDistance = DefaultShadowDistance
	l.shadowCenter = math.Zero3
	l.UpdateTransform()
}

// UpdateTransform normalizes the direction and recomputes the light view
// and shadow matrices.
func (l *Light) UpdateTransform() {
	l.unitDirection = l.direction.Normalize()
	toLight := l.unitDirection.Negate()
	bounds := Bounds{
		Min: l.shadowCenter.Sub(math.Vec3{X: l.shadowDistance, Y: l.shadowDistance, Z: l.shadowDistance}),
		Max: l.shadowCenter.Add(math.Vec3{X: l.shadowDistance, Y: l.shadowDistance, Z: l.shadowDistance}),
	}
	l.view, l.shadow = DirectionalLightMatrices(toLight, bounds)
}

// Motion returns the linked light motion.
func (l *Light) Motion() *motion.Motion { return l.motion }

// SetMotion unlinks the current motion, then links m. nil unlinks only.
func (l *Light) SetMotion(m *motion.Motion) {
	if l.motion == m {
		return
	}
	if l.motion != nil {
		l.motion.SetLight(nil)
	}
	l.motion = m
	if m != nil {
		m.SetLight(l)
	}
}

// SetColor sets the light colour, clamped to the RGB gamut.
func (l *Light) SetColor(c colorful.Color) { l.color = c.Clamped() }

// SetDirection sets the light direction. A zero vector keeps the current one.
func (l *Light) SetDirection(v math.Vec3) {
	if v.Length() == 0 {
		return
	}
	l.direction = v
}

// SetShadow sets the self-shadow mode and extent.
func (l *Light) SetShadow(mode uint8, distance float32) {
	l.shadowMode = mode
	if distance > 0 {
		l.shadowDistance = distance
	}
}

// SetShadowCenter moves the centre of the shadowed region.
func (l *Light) SetShadowCenter(v math.Vec3) { l.shadowCenter = v }

// Color returns the light colour.
func (l *Light) Color() colorful.Color { return l.color }

// Hex returns the colour as #rrggbb.
func (l *Light) Hex() string { return l.color.Hex() }

// Direction returns the direction as set.
func (l *Light) Direction() math.Vec3 { return l.direction }

// UnitDirection returns the normalized direction as of the last UpdateTransform.
func (l *Light) UnitDirection() math.Vec3 { return l.unitDirection }

// ShadowMode returns the self-shadow mode.
func (l *Light) ShadowMode() uint8 { return l.shadowMode }

// ShadowDistance returns the half extent of the shadowed region.
func (l *Light) ShadowDistance() float32 { return l.shadowDistance }

// ViewMatrix returns the light view matrix.
func (l *Light) ViewMatrix() math.Mat4 { return l.view }

// ShadowMatrix returns the light view-projection used for shadow mapping.
func (l *Light) ShadowMatrix() math.Mat4 { return l.shadow }
