// Package motion implements keyframe tracks and their Bezier-eased evaluation.
//
// A Motion bundles at most one Animation per keyframe kind. Animations keep
// their keyframes sorted by time index and push evaluated values to the
// targets bound on the Motion (a model, the camera, the light or the project).
package motion

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Kind discriminates keyframe payloads.
type Kind uint8

// Keyframe kinds.
const (
	KindBone Kind = iota
	KindCamera
	KindMorph
	KindLight
	KindModel
	KindEffect
	KindProject

	kindCount
)

var kindNames = [kindCount]string{"bone", "camera", "morph", "light", "model", "effect", "project"}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Kinds returns every keyframe kind in track order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Bone interpolation channels.
const (
	BoneChannelX = iota
	BoneChannelY
	BoneChannelZ
	BoneChannelRotation
	BoneChannelCount
)

// Camera interpolation channels.
const (
	CameraChannelX = iota
	CameraChannelY
	CameraChannelZ
	CameraChannelRotation
	CameraChannelDistance
	CameraChannelFOV
	CameraChannelCount
)

// Keyframe is one authored value anchored at a time index. Exactly one
// payload pointer is set, matching Kind.
type Keyframe struct {
	Kind      Kind
	TimeIndex float64
	Layer     int
	// Name selects the channel (bone, morph or effect name). Empty for
	// camera, light, model and project keyframes.
	Name string

	Bone    *BoneKeyframe
	Camera  *CameraKeyframe
	Morph   *MorphKeyframe
	Light   *LightKeyframe
	Model   *ModelKeyframe
	Effect  *EffectKeyframe
	Project *ProjectKeyframe
}

// BoneKeyframe is a local bone pose.
type BoneKeyframe struct {
	Position      math.Vec3
	Rotation      math.Quat
	Interpolation [BoneChannelCount]InterpolationTable
}

// SetInterpolation rebuilds one channel table.
func (b *BoneKeyframe) SetInterpolation(channel int, quad ControlQuad, n int) {
	if channel < 0 || channel >= BoneChannelCount {
		return
	}
	b.Interpolation[channel].Build(quad, n)
}

// CameraKeyframe is an orbit camera pose. Angle is Euler degrees.
type CameraKeyframe struct {
	LookAt        math.Vec3
	Angle         math.Vec3
	Distance      float32
	FOV           float32
	Perspective   bool
	Interpolation [CameraChannelCount]InterpolationTable
}

// SetInterpolation rebuilds one channel table.
func (c *CameraKeyframe) SetInterpolation(channel int, quad ControlQuad, n int) {
	if channel < 0 || channel >= CameraChannelCount {
		return
	}
	c.Interpolation[channel].Build(quad, n)
}

// MorphKeyframe is a blend weight, conventionally in [0,1].
type MorphKeyframe struct {
	Weight float32
}

// LightKeyframe is a directional light state.
type LightKeyframe struct {
	Color     colorful.Color
	Direction math.Vec3
}

// IKState toggles one IK chain.
type IKState struct {
	Name    string
	Enabled bool
}

// ModelKeyframe switches model state. It is never interpolated.
type ModelKeyframe struct {
	Visible        bool
	PhysicsEnabled bool
	IK             []IKState
}

// EffectKeyframe drives one effect parameter. It is never interpolated.
type EffectKeyframe struct {
	Visible   bool
	Parameter float32
}

// ProjectKeyframe carries scene-wide settings. It is never interpolated.
type ProjectKeyframe struct {
	GravityAcceleration float32
	GravityDirection    math.Vec3
	ShadowMode          uint8
	ShadowDistance      float32
}

// NewBoneKeyframe creates a bone keyframe with default curves.
func NewBoneKeyframe(t float64, name string, position math.Vec3, rotation math.Quat) *Keyframe {
	b := &BoneKeyframe{Position: position, Rotation: rotation}
	for ch := 0; ch < BoneChannelCount; ch++ {
		b.SetInterpolation(ch, DefaultControlQuad, DefaultSampleCount)
	}
	return &Keyframe{Kind: KindBone, TimeIndex: t, Name: name, Bone: b}
}

// NewCameraKeyframe creates a perspective camera keyframe with default curves.
func NewCameraKeyframe(t float64, lookAt, angle math.Vec3, distance, fov float32) *Keyframe {
	c := &CameraKeyframe{LookAt: lookAt, Angle: angle, Distance: distance, FOV: fov, Perspective: true}
	for ch := 0; ch < CameraChannelCount; ch++ {
		c.SetInterpolation(ch, DefaultControlQuad, DefaultSampleCount)
	}
	return &Keyframe{Kind: KindCamera, TimeIndex: t, Camera: c}
}

// NewMorphKeyframe creates a morph keyframe.
func NewMorphKeyframe(t float64, name string, weight float32) *Keyframe {
	return &Keyframe{Kind: KindMorph, TimeIndex: t, Name: name, Morph: &MorphKeyframe{Weight: weight}}
}

// NewLightKeyframe creates a light keyframe.
func NewLightKeyframe(t float64, color colorful.Color, direction math.Vec3) *Keyframe {
	return &Keyframe{Kind: KindLight, TimeIndex: t, Light: &LightKeyframe{Color: color, Direction: direction}}
}

// NewModelKeyframe creates a model state keyframe.
func NewModelKeyframe(t float64, visible bool, ik ...IKState) *Keyframe {
	return &Keyframe{Kind: KindModel, TimeIndex: t, Model: &ModelKeyframe{Visible: visible, PhysicsEnabled: true, IK: ik}}
}

// NewEffectKeyframe creates an effect parameter keyframe.
func NewEffectKeyframe(t float64, name string, visible bool, parameter float32) *Keyframe {
	return &Keyframe{Kind: KindEffect, TimeIndex: t, Name: name, Effect: &EffectKeyframe{Visible: visible, Parameter: parameter}}
}

// NewProjectKeyframe creates a project keyframe with default gravity.
func NewProjectKeyframe(t float64, shadowMode uint8, shadowDistance float32) *Keyframe {
	return &Keyframe{Kind: KindProject, TimeIndex: t, Project: &ProjectKeyframe{
		GravityAcceleration: DefaultGravityAcceleration,
		GravityDirection:    DefaultGravityDirection,
		ShadowMode:          shadowMode,
		ShadowDistance:      shadowDistance,
	}}
}

// Default project gravity.
var (
	DefaultGravityAcceleration float32 = 9.8
	DefaultGravityDirection            = math.Vec3{X: 0, Y: -1, Z: 0}
)

// validate reports whether exactly the payload named by Kind is set.
func (k *Keyframe) validate() error {
	if k == nil {
		return fmt.Errorf("%w: nil keyframe", ErrInvalidKeyframe)
	}
	set := 0
	var match bool
	for kind, p := range [kindCount]bool{
		KindBone:    k.Bone != nil,
		KindCamera:  k.Camera != nil,
		KindMorph:   k.Morph != nil,
		KindLight:   k.Light != nil,
		KindModel:   k.Model != nil,
		KindEffect:  k.Effect != nil,
		KindProject: k.Project != nil,
	} {
		if p {
			set++
			match = match || Kind(kind) == k.Kind
		}
	}
	if set != 1 || !match {
		return fmt.Errorf("%w: %s keyframe at %v needs exactly one %s payload", ErrInvalidKeyframe, k.Kind, k.TimeIndex, k.Kind)
	}
	return nil
}

// before orders keyframes by time index, then name.
func (k *Keyframe) before(other *Keyframe) bool {
	if k.TimeIndex != other.TimeIndex {
		return k.TimeIndex < other.TimeIndex
	}
	return k.Name < other.Name
}
