package motion

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/midgard-motion/pkg/math"
)

// BonePose is an evaluated local bone transform.
type BonePose struct {
	Position math.Vec3
	Rotation math.Quat
}

// CameraState is an evaluated camera pose.
type CameraState struct {
	LookAt      math.Vec3
	Angle       math.Vec3
	Distance    float32
	FOV         float32
	Perspective bool
}

// LightState is an evaluated light.
type LightState struct {
	Color     colorful.Color
	Direction math.Vec3
}

// bracket returns the keyframes around t on a named channel. next is nil
// when t is at or outside either end, in which case prev holds the
// boundary keyframe.
func (a *Animation) bracket(name string, t float64) (prev, next *Keyframe, s float64) {
	c := a.channels[name]
	if c == nil || len(c.keyframes) == 0 {
		return nil, nil, 0
	}
	i := c.segment(t)
	prev = c.keyframes[i]
	if i+1 >= len(c.keyframes) || t <= prev.TimeIndex {
		return prev, nil, 0
	}
	next = c.keyframes[i+1]
	span := next.TimeIndex - prev.TimeIndex
	if span <= 0 {
		return next, nil, 0
	}
	return prev, next, (t - prev.TimeIndex) / span
}

func lerp32(a, b float32, s float64) float32 {
	return a + (b-a)*float32(s)
}

// EvaluateBone interpolates the named bone at t. Curves come from the
// keyframe being approached.
func (a *Animation) EvaluateBone(name string, t float64) (BonePose, bool) {
	if a.kind != KindBone {
		return BonePose{}, false
	}
	prev, next, s := a.bracket(name, t)
	if prev == nil {
		return BonePose{}, false
	}
	p := prev.Bone
	if next == nil {
		return BonePose{Position: p.Position, Rotation: p.Rotation}, true
	}
	n := next.Bone
	return BonePose{
		Position: math.Vec3{
			X: lerp32(p.Position.X, n.Position.X, n.Interpolation[BoneChannelX].Sample(s)),
			Y: lerp32(p.Position.Y, n.Position.Y, n.Interpolation[BoneChannelY].Sample(s)),
			Z: lerp32(p.Position.Z, n.Position.Z, n.Interpolation[BoneChannelZ].Sample(s)),
		},
		Rotation: p.Rotation.Slerp(n.Rotation, float32(n.Interpolation[BoneChannelRotation].Sample(s))),
	}, true
}

// EvaluateCamera interpolates the camera at t.
func (a *Animation) EvaluateCamera(t float64) (CameraState, bool) {
	if a.kind != KindCamera {
		return CameraState{}, false
	}
	prev, next, s := a.bracket("", t)
	if prev == nil {
		return CameraState{}, false
	}
	p := prev.Camera
	if next == nil {
		return CameraState{LookAt: p.LookAt, Angle: p.Angle, Distance: p.Distance, FOV: p.FOV, Perspective: p.Perspective}, true
	}
	n := next.Camera
	return CameraState{
		LookAt: math.Vec3{
			X: lerp32(p.LookAt.X, n.LookAt.X, n.Interpolation[CameraChannelX].Sample(s)),
			Y: lerp32(p.LookAt.Y, n.LookAt.Y, n.Interpolation[CameraChannelY].Sample(s)),
			Z: lerp32(p.LookAt.Z, n.LookAt.Z, n.Interpolation[CameraChannelZ].Sample(s)),
		},
		Angle:       p.Angle.Lerp(n.Angle, float32(n.Interpolation[CameraChannelRotation].Sample(s))),
		Distance:    lerp32(p.Distance, n.Distance, n.Interpolation[CameraChannelDistance].Sample(s)),
		FOV:         lerp32(p.FOV, n.FOV, n.Interpolation[CameraChannelFOV].Sample(s)),
		Perspective: p.Perspective,
	}, true
}

// EvaluateMorph interpolates the named morph weight at t.
func (a *Animation) EvaluateMorph(name string, t float64) (float32, bool) {
	if a.kind != KindMorph {
		return 0, false
	}
	prev, next, s := a.bracket(name, t)
	if prev == nil {
		return 0, false
	}
	if next == nil {
		return prev.Morph.Weight, true
	}
	return lerp32(prev.Morph.Weight, next.Morph.Weight, s), true
}

// EvaluateLight interpolates the light at t.
func (a *Animation) EvaluateLight(t float64) (LightState, bool) {
	if a.kind != KindLight {
		return LightState{}, false
	}
	prev, next, s := a.bracket("", t)
	if prev == nil {
		return LightState{}, false
	}
	p := prev.Light
	if next == nil {
		return LightState{Color: p.Color, Direction: p.Direction}, true
	}
	n := next.Light
	return LightState{
		Color:     p.Color.BlendRgb(n.Color, s).Clamped(),
		Direction: p.Direction.Lerp(n.Direction, float32(s)),
	}, true
}

// stepped returns the last keyframe at or before t on a channel, or the
// first keyframe when t precedes the track.
func (a *Animation) stepped(kind Kind, name string, t float64) *Keyframe {
	if a.kind != kind {
		return nil
	}
	prev, next, s := a.bracket(name, t)
	if next != nil && s >= 1 {
		return next
	}
	return prev
}

// EvaluateModel returns the model state in effect at t.
func (a *Animation) EvaluateModel(t float64) (*ModelKeyframe, bool) {
	k := a.stepped(KindModel, "", t)
	if k == nil {
		return nil, false
	}
	return k.Model, true
}

// EvaluateEffect returns the named effect parameter in effect at t.
func (a *Animation) EvaluateEffect(name string, t float64) (*EffectKeyframe, bool) {
	k := a.stepped(KindEffect, name, t)
	if k == nil {
		return nil, false
	}
	return k.Effect, true
}

// EvaluateProject returns the project settings in effect at t.
func (a *Animation) EvaluateProject(t float64) (*ProjectKeyframe, bool) {
	k := a.stepped(KindProject, "", t)
	if k == nil {
		return nil, false
	}
	return k.Project, true
}

// apply pushes the state at t to the bound targets.
func (a *Animation) apply(t float64) {
	if len(a.keyframes) == 0 {
		return
	}
	tg := a.targets

	switch a.kind {
	case KindBone:
		if tg.Model == nil {
			return
		}
		for _, name := range a.channelNames {
			if pose, ok := a.EvaluateBone(name, t); ok {
				tg.Model.SetBoneLocalPose(name, pose.Position, pose.Rotation)
			}
		}
	case KindMorph:
		if tg.Model == nil {
			return
		}
		for _, name := range a.channelNames {
			if w, ok := a.EvaluateMorph(name, t); ok {
				tg.Model.SetMorphWeight(name, w)
			}
		}
	case KindModel:
		if tg.Model == nil {
			return
		}
		if st, ok := a.EvaluateModel(t); ok {
			tg.Model.SetVisible(st.Visible)
			tg.Model.SetPhysicsEnabled(st.PhysicsEnabled)
			for _, ik := range st.IK {
				tg.Model.SetIKEnabled(ik.Name, ik.Enabled)
			}
		}
	case KindEffect:
		if tg.Model == nil {
			return
		}
		for _, name := range a.channelNames {
			if st, ok := a.EvaluateEffect(name, t); ok {
				tg.Model.SetEffectParameter(name, st.Visible, st.Parameter)
			}
		}
	case KindCamera:
		if tg.Camera == nil {
			return
		}
		if st, ok := a.EvaluateCamera(t); ok {
			tg.Camera.SetLookAt(st.LookAt)
			tg.Camera.SetAngle(st.Angle)
			tg.Camera.SetDistance(st.Distance)
			tg.Camera.SetFOV(st.FOV)
			tg.Camera.SetPerspective(st.Perspective)
		}
	case KindLight:
		if tg.Light == nil {
			return
		}
		if st, ok := a.EvaluateLight(t); ok {
			tg.Light.SetColor(st.Color)
			tg.Light.SetDirection(st.Direction)
		}
	case KindProject:
		if tg.Project == nil {
			return
		}
		if st, ok := a.EvaluateProject(t); ok {
			tg.Project.SetGravity(st.GravityAcceleration, st.GravityDirection)
			tg.Project.SetShadow(st.ShadowMode, st.ShadowDistance)
		}
	}
}
