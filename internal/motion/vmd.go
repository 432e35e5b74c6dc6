package motion

import (
	"errors"
	gomath "math"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/pkg/formats"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

const (
	radToDeg = 180 / gomath.Pi
	degToRad = gomath.Pi / 180
)

// FromVMD builds a motion from a parsed VMD file. Curves are sampled with
// n entries. Records repeating a (frame, name) pair already seen are
// skipped with a warning, as authoring tools occasionally emit them.
func FromVMD(v *formats.VMD, n int) (*Motion, error) {
	m := New()
	m.modelName = v.ModelName

	var skipped int
	add := func(k *Keyframe) error {
		err := m.AddKeyframe(k)
		if errors.Is(err, ErrDuplicateKeyframe) {
			skipped++
			return nil
		}
		return err
	}

	for i := range v.Bones {
		r := &v.Bones[i]
		rot := math.Quat{X: r.Rotation[0], Y: r.Rotation[1], Z: r.Rotation[2], W: r.Rotation[3]}.Normalize()
		k := NewBoneKeyframe(float64(r.Frame), r.Name, math.Vec3FromArray(r.Position), rot)
		for ch := 0; ch < BoneChannelCount; ch++ {
			k.Bone.SetInterpolation(ch, ControlQuadFromBytes(r.InterpolationQuad(ch)), n)
		}
		if err := add(k); err != nil {
			return nil, err
		}
	}

	for _, r := range v.Morphs {
		if err := add(NewMorphKeyframe(float64(r.Frame), r.Name, r.Weight)); err != nil {
			return nil, err
		}
	}

	for i := range v.Cameras {
		r := &v.Cameras[i]
		angle := math.Vec3{
			X: float32(float64(r.Angle[0]) * radToDeg),
			Y: float32(float64(r.Angle[1]) * radToDeg),
			Z: float32(float64(r.Angle[2]) * radToDeg),
		}
		k := NewCameraKeyframe(float64(r.Frame), math.Vec3FromArray(r.Position), angle, r.Distance, float32(r.FOV))
		k.Camera.Perspective = r.Perspective
		for ch := 0; ch < CameraChannelCount; ch++ {
			k.Camera.SetInterpolation(ch, ControlQuadFromBytes(r.InterpolationQuad(ch)), n)
		}
		if err := add(k); err != nil {
			return nil, err
		}
	}

	for _, r := range v.Lights {
		c := colorful.Color{R: float64(r.Color[0]), G: float64(r.Color[1]), B: float64(r.Color[2])}
		if err := add(NewLightKeyframe(float64(r.Frame), c, math.Vec3FromArray(r.Direction))); err != nil {
			return nil, err
		}
	}

	for _, r := range v.SelfShadows {
		if err := add(NewProjectKeyframe(float64(r.Frame), r.Mode, r.Distance)); err != nil {
			return nil, err
		}
	}

	for _, r := range v.ShowIK {
		ik := make([]IKState, len(r.IK))
		for i, s := range r.IK {
			ik[i] = IKState{Name: s.Name, Enabled: s.Enabled}
		}
		if err := add(NewModelKeyframe(float64(r.Frame), r.Visible, ik...)); err != nil {
			return nil, err
		}
	}

	if skipped > 0 {
		logger.Warn("skipped duplicate VMD records",
			zap.String("motion", m.id.String()),
			zap.String("model", v.ModelName),
			zap.Int("count", skipped))
	}
	return m, nil
}

// ToVMD encodes the motion as a VMD file. Time indices are truncated to
// whole frames. Effect keyframes and project gravity have no VMD record
// and are dropped.
func ToVMD(m *Motion) *formats.VMD {
	v := &formats.VMD{Version: formats.VMDVersion2, ModelName: m.modelName}

	if a := m.tracks[KindBone]; a != nil {
		for _, k := range a.keyframes {
			r := formats.VMDBoneKeyframe{
				Name:     k.Name,
				Frame:    frameOf(k),
				Position: k.Bone.Position.Array(),
				Rotation: [4]float32{k.Bone.Rotation.X, k.Bone.Rotation.Y, k.Bone.Rotation.Z, k.Bone.Rotation.W},
			}
			for ch := 0; ch < BoneChannelCount; ch++ {
				r.SetInterpolationQuad(ch, k.Bone.Interpolation[ch].Quad().Bytes())
			}
			v.Bones = append(v.Bones, r)
		}
	}

	if a := m.tracks[KindMorph]; a != nil {
		for _, k := range a.keyframes {
			v.Morphs = append(v.Morphs, formats.VMDMorphKeyframe{Name: k.Name, Frame: frameOf(k), Weight: k.Morph.Weight})
		}
	}

	if a := m.tracks[KindCamera]; a != nil {
		for _, k := range a.keyframes {
			c := k.Camera
			r := formats.VMDCameraKeyframe{
				Frame:    frameOf(k),
				Distance: c.Distance,
				Position: c.LookAt.Array(),
				Angle: [3]float32{
					float32(float64(c.Angle.X) * degToRad),
					float32(float64(c.Angle.Y) * degToRad),
					float32(float64(c.Angle.Z) * degToRad),
				},
				FOV:         uint32(gomath.Max(0, gomath.Round(float64(c.FOV)))),
				Perspective: c.Perspective,
			}
			for ch := 0; ch < CameraChannelCount; ch++ {
				r.SetInterpolationQuad(ch, c.Interpolation[ch].Quad().Bytes())
			}
			v.Cameras = append(v.Cameras, r)
		}
	}

	if a := m.tracks[KindLight]; a != nil {
		for _, k := range a.keyframes {
			c := k.Light.Color
			v.Lights = append(v.Lights, formats.VMDLightKeyframe{
				Frame:     frameOf(k),
				Color:     [3]float32{float32(c.R), float32(c.G), float32(c.B)},
				Direction: k.Light.Direction.Array(),
			})
		}
	}

	if a := m.tracks[KindProject]; a != nil {
		for _, k := range a.keyframes {
			v.SelfShadows = append(v.SelfShadows, formats.VMDSelfShadowKeyframe{
				Frame:    frameOf(k),
				Mode:     k.Project.ShadowMode,
				Distance: k.Project.ShadowDistance,
			})
		}
	}

	if a := m.tracks[KindModel]; a != nil {
		for _, k := range a.keyframes {
			r := formats.VMDShowIKKeyframe{Frame: frameOf(k), Visible: k.Model.Visible}
			for _, s := range k.Model.IK {
				r.IK = append(r.IK, formats.VMDIKState{Name: s.Name, Enabled: s.Enabled})
			}
			v.ShowIK = append(v.ShowIK, r)
		}
	}

	return v
}

func frameOf(k *Keyframe) uint32 {
	if k.TimeIndex <= 0 {
		return 0
	}
	return uint32(k.TimeIndex)
}
