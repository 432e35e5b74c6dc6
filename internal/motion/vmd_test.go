package motion

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-motion/pkg/formats"
)

func sampleVMD() *formats.VMD {
	bone := formats.VMDBoneKeyframe{Name: "センター", Frame: 10, Position: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}}
	bone.SetInterpolationQuad(formats.BoneInterpX, [4]uint8{20, 20, 107, 107})
	bone.SetInterpolationQuad(formats.BoneInterpRotation, [4]uint8{64, 10, 0, 127})

	camera := formats.VMDCameraKeyframe{Frame: 4, Distance: -45, Position: [3]float32{0, 10, 0}, Angle: [3]float32{0, gomath.Pi / 2, 0}, FOV: 40}
	camera.SetInterpolationQuad(formats.CameraInterpFOV, [4]uint8{1, 2, 3, 4})

	return &formats.VMD{
		Version:     formats.VMDVersion2,
		ModelName:   "初音ミク",
		Bones:       []formats.VMDBoneKeyframe{bone, {Name: "センター", Frame: 10}},
		Morphs:      []formats.VMDMorphKeyframe{{Name: "まばたき", Frame: 3, Weight: 0.5}},
		Cameras:     []formats.VMDCameraKeyframe{camera},
		Lights:      []formats.VMDLightKeyframe{{Frame: 7, Color: [3]float32{0.6, 0.5, 0.4}, Direction: [3]float32{-0.5, -1, 0.5}}},
		SelfShadows: []formats.VMDSelfShadowKeyframe{{Frame: 2, Mode: 1, Distance: 8875}},
		ShowIK: []formats.VMDShowIKKeyframe{
			{Frame: 0, Visible: true, IK: []formats.VMDIKState{{Name: "右足ＩＫ", Enabled: false}}},
		},
	}
}

func TestFromVMD(t *testing.T) {
	m, err := FromVMD(sampleVMD(), 32)
	require.NoError(t, err)

	assert.Equal(t, "初音ミク", m.ModelName())
	assert.Equal(t, 1, m.Animation(KindBone).Len(), "duplicate record is skipped")
	assert.Equal(t, 10.0, m.Duration())

	bone := m.Animation(KindBone).FindKeyframe(10, "センター")
	require.NotNil(t, bone)
	x := bone.Bone.Interpolation[BoneChannelX]
	assert.Equal(t, DefaultControlQuad, x.Quad())
	assert.Equal(t, 32, x.SampleCount())
	assert.Equal(t, ControlQuad{X1: 64, X2: 10, Y1: 0, Y2: 127}, bone.Bone.Interpolation[BoneChannelRotation].Quad())

	cam := m.Animation(KindCamera).Keyframes()[0].Camera
	assert.InDelta(t, 90, cam.Angle.Y, 1e-4, "camera angles become degrees")
	assert.Equal(t, float32(40), cam.FOV)
	assert.Equal(t, ControlQuad{X1: 1, X2: 2, Y1: 3, Y2: 4}, cam.Interpolation[CameraChannelFOV].Quad())

	light := m.Animation(KindLight).Keyframes()[0].Light
	assert.InDelta(t, 0.5, light.Color.G, 1e-6)

	project := m.Animation(KindProject).Keyframes()[0].Project
	assert.Equal(t, uint8(1), project.ShadowMode)
	assert.Equal(t, DefaultGravityAcceleration, project.GravityAcceleration)

	model := m.Animation(KindModel).Keyframes()[0].Model
	assert.Equal(t, []IKState{{Name: "右足ＩＫ", Enabled: false}}, model.IK)
}

func TestToVMDRoundTrip(t *testing.T) {
	src := sampleVMD()
	src.Bones = src.Bones[:1]

	m, err := FromVMD(src, DefaultSampleCount)
	require.NoError(t, err)

	out := ToVMD(m)
	assert.Equal(t, src.ModelName, out.ModelName)
	require.Len(t, out.Bones, 1)
	assert.Equal(t, src.Bones[0].Interpolation, out.Bones[0].Interpolation)
	assert.Equal(t, src.Bones[0].Position, out.Bones[0].Position)
	assert.Equal(t, src.Morphs, out.Morphs)
	assert.Equal(t, src.SelfShadows, out.SelfShadows)
	assert.Equal(t, src.ShowIK, out.ShowIK)

	require.Len(t, out.Cameras, 1)
	assert.Equal(t, src.Cameras[0].Interpolation[CameraChannelFOV*4:], out.Cameras[0].Interpolation[CameraChannelFOV*4:])
	assert.InDelta(t, src.Cameras[0].Angle[1], out.Cameras[0].Angle[1], 1e-5)
	assert.Equal(t, src.Cameras[0].FOV, out.Cameras[0].FOV)

	parsed, err := formats.ParseVMD(out.Encode())
	require.NoError(t, err)
	assert.Len(t, parsed.Lights, 1)
}

func TestToVMDTruncatesSubFrames(t *testing.T) {
	m := New()
	require.NoError(t, m.AddKeyframe(NewMorphKeyframe(4.75, "あ", 1)))
	require.NoError(t, m.AddKeyframe(NewEffectKeyframe(1, "bloom", true, 1)))

	out := ToVMD(m)
	require.Len(t, out.Morphs, 1)
	assert.Equal(t, uint32(4), out.Morphs[0].Frame)
}
