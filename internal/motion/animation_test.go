package motion

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-motion/pkg/math"
)

func boneAt(t float64, name string, x float32) *Keyframe {
	return NewBoneKeyframe(t, name, math.Vec3{X: x}, math.QuatIdentity())
}

func TestAnimation_AddKeyframeKeepsOrder(t *testing.T) {
	a := NewAnimation(KindBone)
	for _, ti := range []float64{20, 0, 10, 5, 15} {
		require.NoError(t, a.AddKeyframe(boneAt(ti, "センター", 0)))
	}
	require.NoError(t, a.AddKeyframe(boneAt(10, "上半身", 0)))

	var times []float64
	for _, k := range a.Keyframes() {
		times = append(times, k.TimeIndex)
	}
	assert.Equal(t, []float64{0, 5, 10, 10, 15, 20}, times)
	assert.Equal(t, "センター", a.Keyframes()[2].Name, "ties order by name")
	assert.Equal(t, "上半身", a.Keyframes()[3].Name)
	assert.Equal(t, []string{"センター", "上半身"}, a.ChannelNames())
	assert.Equal(t, 20.0, a.MaxTimeIndex())
}

func TestAnimation_AddKeyframeRejects(t *testing.T) {
	a := NewAnimation(KindBone)
	k := boneAt(10, "頭", 0)
	require.NoError(t, a.AddKeyframe(k))

	tests := []struct {
		name string
		k    *Keyframe
		want error
	}{
		{"duplicate time and name", boneAt(10, "頭", 1), ErrDuplicateKeyframe},
		{"same keyframe twice", k, ErrDuplicateKeyframe},
		{"wrong kind", NewMorphKeyframe(3, "あ", 1), ErrKindMismatch},
		{"nil keyframe", nil, ErrInvalidKeyframe},
		{"missing payload", &Keyframe{Kind: KindBone, TimeIndex: 1}, ErrInvalidKeyframe},
		{"payload of other kind", &Keyframe{Kind: KindBone, Morph: &MorphKeyframe{}}, ErrInvalidKeyframe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, a.AddKeyframe(tt.k), tt.want)
			assert.Equal(t, 1, a.Len(), "track must be unchanged")
		})
	}
}

func TestAnimation_DeleteKeyframe(t *testing.T) {
	a := NewAnimation(KindBone)
	k0 := boneAt(0, "頭", 0)
	k1 := boneAt(10, "頭", 0)
	require.NoError(t, a.AddKeyframe(k0))
	require.NoError(t, a.AddKeyframe(k1))

	handle := k1
	assert.True(t, a.DeleteKeyframe(&handle))
	assert.Nil(t, handle)
	assert.Equal(t, 1, a.Len())
	assert.Nil(t, a.FindKeyframe(10, "頭"))
	assert.Same(t, k0, a.FindKeyframe(0, "頭"))

	stranger := boneAt(0, "頭", 0)
	assert.False(t, a.DeleteKeyframe(&stranger))
	assert.NotNil(t, stranger, "keyframes not in the track keep their handle")

	handle = k0
	assert.True(t, a.DeleteKeyframe(&handle))
	assert.Empty(t, a.ChannelNames())
}

func TestFindKeyframeIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		a := NewAnimation(KindMorph)
		present := make(map[float64]bool)
		for i := 0; i < 50; i++ {
			ti := float64(rng.Intn(200))
			if a.AddKeyframe(NewMorphKeyframe(ti, "あ", 0)) == nil {
				present[ti] = true
			}
		}
		keyframes := a.Keyframes()
		for ti := -1.0; ti <= 201; ti++ {
			i := a.FindKeyframeIndex(ti)
			if present[ti] {
				require.GreaterOrEqual(t, i, 0, "time %v", ti)
				assert.Equal(t, ti, keyframes[i].TimeIndex)
			} else {
				assert.Equal(t, -1, i, "time %v", ti)
			}
		}
		assert.Equal(t, -1, a.FindKeyframeIndex(0.5))
	}
	assert.Equal(t, -1, FindKeyframeIndex(3, nil))
}

func TestAnimation_AdvanceLagsOneStep(t *testing.T) {
	a := NewAnimation(KindBone)
	for _, k := range []*Keyframe{boneAt(0, "センター", 0), boneAt(10, "センター", 10), boneAt(20, "センター", 30)} {
		require.NoError(t, a.AddKeyframe(k))
	}
	rec := newRecorder()
	a.Bind(Targets{Model: rec})

	a.Advance(5)
	assert.Equal(t, float32(0), rec.poses["センター"].Position.X, "first advance applies time 0")

	a.Advance(5)
	assert.Equal(t, 10.0, a.CurrentTimeIndex())
	assert.Equal(t, 5.0, a.PreviousTimeIndex())

	at5, ok := a.EvaluateBone("センター", 5)
	require.True(t, ok)
	at10, _ := a.EvaluateBone("センター", 10)
	assert.Equal(t, at5.Position, rec.poses["センター"].Position)
	assert.NotEqual(t, at10.Position, rec.poses["センター"].Position)
	assert.Equal(t, 2, rec.boneWrites)
}

func TestAnimation_SeekIdempotent(t *testing.T) {
	a := NewAnimation(KindBone)
	k := NewBoneKeyframe(30, "腕", math.Vec3{X: 3, Y: -2, Z: 1}, math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1.2))
	k.Bone.SetInterpolation(BoneChannelRotation, ControlQuad{X1: 64, X2: 10, Y1: 0, Y2: 127}, 64)
	require.NoError(t, a.AddKeyframe(boneAt(0, "腕", 0)))
	require.NoError(t, a.AddKeyframe(k))

	rec := newRecorder()
	a.Bind(Targets{Model: rec})

	a.Seek(12.25)
	first := rec.poses["腕"]
	a.Seek(12.25)
	assert.Equal(t, first, rec.poses["腕"])
	assert.Equal(t, 12.25, a.CurrentTimeIndex())
	assert.Equal(t, 12.25, a.PreviousTimeIndex())
}

func TestAnimation_Rewind(t *testing.T) {
	a := NewAnimation(KindMorph)
	require.NoError(t, a.AddKeyframe(NewMorphKeyframe(0, "あ", 0)))
	require.NoError(t, a.AddKeyframe(NewMorphKeyframe(30, "あ", 1)))

	const delta = 0.7
	for !a.IsReachedTo(a.MaxTimeIndex()) {
		a.Advance(delta)
	}
	overshoot := a.CurrentTimeIndex() - a.MaxTimeIndex()

	a.Rewind(0, delta)
	assert.InDelta(t, overshoot, a.CurrentTimeIndex(), 1e-9)
	assert.Equal(t, 0.0, a.PreviousTimeIndex())

	a.Reset()
	assert.Equal(t, 0.0, a.CurrentTimeIndex())
	assert.Equal(t, 0.0, a.PreviousTimeIndex())
}

func TestAnimation_EvaluateBoneUsesNextCurve(t *testing.T) {
	a := NewAnimation(KindBone)
	start := boneAt(0, "足", 0)
	end := boneAt(10, "足", 10)
	for ch := 0; ch < BoneChannelCount; ch++ {
		start.Bone.SetInterpolation(ch, ControlQuad{X1: 127, X2: 127, Y1: 0, Y2: 0}, 64)
		end.Bone.SetInterpolation(ch, LinearControlQuad, 64)
	}
	require.NoError(t, a.AddKeyframe(start))
	require.NoError(t, a.AddKeyframe(end))

	pose, ok := a.EvaluateBone("足", 2.5)
	require.True(t, ok)
	assert.InDelta(t, 2.5, pose.Position.X, 1e-5)
}

func TestAnimation_EvaluateClampsOutsideRange(t *testing.T) {
	a := NewAnimation(KindBone)
	require.NoError(t, a.AddKeyframe(boneAt(10, "足", 1)))
	require.NoError(t, a.AddKeyframe(boneAt(20, "足", 2)))

	before, ok := a.EvaluateBone("足", -100)
	require.True(t, ok)
	assert.Equal(t, float32(1), before.Position.X)

	after, _ := a.EvaluateBone("足", 1e6)
	assert.Equal(t, float32(2), after.Position.X)

	_, ok = a.EvaluateBone("missing", 5)
	assert.False(t, ok)
	_, ok = a.EvaluateMorph("足", 5)
	assert.False(t, ok, "wrong kind evaluates to nothing")
}

func TestAnimation_EvaluateRotationSlerps(t *testing.T) {
	a := NewAnimation(KindBone)
	half := math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/2)
	end := NewBoneKeyframe(10, "首", math.Vec3{}, half)
	end.Bone.SetInterpolation(BoneChannelRotation, LinearControlQuad, 64)
	require.NoError(t, a.AddKeyframe(NewBoneKeyframe(0, "首", math.Vec3{}, math.QuatIdentity())))
	require.NoError(t, a.AddKeyframe(end))

	pose, _ := a.EvaluateBone("首", 5)
	want := math.QuatFromAxisAngle(math.Vec3{Z: 1}, gomath.Pi/4)
	assert.True(t, pose.Rotation.ApproxEqual(want, 1e-4), "got %+v", pose.Rotation)
}

func TestAnimation_SteppedKinds(t *testing.T) {
	a := NewAnimation(KindEffect)
	require.NoError(t, a.AddKeyframe(NewEffectKeyframe(0, "bloom", true, 0.2)))
	require.NoError(t, a.AddKeyframe(NewEffectKeyframe(10, "bloom", false, 0.8)))

	st, ok := a.EvaluateEffect("bloom", 9.99)
	require.True(t, ok)
	assert.Equal(t, float32(0.2), st.Parameter)

	st, _ = a.EvaluateEffect("bloom", 10)
	assert.Equal(t, float32(0.8), st.Parameter)
	assert.False(t, st.Visible)
}

func TestAnimation_SequentialAndRandomAccessAgree(t *testing.T) {
	a := NewAnimation(KindMorph)
	for i := 0; i <= 100; i += 5 {
		require.NoError(t, a.AddKeyframe(NewMorphKeyframe(float64(i), "い", float32(i%3))))
	}
	fresh := NewAnimation(KindMorph)
	for _, k := range a.Keyframes() {
		require.NoError(t, fresh.AddKeyframe(NewMorphKeyframe(k.TimeIndex, k.Name, k.Morph.Weight)))
	}

	forward := make(map[float64]float32)
	for ti := 0.0; ti <= 100; ti += 0.5 {
		forward[ti], _ = a.EvaluateMorph("い", ti)
	}
	for ti := 100.0; ti >= 0; ti -= 0.5 {
		got, _ := fresh.EvaluateMorph("い", ti)
		assert.Equal(t, forward[ti], got, "time %v", ti)
	}
}

func TestAnimation_Refresh(t *testing.T) {
	a := NewAnimation(KindMorph)
	k0 := NewMorphKeyframe(0, "う", 0)
	k1 := NewMorphKeyframe(10, "う", 1)
	require.NoError(t, a.AddKeyframe(k0))
	require.NoError(t, a.AddKeyframe(k1))

	k0.TimeIndex = 20
	require.NoError(t, a.Refresh())
	assert.Equal(t, []*Keyframe{k1, k0}, a.Keyframes())

	k1.TimeIndex = 20
	assert.ErrorIs(t, a.Refresh(), ErrDuplicateKeyframe)
	assert.Equal(t, 1, a.Len())
}
