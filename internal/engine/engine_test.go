package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-motion/internal/config"
	"github.com/Faultbox/midgard-motion/internal/engine/model"
	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/formats"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

func TestContextLifecycle(t *testing.T) {
	c := NewContext(nil)

	_, err := c.NewScene()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, c.Shutdown(), ErrNotInitialized)

	require.NoError(t, c.Init())
	assert.ErrorIs(t, c.Init(), ErrAlreadyInitialized)
	assert.True(t, c.IsInitialized())

	s, err := c.NewScene()
	require.NoError(t, err)
	assert.Equal(t, scene.Exclusive, s.Ownership())
	assert.Nil(t, s.World())

	m := model.New("miku")
	require.NoError(t, s.AddModel(m, nil, 0))

	require.NoError(t, c.Shutdown())
	assert.True(t, s.IsReleased())
	assert.True(t, m.IsReleased(), "exclusive scenes release their models on shutdown")
	assert.False(t, c.IsInitialized())

	require.NoError(t, c.Init(), "a shut down context can be initialised again")
}

func TestContextInitValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Playback.FPS = 0
	err := NewContext(cfg).Init()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestContextSharedSceneWithPhysics(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Ownership = config.OwnershipShared
	cfg.Scene.Physics = true
	c := NewContext(cfg)
	require.NoError(t, c.Init())

	s, err := c.NewScene()
	require.NoError(t, err)
	assert.Equal(t, scene.Shared, s.Ownership())
	assert.NotNil(t, s.World())

	m := model.New("miku")
	require.NoError(t, s.AddModel(m, nil, 0))
	require.NoError(t, c.Shutdown())
	assert.False(t, m.IsReleased(), "shared scenes leave models to the caller")
}

func sampleVMD() *formats.VMD {
	return &formats.VMD{
		Version:   formats.VMDVersion2,
		ModelName: "miku",
		Bones: []formats.VMDBoneKeyframe{
			{Name: "center", Frame: 0, Rotation: [4]float32{0, 0, 0, 1}},
			{Name: "center", Frame: 10, Position: [3]float32{0, 5, 0}, Rotation: [4]float32{0, 0, 0, 1}},
		},
	}
}

func TestLoadMotion(t *testing.T) {
	cfg := config.Default()
	cfg.Playback.Loop = true
	c := NewContext(cfg)

	path := filepath.Join(t.TempDir(), "dance.vmd")
	require.NoError(t, formats.WriteVMDFile(path, sampleVMD()))

	_, err := c.LoadMotion(path)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, c.Init())
	m, err := c.LoadMotion(path)
	require.NoError(t, err)
	assert.Equal(t, "miku", m.ModelName())
	assert.Equal(t, 2, m.KeyframeCount())
	assert.Equal(t, 10.0, m.Duration())
	assert.True(t, m.IsLooping())

	_, err = c.LoadMotion(filepath.Join(t.TempDir(), "missing.vmd"))
	assert.Error(t, err)
}

func TestPlayerRunsUntilMotionsEnd(t *testing.T) {
	c := NewContext(nil)
	require.NoError(t, c.Init())
	s, err := c.NewScene()
	require.NoError(t, err)

	m := model.New("miku")
	require.NoError(t, m.AddBone("center", "", math.Vec3{}))
	require.NoError(t, s.AddModel(m, nil, 0))

	mo, err := c.BuildMotion(sampleVMD())
	require.NoError(t, err)
	require.NoError(t, s.AddMotion(mo, nil))

	var last float64
	p := NewPlayer(s, c.Config().Playback)
	p.OnFrame = func(_ int, ti float64) { last = ti }

	frames, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, frames)
	assert.Equal(t, 10.0, last)
	assert.Equal(t, 12, m.UpdateCount(), "one update from Start, one per frame and one for the end pose")

	pos, _, ok := m.BoneLocalPose("center")
	require.True(t, ok)
	assert.True(t, pos.ApproxEqual(math.Vec3{Y: 5}, 1e-5), "last keyframe pose applied, got %v", pos)
}

func TestPlayerFrameLimitAndCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Playback.Frames = 3
	cfg.Playback.Loop = true
	s := scene.NewShared()

	p := NewPlayer(s, cfg.Playback)
	frames, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, frames)

	cfg.Playback.Frames = 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frames, err = NewPlayer(s, cfg.Playback).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, frames)
}

func TestAttachMotion(t *testing.T) {
	s := scene.NewShared()

	cam := motion.New()
	require.NoError(t, cam.AddKeyframe(motion.NewCameraKeyframe(0, math.Vec3{}, math.Vec3{}, -30, 30)))
	require.NoError(t, AttachMotion(s, cam))
	assert.Same(t, cam, s.Camera().Motion())

	light := motion.New()
	require.NoError(t, light.AddKeyframe(motion.NewLightKeyframe(0, colorful.Color{R: 1}, math.Vec3{Y: -1})))
	require.NoError(t, AttachMotion(s, light))
	assert.Same(t, light, s.Light().Motion())

	both := motion.New()
	require.NoError(t, both.AddKeyframe(motion.NewCameraKeyframe(0, math.Vec3{}, math.Vec3{}, -30, 30)))
	require.NoError(t, both.AddKeyframe(motion.NewLightKeyframe(0, colorful.Color{G: 1}, math.Vec3{Y: -1})))
	require.NoError(t, AttachMotion(s, both))
	assert.Same(t, both, s.Camera().Motion())
	assert.Same(t, both, s.Light().Motion(), "camera motions with light keyframes drive the light too")

	dance := motion.New()
	dance.SetModelName("miku")
	require.NoError(t, dance.AddKeyframe(motion.NewBoneKeyframe(0, "center", math.Vec3{}, math.QuatIdentity())))
	require.NoError(t, dance.AddKeyframe(motion.NewBoneKeyframe(0, "head", math.Vec3{}, math.QuatIdentity())))
	require.NoError(t, dance.AddKeyframe(motion.NewMorphKeyframe(0, "smile", 1)))
	require.NoError(t, AttachMotion(s, dance))

	stand, ok := s.FindModel("miku").(*model.Model)
	require.True(t, ok, "a stand-in model should be registered")
	assert.Equal(t, []string{"center", "head"}, stand.BoneNames())
	assert.NotNil(t, s.FindRenderEngine(stand))
	assert.Equal(t, motion.Model(stand), dance.Model())

	// A second motion for the same model reuses it.
	face := motion.New()
	face.SetModelName("miku")
	require.NoError(t, face.AddKeyframe(motion.NewMorphKeyframe(0, "smile", 0)))
	require.NoError(t, AttachMotion(s, face))
	assert.Len(t, s.Models(), 1)
}
