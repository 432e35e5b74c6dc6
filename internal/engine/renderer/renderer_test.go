package renderer

import (
	"testing"

	"github.com/Faultbox/midgard-motion/internal/engine/model"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

func newModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("miku")
	if err := m.AddBone("center", "", math.Vec3{Y: 8}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddBone("head", "center", math.Vec3{Y: 6}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTraceEngineRecordsFrames(t *testing.T) {
	m := newModel(t)
	e := New(m, Config{History: 2})

	s := scene.NewShared()
	if err := s.AddModel(m, e, 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		m.SetBoneLocalPose("center", math.Vec3{X: float32(i)}, math.QuatIdentity())
		s.Update(scene.UpdateModels | scene.UpdateRenderEngines)
	}

	if e.FrameCount() != 3 {
		t.Errorf("expected 3 frames, got %d", e.FrameCount())
	}
	frames := e.Frames()
	if len(frames) != 2 || frames[0].Index != 1 || frames[1].Index != 2 {
		t.Fatalf("expected frames 1 and 2 retained, got %+v", frames)
	}

	last, ok := e.LastFrame()
	if !ok {
		t.Fatal("no last frame")
	}
	if p := last.Bones["head"]; !p.ApproxEqual(math.Vec3{X: 2, Y: 14}, 1e-5) {
		t.Errorf("head position: got %v", p)
	}
	if !last.Visible {
		t.Error("model should be visible")
	}
}

func TestTraceEngineBoneFilter(t *testing.T) {
	m := newModel(t)
	e := New(m, Config{Bones: []string{"head", "missing"}})
	m.PerformUpdate()
	e.Update()

	last, _ := e.LastFrame()
	if len(last.Bones) != 1 {
		t.Errorf("expected only head, got %v", last.Bones)
	}
}

func TestTraceEngineRelease(t *testing.T) {
	m := newModel(t)
	e := New(m, Config{})
	if e.ParentModel() != scene.Model(m) {
		t.Error("parent model mismatch")
	}

	e.Update()
	e.Release()
	e.Update()

	if !e.IsReleased() || e.FrameCount() != 1 {
		t.Errorf("released engine must stop recording, frames=%d", e.FrameCount())
	}
	if _, ok := e.LastFrame(); ok {
		t.Error("frames should be dropped on release")
	}
}
