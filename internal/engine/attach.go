package engine

import (
	"github.com/Faultbox/midgard-motion/internal/engine/model"
	"github.com/Faultbox/midgard-motion/internal/engine/renderer"
	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// AttachMotion binds m to s. Camera motions drive the scene camera, and
// the light too when they carry light keyframes. Pure light motions drive
// the scene light. Any other motion drives the model
// named by its ModelName; when the scene has none, a flat stand-in model
// with a trace engine is built from the bones and morphs the motion
// animates.
func AttachMotion(s *scene.Scene, m *motion.Motion) error {
	if cam := m.Animation(motion.KindCamera); cam != nil && cam.Len() > 0 && m.IsCameraMotion() {
		s.SetCameraMotion(m)
		if light := m.Animation(motion.KindLight); light != nil && light.Len() > 0 {
			s.SetLightMotion(m)
		}
		return nil
	}
	if m.IsCameraMotion() && isLightMotion(m) {
		s.SetLightMotion(m)
		return nil
	}

	target := s.FindModel(m.ModelName())
	if target == nil {
		stand, err := StandInModel(m)
		if err != nil {
			return err
		}
		if err := s.AddModel(stand, renderer.New(stand, renderer.Config{}), len(s.Models())); err != nil {
			return err
		}
		target = stand
	}
	return s.AddMotion(m, target)
}

// StandInModel builds a model with one root bone per animated bone and
// one morph per animated morph.
func StandInModel(m *motion.Motion) (*model.Model, error) {
	stand := model.New(m.ModelName())
	if a := m.Animation(motion.KindBone); a != nil {
		for _, bone := range a.ChannelNames() {
			if err := stand.AddBone(bone, "", math.Vec3{}); err != nil {
				return nil, err
			}
		}
	}
	if a := m.Animation(motion.KindMorph); a != nil {
		for _, morph := range a.ChannelNames() {
			if err := stand.AddMorph(morph); err != nil {
				return nil, err
			}
		}
	}
	return stand, nil
}

func isLightMotion(m *motion.Motion) bool {
	light := m.Animation(motion.KindLight)
	if light == nil || light.Len() == 0 {
		return false
	}
	cam := m.Animation(motion.KindCamera)
	return cam == nil || cam.Len() == 0
}
