package motion

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Model receives bone, morph, model and effect track output.
type Model interface {
	Name() string
	SetBoneLocalPose(name string, position math.Vec3, rotation math.Quat)
	SetMorphWeight(name string, weight float32)
	SetVisible(visible bool)
	SetPhysicsEnabled(enabled bool)
	SetIKEnabled(name string, enabled bool)
	SetEffectParameter(name string, visible bool, value float32)
}

// Camera receives camera track output.
type Camera interface {
	SetLookAt(v math.Vec3)
	SetAngle(degrees math.Vec3)
	SetDistance(d float32)
	SetFOV(degrees float32)
	SetPerspective(enabled bool)
}

// Light receives light track output.
type Light interface {
	SetColor(c colorful.Color)
	SetDirection(v math.Vec3)
}

// Project receives project track output.
type Project interface {
	SetGravity(acceleration float32, direction math.Vec3)
	SetShadow(mode uint8, distance float32)
}

// Targets are the objects a track writes to. Nil members are skipped.
type Targets struct {
	Model   Model
	Camera  Camera
	Light   Light
	Project Project
}
