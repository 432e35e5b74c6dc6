// Package model provides a skeletal model that motions drive and the
// scene updates.
package model

import (
	"github.com/Faultbox/midgard-motion/internal/physics"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Bone is one joint of the skeleton.
type Bone struct {
	Name string
	// Parent is the index of the parent bone, -1 for roots.
	Parent int
	// Offset is the rest position relative to the parent.
	Offset math.Vec3

	// Local pose written by motions.
	Position math.Vec3
	Rotation math.Quat

	world math.Mat4
}

// Morph is a named blend weight.
type Morph struct {
	Name   string
	Weight float32
	dirty  bool
}

// EffectParameter is the state of one effect parameter.
type EffectParameter struct {
	Visible bool
	Value   float32
}

// RigidBody links a physics body to the bone it follows.
type RigidBody struct {
	Body *physics.Body
	bone int
}

// Bounds holds the axis-aligned bounding box of the posed skeleton.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}
