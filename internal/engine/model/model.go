package model

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/internal/physics"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Model errors.
var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrUnknownBone   = errors.New("unknown bone")
	ErrReleased      = errors.New("model released")
)

// Model is a posed skeleton with morphs, IK switches, effect parameters and
// rigid bodies.
type Model struct {
	name string

	bones     []*Bone
	boneIndex map[string]int

	morphs     []*Morph
	morphIndex map[string]int

	ik      map[string]bool
	effects map[string]EffectParameter
	bodies  []RigidBody

	visible        bool
	physicsEnabled bool

	world  physics.World
	parent *scene.Scene

	updates      int
	morphUpdates int
	released     bool

	log *zap.Logger
}

// New creates an empty visible model.
func New(name string) *Model {
	return &Model{
		name:           name,
		boneIndex:      make(map[string]int),
		morphIndex:     make(map[string]int),
		ik:             make(map[string]bool),
		effects:        make(map[string]EffectParameter),
		visible:        true,
		physicsEnabled: true,
		log:            logger.Named("model").With(zap.String("model", name)),
	}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// AddBone appends a bone. parent must already exist; empty means root.
func (m *Model) AddBone(name, parent string, offset math.Vec3) error {
	if m.released {
		return ErrReleased
	}
	if _, ok := m.boneIndex[name]; ok {
		return fmt.Errorf("bone %q: %w", name, ErrDuplicateName)
	}
	p := -1
	if parent != "" {
		i, ok := m.boneIndex[parent]
		if !ok {
			return fmt.Errorf("parent of %q: %w: %q", name, ErrUnknownBone, parent)
		}
		p = i
	}
	b := &Bone{Name: name, Parent: p, Offset: offset, Rotation: math.QuatIdentity(), world: math.Identity()}
	m.boneIndex[name] = len(m.bones)
	m.bones = append(m.bones, b)
	return nil
}

// AddMorph appends a morph with weight 0.
func (m *Model) AddMorph(name string) error {
	if m.released {
		return ErrReleased
	}
	if _, ok := m.morphIndex[name]; ok {
		return fmt.Errorf("morph %q: %w", name, ErrDuplicateName)
	}
	m.morphIndex[name] = len(m.morphs)
	m.morphs = append(m.morphs, &Morph{Name: name})
	return nil
}

// AddIKChain registers an enabled IK chain.
func (m *Model) AddIKChain(name string) {
	m.ik[name] = true
}

// AddRigidBody creates a body following bone. Kinematic bodies track the
// bone every update; dynamic ones only on a motion state reset.
func (m *Model) AddRigidBody(name, bone string, dynamic bool) (*physics.Body, error) {
	if m.released {
		return nil, ErrReleased
	}
	i, ok := m.boneIndex[bone]
	if !ok {
		return nil, fmt.Errorf("body %q: %w: %q", name, ErrUnknownBone, bone)
	}
	body := &physics.Body{Name: name, Bone: bone, Dynamic: dynamic, Transform: math.Identity()}
	m.bodies = append(m.bodies, RigidBody{Body: body, bone: i})
	if m.world != nil {
		m.world.AddBody(body)
	}
	return body, nil
}

// SetBoneLocalPose sets the local pose of a bone. Unknown bones are ignored.
func (m *Model) SetBoneLocalPose(name string, position math.Vec3, rotation math.Quat) {
	if i, ok := m.boneIndex[name]; ok {
		m.bones[i].Position = position
		m.bones[i].Rotation = rotation
	}
}

// SetMorphWeight sets a morph weight, marking it dirty when it changes.
func (m *Model) SetMorphWeight(name string, weight float32) {
	i, ok := m.morphIndex[name]
	if !ok {
		return
	}
	if mo := m.morphs[i]; mo.Weight != weight {
		mo.Weight = weight
		mo.dirty = true
	}
}

// SetVisible shows or hides the model.
func (m *Model) SetVisible(visible bool) { m.visible = visible }

// SetPhysicsEnabled toggles rigid body tracking.
func (m *Model) SetPhysicsEnabled(enabled bool) { m.physicsEnabled = enabled }

// SetIKEnabled toggles an IK chain. Unknown chains are ignored.
func (m *Model) SetIKEnabled(name string, enabled bool) {
	if _, ok := m.ik[name]; ok {
		m.ik[name] = enabled
	}
}

// SetEffectParameter records an effect parameter.
func (m *Model) SetEffectParameter(name string, visible bool, value float32) {
	m.effects[name] = EffectParameter{Visible: visible, Value: value}
}

// MarkMorphsDirty forces every morph to be reapplied on the next update.
func (m *Model) MarkMorphsDirty() {
	for _, mo := range m.morphs {
		mo.dirty = true
	}
}

// PerformUpdate applies dirty morphs, rebuilds the bone world matrices
// and moves kinematic bodies with their bones.
func (m *Model) PerformUpdate() {
	if m.released {
		return
	}
	m.morphUpdates = 0
	for _, mo := range m.morphs {
		if mo.dirty {
			mo.dirty = false
			m.morphUpdates++
		}
	}
	m.buildWorldMatrices()
	if m.world != nil && m.physicsEnabled {
		for _, rb := range m.bodies {
			if !rb.Body.Dynamic {
				m.world.SyncBody(rb.Body, m.bones[rb.bone].world)
			}
		}
	}
	m.updates++
}

// JoinWorld adds the model's bodies to w, leaving any other world first.
func (m *Model) JoinWorld(w physics.World) {
	if w == nil || m.world == w || m.released {
		return
	}
	if m.world != nil {
		m.LeaveWorld(m.world)
	}
	for _, rb := range m.bodies {
		w.AddBody(rb.Body)
	}
	m.world = w
	m.log.Debug("joined world", zap.Int("bodies", len(m.bodies)))
}

// LeaveWorld removes the model's bodies from w if it is the joined world.
func (m *Model) LeaveWorld(w physics.World) {
	if w == nil || m.world != w {
		return
	}
	for _, rb := range m.bodies {
		w.RemoveBody(rb.Body)
	}
	m.world = nil
	m.log.Debug("left world", zap.Int("bodies", len(m.bodies)))
}

// ResetMotionState teleports every body to its bone's current transform.
func (m *Model) ResetMotionState(w physics.World) {
	if w == nil || m.released {
		return
	}
	m.buildWorldMatrices()
	for _, rb := range m.bodies {
		w.SyncBody(rb.Body, m.bones[rb.bone].world)
	}
}

// World returns the joined physics world, nil if none.
func (m *Model) World() physics.World { return m.world }

// ParentScene returns the scene the model is registered with.
func (m *Model) ParentScene() *scene.Scene { return m.parent }

// SetParentScene sets the scene back-reference.
func (m *Model) SetParentScene(s *scene.Scene) { m.parent = s }

// Release leaves the world and drops all model data. The model is
// unusable afterwards.
func (m *Model) Release() {
	if m.released {
		return
	}
	if m.world != nil {
		m.LeaveWorld(m.world)
	}
	m.bones = nil
	m.boneIndex = map[string]int{}
	m.morphs = nil
	m.morphIndex = map[string]int{}
	m.bodies = nil
	m.parent = nil
	m.released = true
	m.log.Debug("released")
}

// IsReleased reports whether Release has run.
func (m *Model) IsReleased() bool { return m.released }

// IsVisible reports whether the model is shown.
func (m *Model) IsVisible() bool { return m.visible }

// IsPhysicsEnabled reports whether bodies track bones.
func (m *Model) IsPhysicsEnabled() bool { return m.physicsEnabled }

// IsIKEnabled reports whether the named chain is enabled.
func (m *Model) IsIKEnabled(name string) bool { return m.ik[name] }

// EffectParameter returns the named effect parameter.
func (m *Model) EffectParameter(name string) (EffectParameter, bool) {
	p, ok := m.effects[name]
	return p, ok
}

// MorphWeight returns the named morph weight.
func (m *Model) MorphWeight(name string) (float32, bool) {
	i, ok := m.morphIndex[name]
	if !ok {
		return 0, false
	}
	return m.morphs[i].Weight, true
}

// BoneNames returns the bone names in definition order.
func (m *Model) BoneNames() []string {
	names := make([]string, len(m.bones))
	for i, b := range m.bones {
		names[i] = b.Name
	}
	return names
}

// BoneLocalPose returns the local pose of a bone.
func (m *Model) BoneLocalPose(name string) (math.Vec3, math.Quat, bool) {
	i, ok := m.boneIndex[name]
	if !ok {
		return math.Vec3{}, math.QuatIdentity(), false
	}
	return m.bones[i].Position, m.bones[i].Rotation, true
}

// BoneWorldTransform returns a bone's world matrix as of the last update.
func (m *Model) BoneWorldTransform(name string) (math.Mat4, bool) {
	i, ok := m.boneIndex[name]
	if !ok {
		return math.Identity(), false
	}
	return m.bones[i].world, true
}

// BoneWorldPosition returns a bone's world position as of the last update.
func (m *Model) BoneWorldPosition(name string) (math.Vec3, bool) {
	w, ok := m.BoneWorldTransform(name)
	return w.Translation(), ok
}

// Bounds returns the box enclosing every bone as of the last update.
func (m *Model) Bounds() Bounds {
	if len(m.bones) == 0 {
		return Bounds{}
	}
	first := m.bones[0].world.Translation()
	b := Bounds{Min: first, Max: first}
	for _, bone := range m.bones[1:] {
		p := bone.world.Translation()
		b.Min = math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)}
		b.Max = math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)}
	}
	return b
}

// UpdateCount returns how many times PerformUpdate has run.
func (m *Model) UpdateCount() int { return m.updates }

// LastMorphUpdates returns how many morphs the last update applied.
func (m *Model) LastMorphUpdates() int { return m.morphUpdates }
