package model

import "github.com/Faultbox/midgard-motion/pkg/math"

// localMatrix is translate(offset + position) * rotate(rotation).
func (b *Bone) localMatrix() math.Mat4 {
	return math.FromRotationTranslation(b.Rotation.Normalize(), b.Offset.Add(b.Position))
}

// buildWorldMatrices computes every bone's world matrix parent-first.
func (m *Model) buildWorldMatrices() {
	done := make([]bool, len(m.bones))
	visited := make([]bool, len(m.bones))
	for i := range m.bones {
		m.buildBoneMatrix(i, done, visited)
	}
}

// buildBoneMatrix returns the world matrix of bone i, computing parents
// first. A parent cycle is cut at the bone that closes it.
func (m *Model) buildBoneMatrix(i int, done, visited []bool) math.Mat4 {
	b := m.bones[i]
	if done[i] {
		return b.world
	}
	if visited[i] {
		return math.Identity()
	}
	visited[i] = true

	local := b.localMatrix()
	if b.Parent >= 0 && b.Parent < len(m.bones) && b.Parent != i {
		parent := m.buildBoneMatrix(b.Parent, done, visited)
		b.world = parent.Mul(local)
	} else {
		b.world = local
	}
	done[i] = true
	return b.world
}
