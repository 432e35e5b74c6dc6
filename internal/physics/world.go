// Package physics defines the rigid-body world models attach to.
//
// Simulation is not done here; the World interface is the narrow surface
// the scene and models need, and BasicWorld is a bookkeeping
// implementation used by the player and tests.
package physics

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Body is a rigid body driven by (or driving) one bone.
type Body struct {
	Name      string
	Bone      string
	Dynamic   bool
	Transform math.Mat4
}

// World is a physics world bodies can join and leave.
type World interface {
	AddBody(b *Body)
	RemoveBody(b *Body)
	// SyncBody teleports b to transform, discarding its velocity.
	SyncBody(b *Body, transform math.Mat4)
	ResetBroadphase()
	ResetConstraintSolver()
	SetGravity(acceleration float32, direction math.Vec3)
}

// BasicWorld tracks membership and transforms without simulating.
type BasicWorld struct {
	bodies []*Body
	index  map[*Body]int

	gravityAcceleration float32
	gravityDirection    math.Vec3

	broadphaseResets int
	solverResets     int

	log *zap.Logger
}

// NewWorld creates an empty world with earth gravity.
func NewWorld() *BasicWorld {
	return &BasicWorld{
		index:               make(map[*Body]int),
		gravityAcceleration: 9.8,
		gravityDirection:    math.Vec3{Y: -1},
		log:                 logger.Named("physics"),
	}
}

// AddBody adds b. Adding a body twice is a no-op.
func (w *BasicWorld) AddBody(b *Body) {
	if b == nil {
		return
	}
	if _, ok := w.index[b]; ok {
		return
	}
	w.index[b] = len(w.bodies)
	w.bodies = append(w.bodies, b)
	w.log.Debug("body added", zap.String("body", b.Name), zap.Int("count", len(w.bodies)))
}

// RemoveBody removes b if present.
func (w *BasicWorld) RemoveBody(b *Body) {
	i, ok := w.index[b]
	if !ok {
		return
	}
	last := len(w.bodies) - 1
	w.bodies[i] = w.bodies[last]
	w.index[w.bodies[i]] = i
	w.bodies = w.bodies[:last]
	delete(w.index, b)
	w.log.Debug("body removed", zap.String("body", b.Name), zap.Int("count", len(w.bodies)))
}

// SyncBody moves a member body to transform.
func (w *BasicWorld) SyncBody(b *Body, transform math.Mat4) {
	if _, ok := w.index[b]; ok {
		b.Transform = transform
	}
}

// ResetBroadphase clears cached pair data.
func (w *BasicWorld) ResetBroadphase() { w.broadphaseResets++ }

// ResetConstraintSolver clears warm-starting data.
func (w *BasicWorld) ResetConstraintSolver() { w.solverResets++ }

// SetGravity sets the world gravity. The direction is normalized.
func (w *BasicWorld) SetGravity(acceleration float32, direction math.Vec3) {
	w.gravityAcceleration = acceleration
	w.gravityDirection = direction.Normalize()
}

// Gravity returns the gravity vector.
func (w *BasicWorld) Gravity() math.Vec3 {
	return w.gravityDirection.Scale(w.gravityAcceleration)
}

// Contains reports whether b is a member.
func (w *BasicWorld) Contains(b *Body) bool {
	_, ok := w.index[b]
	return ok
}

// BodyCount returns the number of member bodies.
func (w *BasicWorld) BodyCount() int { return len(w.bodies) }

// Bodies returns the member bodies.
func (w *BasicWorld) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// ResetCounts returns how many broadphase and solver resets were requested.
func (w *BasicWorld) ResetCounts() (broadphase, solver int) {
	return w.broadphaseResets, w.solverResets
}
