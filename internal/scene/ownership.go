package scene

import "github.com/Faultbox/midgard-motion/internal/motion"

// Ownership is the lifetime discipline a scene applies to what is
// registered with it. It is fixed when the scene is constructed.
type Ownership int

const (
	// Exclusive scenes own registered objects and release them on delete
	// and on teardown.
	Exclusive Ownership = iota
	// Shared scenes hold references only; callers release objects.
	Shared
)

func (o Ownership) String() string {
	if o == Shared {
		return "shared"
	}
	return "exclusive"
}

// policy releases objects the scene gives up.
type policy interface {
	ownership() Ownership
	releaseModel(m Model, e RenderEngine)
	releaseEngine(e RenderEngine)
	releaseMotion(m *motion.Motion)
}

type exclusivePolicy struct{}

func (exclusivePolicy) ownership() Ownership { return Exclusive }

func (exclusivePolicy) releaseModel(m Model, e RenderEngine) {
	if e != nil {
		e.Release()
	}
	m.Release()
}

func (exclusivePolicy) releaseEngine(e RenderEngine) { e.Release() }

func (exclusivePolicy) releaseMotion(m *motion.Motion) { m.Release() }

type sharedPolicy struct{}

func (sharedPolicy) ownership() Ownership { return Shared }
func (sharedPolicy) releaseModel(Model, RenderEngine) {}
func (sharedPolicy) releaseEngine(RenderEngine) {}
func (sharedPolicy) releaseMotion(*motion.Motion) {}
