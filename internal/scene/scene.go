// Package scene coordinates models, motions, render engines, the camera,
// the light and the physics world once per frame.
//
// A frame is driven by Advance (or Seek) followed by Update. Both take an
// UpdateFlags mask naming the subsystems to refresh. The order of the
// sub-steps inside each call is fixed: camera before models, models
// before motion state resets, render engines last.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/engine/camera"
	"github.com/Faultbox/midgard-motion/internal/engine/lighting"
	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/internal/physics"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Scene errors.
var (
	ErrNilObject         = errors.New("nil object")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrReleased          = errors.New("scene released")
)

// Model is a skinned model the scene updates. Implementations must be
// comparable, typically pointers.
type Model interface {
	motion.Model

	PerformUpdate()
	JoinWorld(w physics.World)
	LeaveWorld(w physics.World)
	ResetMotionState(w physics.World)
	MarkMorphsDirty()

	ParentScene() *Scene
	SetParentScene(s *Scene)
	Release()
}

// RenderEngine consumes a model's updated state. Implementations must be
// comparable.
type RenderEngine interface {
	Update()
	Release()
	ParentModel() Model
}

type modelEntry struct {
	model    Model
	engine   RenderEngine
	priority int
}

type engineEntry struct {
	engine   RenderEngine
	priority int
}

// Scene is the per-frame composition root.
type Scene struct {
	policy policy

	models  []modelEntry
	engines []engineEntry
	motions []*motion.Motion

	modelsByName   map[string]Model
	enginesByModel map[Model]RenderEngine
	motionsByID    map[uuid.UUID]*motion.Motion

	camera *camera.Camera
	light  *lighting.Light
	world  physics.World

	currentTimeIndex float64
	released         bool

	log *zap.Logger
}

// NewExclusive creates a scene that owns and releases what it is given.
func NewExclusive() *Scene {
	return newScene(exclusivePolicy{})
}

// NewShared creates a scene that only references what it is given.
func NewShared() *Scene {
	return newScene(sharedPolicy{})
}

// New creates a scene with the given ownership.
func New(o Ownership) *Scene {
	if o == Shared {
		return NewShared()
	}
	return NewExclusive()
}

func newScene(p policy) *Scene {
	s := &Scene{
		policy:         p,
		modelsByName:   make(map[string]Model),
		enginesByModel: make(map[Model]RenderEngine),
		motionsByID:    make(map[uuid.UUID]*motion.Motion),
		camera:         camera.New(),
		light:          lighting.New(),
		log:            logger.Named("scene").With(zap.Stringer("ownership", p.ownership())),
	}
	return s
}

// Ownership returns the scene's lifetime discipline.
func (s *Scene) Ownership() Ownership { return s.policy.ownership() }

// Camera returns the scene camera.
func (s *Scene) Camera() *camera.Camera { return s.camera }

// Light returns the scene light.
func (s *Scene) Light() *lighting.Light { return s.light }

// World returns the attached physics world, nil if none.
func (s *Scene) World() physics.World { return s.world }

// CurrentTimeIndex returns the scene clock.
func (s *Scene) CurrentTimeIndex() float64 { return s.currentTimeIndex }

// IsReleased reports whether Release has run.
func (s *Scene) IsReleased() bool { return s.released }

// AddModel registers m with its render engine (may be nil) at priority.
// The model joins the attached world.
func (s *Scene) AddModel(m Model, e RenderEngine, priority int) error {
	if s.released {
		return ErrReleased
	}
	if m == nil {
		return fmt.Errorf("adding model: %w", ErrNilObject)
	}
	if s.modelIndex(m) >= 0 {
		return fmt.Errorf("model %q: %w", m.Name(), ErrAlreadyRegistered)
	}
	if _, ok := s.modelsByName[m.Name()]; ok {
		return fmt.Errorf("model name %q: %w", m.Name(), ErrAlreadyRegistered)
	}
	if e != nil && s.engineIndex(e) >= 0 {
		return fmt.Errorf("render engine of %q: %w", m.Name(), ErrAlreadyRegistered)
	}

	s.models = append(s.models, modelEntry{model: m, engine: e, priority: priority})
	s.modelsByName[m.Name()] = m
	if e != nil {
		s.engines = append(s.engines, engineEntry{engine: e, priority: priority})
		s.enginesByModel[m] = e
	}
	m.SetParentScene(s)
	if s.world != nil {
		m.JoinWorld(s.world)
	}
	s.log.Debug("model added", zap.String("model", m.Name()), zap.Int("priority", priority))
	return nil
}

// RemoveModel unregisters m without releasing it. Its render engine is
// unregistered too and motions bound to it are unbound.
func (s *Scene) RemoveModel(m Model) bool {
	_, ok := s.removeModel(m)
	return ok
}

func (s *Scene) removeModel(m Model) (RenderEngine, bool) {
	if m == nil {
		return nil, false
	}
	i := s.modelIndex(m)
	if i < 0 {
		return nil, false
	}
	entry := s.models[i]
	if s.world != nil {
		m.LeaveWorld(s.world)
	}
	m.SetParentScene(nil)

	s.models = append(s.models[:i], s.models[i+1:]...)
	delete(s.modelsByName, m.Name())
	if entry.engine != nil {
		if j := s.engineIndex(entry.engine); j >= 0 {
			s.engines = append(s.engines[:j], s.engines[j+1:]...)
		}
		delete(s.enginesByModel, m)
	}
	for _, mo := range s.motions {
		if mo.Model() == motion.Model(m) {
			mo.SetModel(nil)
		}
	}
	s.log.Debug("model removed", zap.String("model", m.Name()))
	return entry.engine, true
}

// DeleteModel unregisters *m, releases it when the scene owns it and
// clears the caller's variable.
func DeleteModel[M Model](s *Scene, m *M) bool {
	if m == nil {
		return false
	}
	var target Model = *m
	engine, ok := s.removeModel(target)
	if ok {
		s.policy.releaseModel(target, engine)
	}
	var zero M
	*m = zero
	return ok
}

// AddRenderEngine registers an engine without a model.
func (s *Scene) AddRenderEngine(e RenderEngine, priority int) error {
	if s.released {
		return ErrReleased
	}
	if e == nil {
		return fmt.Errorf("adding render engine: %w", ErrNilObject)
	}
	if s.engineIndex(e) >= 0 {
		return fmt.Errorf("render engine: %w", ErrAlreadyRegistered)
	}
	s.engines = append(s.engines, engineEntry{engine: e, priority: priority})
	return nil
}

// RemoveRenderEngine unregisters e without releasing it.
func (s *Scene) RemoveRenderEngine(e RenderEngine) bool {
	if e == nil {
		return false
	}
	j := s.engineIndex(e)
	if j < 0 {
		return false
	}
	s.engines = append(s.engines[:j], s.engines[j+1:]...)
	for i := range s.models {
		if s.models[i].engine == e {
			delete(s.enginesByModel, s.models[i].model)
			s.models[i].engine = nil
		}
	}
	return true
}

// DeleteRenderEngine unregisters *e, releases it when the scene owns it
// and clears the caller's variable.
func DeleteRenderEngine[E RenderEngine](s *Scene, e *E) bool {
	if e == nil {
		return false
	}
	var target RenderEngine = *e
	ok := s.RemoveRenderEngine(target)
	if ok {
		s.policy.releaseEngine(target)
	}
	var zero E
	*e = zero
	return ok
}

// AddMotion registers a model motion. With a nil target the motion binds
// to the registered model named by its ModelName, if any.
func (s *Scene) AddMotion(m *motion.Motion, target Model) error {
	if s.released {
		return ErrReleased
	}
	if m == nil {
		return fmt.Errorf("adding motion: %w", ErrNilObject)
	}
	if _, ok := s.motionsByID[m.ID()]; ok {
		return fmt.Errorf("motion %s: %w", m.ID(), ErrAlreadyRegistered)
	}
	if target != nil && s.modelIndex(target) < 0 {
		return fmt.Errorf("motion target %q: %w", target.Name(), ErrNotRegistered)
	}
	if target == nil {
		target = s.FindModel(m.ModelName())
	}
	if target != nil {
		m.SetModel(target)
	}
	s.motions = append(s.motions, m)
	s.motionsByID[m.ID()] = m
	s.log.Debug("motion added", zap.Stringer("motion", m.ID()), zap.Int("keyframes", m.KeyframeCount()))
	return nil
}

// RemoveMotion unregisters m without releasing it and unbinds its model.
func (s *Scene) RemoveMotion(m *motion.Motion) bool {
	if m == nil {
		return false
	}
	if _, ok := s.motionsByID[m.ID()]; !ok {
		return false
	}
	for i, mo := range s.motions {
		if mo == m {
			s.motions = append(s.motions[:i], s.motions[i+1:]...)
			break
		}
	}
	delete(s.motionsByID, m.ID())
	m.SetModel(nil)
	return true
}

// DeleteMotion unregisters *m, releases it when the scene owns it and
// neither the camera nor the light still uses it, and clears the
// caller's variable.
func (s *Scene) DeleteMotion(m **motion.Motion) bool {
	if m == nil {
		return false
	}
	ok := s.RemoveMotion(*m)
	if ok && !s.usesMotion(*m) {
		s.policy.releaseMotion(*m)
	}
	*m = nil
	return ok
}

// SetCameraMotion links m to the camera. A replaced motion is released
// when the scene owns it and nothing else in the scene still uses it.
func (s *Scene) SetCameraMotion(m *motion.Motion) {
	old := s.camera.Motion()
	if old == m {
		return
	}
	s.camera.SetMotion(m)
	if m != nil {
		m.SetProject(s)
	}
	if old != nil && !s.usesMotion(old) {
		old.SetProject(nil)
		s.policy.releaseMotion(old)
	}
}

// SetLightMotion links m to the light. The same motion may drive the
// camera as well; it is still stepped once per frame. A replaced motion
// is released when the scene owns it and nothing else still uses it.
func (s *Scene) SetLightMotion(m *motion.Motion) {
	old := s.light.Motion()
	if old == m {
		return
	}
	s.light.SetMotion(m)
	if m != nil {
		m.SetProject(s)
	}
	if old != nil && !s.usesMotion(old) {
		old.SetProject(nil)
		s.policy.releaseMotion(old)
	}
}

// usesMotion reports whether m is linked to the camera, the light or the
// model motion registry.
func (s *Scene) usesMotion(m *motion.Motion) bool {
	if s.camera.Motion() == m || s.light.Motion() == m {
		return true
	}
	_, ok := s.motionsByID[m.ID()]
	return ok
}

// SetGravity forwards project gravity to the attached world.
func (s *Scene) SetGravity(acceleration float32, direction math.Vec3) {
	if s.world != nil {
		s.world.SetGravity(acceleration, direction)
	}
}

// SetShadow forwards project self-shadow settings to the light.
func (s *Scene) SetShadow(mode uint8, distance float32) {
	s.light.SetShadow(mode, distance)
}

// Advance moves the scene clock forward by delta, advancing the motions
// selected by flags. Each motion moves once even when it drives several
// targets. The clock always moves.
func (s *Scene) Advance(delta float64, flags UpdateFlags) {
	s.step(flags, func(m *motion.Motion) { m.Advance(delta) })
	s.currentTimeIndex += delta
}

// Seek moves the scene clock to t, seeking the motions selected by flags.
func (s *Scene) Seek(t float64, flags UpdateFlags) {
	s.step(flags, func(m *motion.Motion) { m.Seek(t) })
	s.currentTimeIndex = t
}

// step runs fn over the motions selected by flags in camera, light, model
// order, with the motion state reset and forced morph refresh between the
// light and the models.
func (s *Scene) step(flags UpdateFlags, fn func(m *motion.Motion)) {
	seen := make(map[*motion.Motion]bool, len(s.motions)+2)
	once := func(m *motion.Motion) {
		if m != nil && !seen[m] {
			seen[m] = true
			fn(m)
		}
	}
	if flags&UpdateCamera != 0 {
		once(s.camera.Motion())
	}
	if flags&UpdateLight != 0 {
		once(s.light.Motion())
	}
	if flags&ResetMotionState != 0 {
		s.resetMotionState()
	}
	if flags&ForceUpdateAllMorphs != 0 {
		s.markAllMorphsDirty()
	}
	if flags&UpdateModels != 0 {
		for _, m := range s.motions {
			once(m)
		}
	}
}

// Update pushes the current state downstream: camera transform, model
// updates, motion state reset, light transform, then render engines.
func (s *Scene) Update(flags UpdateFlags) {
	if flags&UpdateCamera != 0 {
		s.camera.UpdateTransform()
	}
	if flags&UpdateModels != 0 {
		for _, e := range s.models {
			e.model.PerformUpdate()
		}
	}
	if flags&ResetMotionState != 0 {
		s.resetMotionState()
	}
	if flags&UpdateLight != 0 {
		s.light.UpdateTransform()
	}
	if flags&UpdateRenderEngines != 0 {
		for _, e := range s.engines {
			e.engine.Update()
		}
	}
}

func (s *Scene) resetMotionState() {
	if s.world == nil {
		return
	}
	for _, e := range s.models {
		e.model.ResetMotionState(s.world)
	}
	s.world.ResetBroadphase()
	s.world.ResetConstraintSolver()
}

func (s *Scene) markAllMorphsDirty() {
	for _, e := range s.models {
		e.model.MarkMorphsDirty()
	}
}

// Sort orders models and render engines by ascending priority. Equal
// priorities keep registration order.
func (s *Scene) Sort() {
	sort.SliceStable(s.models, func(i, j int) bool { return s.models[i].priority < s.models[j].priority })
	sort.SliceStable(s.engines, func(i, j int) bool { return s.engines[i].priority < s.engines[j].priority })
}

// SetWorldRef attaches w, moving every model out of the previous world
// and into w. nil detaches.
func (s *Scene) SetWorldRef(w physics.World) {
	if w == s.world {
		return
	}
	if s.world != nil {
		for _, e := range s.models {
			e.model.LeaveWorld(s.world)
		}
	}
	s.world = w
	if w != nil {
		for _, e := range s.models {
			e.model.JoinWorld(w)
		}
	}
	s.log.Debug("world changed", zap.Bool("attached", w != nil), zap.Int("models", len(s.models)))
}

// FindModel returns the model named name, nil if none.
func (s *Scene) FindModel(name string) Model {
	return s.modelsByName[name]
}

// FindRenderEngine returns the engine registered with m, nil if none.
func (s *Scene) FindRenderEngine(m Model) RenderEngine {
	if m == nil {
		return nil
	}
	return s.enginesByModel[m]
}

// FindMotion returns the registered motion with id, nil if none.
func (s *Scene) FindMotion(id uuid.UUID) *motion.Motion {
	return s.motionsByID[id]
}

// Models returns the registered models in registry order.
func (s *Scene) Models() []Model {
	out := make([]Model, len(s.models))
	for i, e := range s.models {
		out[i] = e.model
	}
	return out
}

// RenderEngines returns the registered engines in registry order.
func (s *Scene) RenderEngines() []RenderEngine {
	out := make([]RenderEngine, len(s.engines))
	for i, e := range s.engines {
		out[i] = e.engine
	}
	return out
}

// Motions returns the registered model motions.
func (s *Scene) Motions() []*motion.Motion {
	out := make([]*motion.Motion, len(s.motions))
	copy(out, s.motions)
	return out
}

// MaxTimeIndex returns the longest duration among all motions, including
// the camera and light motions.
func (s *Scene) MaxTimeIndex() float64 {
	var d float64
	s.eachMotion(func(m *motion.Motion) {
		if v := m.Duration(); v > d {
			d = v
		}
	})
	return d
}

// IsReachedTo reports whether every motion has reached t.
func (s *Scene) IsReachedTo(t float64) bool {
	reached := true
	s.eachMotion(func(m *motion.Motion) {
		if !m.IsReachedTo(t) {
			reached = false
		}
	})
	return reached
}

func (s *Scene) eachMotion(fn func(m *motion.Motion)) {
	s.step(UpdateCamera|UpdateLight|UpdateModels, fn)
}

// Release detaches everything from the scene. An exclusive scene also
// releases every model, render engine and motion it holds.
func (s *Scene) Release() {
	if s.released {
		return
	}
	var held []*motion.Motion
	s.eachMotion(func(m *motion.Motion) { held = append(held, m) })
	s.camera.SetMotion(nil)
	s.light.SetMotion(nil)
	for _, m := range held {
		m.SetProject(nil)
		m.SetModel(nil)
		s.policy.releaseMotion(m)
	}

	owned := make(map[RenderEngine]bool)
	for _, e := range s.models {
		if s.world != nil {
			e.model.LeaveWorld(s.world)
		}
		e.model.SetParentScene(nil)
		if e.engine != nil {
			owned[e.engine] = true
		}
		s.policy.releaseModel(e.model, e.engine)
	}
	for _, e := range s.engines {
		if !owned[e.engine] {
			s.policy.releaseEngine(e.engine)
		}
	}

	s.models = nil
	s.engines = nil
	s.motions = nil
	s.modelsByName = map[string]Model{}
	s.enginesByModel = map[Model]RenderEngine{}
	s.motionsByID = map[uuid.UUID]*motion.Motion{}
	s.world = nil
	s.released = true
	s.log.Debug("scene released")
}

func (s *Scene) modelIndex(m Model) int {
	for i, e := range s.models {
		if e.model == m {
			return i
		}
	}
	return -1
}

func (s *Scene) engineIndex(e RenderEngine) int {
	for i, en := range s.engines {
		if en.engine == e {
			return i
		}
	}
	return -1
}
