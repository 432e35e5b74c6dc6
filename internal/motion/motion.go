package motion

import (
	"fmt"

	"github.com/google/uuid"
)

// Motion bundles at most one Animation per keyframe kind and drives them
// together. It never owns its targets.
type Motion struct {
	id        uuid.UUID
	modelName string
	tracks    [kindCount]*Animation
	targets   Targets
	loop      bool
	released  bool
}

// New creates an empty motion with a fresh identity.
func New() *Motion {
	return &Motion{id: uuid.New()}
}

// ID returns the motion's identity.
func (m *Motion) ID() uuid.UUID { return m.id }

// ModelName returns the model name recorded by the source file.
func (m *Motion) ModelName() string { return m.modelName }

// SetModelName sets the recorded model name.
func (m *Motion) SetModelName(name string) { m.modelName = name }

// SetLoop enables wrapping back to the start once every track has ended.
func (m *Motion) SetLoop(loop bool) { m.loop = loop }

// IsLooping reports whether the motion wraps.
func (m *Motion) IsLooping() bool { return m.loop }

// Animation returns the track for kind, nil if nothing was added to it.
func (m *Motion) Animation(kind Kind) *Animation {
	if kind >= kindCount {
		return nil
	}
	return m.tracks[kind]
}

// AddKeyframe inserts k into the track for its kind, creating the track
// on first use.
func (m *Motion) AddKeyframe(k *Keyframe) error {
	if err := k.validate(); err != nil {
		return err
	}
	a := m.tracks[k.Kind]
	if a == nil {
		a = NewAnimation(k.Kind)
		a.targets = &m.targets
		m.tracks[k.Kind] = a
	}
	if err := a.AddKeyframe(k); err != nil {
		return fmt.Errorf("adding to motion %s: %w", m.id, err)
	}
	return nil
}

// DeleteKeyframe removes *k from its track and clears the handle.
func (m *Motion) DeleteKeyframe(k **Keyframe) bool {
	if k == nil || *k == nil || (*k).Kind >= kindCount {
		return false
	}
	a := m.tracks[(*k).Kind]
	if a == nil {
		return false
	}
	return a.DeleteKeyframe(k)
}

// Model returns the bound model target.
func (m *Motion) Model() Model { return m.targets.Model }

// SetModel binds the model target; nil unbinds.
func (m *Motion) SetModel(model Model) { m.targets.Model = model }

// Camera returns the bound camera target.
func (m *Motion) Camera() Camera { return m.targets.Camera }

// SetCamera binds the camera target; nil unbinds.
func (m *Motion) SetCamera(c Camera) { m.targets.Camera = c }

// Light returns the bound light target.
func (m *Motion) Light() Light { return m.targets.Light }

// SetLight binds the light target; nil unbinds.
func (m *Motion) SetLight(l Light) { m.targets.Light = l }

// SetProject binds the project target; nil unbinds.
func (m *Motion) SetProject(p Project) { m.targets.Project = p }

// IsCameraMotion reports whether the motion only carries camera, light or
// project tracks.
func (m *Motion) IsCameraMotion() bool {
	for _, k := range []Kind{KindBone, KindMorph, KindModel, KindEffect} {
		if a := m.tracks[k]; a != nil && a.Len() > 0 {
			return false
		}
	}
	return true
}

func (m *Motion) each(fn func(a *Animation)) {
	for _, a := range m.tracks {
		if a != nil {
			fn(a)
		}
	}
}

// Advance advances every track by delta. A looping motion that has
// reached its end rewinds every track to the start, keeping the overshoot.
func (m *Motion) Advance(delta float64) {
	m.each(func(a *Animation) { a.Advance(delta) })

	if !m.loop {
		return
	}
	if d := m.Duration(); d > 0 && m.IsReachedTo(d) {
		m.each(func(a *Animation) { a.rewind(0, delta, d) })
	}
}

// Seek moves every track to t and applies its state.
func (m *Motion) Seek(t float64) {
	m.each(func(a *Animation) { a.Seek(t) })
}

// Rewind wraps every track back to target using the motion-wide duration.
func (m *Motion) Rewind(target, delta float64) {
	d := m.Duration()
	m.each(func(a *Animation) { a.rewind(target, delta, d) })
}

// Reset zeroes every track cursor.
func (m *Motion) Reset() {
	m.each(func(a *Animation) { a.Reset() })
}

// IsReachedTo reports whether every non-empty track has reached t.
func (m *Motion) IsReachedTo(t float64) bool {
	reached := true
	m.each(func(a *Animation) {
		if a.Len() > 0 && !a.IsReachedTo(t) {
			reached = false
		}
	})
	return reached
}

// Duration returns the largest time index across tracks.
func (m *Motion) Duration() float64 {
	var d float64
	m.each(func(a *Animation) {
		if v := a.MaxTimeIndex(); v > d {
			d = v
		}
	})
	return d
}

// CurrentTimeIndex returns the furthest track cursor.
func (m *Motion) CurrentTimeIndex() float64 {
	var t float64
	m.each(func(a *Animation) {
		if v := a.CurrentTimeIndex(); v > t {
			t = v
		}
	})
	return t
}

// KeyframeCount returns the total number of keyframes.
func (m *Motion) KeyframeCount() int {
	n := 0
	m.each(func(a *Animation) { n += a.Len() })
	return n
}

// Release drops every track and target binding.
func (m *Motion) Release() {
	m.tracks = [kindCount]*Animation{}
	m.targets = Targets{}
	m.released = true
}

// IsReleased reports whether Release has run.
func (m *Motion) IsReleased() bool { return m.released }
