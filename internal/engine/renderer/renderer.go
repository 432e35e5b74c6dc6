// Package renderer provides headless render engines that record what a
// model looks like after each scene update.
package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/engine/model"
	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/math"
)

// Config holds trace engine configuration.
type Config struct {
	// Bones limits snapshots to these bones. Empty means every bone.
	Bones []string
	// History is the number of frames kept. Zero keeps only the last one.
	History int
}

// Frame is one snapshot of a model.
type Frame struct {
	Index   int
	Visible bool
	Bones   map[string]math.Vec3
	Bounds  model.Bounds
}

// TraceEngine snapshots bone world positions of its model on every
// Update and logs them at debug level.
type TraceEngine struct {
	config Config
	model  *model.Model

	frames   []Frame
	count    int
	released bool

	log *zap.Logger
}

// New creates a trace engine bound to m.
func New(m *model.Model, cfg Config) *TraceEngine {
	if cfg.History < 1 {
		cfg.History = 1
	}
	return &TraceEngine{
		config: cfg,
		model:  m,
		log:    logger.Named("renderer").With(zap.String("model", m.Name())),
	}
}

// Update records a frame.
func (e *TraceEngine) Update() {
	if e.released || e.model.IsReleased() {
		return
	}
	names := e.config.Bones
	if len(names) == 0 {
		names = e.model.BoneNames()
	}
	f := Frame{
		Index:   e.count,
		Visible: e.model.IsVisible(),
		Bones:   make(map[string]math.Vec3, len(names)),
		Bounds:  e.model.Bounds(),
	}
	for _, name := range names {
		if p, ok := e.model.BoneWorldPosition(name); ok {
			f.Bones[name] = p
		}
	}
	e.count++

	if len(e.frames) == e.config.History {
		copy(e.frames, e.frames[1:])
		e.frames = e.frames[:len(e.frames)-1]
	}
	e.frames = append(e.frames, f)

	if ce := e.log.Check(zap.DebugLevel, "frame"); ce != nil {
		fields := []zap.Field{zap.Int("frame", f.Index), zap.Bool("visible", f.Visible)}
		for _, name := range names {
			if p, ok := f.Bones[name]; ok {
				fields = append(fields, zap.Float32s(name, []float32{p.X, p.Y, p.Z}))
			}
		}
		ce.Write(fields...)
	}
}

// Release drops recorded frames.
func (e *TraceEngine) Release() {
	if e.released {
		return
	}
	e.frames = nil
	e.released = true
	e.log.Debug("released", zap.Int("frames", e.count))
}

// ParentModel returns the traced model.
func (e *TraceEngine) ParentModel() scene.Model { return e.model }

// FrameCount returns the number of updates recorded since creation.
func (e *TraceEngine) FrameCount() int { return e.count }

// Frames returns the retained frames, oldest first.
func (e *TraceEngine) Frames() []Frame {
	out := make([]Frame, len(e.frames))
	copy(out, e.frames)
	return out
}

// LastFrame returns the most recent frame.
func (e *TraceEngine) LastFrame() (Frame, bool) {
	if len(e.frames) == 0 {
		return Frame{}, false
	}
	return e.frames[len(e.frames)-1], true
}

// IsReleased reports whether Release has run.
func (e *TraceEngine) IsReleased() bool { return e.released }
