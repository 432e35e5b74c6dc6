// Package engine owns the lifetime of everything a host application
// builds on top of motions and scenes.
//
// A Context replaces process-wide initialisation: the host creates one,
// calls Init before building scenes and Shutdown when it is done.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/config"
	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/internal/physics"
	"github.com/Faultbox/midgard-motion/internal/scene"
	"github.com/Faultbox/midgard-motion/pkg/formats"
)

// Context lifecycle errors.
var (
	ErrAlreadyInitialized = errors.New("engine already initialized")
	ErrNotInitialized     = errors.New("engine not initialized")
)

// Context holds configuration and the scenes built from it.
type Context struct {
	cfg         *config.Config
	initialized bool
	scenes      []*scene.Scene
	log         *zap.Logger
}

// NewContext creates an uninitialised context. A nil cfg uses defaults.
func NewContext(cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Context{cfg: cfg}
}

// Init validates the configuration and readies the context.
func (c *Context) Init() error {
	if c.initialized {
		return ErrAlreadyInitialized
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	c.log = logger.Named("engine")
	c.initialized = true
	c.log.Debug("initialized",
		zap.String("ownership", c.cfg.Scene.Ownership),
		zap.Bool("physics", c.cfg.Scene.Physics),
		zap.Int("sample_count", c.cfg.Interpolation.SampleCount),
	)
	return nil
}

// IsInitialized reports whether Init succeeded and Shutdown has not run.
func (c *Context) IsInitialized() bool { return c.initialized }

// Config returns the context configuration.
func (c *Context) Config() *config.Config { return c.cfg }

// NewScene builds a scene with the configured ownership. A physics world
// is attached when enabled.
func (c *Context) NewScene() (*scene.Scene, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	o := scene.Exclusive
	if c.cfg.Scene.Ownership == config.OwnershipShared {
		o = scene.Shared
	}
	s := scene.New(o)
	if c.cfg.Scene.Physics {
		s.SetWorldRef(physics.NewWorld())
	}
	c.scenes = append(c.scenes, s)
	return s, nil
}

// Scenes returns the scenes created by this context.
func (c *Context) Scenes() []*scene.Scene {
	out := make([]*scene.Scene, len(c.scenes))
	copy(out, c.scenes)
	return out
}

// LoadMotion reads a VMD file into a motion using the configured sample
// count and loop setting.
func (c *Context) LoadMotion(path string) (*motion.Motion, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	v, err := formats.ParseVMDFile(path)
	if err != nil {
		return nil, err
	}
	return c.BuildMotion(v)
}

// BuildMotion converts parsed VMD data into a motion.
func (c *Context) BuildMotion(v *formats.VMD) (*motion.Motion, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	m, err := motion.FromVMD(v, c.cfg.Interpolation.SampleCount)
	if err != nil {
		return nil, fmt.Errorf("building motion: %w", err)
	}
	m.SetLoop(c.cfg.Playback.Loop)
	c.log.Debug("motion loaded",
		zap.Stringer("motion", m.ID()),
		zap.String("model", m.ModelName()),
		zap.Int("keyframes", m.KeyframeCount()),
		zap.Float64("duration", m.Duration()),
	)
	return m, nil
}

// Shutdown releases every scene the context created and flushes logs.
// The context may be initialised again afterwards.
func (c *Context) Shutdown() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	for _, s := range c.scenes {
		s.Release()
	}
	c.log.Debug("shutdown", zap.Int("scenes", len(c.scenes)))
	c.scenes = nil
	c.initialized = false
	logger.Sync()
	return nil
}
