package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/config"
	"github.com/Faultbox/midgard-motion/internal/logger"
	"github.com/Faultbox/midgard-motion/internal/scene"
)

// Player steps a scene one motion frame at a time.
type Player struct {
	scene *scene.Scene
	cfg   config.PlaybackConfig
	frame int

	// OnFrame runs after every step with the scene time index.
	OnFrame func(frame int, timeIndex float64)
}

// NewPlayer creates a player for s.
func NewPlayer(s *scene.Scene, cfg config.PlaybackConfig) *Player {
	return &Player{scene: s, cfg: cfg}
}

// Start seeks every motion to the configured start frame and settles the
// physics world there.
func (p *Player) Start() {
	flags := scene.UpdateAll | scene.ResetMotionState
	p.scene.Seek(p.cfg.StartFrame, flags)
	p.scene.Update(flags)
	p.frame = 0
}

// Step advances the scene by one frame and updates everything.
func (p *Player) Step() {
	p.scene.Advance(1, scene.UpdateAll)
	p.scene.Update(scene.UpdateAll)
	p.frame++
	if p.OnFrame != nil {
		p.OnFrame(p.frame, p.scene.CurrentTimeIndex())
	}
}

// Finish applies the pose at the scene time. Advance applies the pose
// before moving the cursor, so without this the last keyframe is never
// shown.
func (p *Player) Finish() {
	p.scene.Seek(p.scene.CurrentTimeIndex(), scene.UpdateAll)
	p.scene.Update(scene.UpdateAll)
}

// Frame returns the number of steps taken since Start.
func (p *Player) Frame() int { return p.frame }

// Done reports whether playback should stop: the configured frame count
// was reached, or with no count, every motion has ended. Looping motions
// without a frame count never finish.
func (p *Player) Done() bool {
	if p.cfg.Frames > 0 {
		return p.frame >= p.cfg.Frames
	}
	if p.cfg.Loop {
		return false
	}
	return p.scene.IsReachedTo(p.scene.MaxTimeIndex())
}

// Run starts playback and steps until Done or ctx is cancelled, then
// applies the final pose. In realtime mode frames are paced at the
// configured FPS.
func (p *Player) Run(ctx context.Context) (int, error) {
	log := logger.Named("player")
	p.Start()
	log.Info("playback started",
		zap.Float64("start", p.cfg.StartFrame),
		zap.Float64("end", p.scene.MaxTimeIndex()),
		zap.Float64("fps", p.cfg.FPS),
	)

	var tick <-chan time.Time
	if p.cfg.Realtime && p.cfg.FPS > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / p.cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	started := time.Now()
	for !p.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return p.frame, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return p.frame, err
		}
		p.Step()
	}
	p.Finish()

	log.Info("playback finished",
		zap.Int("frames", p.frame),
		zap.Float64("time_index", p.scene.CurrentTimeIndex()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return p.frame, nil
}
