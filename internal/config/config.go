// Package config handles player configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Scene ownership disciplines.
const (
	OwnershipExclusive = "exclusive"
	OwnershipShared    = "shared"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all player settings.
type Config struct {
	Playback      PlaybackConfig      `yaml:"playback"`
	Scene         SceneConfig         `yaml:"scene"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// PlaybackConfig controls the frame-stepped playback loop.
type PlaybackConfig struct {
	FPS        float64 `yaml:"fps"`         // motion frames per second
	Loop       bool    `yaml:"loop"`        // wrap motions at their end
	Frames     int     `yaml:"frames"`      // frames to play, 0 = until every motion ends
	StartFrame float64 `yaml:"start_frame"` // initial seek position
	Realtime   bool    `yaml:"realtime"`    // pace frames against the wall clock
}

// SceneConfig controls scene construction.
type SceneConfig struct {
	Ownership string `yaml:"ownership"` // exclusive or shared
	Physics   bool   `yaml:"physics"`   // attach a physics world
}

// InterpolationConfig controls easing table construction.
type InterpolationConfig struct {
	SampleCount int `yaml:"sample_count"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			FPS:      30,
			Loop:     false,
			Frames:   0,
			Realtime: false,
		},
		Scene: SceneConfig{
			Ownership: OwnershipExclusive,
			Physics:   false,
		},
		Interpolation: InterpolationConfig{
			SampleCount: 64,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("%w: playback.fps must be positive, got %v", ErrInvalidConfig, c.Playback.FPS)
	}
	if c.Playback.Frames < 0 {
		return fmt.Errorf("%w: playback.frames must not be negative, got %d", ErrInvalidConfig, c.Playback.Frames)
	}
	switch c.Scene.Ownership {
	case OwnershipExclusive, OwnershipShared:
	default:
		return fmt.Errorf("%w: scene.ownership must be %q or %q, got %q",
			ErrInvalidConfig, OwnershipExclusive, OwnershipShared, c.Scene.Ownership)
	}
	if c.Interpolation.SampleCount < 2 {
		return fmt.Errorf("%w: interpolation.sample_count must be at least 2, got %d",
			ErrInvalidConfig, c.Interpolation.SampleCount)
	}
	return nil
}
