// Package main is the entry point for the headless motion player.
//
// Usage:
//
//	player [flags] <motion.vmd> [camera.vmd]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-motion/internal/config"
	"github.com/Faultbox/midgard-motion/internal/engine"
	"github.com/Faultbox/midgard-motion/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: player [flags] <motion.vmd> [camera.vmd]")
		os.Exit(2)
	}

	logger.Info("=== Midgard Motion Player ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, args); err != nil {
		logger.Error("playback failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("player closed normally")
}

func run(cfg *config.Config, paths []string) error {
	ctx := engine.NewContext(cfg)
	if err := ctx.Init(); err != nil {
		return err
	}
	defer ctx.Shutdown()

	s, err := ctx.NewScene()
	if err != nil {
		return err
	}

	for _, path := range paths {
		m, err := ctx.LoadMotion(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := engine.AttachMotion(s, m); err != nil {
			return fmt.Errorf("attaching %s: %w", path, err)
		}
	}
	s.Sort()

	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := engine.NewPlayer(s, cfg.Playback)
	if _, err := p.Run(sig); err != nil && sig.Err() == nil {
		return err
	}
	return nil
}
