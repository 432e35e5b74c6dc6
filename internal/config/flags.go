package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagFPS       = flag.Float64("fps", 0, "Playback frames per second")
	flagFrames    = flag.Int("frames", -1, "Frames to play (0 = until motions end)")
	flagLoop      = flag.Bool("loop", false, "Loop motions")
	flagRealtime  = flag.Bool("realtime", false, "Pace playback against the wall clock")
	flagOwnership = flag.String("ownership", "", "Scene ownership: exclusive or shared")
	flagPhysics   = flag.Bool("physics", false, "Attach a physics world")
	flagLogFile   = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFPS > 0 {
		cfg.Playback.FPS = *flagFPS
	}
	if *flagFrames >= 0 {
		cfg.Playback.Frames = *flagFrames
	}
	if *flagLoop {
		cfg.Playback.Loop = true
	}
	if *flagRealtime {
		cfg.Playback.Realtime = true
	}
	if *flagOwnership != "" {
		cfg.Scene.Ownership = *flagOwnership
	}
	if *flagPhysics {
		cfg.Scene.Physics = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
