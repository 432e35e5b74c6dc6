package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Playback.FPS != 30 {
		t.Errorf("expected fps 30, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Loop {
		t.Error("expected loop to be false by default")
	}
	if cfg.Scene.Ownership != OwnershipExclusive {
		t.Errorf("expected exclusive ownership, got %s", cfg.Scene.Ownership)
	}
	if cfg.Interpolation.SampleCount != 64 {
		t.Errorf("expected 64 samples, got %d", cfg.Interpolation.SampleCount)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
playback:
  fps: 60
  loop: true
  frames: 300
  start_frame: 12.5

scene:
  ownership: shared
  physics: true

interpolation:
  sample_count: 128

logging:
  level: "debug"
  log_file: "player.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Playback.FPS != 60 {
		t.Errorf("expected fps 60, got %v", cfg.Playback.FPS)
	}
	if !cfg.Playback.Loop {
		t.Error("expected loop to be true")
	}
	if cfg.Playback.Frames != 300 {
		t.Errorf("expected 300 frames, got %d", cfg.Playback.Frames)
	}
	if cfg.Playback.StartFrame != 12.5 {
		t.Errorf("expected start frame 12.5, got %v", cfg.Playback.StartFrame)
	}
	if cfg.Scene.Ownership != OwnershipShared {
		t.Errorf("expected shared ownership, got %s", cfg.Scene.Ownership)
	}
	if !cfg.Scene.Physics {
		t.Error("expected physics to be enabled")
	}
	if cfg.Interpolation.SampleCount != 128 {
		t.Errorf("expected 128 samples, got %d", cfg.Interpolation.SampleCount)
	}
	if cfg.Logging.LogFile != "player.log" {
		t.Errorf("expected log file 'player.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
playback:
  fps: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("empty path should yield defaults, got %v", err)
	}
	if cfg.Playback.FPS != 30 {
		t.Errorf("expected default fps, got %v", cfg.Playback.FPS)
	}

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("scene:\n  ownership: borrowed\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFile(configPath); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fps", func(c *Config) { c.Playback.FPS = 0 }},
		{"negative frames", func(c *Config) { c.Playback.Frames = -1 }},
		{"unknown ownership", func(c *Config) { c.Scene.Ownership = "weak" }},
		{"tiny table", func(c *Config) { c.Interpolation.SampleCount = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("playback:\n  fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fps flag",
			setup: func() { *flagFPS = 24 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Playback.FPS != 24 {
					t.Errorf("expected fps 24, got %v", cfg.Playback.FPS)
				}
			},
			teardown: func() { *flagFPS = 0 },
		},
		{
			name:  "frames flag zero is honoured",
			setup: func() { *flagFrames = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Playback.Frames != 0 {
					t.Errorf("expected 0 frames, got %d", cfg.Playback.Frames)
				}
			},
			teardown: func() { *flagFrames = -1 },
		},
		{
			name:  "ownership and physics flags",
			setup: func() { *flagOwnership = OwnershipShared; *flagPhysics = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Ownership != OwnershipShared {
					t.Errorf("expected shared ownership, got %s", cfg.Scene.Ownership)
				}
				if !cfg.Scene.Physics {
					t.Error("expected physics with physics flag")
				}
			},
			teardown: func() { *flagOwnership = ""; *flagPhysics = false },
		},
		{
			name:  "loop flag",
			setup: func() { *flagLoop = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Playback.Loop {
					t.Error("expected loop with loop flag")
				}
			},
			teardown: func() { *flagLoop = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
playback:
  fps: 24
  frames: 90
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFPS = 60
	defer func() {
		*flagConfig = ""
		*flagFPS = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Playback.FPS != 60 {
		t.Errorf("expected fps 60 from flag, got %v", cfg.Playback.FPS)
	}
	if cfg.Playback.Frames != 90 {
		t.Errorf("expected 90 frames from file, got %d", cfg.Playback.Frames)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Playback.Loop = true
	cfg.Scene.Ownership = OwnershipShared
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if !loaded.Playback.Loop || loaded.Scene.Ownership != OwnershipShared {
		t.Errorf("saved values not restored: %+v", loaded)
	}
}

func TestSaveUsesConfigDir(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir is not XDG based on " + runtime.GOOS)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Playback.FPS = 24
	if err := cfg.Save(); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := LoadFile(filepath.Join(ConfigDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Playback.FPS != 24 {
		t.Errorf("expected fps 24, got %v", loaded.Playback.FPS)
	}
}
