// Package main provides vmdtool, a CLI for inspecting, converting and
// playing back VMD motion files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/internal/config"
	"github.com/Faultbox/midgard-motion/internal/engine"
	"github.com/Faultbox/midgard-motion/internal/logger"
)

var (
	// configFile is set by the --config flag.
	configFile string
	// debug is set by the --debug flag.
	debug bool

	// cfg is loaded once before any command runs.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vmdtool",
	Short: "vmdtool inspects and plays VMD motion files",
	Long: `vmdtool reads Vocaloid Motion Data files, prints their keyframes and
interpolation curves, re-encodes them and plays them back headlessly
against stand-in models.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads configuration and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if debug {
		cfg.Logging.Level = "debug"
	}
	return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
}

// newContext returns an initialized engine context for cfg.
func newContext() (*engine.Context, error) {
	ctx := engine.NewContext(cfg)
	if err := ctx.Init(); err != nil {
		return nil, err
	}
	return ctx, nil
}
