package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/internal/motion"
	"github.com/Faultbox/midgard-motion/pkg/formats"
)

var convertModel string

var convertCmd = &cobra.Command{
	Use:   "convert <in.vmd> <out.vmd>",
	Short: "Re-encode a motion as a version 2 VMD file",
	Long: `Loads a motion, normalizes it (sorted keyframes, duplicates dropped) and
writes it back as a version 2 file. --model renames the target model.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := newContext()
		if err != nil {
			return err
		}
		defer ctx.Shutdown()

		m, err := ctx.LoadMotion(args[0])
		if err != nil {
			return err
		}
		if convertModel != "" {
			m.SetModelName(convertModel)
		}
		v := motion.ToVMD(m)
		if err := formats.WriteVMDFile(args[1], v); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d keyframes, last frame %d)\n",
			args[1], m.KeyframeCount(), v.MaxFrame())
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertModel, "model", "", "rename the target model")
}
