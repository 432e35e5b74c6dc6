package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/pkg/formats"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.vmd>",
	Short: "Show header and record counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		info, err := formats.Preparse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		v, err := formats.ParseVMD(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		kind := "model"
		if info.IsCameraMotion() {
			kind = "camera"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File:        %s\n", args[0])
		fmt.Fprintf(out, "Version:     %d\n", info.Version)
		fmt.Fprintf(out, "Model:       %q\n", info.ModelName)
		fmt.Fprintf(out, "Kind:        %s\n", kind)
		fmt.Fprintf(out, "Size:        %d bytes\n", info.Size)
		fmt.Fprintf(out, "Last frame:  %d\n", v.MaxFrame())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Records:")
		fmt.Fprintf(out, "  %-12s %d\n", "bone", info.BoneCount)
		fmt.Fprintf(out, "  %-12s %d\n", "morph", info.MorphCount)
		fmt.Fprintf(out, "  %-12s %d\n", "camera", info.CameraCount)
		fmt.Fprintf(out, "  %-12s %d\n", "light", info.LightCount)
		fmt.Fprintf(out, "  %-12s %d\n", "self-shadow", info.SelfShadowCount)
		fmt.Fprintf(out, "  %-12s %d\n", "show/ik", info.ShowIKCount)
		return nil
	},
}
