package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/fogleman/ease"
	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/internal/motion"
)

// references are the easing curves a control quad can be compared with.
var references = map[string]func(float64) float64{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
}

var (
	curveSamples int
	curveSteps   int
	curveRef     string
)

var curveCmd = &cobra.Command{
	Use:   "curve <x1> <x2> <y1> <y2>",
	Short: "Tabulate an interpolation curve and compare it with an easing",
	Long: `Builds the interpolation table for a control quad (each value 0..127)
and prints it next to a reference easing. Use --ref list to see the
available references.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if curveRef == "list" {
			return nil
		}
		return cobra.ExactArgs(4)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if curveRef == "list" {
			names := make([]string, 0, len(references))
			for name := range references {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		ref, ok := references[curveRef]
		if !ok {
			return fmt.Errorf("unknown reference %q (try --ref list)", curveRef)
		}
		var b [4]uint8
		for i, arg := range args {
			v, err := strconv.ParseUint(arg, 10, 8)
			if err != nil || v > 127 {
				return fmt.Errorf("control value %q must be an integer in 0..127", arg)
			}
			b[i] = uint8(v)
		}
		quad := motion.ControlQuadFromBytes(b)
		n := curveSamples
		if n == 0 {
			n = cfg.Interpolation.SampleCount
		}
		table := motion.NewInterpolationTable(quad, n)

		fmt.Fprintf(out, "quad (%d %d %d %d) linear=%v samples=%d ref=%s\n",
			quad.X1, quad.X2, quad.Y1, quad.Y2, table.IsLinear(), table.SampleCount(), curveRef)
		steps := max(curveSteps, 1)
		var worst float64
		for i := 0; i <= steps; i++ {
			x := float64(i) / float64(steps)
			y, r := table.Sample(x), ref(x)
			worst = math.Max(worst, math.Abs(y-r))
			fmt.Fprintf(out, "%6.3f  %8.5f  %8.5f  %+8.5f\n", x, y, r, y-r)
		}
		fmt.Fprintf(out, "max deviation %.5f\n", worst)
		return nil
	},
}

func init() {
	curveCmd.Flags().IntVarP(&curveSamples, "samples", "s", 0, "table sample count (default from config)")
	curveCmd.Flags().IntVar(&curveSteps, "steps", 10, "rows to print")
	curveCmd.Flags().StringVar(&curveRef, "ref", "linear", "reference easing, or \"list\"")
}
