package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/internal/engine"
	"github.com/Faultbox/midgard-motion/internal/engine/renderer"
)

var (
	playFrames int
	playLoop   bool
	playBone   string
	playEvery  int
)

var playCmd = &cobra.Command{
	Use:   "play <file.vmd>...",
	Short: "Play motions headlessly and print traced bone positions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("frames") {
			cfg.Playback.Frames = playFrames
		}
		if playLoop {
			cfg.Playback.Loop = true
		}
		ctx, err := newContext()
		if err != nil {
			return err
		}
		defer ctx.Shutdown()

		s, err := ctx.NewScene()
		if err != nil {
			return err
		}
		for _, path := range args {
			m, err := ctx.LoadMotion(path)
			if err != nil {
				return err
			}
			if err := engine.AttachMotion(s, m); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		out := cmd.OutOrStdout()
		every := max(playEvery, 1)
		p := engine.NewPlayer(s, cfg.Playback)
		p.OnFrame = func(frame int, timeIndex float64) {
			if frame%every != 0 {
				return
			}
			fmt.Fprintf(out, "frame %5d  t=%8.2f", frame, timeIndex)
			if cam := s.Camera(); cam.Motion() != nil {
				pos := cam.Position()
				fmt.Fprintf(out, "  camera(%.2f %.2f %.2f)", pos.X, pos.Y, pos.Z)
			}
			for _, e := range s.RenderEngines() {
				te, ok := e.(*renderer.TraceEngine)
				if !ok {
					continue
				}
				f, ok := te.LastFrame()
				if !ok {
					continue
				}
				if playBone != "" {
					if pos, ok := f.Bones[playBone]; ok {
						fmt.Fprintf(out, "  %s.%s(%.2f %.2f %.2f)", te.ParentModel().Name(), playBone, pos.X, pos.Y, pos.Z)
					}
					continue
				}
				c := f.Bounds.Min.Add(f.Bounds.Max).Scale(0.5)
				fmt.Fprintf(out, "  %s center(%.2f %.2f %.2f)", te.ParentModel().Name(), c.X, c.Y, c.Z)
			}
			fmt.Fprintln(out)
		}

		sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		frames, err := p.Run(sig)
		if err != nil && sig.Err() == nil {
			return err
		}
		fmt.Fprintf(out, "played %d frames, scene end %.0f\n", frames, s.MaxTimeIndex())
		return nil
	},
}

func init() {
	playCmd.Flags().IntVarP(&playFrames, "frames", "f", 0, "frames to play (0 = until every motion ends)")
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "loop motions")
	playCmd.Flags().StringVarP(&playBone, "bone", "b", "", "print this bone instead of the model centre")
	playCmd.Flags().IntVar(&playEvery, "every", 1, "print every Nth frame")
}
