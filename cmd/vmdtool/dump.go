package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/midgard-motion/internal/motion"
)

var (
	dumpKind string
	dumpName string
	dumpAt   float64
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.vmd>",
	Short: "Print keyframes, optionally evaluated at a time index",
	Args:  cobra.ExactArgs(1),
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

		out := cmd.OutOrStdout()
		for _, kind := range motion.Kinds() {
			if dumpKind != "" && !strings.EqualFold(dumpKind, kind.String()) {
				continue
			}
			a := m.Animation(kind)
			if a == nil || a.Len() == 0 {
				continue
			}
			fmt.Fprintf(out, "== %s (%d keyframes, max %.0f)\n", kind, a.Len(), a.MaxTimeIndex())
			for _, k := range a.Keyframes() {
				if dumpName != "" && k.Name != dumpName {
					continue
				}
				fmt.Fprintln(out, formatKeyframe(k))
			}
			if cmd.Flags().Changed("at") {
				printEvaluated(cmd, a, dumpAt)
			}
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpKind, "kind", "k", "", "only this kind (bone, camera, morph, light, model, effect, project)")
	dumpCmd.Flags().StringVarP(&dumpName, "name", "n", "", "only keyframes with this name")
	dumpCmd.Flags().Float64Var(&dumpAt, "at", 0, "also evaluate each channel at this time index")
}

func formatKeyframe(k *motion.Keyframe) string {
	switch k.Kind {
	case motion.KindBone:
		p, r := k.Bone.Position, k.Bone.Rotation
		return fmt.Sprintf("%6.0f  %-15s pos(%.3f %.3f %.3f) rot(%.3f %.3f %.3f %.3f)",
			k.TimeIndex, k.Name, p.X, p.Y, p.Z, r.X, r.Y, r.Z, r.W)
	case motion.KindCamera:
		c := k.Camera
		return fmt.Sprintf("%6.0f  look(%.3f %.3f %.3f) angle(%.2f %.2f %.2f) dist %.3f fov %.0f perspective %v",
			k.TimeIndex, c.LookAt.X, c.LookAt.Y, c.LookAt.Z, c.Angle.X, c.Angle.Y, c.Angle.Z, c.Distance, c.FOV, c.Perspective)
	case motion.KindMorph:
		return fmt.Sprintf("%6.0f  %-15s %.3f", k.TimeIndex, k.Name, k.Morph.Weight)
	case motion.KindLight:
		d := k.Light.Direction
		return fmt.Sprintf("%6.0f  %s dir(%.3f %.3f %.3f)", k.TimeIndex, k.Light.Color.Hex(), d.X, d.Y, d.Z)
	case motion.KindModel:
		var ik []string
		for _, s := range k.Model.IK {
			ik = append(ik, fmt.Sprintf("%s=%v", s.Name, s.Enabled))
		}
		return fmt.Sprintf("%6.0f  visible %v ik [%s]", k.TimeIndex, k.Model.Visible, strings.Join(ik, " "))
	case motion.KindEffect:
		return fmt.Sprintf("%6.0f  %-15s visible %v param %.3f", k.TimeIndex, k.Name, k.Effect.Visible, k.Effect.Parameter)
	case motion.KindProject:
		return fmt.Sprintf("%6.0f  shadow mode %d distance %.1f", k.TimeIndex, k.Project.ShadowMode, k.Project.ShadowDistance)
	}
	return fmt.Sprintf("%6.0f  %s", k.TimeIndex, k.Kind)
}

func printEvaluated(cmd *cobra.Command, a *motion.Animation, t float64) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- at %.2f\n", t)
	switch a.Kind() {
	case motion.KindBone:
		for _, name := range a.ChannelNames() {
			if pose, ok := a.EvaluateBone(name, t); ok {
				p, r := pose.Position, pose.Rotation
				fmt.Fprintf(out, "        %-15s pos(%.3f %.3f %.3f) rot(%.3f %.3f %.3f %.3f)\n",
					name, p.X, p.Y, p.Z, r.X, r.Y, r.Z, r.W)
			}
		}
	case motion.KindMorph:
		for _, name := range a.ChannelNames() {
			if w, ok := a.EvaluateMorph(name, t); ok {
				fmt.Fprintf(out, "        %-15s %.3f\n", name, w)
			}
		}
	case motion.KindCamera:
		if c, ok := a.EvaluateCamera(t); ok {
			fmt.Fprintf(out, "        look(%.3f %.3f %.3f) dist %.3f fov %.2f\n",
				c.LookAt.X, c.LookAt.Y, c.LookAt.Z, c.Distance, c.FOV)
		}
	case motion.KindLight:
		if l, ok := a.EvaluateLight(t); ok {
			fmt.Fprintf(out, "        %s\n", l.Color.Hex())
		}
	}
}
