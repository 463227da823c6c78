// Package sweep drives scripted walks over a sequence: every keyframe in
// turn, or every camera preset in turn. Used by headless runs to exercise
// the whole play.
package sweep

import (
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/render"
)

type Kind string

const (
	None      Kind = ""
	Keyframes Kind = "keyframes"
	Presets   Kind = "presets"
)

type Plan struct {
	Kind    Kind
	Presets []string // ids visited by Presets, in order
}

type Runner struct {
	plan Plan
	step int
}

func NewRunner(plan Plan) *Runner { return &Runner{plan: plan} }
func (r *Runner) Kind() Kind      { return r.plan.Kind }

// Step returns the next command to submit; false when the plan is done.
func (r *Runner) Step(seq *play.Sequence) (render.Command, bool) {
	var c render.Command
	switch r.plan.Kind {
	case Keyframes:
		if r.step >= len(seq.Frames) {
			return c, false
		}
		c = render.Command{Kind: render.CmdSeek, Time: seq.Frames[r.step].Time}
	case Presets:
		if r.step >= len(r.plan.Presets) {
			return c, false
		}
		c = render.Command{Kind: render.CmdPreset, Preset: r.plan.Presets[r.step]}
	default:
		return c, false
	}
	r.step++
	return c, true
}
