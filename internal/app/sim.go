package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/driver/fake"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/render"
	"github.com/coreman2200/funtimes-replay/internal/sweep"
)

// SimOptions control a headless run.
type SimOptions struct {
	FPS      int
	Every    int // log every Nth scene
	Plan     sweep.Plan
	Realtime bool // pace ticks with a wall-clock ticker
}

// SimResult summarises a headless run.
type SimResult struct {
	Ticks     int
	Events    []render.Event
	Final     *render.Scene
	Simulated time.Duration
}

// Simulate runs seq headless with a logging driver. With no plan or a
// preset plan the play runs once from the start, presets requested at even
// spacing; a keyframe plan steps through each keyframe paused. Camera
// transitions run on simulated time unless Realtime is set.
func Simulate(ctx context.Context, seq *play.Sequence, opts render.Options, so SimOptions, log zerolog.Logger) (*SimResult, error) {
	if so.FPS <= 0 {
		so.FPS = 60
	}
	dt := time.Second / time.Duration(so.FPS)

	now := time.Unix(0, 0)
	if !so.Realtime {
		opts.Now = func() time.Time { return now }
	}
	res := &SimResult{}
	opts.OnEvent = func(ev render.Event) { res.Events = append(res.Events, ev) }

	drv := &fake.Driver{Log: log, Every: so.Every}
	eng, err := render.NewEngine(seq, opts, log, drv)
	if err != nil {
		return nil, err
	}
	runner := sweep.NewRunner(so.Plan)
	if runner.Kind() != sweep.Keyframes {
		if err := eng.Submit(render.Command{Kind: render.CmdPlay}); err != nil {
			return nil, err
		}
	}

	var spacing float64
	if n := len(so.Plan.Presets); n > 0 {
		spacing = seq.Duration() / float64(n+1)
	}
	issued, planDone := 0, runner.Kind() == sweep.None

	var ticker *time.Ticker
	if so.Realtime {
		ticker = time.NewTicker(dt)
		defer ticker.Stop()
	}

	limit := int((seq.Duration()+10)*float64(so.FPS)) + len(seq.Frames) + 1
	for res.Ticks < limit {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-ticker.C:
			}
		}

		if !planDone {
			due := runner.Kind() == sweep.Keyframes ||
				eng.Clock.State().Elapsed >= spacing*float64(issued+1)
			if due {
				c, ok := runner.Step(seq)
				if ok {
					if err := eng.Submit(c); err != nil {
						return res, err
					}
					issued++
				} else {
					planDone = true
				}
			}
		}

		now = now.Add(dt)
		res.Simulated += dt
		if err := eng.Tick(dt.Seconds()); err != nil {
			return res, err
		}
		res.Ticks++

		s := eng.Scene()
		settled := s.Camera.Phase != camera.Transitioning
		switch {
		case runner.Kind() == sweep.Keyframes && planDone && settled:
			res.Final = s
			return res, nil
		case runner.Kind() != sweep.Keyframes && s.AtEnd && settled &&
			(planDone || issued == len(so.Plan.Presets)):
			res.Final = s
			return res, nil
		}
	}
	res.Final = eng.Scene()
	return res, fmt.Errorf("simulation did not settle after %d ticks", res.Ticks)
}
