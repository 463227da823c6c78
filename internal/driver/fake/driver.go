package fake

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-replay/internal/render"
)

// Driver logs a compact summary of each scene, useful for headless runs.
// Every controls how often a line is logged; 0 or 1 logs every frame.
type Driver struct {
	Log   zerolog.Logger
	Every int
	Count int
}

func (d *Driver) Write(s *render.Scene) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 && !s.AtEnd {
		return nil
	}
	var open, near int
	for _, p := range s.Players {
		if p.OpenSpace != nil && p.OpenSpace.Band == render.BandVeryOpen {
			open++
		}
		if p.NearBall {
			near++
		}
	}
	d.Log.Info().
		Uint64("frame_id", s.FrameID).
		Str("t", fmtSeconds(s.Time)).
		Int("keyframe", s.FrameIndex).
		Float64("progress", s.Progress).
		Str("camera", s.Camera.Current).
		Str("phase", string(s.Camera.Phase)).
		Float64("ball_x", s.Ball.Ground.X).
		Float64("ball_z", s.Ball.Ground.Z).
		Int("players", len(s.Players)).
		Int("wide_open", open).
		Int("near_ball", near).
		Msg(s.Description)
	return nil
}

func fmtSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', 2, 64) + "s"
}
