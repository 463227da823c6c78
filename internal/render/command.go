package render

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-replay/internal/camera"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownOverlay = errors.New("unknown overlay")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrMissingPose    = errors.New("orbit command without pose")
)

type CommandKind string

const (
	CmdPlay    CommandKind = "play"
	CmdPause   CommandKind = "pause"
	CmdToggle  CommandKind = "toggle"
	CmdReset   CommandKind = "reset"
	CmdSeek    CommandKind = "seek"
	CmdPreset  CommandKind = "select_preset"
	CmdOverlay CommandKind = "toggle_overlay"
	CmdTrack   CommandKind = "toggle_track"
	CmdOrbit   CommandKind = "orbit"
)

// Overlay kinds accepted by CmdOverlay.
const (
	OverlayOpenSpace = "open_space"
	OverlayTracks    = "tracks"
)

// Command is a host request applied at the start of the next tick.
type Command struct {
	Kind     CommandKind  `json:"kind"`
	Time     float64      `json:"time,omitempty"`
	Preset   string       `json:"preset,omitempty"`
	Overlay  string       `json:"overlay,omitempty"`
	PlayerID int          `json:"player_id,omitempty"`
	Pose     *camera.Pose `json:"pose,omitempty"`
}

// validate rejects commands that could never apply. Runs on the caller's
// goroutine, so it only reads state fixed at construction.
func (e *Engine) validate(c Command) error {
	switch c.Kind {
	case CmdPlay, CmdPause, CmdToggle, CmdReset, CmdSeek:
		return nil
	case CmdPreset:
		if !e.presetIDs[c.Preset] {
			return fmt.Errorf("%w: %q", camera.ErrUnknownPreset, c.Preset)
		}
	case CmdOverlay:
		if c.Overlay != OverlayOpenSpace && c.Overlay != OverlayTracks {
			return fmt.Errorf("%w: %q", ErrUnknownOverlay, c.Overlay)
		}
	case CmdTrack:
		if _, ok := e.Seq.Player(c.PlayerID); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPlayer, c.PlayerID)
		}
	case CmdOrbit:
		if c.Pose == nil {
			return ErrMissingPose
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Kind)
	}
	return nil
}

// apply runs on the tick goroutine.
func (e *Engine) apply(c Command) {
	switch c.Kind {
	case CmdPlay:
		e.Timeline.Play()
	case CmdPause:
		e.Timeline.Pause()
	case CmdToggle:
		e.Timeline.Toggle()
	case CmdReset:
		e.Timeline.Reset()
	case CmdSeek:
		e.Timeline.Scrub(c.Time)
	case CmdPreset:
		// validated in Submit
		_ = e.Camera.Request(c.Preset)
	case CmdOverlay:
		switch c.Overlay {
		case OverlayOpenSpace:
			e.overlays.OpenSpace = !e.overlays.OpenSpace
		case OverlayTracks:
			e.overlays.Tracks = !e.overlays.Tracks
		}
	case CmdTrack:
		if e.selected[c.PlayerID] {
			delete(e.selected, c.PlayerID)
		} else {
			e.selected[c.PlayerID] = true
		}
	case CmdOrbit:
		if err := e.Camera.Orbit(*c.Pose); err != nil {
			e.log.Debug().Err(err).Msg("orbit dropped")
			e.diag.Push(diagOrbitRejected(err))
		}
	}
}
