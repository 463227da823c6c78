package render

import (
	"github.com/coreman2200/funtimes-replay/internal/camera"
	"github.com/coreman2200/funtimes-replay/internal/field"
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
	"github.com/coreman2200/funtimes-replay/internal/timeline"
)

// Driver consumes built scenes (websocket broadcast, headless logger, etc.).
// Scenes are shared and must be treated as read-only.
type Driver interface {
	Write(s *Scene) error
}

// Scene is everything a renderer needs to draw one frame.
type Scene struct {
	FrameID    uint64  `json:"frame_id"`
	Time       float64 `json:"time"`
	FrameIndex int     `json:"frame_index"`
	Fraction   float64 `json:"frame_fraction"`
	Progress   float64 `json:"progress"` // percent
	Playing    bool    `json:"playing"`
	AtEnd      bool    `json:"at_end"`
	ShowReplay bool    `json:"show_replay"`

	Description string            `json:"description,omitempty"`
	Note        string            `json:"note,omitempty"`
	Summary     map[string]string `json:"summary,omitempty"`

	Ball     BallView          `json:"ball"`
	Players  []PlayerView      `json:"players"`
	Tracks   []Track           `json:"tracks,omitempty"`
	Camera   camera.State      `json:"camera"`
	Overlays Overlays          `json:"overlays"`
	Markers  []timeline.Marker `json:"markers"`
	Field    field.Dim         `json:"field"`
	Dark     bool              `json:"dark"`
}

type BallView struct {
	Ground geom.Vec2 `json:"ground"`
	World  geom.Vec3 `json:"world"`
}

type PlayerView struct {
	ID        int            `json:"id"`
	Team      string         `json:"team"`
	Name      string         `json:"name"`
	Position  string         `json:"position"`
	Side      play.Side      `json:"side,omitempty"`
	Ground    geom.Vec2      `json:"ground"`
	World     geom.Vec3      `json:"world"`
	Billboard float64        `json:"billboard"` // label Y rotation toward the camera
	NearBall  bool           `json:"near_ball"`
	OpenSpace *OpenSpaceView `json:"open_space,omitempty"`
}

// Track is a player's keyframe path in world space.
type Track struct {
	PlayerID int         `json:"player_id"`
	Points   []geom.Vec3 `json:"points"`
}

// Overlays are the user-toggled display layers.
type Overlays struct {
	OpenSpace bool  `json:"open_space"`
	Tracks    bool  `json:"tracks"`
	Selected  []int `json:"selected,omitempty"` // players whose track is shown individually
}

// Stats are the last tick's timings in milliseconds.
type Stats struct {
	BuildMS float64 `json:"build_ms"`
	WriteMS float64 `json:"write_ms"`
	TotalMS float64 `json:"total_ms"`
	Ticks   uint64  `json:"ticks"`
}

// EventKind names a push notification.
type EventKind string

const (
	EventFrame       EventKind = "frame"
	EventTime        EventKind = "time"
	EventDescription EventKind = "description"
	EventComplete    EventKind = "playback_complete"
	EventTransition  EventKind = "transition_complete"
)

// Event is a push notification raised during a tick. Frame is the active
// keyframe index when the event fired.
type Event struct {
	Kind   EventKind `json:"kind"`
	Frame  int       `json:"frame"`
	Time   float64   `json:"time,omitempty"`
	Text   string    `json:"text,omitempty"`
	Preset string    `json:"preset,omitempty"`
}
