package sequence

import (
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

// State is the clock's playback state. The clock is its only writer.
type State struct {
	Elapsed   float64 `json:"elapsed"`
	Index     int     `json:"frame_index"`
	Fraction  float64 `json:"frame_fraction"` // 0..1 between Index and Index+1
	IsPlaying bool    `json:"is_playing"`
	IsAtEnd   bool    `json:"is_at_end"`
}

// Hooks are dependency-injected callbacks fired by the clock.
type Hooks struct {
	// Active keyframe index changed.
	OnFrameChange func(index int)
	// Every advance while playing and every seek.
	OnTimeChange func(t float64)
	// Playback reached the last frame. Once per play-through.
	OnPlaybackComplete func()
	// Active frame's narrative text changed to a non-empty value.
	OnDescriptionChange func(text string)
}

// Snapshot is the interpolated world at one instant, in ground coordinates.
type Snapshot struct {
	Ball      geom.Vec2
	Positions map[int]geom.Vec2
}

// Clock owns elapsed time over a Sequence and maps it onto keyframes.
type Clock struct {
	seq   *play.Sequence
	state State
	hooks Hooks

	lastDesc string
}
