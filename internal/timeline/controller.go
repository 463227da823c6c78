package timeline

import (
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/sequence"
)

// progress below this many seconds reads as zero
const minVisibleElapsed = 0.01

// Marker is a keyframe tick on the scrub bar.
type Marker struct {
	Index   int     `json:"index"`
	Time    float64 `json:"time"`
	Percent float64 `json:"percent"`
	Active  bool    `json:"active"` // playback has reached this keyframe
}

// Controller applies user-facing playback policy on top of a Clock.
type Controller struct {
	clock *sequence.Clock
}

func New(c *sequence.Clock) *Controller { return &Controller{clock: c} }

// Play starts playback, rewinding first when parked at the end.
func (t *Controller) Play() {
	if t.clock.State().IsAtEnd {
		t.clock.Reset()
	}
	t.clock.Play()
}

func (t *Controller) Pause() { t.clock.Pause() }

// Toggle is the play/pause button.
func (t *Controller) Toggle() {
	if t.clock.State().IsPlaying {
		t.Pause()
		return
	}
	t.Play()
}

// Scrub seeks without touching the playing flag.
func (t *Controller) Scrub(at float64) { t.clock.Seek(at) }

func (t *Controller) Reset() { t.clock.Reset() }

// ProgressPercent is elapsed over duration in [0,100].
func (t *Controller) ProgressPercent() float64 {
	st := t.clock.State()
	if st.Elapsed < minVisibleElapsed {
		return 0
	}
	return geom.Clamp(st.Elapsed/t.clock.Sequence().Duration()*100, 0, 100)
}

// Markers returns one marker per keyframe.
func (t *Controller) Markers() []Marker {
	seq := t.clock.Sequence()
	st := t.clock.State()
	dur := seq.Duration()
	out := make([]Marker, len(seq.Frames))
	for i, f := range seq.Frames {
		out[i] = Marker{
			Index:   i,
			Time:    f.Time,
			Percent: f.Time / dur * 100,
			Active:  st.Elapsed >= f.Time,
		}
	}
	return out
}

// ShowReplay reports whether the replay affordance should be offered:
// paused somewhere before the end.
func (t *Controller) ShowReplay() bool {
	st := t.clock.State()
	return !st.IsPlaying && !st.IsAtEnd
}

func (t *Controller) IsPlaying() bool { return t.clock.State().IsPlaying }
