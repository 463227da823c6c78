package sequence

import (
	"sort"

	"github.com/coreman2200/funtimes-replay/internal/play"
)

const epsilon = 1e-9

// NewClock constructs a Clock at t=0, paused.
func NewClock(seq *play.Sequence, h Hooks) *Clock {
	c := &Clock{seq: seq, hooks: h}
	c.lastDesc = seq.Description(0)
	return c
}

// Sequence returns the sequence being played.
func (c *Clock) Sequence() *play.Sequence { return c.seq }

// State returns a copy of the playback state.
func (c *Clock) State() State { return c.state }

// Play sets the playing flag.
func (c *Clock) Play() { c.state.IsPlaying = true }

// Pause clears the playing flag.
func (c *Clock) Pause() { c.state.IsPlaying = false }

// Reset seeks to the start and pauses.
func (c *Clock) Reset() {
	c.Seek(0)
	c.state.IsPlaying = false
}

// Advance moves playback forward by dt seconds. No effect when paused.
func (c *Clock) Advance(dt float64) {
	if !c.state.IsPlaying || dt <= 0 {
		return
	}
	last := c.seq.Duration()
	t := c.state.Elapsed + dt
	if t >= last {
		wasAtEnd := c.state.IsAtEnd
		c.state.Elapsed = last
		c.state.Fraction = 0
		c.state.IsPlaying = false
		c.state.IsAtEnd = true
		c.setIndex(c.seq.LastIndex())
		c.timeChanged()
		if !wasAtEnd && c.hooks.OnPlaybackComplete != nil {
			c.hooks.OnPlaybackComplete()
		}
		return
	}
	c.locate(t)
	c.timeChanged()
}

// Seek jumps to absolute time t, clamped into [0, last].
func (c *Clock) Seek(t float64) {
	last := c.seq.Duration()
	if t < 0 {
		t = 0
	}
	if t > last {
		t = last
	}
	c.locate(t)
	c.timeChanged()
}

// locate sets elapsed, index, fraction and the end flag for t in [0, last].
func (c *Clock) locate(t float64) {
	frames := c.seq.Frames
	last := len(frames) - 1
	c.state.Elapsed = t
	c.state.IsAtEnd = t == frames[last].Time
	if c.state.IsAtEnd {
		c.state.Fraction = 0
		c.setIndex(last)
		return
	}
	// first frame strictly after t, minus one
	i := sort.Search(len(frames), func(k int) bool { return frames[k].Time > t }) - 1
	if i < 0 {
		i = 0
	}
	if i > last-1 {
		i = last - 1
	}
	den := frames[i+1].Time - frames[i].Time
	if den < epsilon {
		den = epsilon
	}
	f := (t - frames[i].Time) / den
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c.state.Fraction = f
	c.setIndex(i)
}

func (c *Clock) setIndex(i int) {
	if i == c.state.Index {
		return
	}
	c.state.Index = i
	if c.hooks.OnFrameChange != nil {
		c.hooks.OnFrameChange(i)
	}
	if d := c.seq.Description(i); d != "" && d != c.lastDesc {
		c.lastDesc = d
		if c.hooks.OnDescriptionChange != nil {
			c.hooks.OnDescriptionChange(d)
		}
	}
}

func (c *Clock) timeChanged() {
	if c.hooks.OnTimeChange != nil {
		c.hooks.OnTimeChange(c.state.Elapsed)
	}
}
