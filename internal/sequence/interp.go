package sequence

import (
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

// Interpolate evaluates every entity at st. Players tracked in both
// bracketing keyframes are lerped; the rest hold their last known position
// at or before st.Index, and players never seen are omitted.
func Interpolate(seq *play.Sequence, st State) Snapshot {
	frames := seq.Frames
	i := st.Index
	if i < 0 {
		i = 0
	}
	if i > len(frames)-1 {
		i = len(frames) - 1
	}
	cur := frames[i]

	if i == len(frames)-1 {
		out := Snapshot{Ball: cur.Ball, Positions: make(map[int]geom.Vec2, len(seq.Players))}
		for _, p := range seq.Players {
			if pos, ok := seq.Held(i, p.ID); ok {
				out.Positions[p.ID] = pos
			}
		}
		return out
	}

	next := frames[i+1]
	f := geom.Clamp01(st.Fraction)
	out := Snapshot{
		Ball:      geom.Lerp2(cur.Ball, next.Ball, f),
		Positions: make(map[int]geom.Vec2, len(seq.Players)),
	}
	for _, p := range seq.Players {
		a, inCur := cur.Positions[p.ID]
		b, inNext := next.Positions[p.ID]
		if inCur && inNext {
			out.Positions[p.ID] = geom.Lerp2(a, b, f)
			continue
		}
		if pos, ok := seq.Held(i, p.ID); ok {
			out.Positions[p.ID] = pos
		}
	}
	return out
}
