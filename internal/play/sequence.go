package play

import (
	"fmt"
	"strings"

	"github.com/coreman2200/funtimes-replay/internal/geom"
)

// ValidationError lists every problem found in a malformed sequence.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid play sequence: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// New validates the inputs and returns an immutable Sequence with open space
// precomputed for every frame.
func New(teams []Team, players []Player, summary string, frames []Frame) (*Sequence, error) {
	verr := &ValidationError{}

	teamOf := make(map[string]Team, len(teams))
	for _, t := range teams {
		if t.ID == "" {
			verr.add("team with empty team_id")
			continue
		}
		if _, dup := teamOf[t.ID]; dup {
			verr.add("duplicate team %q", t.ID)
		}
		teamOf[t.ID] = t
	}

	byID := make(map[int]int, len(players))
	for i, p := range players {
		if _, dup := byID[p.ID]; dup {
			verr.add("duplicate player id %d", p.ID)
			continue
		}
		byID[p.ID] = i
		if len(teamOf) > 0 {
			if _, ok := teamOf[p.Team]; !ok {
				verr.add("player %d references unknown team %q", p.ID, p.Team)
			}
		}
	}

	if len(frames) < 2 {
		verr.add("need at least 2 frames, got %d", len(frames))
	} else if frames[0].Time != 0 {
		verr.add("first frame must be at time 0, got %v", frames[0].Time)
	}
	for i := 0; i+1 < len(frames); i++ {
		if !(frames[i].Time < frames[i+1].Time) {
			verr.add("frame times not strictly increasing at %d (%v >= %v)", i, frames[i].Time, frames[i+1].Time)
		}
	}
	for i, f := range frames {
		for id := range f.Positions {
			if _, ok := byID[id]; !ok {
				verr.add("frame %d has position for unknown player %d", i, id)
			}
		}
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}

	s := &Sequence{
		Teams:   append([]Team(nil), teams...),
		Players: append([]Player(nil), players...),
		Summary: summary,
		Frames:  make([]Frame, len(frames)),
		byID:    byID,
		teamOf:  teamOf,
		held:    make([]map[int]geom.Vec2, len(frames)),
	}
	for i, f := range frames {
		cp := f
		cp.Positions = make(map[int]geom.Vec2, len(f.Positions))
		for id, p := range f.Positions {
			cp.Positions[id] = p
		}
		cp.OpenSpace = ComputeOpenSpace(s.Players, cp.Positions)
		s.Frames[i] = cp

		held := make(map[int]geom.Vec2, len(players))
		if i > 0 {
			for id, p := range s.held[i-1] {
				held[id] = p
			}
		}
		for id, p := range cp.Positions {
			held[id] = p
		}
		s.held[i] = held
	}
	return s, nil
}

// LastIndex is the index of the final frame.
func (s *Sequence) LastIndex() int { return len(s.Frames) - 1 }

// Duration is the time of the final frame.
func (s *Sequence) Duration() float64 { return s.Frames[len(s.Frames)-1].Time }

// Player looks up a rostered player by id.
func (s *Sequence) Player(id int) (Player, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Player{}, false
	}
	return s.Players[i], true
}

// SideOf returns the side of the player's team, or "" when teams were not declared.
func (s *Sequence) SideOf(id int) Side {
	p, ok := s.Player(id)
	if !ok {
		return ""
	}
	return s.teamOf[p.Team].Side
}

// Held returns the last known position of id at or before frame i.
func (s *Sequence) Held(i, id int) (geom.Vec2, bool) {
	if i < 0 || i >= len(s.held) {
		return geom.Vec2{}, false
	}
	p, ok := s.held[i][id]
	return p, ok
}

// OpenSpace returns the precomputed open space of id at keyframe i.
func (s *Sequence) OpenSpace(i, id int) (float64, bool) {
	if i < 0 || i >= len(s.Frames) {
		return 0, false
	}
	v, ok := s.Frames[i].OpenSpace[id]
	return v, ok
}

// Description is the narrative text of frame i. Frame 0 falls back to the
// play summary when it carries no description of its own.
func (s *Sequence) Description(i int) string {
	if i < 0 || i >= len(s.Frames) {
		return ""
	}
	if d := s.Frames[i].Description; d != "" {
		return d
	}
	if i == 0 {
		return s.Summary
	}
	return ""
}

// Track returns the keyframe positions of id in frame order, skipping frames
// where the player was not tracked.
func (s *Sequence) Track(id int) []geom.Vec2 {
	var out []geom.Vec2
	for _, f := range s.Frames {
		if p, ok := f.Positions[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
