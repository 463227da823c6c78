package play

import "github.com/coreman2200/funtimes-replay/internal/geom"

// Side is the role a team plays for the duration of the sequence.
type Side string

const (
	Offense Side = "offense"
	Defense Side = "defense"
)

// Team is one of the sides on the field.
type Team struct {
	ID   string `json:"team_id" yaml:"team_id"`
	Name string `json:"name" yaml:"name"`
	Side Side   `json:"side" yaml:"side"`
}

// Player is a tracked entity. Immutable for the lifetime of a Sequence.
type Player struct {
	ID       int    `json:"id" yaml:"id"`
	Team     string `json:"team" yaml:"team"`
	Name     string `json:"name" yaml:"name"`
	Position string `json:"position" yaml:"position"` // role code, e.g. "QB", "LB"
}

// Frame is one keyframe of the play. Positions may omit players that were
// not tracked at that instant.
type Frame struct {
	Time        float64           `json:"time"`
	Ball        geom.Vec2         `json:"ball"`
	Positions   map[int]geom.Vec2 `json:"positions"`
	Description string            `json:"description,omitempty"`
	Summary     map[string]string `json:"summary,omitempty"`
	Note        string            `json:"note,omitempty"`
	OpenSpace   map[int]float64   `json:"open_space"` // derived at load
}

// Sequence is a validated, immutable play. Construct with New or Load.
type Sequence struct {
	Teams   []Team   `json:"teams"`
	Players []Player `json:"players"`
	Summary string   `json:"summary_of_play,omitempty"`
	Frames  []Frame  `json:"frames"`

	byID   map[int]int
	teamOf map[string]Team
	held   []map[int]geom.Vec2 // last known position per frame
}
