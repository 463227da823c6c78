package play

import "github.com/coreman2200/funtimes-replay/internal/geom"

// RoleAnchor picks a player by side and role code, e.g. the offensive QB.
// An empty Side matches either team.
type RoleAnchor struct {
	Side     Side   `yaml:"side" json:"side"`
	Position string `yaml:"position" json:"position"`
}

// Resolve returns the ground position of the first rostered player matching
// a that is present in positions. Roster order decides ties.
func (s *Sequence) Resolve(a RoleAnchor, positions map[int]geom.Vec2) (geom.Vec2, bool) {
	for _, p := range s.Players {
		if p.Position != a.Position {
			continue
		}
		if a.Side != "" && s.teamOf[p.Team].Side != a.Side {
			continue
		}
		if pos, ok := positions[p.ID]; ok {
			return pos, true
		}
	}
	return geom.Vec2{}, false
}
