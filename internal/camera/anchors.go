package camera

import (
	"github.com/coreman2200/funtimes-replay/internal/field"
	"github.com/coreman2200/funtimes-replay/internal/geom"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

// AnchorRule picks an anchor player by role and lifts it into world space.
// Fallback is used when no matching player is present.
type AnchorRule struct {
	Role     play.RoleAnchor `yaml:"role" json:"role"`
	Height   float64         `yaml:"height" json:"height"`
	Fallback geom.Vec3       `yaml:"fallback" json:"fallback"`
}

// DefaultAnchorRules anchors the offense on its QB and the defense on its
// first linebacker.
func DefaultAnchorRules() (offense, defense AnchorRule) {
	offense = AnchorRule{
		Role:     play.RoleAnchor{Side: play.Offense, Position: "QB"},
		Height:   1,
		Fallback: geom.Vec3{X: 28, Y: 1, Z: -1},
	}
	defense = AnchorRule{
		Role:     play.RoleAnchor{Side: play.Defense, Position: "LB"},
		Height:   1.5,
		Fallback: geom.Vec3{X: 20, Y: 1.5, Z: 0},
	}
	return offense, defense
}

func (r AnchorRule) Resolve(seq *play.Sequence, positions map[int]geom.Vec2) geom.Vec3 {
	if p, ok := seq.Resolve(r.Role, positions); ok {
		return field.ToWorld(p, r.Height)
	}
	return r.Fallback
}

// ResolveAnchors evaluates both rules against live positions.
func ResolveAnchors(seq *play.Sequence, positions map[int]geom.Vec2, offense, defense AnchorRule) Anchors {
	return Anchors{
		Offense: offense.Resolve(seq, positions),
		Defense: defense.Resolve(seq, positions),
	}
}
