package camera

import (
	"math"

	"github.com/coreman2200/funtimes-replay/internal/geom"
)

// Preset ids.
const (
	Sideline   = "sideline"
	BehindQB   = "behind_qb"
	DefensePOV = "defense_pov"
	BirdsEye   = "birds_eye"
)

var (
	tightPolar = PolarLimits{Min: 0.2, Max: math.Pi/2 - 0.25}
	widePolar  = PolarLimits{Min: 0.1, Max: math.Pi/2 - 0.2}
)

// DefaultPresets returns the four stock viewpoints. offenseFacingNegZ flips
// which side of the anchors counts as "behind".
func DefaultPresets(offenseFacingNegZ bool) []Preset {
	s := 1.0
	if !offenseFacingNegZ {
		s = -1
	}
	return []Preset{
		{
			ID:    Sideline,
			Name:  "Sideline View",
			Polar: tightPolar,
			Position: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Offense.X, Y: 20, Z: a.Offense.Z + 35}
			},
			Target: func(a Anchors) geom.Vec3 { return a.Offense },
		},
		{
			ID:         BehindQB,
			Name:       "Behind QB",
			BehindSide: true,
			Polar:      tightPolar,
			Position: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Offense.X + 15*s, Y: 8, Z: a.Offense.Z}
			},
			Target: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Offense.X - 5*s, Y: a.Offense.Y, Z: a.Offense.Z}
			},
		},
		{
			ID:         DefensePOV,
			Name:       "Defense POV",
			BehindSide: true,
			Polar:      tightPolar,
			Position: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Defense.X - 15*s, Y: a.Defense.Y + 10, Z: a.Defense.Z}
			},
			Target: func(a Anchors) geom.Vec3 { return a.Offense },
		},
		{
			ID:    BirdsEye,
			Name:  "Bird's Eye",
			Polar: widePolar,
			Position: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Offense.X, Y: 50, Z: a.Offense.Z + 15}
			},
			Target: func(a Anchors) geom.Vec3 {
				return geom.Vec3{X: a.Offense.X, Y: 0, Z: a.Offense.Z - 5}
			},
		},
	}
}
