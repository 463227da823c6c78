package play

import (
	"math"

	"github.com/coreman2200/funtimes-replay/internal/geom"
)

// ComputeOpenSpace returns, for each player present in positions, the
// distance to the nearest present player of any other team, rounded to one
// decimal. Players with no opponent present get no entry.
func ComputeOpenSpace(players []Player, positions map[int]geom.Vec2) map[int]float64 {
	teamOf := make(map[int]string, len(players))
	for _, p := range players {
		teamOf[p.ID] = p.Team
	}

	out := make(map[int]float64, len(positions))
	for id, p := range positions {
		best := math.Inf(1)
		for oid, op := range positions {
			if oid == id || teamOf[oid] == teamOf[id] {
				continue
			}
			if d := p.Distance(op); d < best {
				best = d
			}
		}
		if !math.IsInf(best, 1) {
			out[id] = geom.Round1(best)
		}
	}
	return out
}
