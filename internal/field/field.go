package field

import "github.com/coreman2200/funtimes-replay/internal/geom"

// Unit conversions.
const (
	YardToMeter = 0.9144
	FootToMeter = 0.3048
	MeterToFeet = 3.28084
)

// Field dimensions in yards.
const (
	LengthYards       = 120.0 // including end zones
	WidthYards        = 53.33
	EndZoneDepthYards = 10.0
)

// Render heights in world units.
const (
	BallHeight  = 0.5
	TrackHeight = 0.1
)

// Dim is the playing surface in world units.
type Dim struct {
	Length float64 `json:"length"` // along world X
	Width  float64 `json:"width"`  // along world Z
}

// Surface returns the field size in metres.
func Surface() Dim {
	return Dim{Length: LengthYards * YardToMeter, Width: WidthYards * YardToMeter}
}

// ToWorld maps a ground-plane data point (x across, z along) to world space
// at height h. Data x becomes world Z and data z becomes world X.
func ToWorld(p geom.Vec2, h float64) geom.Vec3 {
	return geom.Vec3{X: p.Z, Y: h, Z: p.X}
}

// FromWorld drops the height and undoes ToWorld.
func FromWorld(v geom.Vec3) geom.Vec2 {
	return geom.Vec2{X: v.Z, Z: v.X}
}
