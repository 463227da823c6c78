package geom

import "math"

// Vec2 is a point on the ground plane. X runs across the field, Z along it.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

// Vec3 is a world-space point.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (a Vec3) Add(b Vec3) Vec3           { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3           { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3      { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Length() float64           { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }
func (a Vec3) DistanceTo(b Vec3) float64 { return a.Sub(b).Length() }

// Distance returns the ground-plane distance between a and b.
func (a Vec2) Distance(b Vec2) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Clamp01 clamps x in [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp clamps x in [lo,hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Lerp2(a, b Vec2, t float64) Vec2 {
	return Vec2{X: Lerp(a.X, b.X, t), Z: Lerp(a.Z, b.Z, t)}
}

func Lerp3(a, b Vec3, t float64) Vec3 {
	return Vec3{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t), Z: Lerp(a.Z, b.Z, t)}
}

// EaseInOutCubic maps progress [0,1] onto an S-curve with zero slope at both ends.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

// Bezier3 evaluates the cubic Bézier p0..p3 at t:
// (1-t)³p0 + 3(1-t)²t p1 + 3(1-t)t² p2 + t³p3
func Bezier3(p0, p1, p2, p3 Vec3, t float64) Vec3 {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return p0.Scale(a).Add(p1.Scale(b)).Add(p2.Scale(c)).Add(p3.Scale(d))
}

// BillboardAngle is the Y rotation that turns a label at entity to face cam.
func BillboardAngle(cam, entity Vec3) float64 {
	return math.Atan2(cam.X-entity.X, cam.Z-entity.Z)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
