package game

import "math"

// Vec2 is a vector on the table plane. The simulation is planar in x/z;
// height is carried separately on Body.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Vec3 is a world-space point handed to the rendering layer.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func NewVec2(x, z float64) Vec2 {
	return Vec2{X: x, Z: z}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Z: v.Z + o.Z}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Z: v.Z - o.Z}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Z: v.Z * s}
}

// Magnitude does not overflow for components beyond sqrt(MaxFloat64).
func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Z)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Z*v.Z
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

// Bearing returns the angle of v in radians, measured from +x toward +z.
func (v Vec2) Bearing() float64 {
	return math.Atan2(v.Z, v.X)
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Z == 0
}

func (v Vec2) IsEqualTo(o Vec2) bool {
	return v.X == o.X && v.Z == o.Z
}

// Transform is a row-major 4x4 world matrix. Only translation is used;
// the translation lives in the last row.
type Transform [16]float64

// Translation builds the world transform that places a mesh at p.
func Translation(p Vec3) Transform {
	return Transform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		p.X, p.Y, p.Z, 1,
	}
}

// Position extracts the translation component.
func (t Transform) Position() Vec3 {
	return Vec3{X: t[12], Y: t[13], Z: t[14]}
}
