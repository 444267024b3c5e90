package game

import "math"

// Role identifies what a body does on the table.
type Role string

const (
	RoleTarget       Role = "TARGET"
	RoleAimReference Role = "AIM_REFERENCE" // pinned paddle, never moves on its own
	RoleActive       Role = "ACTIVE"
	RoleAimMarker    Role = "AIM_MARKER" // visual only
)

// Color is an RGBA material tag passed through to the renderer.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

var (
	ColorWhite   = Color{255, 255, 255, 255}
	ColorYellow  = Color{255, 255, 0, 255}
	ColorBlue    = Color{0, 0, 255, 255}
	ColorMagenta = Color{255, 0, 255, 255}
	ColorDarkRed = Color{139, 0, 0, 255}
	ColorGreen   = Color{0, 255, 0, 255}
)

// Body is a ball on the plane. Its height is always its radius except for
// the aim marker once it has been parked off the board.
type Body struct {
	ID        int       `json:"id"`
	Role      Role      `json:"role"`
	Position  Vec2      `json:"position"`
	Height    float64   `json:"height"`
	Velocity  Vec2      `json:"velocity"`
	Radius    float64   `json:"radius"`
	Color     Color     `json:"color"`
	InPlay    bool      `json:"in_play"`
	Transform Transform `json:"-"`
}

// NewBody places a ball at rest on the plane.
func NewBody(id int, role Role, pos Vec2, color Color) *Body {
	b := &Body{
		ID:     id,
		Role:   role,
		Radius: BallRadius,
		Color:  color,
		InPlay: true,
	}
	b.SetCenter(pos, BallRadius)
	return b
}

// Center returns the world-space center.
func (b *Body) Center() Vec3 {
	return Vec3{X: b.Position.X, Y: b.Height, Z: b.Position.Z}
}

// SetCenter moves the body and keeps its render transform in step.
func (b *Body) SetCenter(pos Vec2, height float64) {
	b.Position = pos
	b.Height = height
	b.Transform = Translation(b.Center())
}

func (b *Body) SetVelocity(v Vec2) {
	b.Velocity = v
}

func (b *Body) Speed() float64 {
	return b.Velocity.Magnitude()
}

// AtRest reports whether both velocity components are within RestEpsilon.
func (b *Body) AtRest() bool {
	return math.Abs(b.Velocity.X) <= RestEpsilon && math.Abs(b.Velocity.Z) <= RestEpsilon
}

// Integrate advances the body by velocity * dt * TimeScale on x and z.
// Bodies at rest do not move. No decay is applied.
func (b *Body) Integrate(dt float64) {
	if b.AtRest() {
		return
	}
	b.SetCenter(b.Position.Plus(b.Velocity.Times(TimeScale*dt)), b.Height)
}

// RemoveFromPlay parks the body at the sentinel with zero velocity.
func (b *Body) RemoveFromPlay() {
	b.SetCenter(Sentinel, b.Radius)
	b.Velocity = Vec2{}
	b.InPlay = false
}
