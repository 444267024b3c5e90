package game

// BodySpec is the starting placement of one roster body.
type BodySpec struct {
	Role     Role    `json:"role"`
	Position Vec2    `json:"position"`
	Height   float64 `json:"height"`
	Color    Color   `json:"color"`
}

// WallSpec describes one box of the table for the renderer. Only the
// Boundary takes part in collisions.
type WallSpec struct {
	Name   string  `json:"name"`
	Origin Vec3    `json:"origin"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Color  Color   `json:"color"`
}

// TableLayout holds the starting roster and the render-only table boxes.
type TableLayout struct {
	Targets      [NumTargets]BodySpec `json:"targets"`
	AimReference BodySpec             `json:"aim_reference"`
	Active       BodySpec             `json:"active"`
	AimMarker    BodySpec             `json:"aim_marker"`
	Plane        WallSpec             `json:"plane"`
	Walls        [4]WallSpec          `json:"walls"`
}

// StandardLayout is the four-ball table: targets near the far cushion,
// paddle and active ball at the open end, aim marker parked just past the
// far cushion until the player drags it.
func StandardLayout() TableLayout {
	r := BallRadius
	return TableLayout{
		Targets: [NumTargets]BodySpec{
			{Role: RoleTarget, Position: NewVec2(-2.0, 3.0), Height: r, Color: ColorYellow},
			{Role: RoleTarget, Position: NewVec2(-0.7, 2.5), Height: r, Color: ColorYellow},
			{Role: RoleTarget, Position: NewVec2(2.0, 2.5), Height: r, Color: ColorYellow},
			{Role: RoleTarget, Position: NewVec2(0.7, 3.0), Height: r, Color: ColorYellow},
		},
		AimReference: BodySpec{Role: RoleAimReference, Position: NewVec2(0, -5.0+0.1+r), Height: r, Color: ColorBlue},
		Active:       BodySpec{Role: RoleActive, Position: NewVec2(0, -5.0+0.11+3*r), Height: r, Color: ColorMagenta},
		AimMarker:    BodySpec{Role: RoleAimMarker, Position: NewVec2(0, 5.2), Height: r, Color: ColorWhite},
		Plane: WallSpec{
			Name: "plane", Origin: Vec3{X: 0, Y: -0.0006 / 5, Z: 0},
			Width: 2 * TableHalfWidth, Height: 0.03, Depth: 2 * TableHalfDepth, Color: ColorGreen,
		},
		Walls: [4]WallSpec{
			{Name: "far", Origin: Vec3{X: 0, Y: 0.12, Z: TableHalfDepth}, Width: 2 * TableHalfWidth, Height: 0.3, Depth: 0.12, Color: ColorDarkRed},
			{Name: "left", Origin: Vec3{X: -TableHalfWidth, Y: 0.12, Z: 0}, Width: 0.12, Height: 0.3, Depth: 2 * TableHalfDepth, Color: ColorDarkRed},
			{Name: "right", Origin: Vec3{X: TableHalfWidth, Y: 0.12, Z: 0}, Width: 0.12, Height: 0.3, Depth: 2 * TableHalfDepth, Color: ColorDarkRed},
			{Name: "near", Origin: Vec3{X: 0, Y: 0.12, Z: -TableHalfDepth}, Width: 2 * TableHalfWidth, Height: 0, Depth: 0.12, Color: ColorGreen},
		},
	}
}
