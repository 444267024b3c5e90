package game

// Edge is a bit set of boundary edges.
type Edge uint8

const (
	EdgeRight Edge = 1 << iota // +x
	EdgeLeft                   // -x
	EdgeNear                   // -z, the open end
	EdgeFar                    // +z
)

// Boundary is the rectangular playable region. A body is in bounds iff
// its center lies strictly inside all four thresholds.
type Boundary struct {
	HalfWidth float64
	HalfDepth float64
	Radius    float64
}

func NewBoundary(halfWidth, halfDepth, radius float64) Boundary {
	return Boundary{HalfWidth: halfWidth, HalfDepth: halfDepth, Radius: radius}
}

// StandardBoundary is the 6 x 10 table used by the simulation.
func StandardBoundary() Boundary {
	return NewBoundary(TableHalfWidth, TableHalfDepth, BallRadius)
}

func (w Boundary) MaxX() float64 { return w.HalfWidth - w.Radius }
func (w Boundary) MinX() float64 { return -w.HalfWidth + w.Radius }
func (w Boundary) MinZ() float64 { return -w.HalfDepth + w.Radius }
func (w Boundary) MaxZ() float64 { return w.HalfDepth - w.Radius }

// Violations returns the edges the body touches or crosses.
func (w Boundary) Violations(b *Body) Edge {
	var e Edge
	if b.Position.X >= w.MaxX() {
		e |= EdgeRight
	}
	if b.Position.X <= w.MinX() {
		e |= EdgeLeft
	}
	if b.Position.Z <= w.MinZ() {
		e |= EdgeNear
	}
	if b.Position.Z >= w.MaxZ() {
		e |= EdgeFar
	}
	return e
}

// Intersects reports whether the body is on or past any edge.
func (w Boundary) Intersects(b *Body) bool {
	return w.Violations(b) != 0
}

// Resolve clamps the body back onto each violated threshold and negates the
// matching velocity component. Edges are handled independently, so a corner
// hit reflects both axes. Returns the edges that were hit.
func (w Boundary) Resolve(b *Body) Edge {
	hit := Edge(0)
	if b.Position.X >= w.MaxX() {
		b.SetCenter(Vec2{X: w.MaxX(), Z: b.Position.Z}, b.Height)
		b.Velocity.X = -b.Velocity.X
		hit |= EdgeRight
	}
	if b.Position.X <= w.MinX() {
		b.SetCenter(Vec2{X: w.MinX(), Z: b.Position.Z}, b.Height)
		b.Velocity.X = -b.Velocity.X
		hit |= EdgeLeft
	}
	if b.Position.Z <= w.MinZ() {
		b.SetCenter(Vec2{X: b.Position.X, Z: w.MinZ()}, b.Height)
		b.Velocity.Z = -b.Velocity.Z
		hit |= EdgeNear
	}
	if b.Position.Z >= w.MaxZ() {
		b.SetCenter(Vec2{X: b.Position.X, Z: w.MaxZ()}, b.Height)
		b.Velocity.Z = -b.Velocity.Z
		hit |= EdgeFar
	}
	return hit
}
