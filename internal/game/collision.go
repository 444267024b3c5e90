package game

// CollisionEvent records something that happened during a frame, for the
// round log and for clients that play sounds.
type CollisionEvent struct {
	Type     string  `json:"type"` // "wall", "ball", "paddle", "pot", "fall"
	BodyID   int     `json:"body_id"`
	TargetID int     `json:"target_id"` // other body ID, or edge bits for walls
	Speed    float64 `json:"speed"`
}

// Intersects is the circle-circle overlap test. Touching exactly at 2r
// does not count.
func Intersects(a, b *Body) bool {
	d := b.Position.Minus(a.Position)
	reach := a.Radius + b.Radius
	return d.MagnitudeSquared() < reach*reach
}

// HitBy applies the direction-transfer rule when striker overlaps b: the
// striker's velocity is redirected along (striker - b) and keeps its own
// speed. b itself is not changed. There is no mass or momentum exchange.
//
// When the two centers coincide the direction is undefined and nothing
// changes. Returns whether a new velocity was assigned.
func (b *Body) HitBy(striker *Body) bool {
	if !Intersects(b, striker) {
		return false
	}
	d := striker.Position.Minus(b.Position)
	if d.IsZero() {
		return false
	}
	striker.SetVelocity(d.Normalize().Times(striker.Speed()))
	return true
}
