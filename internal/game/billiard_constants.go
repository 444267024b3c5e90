package game

// Physics and table constants for the four-ball table.
// Lengths are world units; velocities are world units per second before
// TimeScale is applied.

const (
	BallRadius = 0.21

	TableHalfWidth = 3.0
	TableHalfDepth = 5.0

	// TimeScale converts stored velocity into per-frame displacement.
	TimeScale = 3.3
	// RestEpsilon: a body with |vx| and |vz| both at or below this is at rest.
	RestEpsilon = 0.01

	// DecreaseRate is a per-frame velocity decay that the update path does
	// not apply. The table has no friction.
	DecreaseRate = 0.9982

	// FallLine is the z at which the active ball has left the open end of
	// the table (compared against FallLine + BallRadius).
	FallLine = -4.99

	LaunchScale     = 0.3
	DragSensitivity = -0.01

	NumTargets = 4

	SentinelX = -15.0
	SentinelZ = -15.0
)

// Sentinel is where bodies go when they are removed from play.
var Sentinel = Vec2{X: SentinelX, Z: SentinelZ}
