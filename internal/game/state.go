package game

// RoundPhase is where the active ball is in its round.
type RoundPhase string

const (
	PhaseAiming  RoundPhase = "AIMING"
	PhaseMoving  RoundPhase = "MOVING"
	PhaseResting RoundPhase = "RESTING" // launched and came to rest without a terminal event
	PhaseWon     RoundPhase = "WON"
	PhaseLost    RoundPhase = "LOST"
)

// Terminal reports whether the round is over.
func (p RoundPhase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// ShotLatch guards the one-shot launch. It only returns to Idle on Reset.
type ShotLatch string

const (
	LatchIdle  ShotLatch = "IDLE"
	LatchArmed ShotLatch = "ARMED" // aim marker has been moved
	LatchFired ShotLatch = "FIRED"
)

// SessionStatus represents the lifecycle of a hosted table.
type SessionStatus string

const (
	SessionRunning SessionStatus = "RUNNING"
	SessionClosed  SessionStatus = "CLOSED"
)
