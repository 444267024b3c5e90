package game

import (
	"math"
	"time"
)

// ButtonMask is the set of pointer buttons held during a drag.
type ButtonMask uint8

const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonRight
)

// BodyFrame is one body's render state after an update.
type BodyFrame struct {
	ID        int       `json:"id"`
	Role      Role      `json:"role"`
	InPlay    bool      `json:"in_play"`
	Transform Transform `json:"transform"`
}

// RoundResult summarises a finished round.
type RoundResult struct {
	Round    int           `json:"round"`
	Outcome  RoundPhase    `json:"outcome"`
	PotCount int           `json:"pot_count"`
	Shots    int           `json:"shots"`
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration"`
}

// Simulation is the whole table state. It is not safe for concurrent use;
// one owner drives Update and applies input between frames.
type Simulation struct {
	Layout       TableLayout
	Boundary     Boundary
	Targets      [NumTargets]*Body
	AimReference *Body
	Active       *Body
	AimMarker    *Body

	PotCount int
	Latch    ShotLatch
	Phase    RoundPhase
	Round    int
	Shots    int
	Frames   int
	Elapsed  float64 // seconds since the round began

	events []CollisionEvent
}

// NewSimulation racks the layout and starts round 1.
func NewSimulation(layout TableLayout) *Simulation {
	s := &Simulation{
		Layout:   layout,
		Boundary: StandardBoundary(),
	}
	s.rack()
	s.Round = 1
	return s
}

// NewStandardSimulation is NewSimulation with the standard table.
func NewStandardSimulation() *Simulation {
	return NewSimulation(StandardLayout())
}

func (s *Simulation) rack() {
	for i, spec := range s.Layout.Targets {
		s.Targets[i] = newBodyFromSpec(i, spec)
	}
	s.AimReference = newBodyFromSpec(NumTargets, s.Layout.AimReference)
	s.Active = newBodyFromSpec(NumTargets+1, s.Layout.Active)
	s.AimMarker = newBodyFromSpec(NumTargets+2, s.Layout.AimMarker)

	s.PotCount = 0
	s.Latch = LatchIdle
	s.Phase = PhaseAiming
	s.Shots = 0
	s.Frames = 0
	s.Elapsed = 0
	s.events = s.events[:0]
}

func newBodyFromSpec(id int, spec BodySpec) *Body {
	b := NewBody(id, spec.Role, spec.Position, spec.Color)
	b.SetCenter(spec.Position, spec.Height)
	return b
}

// Bodies returns the roster in ID order: targets, aim reference, active,
// aim marker.
func (s *Simulation) Bodies() []*Body {
	out := make([]*Body, 0, NumTargets+3)
	out = append(out, s.Targets[:]...)
	return append(out, s.AimReference, s.Active, s.AimMarker)
}

// Update runs one frame: integrate targets, resolve the active ball against
// the walls, check the open end, integrate the rest, pot targets touched by
// the active ball, then pin the aim reference. Returns every body's
// transform for rendering.
func (s *Simulation) Update(dt float64) []BodyFrame {
	s.events = s.events[:0]
	s.Frames++
	if !s.Phase.Terminal() {
		s.Elapsed += dt
	}

	for _, t := range s.Targets {
		if t.InPlay {
			t.Integrate(dt)
		}
	}

	s.resolveWalls()
	s.checkFallOff()

	for _, b := range []*Body{s.Active, s.AimReference, s.AimMarker} {
		if b.InPlay {
			b.Integrate(dt)
		}
	}

	s.resolveTargets()
	s.pinAimReference()

	if s.Phase == PhaseMoving && s.Active.AtRest() {
		s.Phase = PhaseResting
	}

	return s.Frame()
}

func (s *Simulation) resolveWalls() {
	a := s.Active
	if !a.InPlay {
		return
	}
	if hit := s.Boundary.Resolve(a); hit != 0 {
		s.record(CollisionEvent{Type: "wall", BodyID: a.ID, TargetID: int(hit), Speed: a.Speed()})
	}
}

func (s *Simulation) checkFallOff() {
	a := s.Active
	if !a.InPlay || a.Position.Z > FallLine+a.Radius {
		return
	}
	speed := a.Speed()
	a.RemoveFromPlay()
	s.record(CollisionEvent{Type: "fall", BodyID: a.ID, TargetID: -1, Speed: speed})
	if !s.Phase.Terminal() {
		s.Phase = PhaseLost
	}
}

func (s *Simulation) resolveTargets() {
	a := s.Active
	for _, t := range s.Targets {
		if !a.InPlay {
			return
		}
		if !t.InPlay || !Intersects(t, a) {
			continue
		}
		if t.HitBy(a) {
			s.record(CollisionEvent{Type: "ball", BodyID: a.ID, TargetID: t.ID, Speed: a.Speed()})
		}
		t.RemoveFromPlay()
		s.PotCount++
		s.record(CollisionEvent{Type: "pot", BodyID: t.ID, TargetID: a.ID})

		if s.PotCount == NumTargets {
			a.RemoveFromPlay()
			s.Phase = PhaseWon
		}
	}
}

// pinAimReference lets the active ball bounce off the aim reference, then
// puts the aim reference back where it was with no velocity.
func (s *Simulation) pinAimReference() {
	p := s.AimReference
	pos, height := p.Position, p.Height
	if s.Active.InPlay && p.HitBy(s.Active) {
		s.record(CollisionEvent{Type: "paddle", BodyID: s.Active.ID, TargetID: p.ID, Speed: s.Active.Speed()})
	}
	p.SetCenter(pos, height)
	p.SetVelocity(Vec2{})
}

// Drag applies pointer movement along x. dx is the previous pointer x minus
// the current one, in pixels. The right button moves the aim marker, the
// left button the aim reference. The table has no use for dy. A NaN or
// infinite dx is ignored.
func (s *Simulation) Drag(buttons ButtonMask, dx, dy float64) bool {
	if math.IsNaN(dx) || math.IsInf(dx, 0) {
		return false
	}
	switch {
	case buttons&ButtonRight != 0:
		m := s.AimMarker
		if !m.InPlay {
			return false
		}
		m.SetCenter(Vec2{X: m.Position.X + dx*DragSensitivity, Z: m.Position.Z}, m.Height)
		if s.Latch == LatchIdle {
			s.Latch = LatchArmed
		}
		return true
	case buttons&ButtonLeft != 0:
		if s.Phase.Terminal() {
			return false
		}
		p := s.AimReference
		p.SetCenter(Vec2{X: p.Position.X + dx*DragSensitivity, Z: p.Position.Z}, p.Height)
		return true
	}
	return false
}

// Shoot launches the active ball toward the aim marker with a speed
// proportional to their distance. It fires once per round; later calls
// return false and change nothing. A marker so far off that the distance
// is not finite also refuses the shot.
func (s *Simulation) Shoot() bool {
	if s.Latch == LatchFired || s.Phase.Terminal() || !s.Active.InPlay {
		return false
	}

	d := s.AimMarker.Position.Minus(s.Active.Position)
	theta := d.Bearing()
	dist := d.Magnitude()
	if !d.IsFinite() || math.IsInf(dist, 0) {
		return false
	}
	s.Active.SetVelocity(Vec2{
		X: dist * math.Cos(theta) * LaunchScale,
		Z: dist * math.Sin(theta) * LaunchScale,
	})

	s.AimMarker.SetCenter(Sentinel, 0)
	s.AimMarker.SetVelocity(Vec2{})
	s.AimMarker.InPlay = false

	s.Latch = LatchFired
	s.Shots++
	s.Phase = PhaseMoving
	return true
}

// Reset re-racks the table for a new round.
func (s *Simulation) Reset() {
	s.rack()
	s.Round++
}

// Result summarises the current round. Outcome is the current phase.
func (s *Simulation) Result() RoundResult {
	return RoundResult{
		Round:    s.Round,
		Outcome:  s.Phase,
		PotCount: s.PotCount,
		Shots:    s.Shots,
		Frames:   s.Frames,
		Duration: time.Duration(s.Elapsed * float64(time.Second)),
	}
}

// Events returns a copy of the events recorded during the last Update.
func (s *Simulation) Events() []CollisionEvent {
	out := make([]CollisionEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Simulation) record(e CollisionEvent) {
	s.events = append(s.events, e)
}

// Frame returns the current transform of every body.
func (s *Simulation) Frame() []BodyFrame {
	bodies := s.Bodies()
	frames := make([]BodyFrame, len(bodies))
	for i, b := range bodies {
		frames[i] = BodyFrame{ID: b.ID, Role: b.Role, InPlay: b.InPlay, Transform: b.Transform}
	}
	return frames
}
