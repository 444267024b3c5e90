package game

// Snapshot is a copy of the table state safe to hand to other goroutines.
type Snapshot struct {
	Round    int              `json:"round"`
	Phase    RoundPhase       `json:"phase"`
	Latch    ShotLatch        `json:"latch"`
	PotCount int              `json:"pot_count"`
	Shots    int              `json:"shots"`
	Frames   int              `json:"frames"`
	Elapsed  float64          `json:"elapsed"`
	Bodies   []Body           `json:"bodies"`
	Events   []CollisionEvent `json:"events,omitempty"`

	// Transforms is the render transform of every body, in Bodies order.
	Transforms []BodyFrame `json:"transforms"`
}

// Snapshot copies the simulation state.
func (s *Simulation) Snapshot() Snapshot {
	return s.snapshotWith(s.Frame())
}

// snapshotWith copies the simulation state around frames already produced
// by Update.
func (s *Simulation) snapshotWith(frames []BodyFrame) Snapshot {
	bodies := s.Bodies()
	snap := Snapshot{
		Round:      s.Round,
		Phase:      s.Phase,
		Latch:      s.Latch,
		PotCount:   s.PotCount,
		Shots:      s.Shots,
		Frames:     s.Frames,
		Elapsed:    s.Elapsed,
		Bodies:     make([]Body, len(bodies)),
		Events:     s.Events(),
		Transforms: frames,
	}
	for i, b := range bodies {
		snap.Bodies[i] = *b
	}
	return snap
}

// Body returns the snapshot copy of the body with the given ID.
func (snap Snapshot) Body(id int) (Body, bool) {
	for _, b := range snap.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}
