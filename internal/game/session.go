package game

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"
)

var (
	ErrSessionClosed    = errors.New("session is closed")
	ErrCommandQueueFull = errors.New("command queue is full")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidDrag      = errors.New("drag deltas must be finite")
)

// CommandType names an input event delivered to a session between frames.
type CommandType string

const (
	CommandDrag  CommandType = "drag"
	CommandShoot CommandType = "shoot"
	CommandReset CommandType = "reset"
)

// Command is one input event. Buttons/DX/DY are only read for drags.
type Command struct {
	Type    CommandType `json:"type"`
	Buttons ButtonMask  `json:"buttons,omitempty"`
	DX      float64     `json:"dx,omitempty"`
	DY      float64     `json:"dy,omitempty"`
}

func (c Command) Validate() error {
	switch c.Type {
	case CommandDrag:
		if math.IsNaN(c.DX) || math.IsInf(c.DX, 0) || math.IsNaN(c.DY) || math.IsInf(c.DY, 0) {
			return ErrInvalidDrag
		}
		return nil
	case CommandShoot, CommandReset:
		return nil
	}
	return ErrUnknownCommand
}

// Session hosts one table. Its Run loop is the only goroutine that touches
// the simulation; everyone else submits commands and reads snapshots.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Private   bool      `json:"private"`
	PINHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// OnFrame runs on the session goroutine after every frame.
	OnFrame func(*Session, Snapshot)
	// OnRoundOver runs once when a round turns Won or Lost.
	OnRoundOver func(*Session, RoundResult)

	tick     time.Duration
	sim      *Simulation
	commands chan Command
	done     chan struct{}
	once     sync.Once

	mu           sync.RWMutex
	snapshot     Snapshot
	status       SessionStatus
	lastActivity time.Time
}

// NewSession racks a standard table. It does not start ticking until Run.
func NewSession(id, token string, tick time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		Token:        token,
		CreatedAt:    now,
		tick:         tick,
		sim:          NewStandardSimulation(),
		commands:     make(chan Command, 64),
		done:         make(chan struct{}),
		status:       SessionRunning,
		lastActivity: now,
	}
	s.snapshot = s.sim.Snapshot()
	return s
}

// Run drives the simulation at the session's tick until ctx is cancelled or
// the session is closed.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-s.done:
			return
		case cmd := <-s.commands:
			if err := s.apply(cmd); err != nil {
				log.Printf("[SESSION] %s: command %s rejected: %v", s.ID, cmd.Type, err)
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.step(dt)
		}
	}
}

// step runs one frame and publishes the result.
func (s *Session) step(dt float64) {
	wasTerminal := s.sim.Phase.Terminal()
	snap := s.sim.snapshotWith(s.sim.Update(dt))

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	if !wasTerminal && s.sim.Phase.Terminal() {
		result := s.sim.Result()
		log.Printf("[SESSION] %s: round %d over, outcome=%s pots=%d", s.ID, result.Round, result.Outcome, result.PotCount)
		if s.OnRoundOver != nil {
			s.OnRoundOver(s, result)
		}
	}
	if s.OnFrame != nil {
		s.OnFrame(s, snap)
	}
}

func (s *Session) apply(cmd Command) error {
	switch cmd.Type {
	case CommandDrag:
		s.sim.Drag(cmd.Buttons, cmd.DX, cmd.DY)
	case CommandShoot:
		if s.sim.Shoot() {
			log.Printf("[SESSION] %s: shot fired in round %d", s.ID, s.sim.Round)
		}
	case CommandReset:
		s.sim.Reset()
		log.Printf("[SESSION] %s: round %d racked", s.ID, s.sim.Round)
	default:
		return ErrUnknownCommand
	}

	snap := s.sim.Snapshot()
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return nil
}

// Submit queues a command for the next gap between frames.
func (s *Session) Submit(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()

	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrCommandQueueFull
	}
}

// Snapshot returns the state published after the most recent frame or
// command.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Close stops the loop. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.status = SessionClosed
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
