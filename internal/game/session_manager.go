package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrInvalidPIN      = errors.New("invalid PIN")
)

// SessionInfo is the listing view of a hosted table
type SessionInfo struct {
	ID        string     `json:"id"`
	Private   bool       `json:"private"`
	CreatedAt time.Time  `json:"created_at"`
	Round     int        `json:"round"`
	Phase     RoundPhase `json:"phase"`
	PotCount  int        `json:"pot_count"`
}

// SessionManager owns every table hosted by this process
type SessionManager struct {
	sessions map[string]*Session
	rdb      *redis.Client // optional; snapshots, round events, idle set
	db       *sqlx.DB      // optional; session and round records
	config   *config.Config
	ctx      context.Context
	mu       sync.RWMutex

	hookMu      sync.RWMutex
	onFrame     func(*Session, Snapshot)
	onRoundOver func(*Session, RoundResult)
}

// NewSessionManager creates a manager. Sessions it creates run until ctx is
// cancelled or they are ended.
func NewSessionManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
		ctx:      ctx,
	}
}

// SetHooks registers the listeners that receive frames and round results
// from every session.
func (gm *SessionManager) SetHooks(onFrame func(*Session, Snapshot), onRoundOver func(*Session, RoundResult)) {
	gm.hookMu.Lock()
	defer gm.hookMu.Unlock()
	gm.onFrame = onFrame
	gm.onRoundOver = onRoundOver
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Create racks a new table and starts its loop. A non-empty pin makes the
// table private.
func (gm *SessionManager) Create(pin string) (*Session, error) {
	var pinHash string
	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash pin: %w", err)
		}
		pinHash = string(hash)
	}

	gm.mu.Lock()
	if gm.config.MaxSessions > 0 && len(gm.sessions) >= gm.config.MaxSessions {
		gm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := NewSession(uuid.NewString(), generateToken(16), gm.config.TickInterval())
	s.Private = pinHash != ""
	s.PINHash = pinHash
	s.OnFrame = gm.frame
	s.OnRoundOver = gm.roundOver
	gm.sessions[s.ID] = s
	gm.mu.Unlock()

	go s.Run(gm.ctx)

	gm.recordSession(s)
	gm.touchIdle(s.ID)
	log.Printf("[SESSION] Created session %s (private=%v, active=%d)", s.ID, s.Private, gm.Count())
	return s, nil
}

// Get returns a running session.
func (gm *SessionManager) Get(id string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	s, ok := gm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Join checks the PIN of a private table. Public tables accept any pin.
func (gm *SessionManager) Join(id, pin string) (*Session, error) {
	s, err := gm.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.Private {
		return s, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.PINHash), []byte(pin)); err != nil {
		return nil, ErrInvalidPIN
	}
	return s, nil
}

// Snapshot returns the live snapshot of a session, or the last copy saved in
// Redis once the session has ended.
func (gm *SessionManager) Snapshot(id string) (Snapshot, error) {
	if s, err := gm.Get(id); err == nil {
		return s.Snapshot(), nil
	}
	snap, err := gm.LoadSnapshot(id)
	if err != nil {
		return Snapshot{}, ErrSessionNotFound
	}
	return snap, nil
}

// Submit forwards a command to a session and refreshes its idle deadline.
func (gm *SessionManager) Submit(id string, cmd Command) error {
	s, err := gm.Get(id)
	if err != nil {
		return err
	}
	if err := s.Submit(cmd); err != nil {
		return err
	}
	gm.touchIdle(id)
	return nil
}

// End stops a session, saves its final snapshot and forgets it.
func (gm *SessionManager) End(id, reason string) error {
	gm.mu.Lock()
	s, ok := gm.sessions[id]
	if ok {
		delete(gm.sessions, id)
	}
	gm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.Close()
	if err := gm.saveSnapshot(id, s.Snapshot()); err != nil {
		log.Printf("[REDIS] Failed to save final snapshot for %s: %v", id, err)
	}
	gm.markSessionEnded(id)
	gm.clearIdle(id)
	log.Printf("[SESSION] Ended session %s (%s)", id, reason)
	return nil
}

// List returns the running sessions, oldest first.
func (gm *SessionManager) List() []SessionInfo {
	gm.mu.RLock()
	out := make([]SessionInfo, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		snap := s.Snapshot()
		out = append(out, SessionInfo{
			ID:        s.ID,
			Private:   s.Private,
			CreatedAt: s.CreatedAt,
			Round:     snap.Round,
			Phase:     snap.Phase,
			PotCount:  snap.PotCount,
		})
	}
	gm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Count returns the number of running sessions.
func (gm *SessionManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// ExpireIdle ends every session whose last command is older than timeout.
// It is the fallback used when there is no Redis idle set.
func (gm *SessionManager) ExpireIdle(now time.Time, timeout time.Duration) []string {
	gm.mu.RLock()
	var stale []string
	for id, s := range gm.sessions {
		if now.Sub(s.LastActivity()) >= timeout {
			stale = append(stale, id)
		}
	}
	gm.mu.RUnlock()

	var ended []string
	for _, id := range stale {
		if err := gm.End(id, "idle"); err == nil {
			ended = append(ended, id)
		}
	}
	return ended
}

// Shutdown ends every running session.
func (gm *SessionManager) Shutdown() {
	gm.mu.RLock()
	ids := make([]string, 0, len(gm.sessions))
	for id := range gm.sessions {
		ids = append(ids, id)
	}
	gm.mu.RUnlock()

	for _, id := range ids {
		gm.End(id, "shutdown")
	}
}

// frame runs on the session goroutine.
func (gm *SessionManager) frame(s *Session, snap Snapshot) {
	gm.hookMu.RLock()
	fn := gm.onFrame
	gm.hookMu.RUnlock()
	if fn != nil {
		fn(s, snap)
	}
}

// roundOver runs on the session goroutine. Storage happens off it so the
// tick is not held up by the network.
func (gm *SessionManager) roundOver(s *Session, result RoundResult) {
	snap := s.Snapshot()
	go func() {
		gm.recordRound(s.ID, result)
		if err := gm.saveSnapshot(s.ID, snap); err != nil {
			log.Printf("[REDIS] Failed to save snapshot for %s: %v", s.ID, err)
		}
	}()

	// With Redis the round_events subscriber delivers the result to
	// listeners; without it they are called directly.
	if gm.publishRoundOver(s.ID, result) {
		return
	}
	gm.hookMu.RLock()
	fn := gm.onRoundOver
	gm.hookMu.RUnlock()
	if fn != nil {
		fn(s, result)
	}
}
