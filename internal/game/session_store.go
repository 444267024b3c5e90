package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/billiards/internal/models"
	store "github.com/playmatatu/billiards/internal/redis"
	"github.com/redis/go-redis/v9"
)

// RoundEvent is published on the round_events channel when a round ends.
type RoundEvent struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Result    RoundResult `json:"result"`
}

// recordSession inserts the session row. Failures are logged, not returned.
func (gm *SessionManager) recordSession(s *Session) {
	if gm.db == nil {
		return
	}
	_, err := gm.db.Exec(
		`INSERT INTO billiard_sessions (id, token, private, created_at) VALUES ($1,$2,$3,$4)`,
		s.ID, s.Token, s.Private, s.CreatedAt,
	)
	if err != nil {
		log.Printf("[DB] Failed to record session %s: %v", s.ID, err)
	}
}

func (gm *SessionManager) markSessionEnded(id string) {
	if gm.db == nil {
		return
	}
	if _, err := gm.db.Exec(`UPDATE billiard_sessions SET ended_at = NOW() WHERE id = $1 AND ended_at IS NULL`, id); err != nil {
		log.Printf("[DB] Failed to mark session %s ended: %v", id, err)
	}
}

func (gm *SessionManager) recordRound(sessionID string, r RoundResult) {
	if gm.db == nil {
		return
	}
	_, err := gm.db.Exec(
		`INSERT INTO rounds (session_id, round_number, outcome, pot_count, shots, frames, duration_ms, ended_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		 ON CONFLICT (session_id, round_number) DO NOTHING`,
		sessionID, r.Round, string(r.Outcome), r.PotCount, r.Shots, r.Frames, r.Duration.Milliseconds(),
	)
	if err != nil {
		log.Printf("[DB] Failed to record round %d for session %s: %v", r.Round, sessionID, err)
	}
}

// Rounds returns the recorded round history of a session, oldest first.
func (gm *SessionManager) Rounds(sessionID string) ([]models.Round, error) {
	rounds := []models.Round{}
	if gm.db == nil {
		return rounds, nil
	}
	err := gm.db.Select(&rounds,
		`SELECT id, session_id, round_number, outcome, pot_count, shots, frames, duration_ms, ended_at
		 FROM rounds WHERE session_id = $1 ORDER BY round_number`, sessionID)
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

func (gm *SessionManager) saveSnapshot(id string, snap Snapshot) error {
	if gm.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	// Final snapshots are written during shutdown, after gm.ctx is done.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return gm.rdb.SetEx(ctx, store.SnapshotKey(id), data, gm.config.SnapshotTTL()).Err()
}

// LoadSnapshot reads the last snapshot saved for a session.
func (gm *SessionManager) LoadSnapshot(id string) (Snapshot, error) {
	var snap Snapshot
	if gm.rdb == nil {
		return snap, errors.New("no redis client")
	}
	data, err := gm.rdb.Get(gm.ctx, store.SnapshotKey(id)).Bytes()
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// publishRoundOver reports whether the event reached Redis.
func (gm *SessionManager) publishRoundOver(id string, r RoundResult) bool {
	if gm.rdb == nil {
		return false
	}
	b, err := json.Marshal(RoundEvent{Type: "round_over", SessionID: id, Result: r})
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(gm.ctx, 2*time.Second)
	defer cancel()
	n, err := gm.rdb.Publish(ctx, store.RoundEventsChannel, b).Result()
	if err != nil {
		log.Printf("[REDIS] publish round_over failed: session=%s err=%v", id, err)
		return false
	}
	log.Printf("[REDIS] published round_over: session=%s round=%d subscribers=%d", id, r.Round, n)
	return true
}

// touchIdle pushes the session's idle deadline forward.
func (gm *SessionManager) touchIdle(id string) {
	if gm.rdb == nil {
		return
	}
	now := time.Now()
	timeout := gm.config.SessionIdleTimeout()
	pipe := gm.rdb.TxPipeline()
	pipe.ZAdd(gm.ctx, store.IdleSessionsKey, redis.Z{Score: float64(now.Add(timeout).Unix()), Member: id})
	pipe.Set(gm.ctx, store.LastActiveKey(id), strconv.FormatInt(now.Unix(), 10), 2*timeout)
	if _, err := pipe.Exec(gm.ctx); err != nil {
		log.Printf("[REDIS] Failed to touch idle deadline for %s: %v", id, err)
	}
}

func (gm *SessionManager) clearIdle(id string) {
	if gm.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := gm.rdb.TxPipeline()
	pipe.ZRem(ctx, store.IdleSessionsKey, id)
	pipe.Del(ctx, store.LastActiveKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[REDIS] Failed to clear idle entry for %s: %v", id, err)
	}
}
