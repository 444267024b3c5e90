package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys shared by the session manager, the idle worker and the websocket hub.
const (
	RoundEventsChannel = "round_events"
	IdleSessionsKey    = "session_idle"
)

// SnapshotKey is where the latest published snapshot of a session lives.
func SnapshotKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}

// LastActiveKey holds the unix time of a session's most recent command.
func LastActiveKey(sessionID string) string {
	return "session_last_active:" + sessionID
}

// Connect establishes a connection to Redis
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
