package game

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/billiards/internal/config"
	store "github.com/playmatatu/billiards/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker ends sessions that have gone without input for longer than
// the configured idle timeout. With Redis it pops due members of the
// session_idle sorted set; without it it scans the manager directly.
func StartIdleWorker(ctx context.Context, gm *SessionManager, rdb *redis.Client, cfg *config.Config) {
	if gm == nil || cfg == nil {
		log.Println("[IDLE] Manager or config missing; idle worker not started")
		return
	}
	poll := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}

	log.Printf("[IDLE] Idle worker started (timeout=%s, poll=%s, redis=%v)", cfg.SessionIdleTimeout(), poll, rdb != nil)
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				if rdb == nil {
					for _, id := range gm.ExpireIdle(now, cfg.SessionIdleTimeout()) {
						log.Printf("[IDLE] Session %s ended after %s without input", id, cfg.SessionIdleTimeout())
					}
					continue
				}
				expireFromRedis(ctx, gm, rdb, cfg, now)
			}
		}
	}()
}

func expireFromRedis(ctx context.Context, gm *SessionManager, rdb *redis.Client, cfg *config.Config, now time.Time) {
	members, err := rdb.ZRangeByScore(ctx, store.IdleSessionsKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	timeout := int64(cfg.SessionIdleTimeout().Seconds())
	for _, id := range members {
		// Sessions hosted by another instance are theirs to end.
		if _, err := gm.Get(id); err != nil {
			continue
		}
		if removed, _ := rdb.ZRem(ctx, store.IdleSessionsKey, id).Result(); removed == 0 {
			continue
		}

		last, _ := rdb.Get(ctx, store.LastActiveKey(id)).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if lastTs > 0 && now.Unix()-lastTs < timeout {
			rdb.ZAdd(ctx, store.IdleSessionsKey, redis.Z{Score: float64(lastTs + timeout), Member: id})
			continue
		}

		if err := gm.End(id, "idle"); err != nil {
			continue
		}
		log.Printf("[IDLE] Session %s ended after %ds without input", id, timeout)
	}
}
