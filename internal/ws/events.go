package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/billiards/internal/game"
	store "github.com/playmatatu/billiards/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartRoundEventSubscriber relays round_events to the rooms of this hub.
func StartRoundEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; round event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, store.RoundEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] round_events subscriber started")
		for {
			select {
			case <-ctx.Done():
				log.Println("[WS] round_events subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleRoundEvent(h, msg.Payload)
			}
		}
	}()
}

func handleRoundEvent(h *Hub, payload string) {
	var ev game.RoundEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[WS] invalid round event payload: %v", err)
		return
	}
	if ev.Type != "round_over" || ev.SessionID == "" {
		log.Printf("[WS] ignoring event type=%s session=%s", ev.Type, ev.SessionID)
		return
	}

	if h.RoomSize(ev.SessionID) == 0 {
		return
	}
	log.Printf("[WS] broadcasting round_over to session %s (round=%d outcome=%s)", ev.SessionID, ev.Result.Round, ev.Result.Outcome)
	h.BroadcastToSession(ev.SessionID, roundOverMessage(ev.SessionID, ev.Result))
}
