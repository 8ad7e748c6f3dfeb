package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/chessbets/backend/internal/events"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// StartMatchEventSubscriber subscribes to the match_events channel and fans
// incoming lifecycle events out to the relevant match rooms
func StartMatchEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; match event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, events.Channel)
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] match_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			matchToken, _ := payload["match_token"].(string)
			if matchToken == "" {
				log.Printf("[WS] event without match_token: type=%s", typeStr)
				continue
			}

			switch typeStr {
			case events.TypeMatchCreated,
				events.TypeEscrowConfirmed,
				events.TypeGameOver,
				events.TypeRatingsUpdated,
				events.TypeMatchSettled:
				MatchHub.BroadcastToMatch(matchToken, payload)
			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
