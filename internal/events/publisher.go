package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying all match notifications for
// off-process consumers (websocket hub, downstream settlement processing).
const Channel = "match_events"

// Event type strings published on Channel.
const (
	TypeMatchCreated    = "match_created"
	TypeEscrowConfirmed = "escrow_confirmed"
	TypeGameOver        = "game_over"
	TypeRatingsUpdated  = "ratings_updated"
	TypeMatchSettled    = "match_settled"
)

// Publisher fans match notifications out over Redis. Publishing is
// best-effort: a failed publish is logged, never propagated, so event
// delivery can't fail a settled operation.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish marshals and sends one event. payload must be JSON-serializable.
func (p *Publisher) Publish(ctx context.Context, eventType, matchToken string, payload map[string]interface{}) {
	if p == nil || p.rdb == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["type"] = eventType
	payload["match_token"] = matchToken

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[EVENTS] marshal %s failed: %v", eventType, err)
		return
	}
	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		log.Printf("[EVENTS] publish %s failed: %v", eventType, err)
	}
}

// MatchCreated announces a newly created (unconfirmed) match.
func (p *Publisher) MatchCreated(ctx context.Context, matchToken, playerOne, playerTwo string, stake int64) {
	p.Publish(ctx, TypeMatchCreated, matchToken, map[string]interface{}{
		"player_one": playerOne,
		"player_two": playerTwo,
		"stake":      stake,
	})
}

// EscrowConfirmed announces that both stakes were moved into escrow.
func (p *Publisher) EscrowConfirmed(ctx context.Context, matchToken string, stake int64) {
	p.Publish(ctx, TypeEscrowConfirmed, matchToken, map[string]interface{}{
		"stake": stake,
	})
}

// GameOver announces a terminal outcome; winner is empty for draws.
func (p *Publisher) GameOver(ctx context.Context, matchToken, result, winner string) {
	p.Publish(ctx, TypeGameOver, matchToken, map[string]interface{}{
		"result": result,
		"winner": winner,
	})
}

// RatingsUpdated announces both players' new ratings and deltas.
func (p *Publisher) RatingsUpdated(ctx context.Context, matchToken, playerOne, playerTwo string, newOne, newTwo, deltaOne, deltaTwo int) {
	p.Publish(ctx, TypeRatingsUpdated, matchToken, map[string]interface{}{
		"player_one":        playerOne,
		"player_two":        playerTwo,
		"player_one_rating": newOne,
		"player_two_rating": newTwo,
		"player_one_delta":  deltaOne,
		"player_two_delta":  deltaTwo,
	})
}

// MatchSettled announces the completed payout for downstream processing.
func (p *Publisher) MatchSettled(ctx context.Context, matchToken string, total, winnerShare, platformShare, royaltyEach int64) {
	p.Publish(ctx, TypeMatchSettled, matchToken, map[string]interface{}{
		"total":          total,
		"winner_share":   winnerShare,
		"platform_share": platformShare,
		"royalty_each":   royaltyEach,
	})
}
