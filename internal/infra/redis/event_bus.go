package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ecolearn-challenge-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const subscriberBuffer = 8

// EventBus publishes challenge events on Redis pub/sub so every instance sees them.
// Channel per challenge: challenge:events:{id}
type EventBus struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewEventBus(client *redis.Client, log *zap.SugaredLogger) *EventBus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EventBus{client: client, log: log}
}

func (b *EventBus) Publish(ctx context.Context, event domain.ChallengeEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		b.log.Warnw("encode challenge event", "challenge_id", event.ChallengeID, "error", err)
		return
	}
	if err := b.client.Publish(ctx, b.channel(event.ChallengeID), raw).Err(); err != nil {
		b.log.Warnw("publish challenge event", "challenge_id", event.ChallengeID, "error", err)
	}
}

func (b *EventBus) Subscribe(ctx context.Context, challengeID string) (<-chan domain.ChallengeEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel(challengeID))
	// Wait for the subscription to be confirmed so no event published afterwards is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe challenge events: %w", err)
	}

	out := make(chan domain.ChallengeEvent, subscriberBuffer)
	messages := pubsub.Channel()
	go func() {
		defer close(out)
		for msg := range messages {
			var event domain.ChallengeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warnw("decode challenge event", "channel", msg.Channel, "error", err)
				continue
			}
			deliver(out, event)
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = pubsub.Close() })
	}
	return out, cancel, nil
}

func (b *EventBus) channel(challengeID string) string {
	return "challenge:events:" + challengeID
}

// deliver drops the oldest buffered event when the reader falls behind.
func deliver(ch chan domain.ChallengeEvent, event domain.ChallengeEvent) {
	select {
	case ch <- event:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}
