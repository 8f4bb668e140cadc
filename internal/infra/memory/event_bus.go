package memory

import (
	"context"
	"sync"

	"ecolearn-challenge-service/internal/domain"
)

const subscriberBuffer = 8

// EventBus is an in-process implementation of app.EventBus.
type EventBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ChallengeEvent]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[chan domain.ChallengeEvent]struct{}),
	}
}

func (b *EventBus) Publish(_ context.Context, event domain.ChallengeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers[event.ChallengeID] {
		deliver(ch, event)
	}
}

func (b *EventBus) Subscribe(_ context.Context, challengeID string) (<-chan domain.ChallengeEvent, func(), error) {
	ch := make(chan domain.ChallengeEvent, subscriberBuffer)

	b.mu.Lock()
	set, ok := b.subscribers[challengeID]
	if !ok {
		set = make(map[chan domain.ChallengeEvent]struct{})
		b.subscribers[challengeID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		set, ok := b.subscribers[challengeID]
		if !ok {
			return
		}
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(b.subscribers, challengeID)
		}
	}
	return ch, cancel, nil
}

// SubscriberCount reports live subscriptions for a challenge.
func (b *EventBus) SubscriberCount(challengeID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[challengeID])
}

// deliver drops the oldest buffered event when a subscriber falls behind so
// publishers never block.
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
