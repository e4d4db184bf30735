// Package events notifies observers about changes to assets and goals.
package events

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
)

const (
	TopicAssetUpdated = "asset.updated"
	TopicGoalUpdated  = "goal.updated"
)

// Event is a change notification.
type Event struct {
	Topic         string      `json:"topic"`
	AssetID       uuid.UUID   `json:"assetId"`
	GoalID        uuid.UUID   `json:"goalId"`
	GoalIDs       []uuid.UUID `json:"goalIds,omitempty"`
	TransactionID uuid.UUID   `json:"transactionId"`
	Time          time.Time   `json:"time"`
}

// Handler processes an event.
type Handler func(ctx context.Context, event Event) error

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type subscription struct {
	id      uint64
	pattern string
	handler Handler
}

// Bus dispatches events to all handlers subscribed with a pattern matching
// the topic of the event. Patterns are globs, "*" matches everything,
// "goal.*" matches all goal events.
//
// The zero value is ready to use.
type Bus struct {
	mu            sync.RWMutex
	next          uint64
	subscriptions map[uint64]subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers the handler for all topics matching pattern. The
// returned function removes the subscription, calling it more than once
// is safe.
func (b *Bus) Subscribe(pattern string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscriptions == nil {
		b.subscriptions = make(map[uint64]subscription)
	}

	b.next++
	id := b.next
	b.subscriptions[id] = subscription{id: id, pattern: pattern, handler: handler}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscriptions, id)
	}
}

// Publish delivers the event to all matching handlers in the order they
// subscribed. Handler errors and panics are logged and do not reach the
// publisher.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().In(time.UTC)
	}

	for _, s := range b.matching(event.Topic) {
		b.deliver(ctx, s, event)
	}
}

// matching returns the subscriptions for the topic, ordered by
// subscription time. The lock is not held while handlers run so that
// they can subscribe and unsubscribe.
func (b *Bus) matching(topic string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var subs []subscription
	for _, s := range b.subscriptions {
		if glob.Glob(s.pattern, topic) {
			subs = append(subs, s)
		}
	}

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].id < subs[j].id
	})

	return subs
}

func (b *Bus) deliver(ctx context.Context, s subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("topic", event.Topic).Str("pattern", s.pattern).Msgf("event handler panicked: %v", r)
		}
	}()

	if err := s.handler(ctx, event); err != nil {
		log.Error().Str("topic", event.Topic).Str("pattern", s.pattern).Msgf("%T: %v", err, err.Error())
	}
}

// String implements fmt.Stringer for log output.
func (e Event) String() string {
	return fmt.Sprintf("%s(asset=%s goal=%s)", e.Topic, e.AssetID, e.GoalID)
}
