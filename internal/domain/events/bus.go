package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"go.uber.org/zap"
)

// Handler receives an event. A returned error is reported, never propagated.
type Handler func(ev types.Event) error

// Subscription identifies a registered handler
type Subscription struct {
	ID   id.SubscriptionID
	Kind types.EventKind // empty for SubscribeAll
	bus  *Bus
}

// Cancel removes the subscription from its bus
func (s Subscription) Cancel() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.Unsubscribe(s)
}

// Options configures a Bus
type Options struct {
	Logger *zap.Logger
	// OnPublish is called once per published event
	OnPublish func(kind types.EventKind)
	// OnFailure is called for every handler that fails
	OnFailure func(kind types.EventKind, err error)
}

type subscriber struct {
	id      id.SubscriptionID
	kind    types.EventKind
	handler Handler
}

// Bus fans events out to subscribers
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	logger *zap.Logger
	opts   Options
}

// New creates an event bus
func New(opts Options) *Bus {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Bus{logger: opts.Logger, opts: opts}
}

// Subscribe registers handler for one kind
func (b *Bus) Subscribe(kind types.EventKind, handler Handler) Subscription {
	return b.add(kind, handler)
}

// SubscribeAll registers handler for every kind
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	return b.add("", handler)
}

func (b *Bus) add(kind types.EventKind, handler Handler) Subscription {
	sub := subscriber{id: id.NewSubscriptionID(), kind: kind, handler: handler}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return Subscription{ID: sub.id, Kind: kind, bus: b}
}

// Unsubscribe removes a subscription. It reports whether it was registered.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of handlers that would receive kind
func (b *Bus) Count(kind types.EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, s := range b.subs {
		if s.kind == "" || s.kind == kind {
			n++
		}
	}
	return n
}

// Publish delivers ev to current subscribers and returns the number of
// handlers that completed without error. The event id and time are filled
// in when missing.
func (b *Bus) Publish(ev types.Event) int {
	if ev.ID == "" {
		ev.ID = id.NewEventID().String()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.RLock()
	targets := make([]subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == "" || s.kind == ev.Kind {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	if b.opts.OnPublish != nil {
		b.opts.OnPublish(ev.Kind)
	}

	delivered := 0
	for _, s := range targets {
		if err := b.deliver(s, ev); err != nil {
			b.logger.Warn("Event subscriber failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("app_id", ev.AppID),
				zap.String("subscription", s.id.String()),
				zap.Error(err))
			if b.opts.OnFailure != nil {
				b.opts.OnFailure(ev.Kind, err)
			}
			continue
		}
		delivered++
	}
	return delivered
}

func (b *Bus) deliver(s subscriber, ev types.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(ev)
}
