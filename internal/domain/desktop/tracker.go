package desktop

import (
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/webtop/internal/domain/events"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// Subscriber is an event source
type Subscriber interface {
	SubscribeAll(handler events.Handler) events.Subscription
	Unsubscribe(sub events.Subscription) bool
}

// Tracker counts lifecycle events so views know when to re-render. Each
// event bumps the revision and wakes anyone waiting on Changed.
type Tracker struct {
	source   Subscriber
	sub      events.Subscription
	revision atomic.Uint64

	mu      sync.Mutex
	last    types.Event
	changed chan struct{}
}

// NewTracker subscribes to every event kind on source
func NewTracker(source Subscriber) *Tracker {
	t := &Tracker{source: source, changed: make(chan struct{})}
	t.sub = source.SubscribeAll(t.observe)
	return t
}

func (t *Tracker) observe(ev types.Event) error {
	t.revision.Add(1)

	t.mu.Lock()
	t.last = ev
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()
	return nil
}

// Revision returns the number of events observed
func (t *Tracker) Revision() uint64 {
	return t.revision.Load()
}

// Last returns the most recent event
func (t *Tracker) Last() types.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Changed returns a channel closed by the next event
func (t *Tracker) Changed() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changed
}

// Close stops tracking
func (t *Tracker) Close() {
	t.source.Unsubscribe(t.sub)
}
