package events

import (
	"errors"
	"testing"

	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := New(Options{})
	var order []string

	bus.Subscribe(types.EventOpened, func(ev types.Event) error {
		order = append(order, "first:"+ev.AppID)
		return nil
	})
	bus.SubscribeAll(func(ev types.Event) error {
		order = append(order, "all:"+string(ev.Kind))
		return nil
	})
	bus.Subscribe(types.EventOpened, func(ev types.Event) error {
		order = append(order, "second:"+ev.AppID)
		return nil
	})
	bus.Subscribe(types.EventClosed, func(ev types.Event) error {
		order = append(order, "closed")
		return nil
	})

	delivered := bus.Publish(types.NewEvent(types.EventOpened, "notes"))

	assert.Equal(t, 3, delivered)
	assert.Equal(t, []string{"first:notes", "all:opened", "second:notes"}, order)
}

func TestPublishFillsIDAndTime(t *testing.T) {
	bus := New(Options{})
	var got types.Event
	bus.SubscribeAll(func(ev types.Event) error {
		got = ev
		return nil
	})

	bus.Publish(types.Event{Kind: types.EventFocused, AppID: "notes"})

	assert.True(t, id.IsPrefixed(got.ID, "evt"))
	assert.False(t, got.Time.IsZero())
}

func TestFailingHandlersAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var failures []types.EventKind
	bus := New(Options{
		Logger:    zap.New(core),
		OnFailure: func(kind types.EventKind, err error) { failures = append(failures, kind) },
	})

	reached := 0
	bus.Subscribe(types.EventClosed, func(types.Event) error { panic("boom") })
	bus.Subscribe(types.EventClosed, func(types.Event) error { return errors.New("render failed") })
	bus.Subscribe(types.EventClosed, func(types.Event) error {
		reached++
		return nil
	})

	delivered := bus.Publish(types.NewEvent(types.EventClosed, "notes"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, reached)
	assert.Equal(t, []types.EventKind{types.EventClosed, types.EventClosed}, failures)
	assert.Equal(t, 2, logs.FilterMessage("Event subscriber failed").Len())
}

func TestUnsubscribe(t *testing.T) {
	bus := New(Options{})
	calls := 0
	sub := bus.Subscribe(types.EventMinimized, func(types.Event) error {
		calls++
		return nil
	})

	bus.Publish(types.NewEvent(types.EventMinimized, "notes"))
	require.True(t, sub.Cancel())
	assert.False(t, bus.Unsubscribe(sub))
	bus.Publish(types.NewEvent(types.EventMinimized, "notes"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Count(types.EventMinimized))
}

func TestSubscribersAddedDuringPublishWaitForNextEvent(t *testing.T) {
	bus := New(Options{})
	late := 0
	bus.Subscribe(types.EventOpened, func(types.Event) error {
		bus.Subscribe(types.EventOpened, func(types.Event) error {
			late++
			return nil
		})
		return nil
	})

	bus.Publish(types.NewEvent(types.EventOpened, "notes"))
	assert.Equal(t, 0, late)

	bus.Publish(types.NewEvent(types.EventOpened, "notes"))
	assert.Equal(t, 1, late)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := New(Options{})
	calls := 0
	var sub Subscription
	sub = bus.Subscribe(types.EventFocused, func(types.Event) error {
		calls++
		sub.Cancel()
		return nil
	})

	bus.Publish(types.NewEvent(types.EventFocused, "a"))
	bus.Publish(types.NewEvent(types.EventFocused, "b"))

	assert.Equal(t, 1, calls)
}

func TestOnPublishHook(t *testing.T) {
	counts := map[types.EventKind]int{}
	bus := New(Options{OnPublish: func(kind types.EventKind) { counts[kind]++ }})

	bus.Publish(types.NewEvent(types.EventOpened, "a"))
	bus.Publish(types.NewEvent(types.EventOpened, "b"))
	bus.Publish(types.NewEvent(types.EventClosed, "a"))

	assert.Equal(t, 2, counts[types.EventOpened])
	assert.Equal(t, 1, counts[types.EventClosed])
}
