package store

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/webtop/internal/infrastructure/resilience"
	"go.uber.org/zap"
)

// GuardOptions configures a Guarded store.
type GuardOptions struct {
	// MaxFailures is the number of consecutive failures that open the breaker.
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before probing the backing store.
	Cooldown time.Duration
	Logger   *zap.Logger
	// OnFailure is called for every failed backing call, with the operation name.
	OnFailure func(op string)
	// Now overrides the breaker clock.
	Now func() time.Time
}

// Guarded wraps a store with a circuit breaker. Writes are mirrored into an
// in-memory shadow; while the breaker is open every call is served by the
// shadow and the backing store is not touched. Keys whose latest write only
// reached the shadow are marked dirty, read from the shadow, and replayed to
// the backing store once it accepts calls again. Calls are serialized.
type Guarded struct {
	mu      sync.Mutex
	inner   Store
	shadow  *MemoryStore
	dirty   map[string]struct{} // Protected by mu
	breaker *resilience.Breaker
	logger  *zap.Logger
	onFail  func(op string)
}

// NewGuarded wraps inner.
func NewGuarded(inner Store, opts GuardOptions) *Guarded {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger

	g := &Guarded{
		inner:  inner,
		shadow: NewMemory(),
		dirty:  make(map[string]struct{}),
		logger: logger,
		onFail: opts.OnFailure,
	}
	g.breaker = resilience.New("store", resilience.Settings{
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: resilience.ConsecutiveFailures(opts.MaxFailures),
		Now:         opts.Now,
		OnStateChange: func(name string, from, to resilience.State) {
			if to == resilience.StateOpen {
				logger.Warn("Persistence degraded to memory",
					zap.String("breaker", name),
					zap.Duration("cooldown", opts.Cooldown))
				return
			}
			logger.Info("Persistence breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return g
}

// Degraded reports whether calls are currently served from memory only.
func (g *Guarded) Degraded() bool {
	return g.breaker.State() == resilience.StateOpen
}

// Get reads from the backing store, or from the shadow while degraded or
// when the key has unreplayed writes.
func (g *Guarded) Get(key string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.replayLocked()
	if _, ok := g.dirty[key]; ok {
		return g.shadowGet(key)
	}

	var value []byte
	err := g.breaker.Do(func() error {
		v, err := g.inner.Get(key)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		value = v
		return err
	})
	if err == nil {
		if value == nil {
			return nil, ErrNotFound
		}
		return value, nil
	}

	g.failed("get", key, err)
	if v, serr := g.shadow.Get(key); serr == nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
}

// Set writes through to the backing store and the shadow.
func (g *Guarded) Set(key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.replayLocked()
	_ = g.shadow.Set(key, value)
	return g.writeLocked("set", key, func() error {
		return g.inner.Set(key, value)
	})
}

// Remove deletes key from the backing store and the shadow.
func (g *Guarded) Remove(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.replayLocked()
	_ = g.shadow.Remove(key)
	return g.writeLocked("remove", key, func() error {
		return g.inner.Remove(key)
	})
}

// Keys lists keys from the backing store merged with unreplayed writes, or
// from the shadow while degraded.
func (g *Guarded) Keys(prefix string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.replayLocked()
	var keys []string
	err := g.breaker.Do(func() error {
		k, err := g.inner.Keys(prefix)
		keys = k
		return err
	})
	if err != nil {
		g.failed("keys", prefix, err)
		return g.shadow.Keys(prefix)
	}
	if len(g.dirty) == 0 {
		return keys, nil
	}

	merged := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		merged[k] = struct{}{}
	}
	for k := range g.dirty {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if _, err := g.shadow.Get(k); err == nil {
			merged[k] = struct{}{}
		} else {
			delete(merged, k)
		}
	}
	return sortedKeys(merged, prefix), nil
}

// Health describes the guard for health reports.
type Health struct {
	Breaker             string `json:"breaker"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
	Degraded            bool   `json:"degraded"`
	Pending             int    `json:"pending"`
}

// Health reports the breaker state and the number of keys waiting to be
// replayed.
func (g *Guarded) Health() Health {
	g.mu.Lock()
	pending := len(g.dirty)
	g.mu.Unlock()

	state := g.breaker.State()
	return Health{
		Breaker:             g.breaker.Name(),
		State:               state.String(),
		ConsecutiveFailures: g.breaker.Counts().ConsecutiveFailures,
		Degraded:            state == resilience.StateOpen,
		Pending:             pending,
	}
}

// writeLocked runs a backing write and tracks whether the key is dirty.
func (g *Guarded) writeLocked(op, key string, write func() error) error {
	if err := g.breaker.Do(write); err != nil {
		g.dirty[key] = struct{}{}
		g.failed(op, key, err)
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	delete(g.dirty, key)
	return nil
}

// replayLocked copies the shadow state of dirty keys to the backing store.
// It stops at the first failure and leaves the rest for a later call.
func (g *Guarded) replayLocked() {
	if len(g.dirty) == 0 || g.breaker.State() == resilience.StateOpen {
		return
	}

	keys := sortedKeys(g.dirty, "")
	replayed := 0
	for _, key := range keys {
		err := g.breaker.Do(func() error {
			value, err := g.shadow.Get(key)
			if errors.Is(err, ErrNotFound) {
				return g.inner.Remove(key)
			}
			return g.inner.Set(key, value)
		})
		if err != nil {
			g.failed("replay", key, err)
			break
		}
		delete(g.dirty, key)
		replayed++
	}

	if replayed > 0 {
		g.logger.Info("Replayed writes made while degraded",
			zap.Int("replayed", replayed),
			zap.Int("pending", len(g.dirty)))
	}
}

// Close closes the backing store when it holds resources.
func (g *Guarded) Close() error {
	if c, ok := g.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// shadowGet serves keys written while the backing store was unreachable.
func (g *Guarded) shadowGet(key string) ([]byte, error) {
	if v, err := g.shadow.Get(key); err == nil {
		return v, nil
	}
	return nil, ErrNotFound
}

func (g *Guarded) failed(op, key string, err error) {
	if g.onFail != nil {
		g.onFail(op)
	}
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return
	}
	g.logger.Warn("Store operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
}
