package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/shelf/internal/kv"
)

// Status tracks the lifecycle of the latest command on a collection.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	// ErrNotFound is returned when a command names an id the collection does
	// not hold.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a command's result arrived after the
	// collection was cleared. The result is dropped.
	ErrStale = errors.New("collection changed while command was in flight")
)

// Snapshot is a point-in-time copy of a collection.
type Snapshot[T any] struct {
	Items      []T
	Status     Status
	Error      string
	Generation uint64 // increments on Clear
	Version    uint64 // increments on every change; newer snapshots have larger values
	UpdatedAt  time.Time
}

// Len reports the number of items.
func (s Snapshot[T]) Len() int { return len(s.Items) }

// collection holds one entity's items, mirrors them into a single store key,
// and fans snapshots out to subscribers. Mutating commands take the write
// slot first so they run one at a time in call order.
type collection[T any] struct {
	key   string
	store kv.Store
	idOf  func(T) int64

	writes chan struct{}

	mu         sync.RWMutex
	items      []T
	status     Status
	lastErr    string
	generation uint64
	version    uint64
	updated    time.Time

	subMu   sync.Mutex
	subs    map[int]func(Snapshot[T])
	nextSub int
}

func newCollection[T any](key string, store kv.Store, idOf func(T) int64) *collection[T] {
	return &collection[T]{
		key:    key,
		store:  store,
		idOf:   idOf,
		writes: make(chan struct{}, 1),
		subs:   map[int]func(Snapshot[T]){},
	}
}

// acquire takes the write slot, honoring ctx while queued.
func (c *collection[T]) acquire(ctx context.Context) error {
	select {
	case c.writes <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *collection[T]) release() { <-c.writes }

func (c *collection[T]) snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *collection[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:      slices.Clone(c.items),
		Status:     c.status,
		Error:      c.lastErr,
		Generation: c.generation,
		Version:    c.version,
		UpdatedAt:  c.updated,
	}
}

func (c *collection[T]) touchLocked() {
	c.version++
	c.updated = time.Now()
}

func (c *collection[T]) selectByID(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// indexIn returns the position of id within items, or -1.
func (c *collection[T]) indexIn(items []T, id int64) int {
	return slices.IndexFunc(items, func(item T) bool { return c.idOf(item) == id })
}

// begin marks the collection loading and returns the generation the command
// started under.
func (c *collection[T]) begin() uint64 {
	c.mu.Lock()
	c.status = StatusLoading
	c.lastErr = ""
	c.touchLocked()
	gen := c.generation
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return gen
}

// fail records err unless the collection moved on since gen.
func (c *collection[T]) fail(gen uint64, err error) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	c.status = StatusFailed
	c.lastErr = err.Error()
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// commit computes the next item set from the current one, writes it through
// to the store, and only then swaps it in. A storage failure leaves memory
// untouched. If gen no longer matches, nothing is written and ErrStale is
// returned.
func (c *collection[T]) commit(ctx context.Context, gen uint64, next func([]T) []T) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrStale
	}
	items := next(slices.Clone(c.items))
	if err := c.persistLocked(ctx, items); err != nil {
		c.status = StatusFailed
		c.lastErr = err.Error()
		c.touchLocked()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return err
	}
	c.items = items
	c.status = StatusSucceeded
	c.lastErr = ""
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// replace swaps items in memory without touching the store.
func (c *collection[T]) replace(items []T, status Status) {
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.status = status
	c.lastErr = ""
	c.touchLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// reset empties the collection, bumps the generation so in-flight commands
// drop their results, and persists the empty set.
func (c *collection[T]) reset(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	c.items = nil
	c.status = StatusIdle
	c.lastErr = ""
	c.touchLocked()
	err := c.persistLocked(ctx, nil)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return err
}

func (c *collection[T]) persistLocked(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", kv.ErrStorage, c.key, err)
	}
	if err := c.store.Set(ctx, c.key, string(encoded)); err != nil {
		return fmt.Errorf("persist %s: %w", c.key, err)
	}
	return nil
}

// loadStored reads the collection's key. A missing or blank key is empty.
func (c *collection[T]) loadStored(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", kv.ErrStorage, c.key, err)
	}
	return items, nil
}

func (c *collection[T]) subscribe(fn func(Snapshot[T])) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *collection[T]) notify(snap Snapshot[T]) {
	c.subMu.Lock()
	fns := make([]func(Snapshot[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// nextID returns a fresh id from clock, bumped past every id in use.
func nextID[T any](clock func() time.Time, items []T, idOf func(T) int64) int64 {
	id := clock().UnixMilli()
	for _, item := range items {
		if existing := idOf(item); existing >= id {
			id = existing + 1
		}
	}
	return id
}
