package pulse

import (
	"sync"
	"sync/atomic"
	"time"
)

// Computed is a derived, memoized, lazily recomputed cell. It is both a
// producer (it has subscribers) and a consumer (it has dependencies).
//
// A Computed starts dirty and does not run its compute function until the
// first Get or Peek. When a dependency changes it only marks itself dirty
// and propagates dirtiness to its own subscribers; the recompute happens
// on the next read. Dependencies are re-collected from scratch on every
// recompute, so a conditional read that stops touching a branch also
// stops tracking it.
type Computed[T any] struct {
	node node

	// compute derives the value. It may read any signals and computeds;
	// each read during the run becomes a dependency.
	compute func() T

	// value is the cached result of the last successful recompute.
	value T

	// valueMu protects value.
	valueMu sync.RWMutex

	// valid is false while the cached value is stale. A panicking compute
	// function leaves it false so the next read retries.
	valid atomic.Bool

	// deps are the producers read during the last recompute.
	deps   []*node
	depsMu sync.Mutex

	// equal decides whether a recompute produced a new value. When it
	// reports equality the old cached value is kept, so a no-op derived
	// value does not churn references further down a chain.
	equal func(T, T) bool

	// computing breaks recursion when the compute function reads this
	// computed through a dependency cycle.
	computing atomic.Bool

	disposed atomic.Bool
}

// NewComputed creates a computed with the given derive function. The
// function is not run until the first read.
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		node:    node{id: nextID()},
		compute: compute,
	}
}

// Get returns the computed value, recomputing first if a dependency
// changed. It also registers this computed as a dependency of the outer
// active consumer, so computed chains compose.
func (c *Computed[T]) Get() T {
	if !c.disposed.Load() {
		trackDependency(&c.node)

		if !c.valid.Load() {
			c.recompute()
		}
	}

	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// Peek returns the value without registering with an outer consumer.
// It still recomputes if the cached value is stale.
func (c *Computed[T]) Peek() T {
	if !c.disposed.Load() && !c.valid.Load() {
		c.recompute()
	}

	c.valueMu.RLock()
	value := c.value
	c.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the cached value and propagates dirtiness to this
// computed's own subscribers without recomputing. The CAS makes repeated
// invalidation a no-op: a computed whose two producers both change in one
// tick notifies its subscribers exactly once.
//
// Implements the Listener interface.
func (c *Computed[T]) MarkDirty() {
	if c.disposed.Load() {
		return
	}
	if c.valid.CompareAndSwap(true, false) {
		c.node.notify()
	}
}

// ID returns the unique identifier for this computed.
// Implements the Listener interface.
func (c *Computed[T]) ID() uint64 {
	return c.node.id
}

// Subscribe registers an external callback invoked after this computed
// becomes dirty. The returned function unsubscribes; calling it twice is
// safe.
func (c *Computed[T]) Subscribe(fn func()) func() {
	return c.node.addCallback(fn)
}

// WithEquals configures a custom equality function and returns the
// computed for chaining.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// GetAny returns the current value type-erased. Part of the Reactive
// contract.
func (c *Computed[T]) GetAny() any {
	return c.Get()
}

// Dispose removes this computed from every dependency's subscriber set
// and drops its own subscribers. Terminal and idempotent: after disposal
// Get and Peek return the last cached value without tracking or
// recomputing.
func (c *Computed[T]) Dispose() {
	if c.disposed.Swap(true) {
		return
	}

	c.depsMu.Lock()
	for _, d := range c.deps {
		d.unsubscribe(c)
	}
	c.deps = nil
	c.depsMu.Unlock()

	c.node.clearSubs()
}

// addDep records a producer read during the current recompute.
// Implements the depTracker interface.
func (c *Computed[T]) addDep(n *node) {
	c.depsMu.Lock()
	defer c.depsMu.Unlock()

	for _, d := range c.deps {
		if d == n {
			return
		}
	}
	c.deps = append(c.deps, n)
}

// recompute runs the derive function and refreshes the cache.
//
// Stale edges are removed first: the computed deregisters itself from
// every producer in deps and re-collects the set during the run, so a
// branch the compute function no longer reads stops notifying it. The
// outer listener is restored via defer; a panic from the compute function
// propagates to the caller, leaves valid false, and never corrupts the
// outer consumer's collection.
func (c *Computed[T]) recompute() {
	if c.computing.Swap(true) {
		// Re-entered through a dependency cycle; the outer frame finishes
		// the recompute.
		return
	}
	defer c.computing.Store(false)

	c.depsMu.Lock()
	for _, d := range c.deps {
		d.unsubscribe(c)
	}
	c.deps = c.deps[:0]
	c.depsMu.Unlock()

	old := setCurrentListener(c)
	defer setCurrentListener(old)

	h := getHooks()
	var start time.Time
	if h != nil && h.OnComputedRecompute != nil {
		start = time.Now()
	}

	next := c.compute()

	c.valueMu.Lock()
	if !c.equals(c.value, next) {
		c.value = next
	}
	c.valueMu.Unlock()

	c.valid.Store(true)

	if h != nil && h.OnComputedRecompute != nil {
		h.OnComputedRecompute(c.node.id, time.Since(start))
	}
}

func (c *Computed[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// Computed implements depTracker.
var _ depTracker = (*Computed[int])(nil)
