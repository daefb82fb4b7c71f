package pulse

import (
	"sync"
	"sync/atomic"
	"time"
)

// Effect is a consumer with no memoized value; it exists to run a
// side-effecting function whenever its dependencies change.
//
// An effect runs once at creation. Afterwards, a dependency change re-runs
// it synchronously — unless a batch is open, in which case the effect is
// queued (deduplicated by identity) and the outermost batch's flush runs
// it exactly once. The function may return a Cleanup that runs before the
// next re-run and on disposal.
type Effect struct {
	id uint64

	// fn is the effect body.
	fn func() Cleanup

	// cleanup is the Cleanup returned by the previous run, if any.
	cleanup Cleanup

	// deps are the producers read during the last run.
	deps   []*node
	depsMu sync.Mutex

	// owner is the scope that disposes this effect, if any.
	owner *Owner

	// name labels the effect in storm-budget diagnostics.
	name string

	// pending guards against double-enqueueing during a batch.
	pending atomic.Bool

	disposed atomic.Bool
}

// MarkDirty re-runs the effect, or queues it when a batch is open.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}

	if getBatchDepth() > 0 {
		if e.pending.CompareAndSwap(false, true) {
			queuePending(e)
		}
		return
	}

	// Notification-driven runs are subject to the storm budget; the
	// initial run at creation is not.
	if b := activeStormBudget(); b != nil {
		if err := b.checkEffectRun(); err != nil {
			if b.onExceeded == BudgetModePanic {
				panic(err)
			}
			if Debug.LogStormBudget {
				println("pulse: storm budget exceeded, effect run dropped:", e.name)
			}
			return
		}
	}

	e.run()
}

// ID returns the unique identifier for this effect.
// Implements the Listener interface.
func (e *Effect) ID() uint64 {
	return e.id
}

// addDep records a producer read during the current run.
// Implements the depTracker interface.
func (e *Effect) addDep(n *node) {
	e.depsMu.Lock()
	defer e.depsMu.Unlock()

	for _, d := range e.deps {
		if d == n {
			return
		}
	}
	e.deps = append(e.deps, n)
}

// run executes the effect body, re-collecting dependencies from scratch.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	// Drop stale edges so branches no longer read stop notifying us.
	e.depsMu.Lock()
	for _, d := range e.deps {
		d.unsubscribe(e)
	}
	e.deps = e.deps[:0]
	e.depsMu.Unlock()

	old := setCurrentListener(e)
	defer setCurrentListener(old)

	h := getHooks()
	var start time.Time
	if h != nil && h.OnEffectRun != nil {
		start = time.Now()
	}

	e.cleanup = e.fn()

	// The body may have called Dispose on its own handle. Reads after that
	// point still collected edges; drop them so no producer keeps a
	// reference to a disposed effect, and run the cleanup Dispose missed.
	if e.disposed.Load() {
		if e.cleanup != nil {
			e.cleanup()
			e.cleanup = nil
		}

		e.depsMu.Lock()
		for _, d := range e.deps {
			d.unsubscribe(e)
		}
		e.deps = nil
		e.depsMu.Unlock()
	}

	if h != nil && h.OnEffectRun != nil {
		h.OnEffectRun(e.id, time.Since(start))
	}
}

// Dispose runs the pending cleanup and removes the effect from every
// producer's subscriber set, so subsequent notifications targeting it are
// impossible. Safe to call multiple times, including from within the
// effect's own run.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.depsMu.Lock()
	for _, d := range e.deps {
		d.unsubscribe(e)
	}
	e.deps = nil
	e.depsMu.Unlock()
}

// IsDisposed reports whether the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.disposed.Load()
}

// EffectOption configures an Effect at creation.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// EffectName labels the effect for storm-budget diagnostics.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

// CreateEffect creates an effect and runs it immediately. It re-runs when
// any signal or computed it read changes. If fn returns a Cleanup, the
// cleanup runs before each re-run and on disposal.
//
// The returned handle's Dispose method deregisters the effect from every
// dependency. When an Owner scope is active the effect is also adopted by
// it and disposed with it.
//
// Example:
//
//	e := pulse.CreateEffect(func() pulse.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//	defer e.Dispose()
func CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: getCurrentOwner(),
	}

	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if e.owner != nil {
		e.owner.registerEffect(e)
	}

	e.run()

	return e
}

// OnMount creates an effect whose body runs exactly once: fn reads no
// signals afterwards, so the effect never re-runs.
func OnMount(fn func()) *Effect {
	return CreateEffect(func() Cleanup {
		fn()
		return nil
	})
}

// OnUpdate creates an effect that skips its callback on the first run.
// deps is always invoked to establish the dependency set; callback fires
// only on subsequent runs.
//
// Example:
//
//	pulse.OnUpdate(
//	    func() { _ = count.Get() },
//	    func() { fmt.Println("count changed") },
//	)
func OnUpdate(deps func(), callback func()) *Effect {
	first := true
	return CreateEffect(func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		callback()
		return nil
	})
}

// OnDispose registers fn to run when the current Owner scope is disposed.
// No-op outside an owner scope.
func OnDispose(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// Effect implements depTracker.
var _ depTracker = (*Effect)(nil)
