package pulse

// Listener is anything that can be notified when a producer it depends on
// changes. Computed values, effects, and external Subscribe callbacks all
// implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For computed values this invalidates the cached value; for effects it
	// re-runs the effect (or queues it when a batch is open).
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication of subscriptions and batch queues.
	ID() uint64
}

// depTracker is a Listener that re-collects its dependency set on every
// run. Producers call addDep during a tracked read so the consumer can
// deregister itself before the next recompute.
type depTracker interface {
	Listener
	addDep(n *node)
}

// Cleanup is a function returned by effects to release resources.
// It runs before the effect re-runs and when the effect is disposed.
type Cleanup func()
