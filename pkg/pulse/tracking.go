package pulse

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for one goroutine: the consumer
// currently collecting dependencies, the owner scope for newly created
// primitives, and the batch coordinator state.
//
// Keeping the context per goroutine means independent graphs (for example
// separate tests, or separate sessions on their own goroutines) never see
// each other's active listener or batch queue.
type trackingContext struct {
	// listener is what is currently tracking dependencies.
	// nil means reads do not create subscriptions.
	listener Listener

	// owner is the scope that adopts newly created effects and cleanups.
	owner *Owner

	// batchDepth counts nested Batch calls. While > 0, effect runs and
	// external subscriber callbacks are queued instead of fired.
	batchDepth int

	// pending accumulates listeners to notify when the outermost batch
	// completes. Deduplicated by ID before notification.
	pending []Listener
}

// trackingContexts stores per-goroutine contexts.
var trackingContexts sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack
// header ("goroutine <id> ..."). Implementation detail; never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the context for the current goroutine,
// creating it on first use.
func getTrackingContext() *trackingContext {
	gid := goroutineID()

	if tc, ok := trackingContexts.Load(gid); ok {
		return tc.(*trackingContext)
	}

	tc := &trackingContext{}
	trackingContexts.Store(gid, tc)
	return tc
}

// getCurrentListener returns the consumer currently collecting
// dependencies, or nil when no tracking is active.
func getCurrentListener() Listener {
	return getTrackingContext().listener
}

// setCurrentListener swaps the active listener and returns the previous
// one so callers can restore it.
func setCurrentListener(l Listener) Listener {
	tc := getTrackingContext()
	old := tc.listener
	tc.listener = l
	return old
}

// getCurrentOwner returns the owner scope for the goroutine, or nil.
func getCurrentOwner() *Owner {
	return getTrackingContext().owner
}

// setCurrentOwner swaps the active owner and returns the previous one.
func setCurrentOwner(o *Owner) *Owner {
	tc := getTrackingContext()
	old := tc.owner
	tc.owner = o
	return old
}

func getBatchDepth() int {
	return getTrackingContext().batchDepth
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth reports whether the outermost batch just completed.
func decrementBatchDepth() bool {
	tc := getTrackingContext()
	tc.batchDepth--
	return tc.batchDepth == 0
}

// queuePending records a listener for the batch flush.
func queuePending(l Listener) {
	tc := getTrackingContext()
	tc.pending = append(tc.pending, l)
}

// drainPending returns and clears the pending queue.
func drainPending() []Listener {
	tc := getTrackingContext()
	pending := tc.pending
	tc.pending = nil
	return pending
}

// WithListener runs fn with l as the active dependency-tracking consumer,
// restoring the previous consumer afterwards even if fn panics. Nesting is
// unbounded: a consumer evaluated from inside another consumer's run never
// corrupts the outer collection.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// WithOwner runs fn with the given owner scope adopting any effects and
// cleanups created inside. The previous owner is restored afterwards.
//
// Example:
//
//	scope := pulse.NewOwner(nil)
//	pulse.WithOwner(scope, func() {
//	    pulse.CreateEffect(func() pulse.Cleanup { ... return nil })
//	})
//	scope.Dispose() // tears down the effect
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// cleanupGoroutineContext removes the current goroutine's context.
// Optional; contexts are small and reused when goroutine IDs recycle.
func cleanupGoroutineContext() {
	trackingContexts.Delete(goroutineID())
}
