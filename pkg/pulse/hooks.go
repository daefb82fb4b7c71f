package pulse

import (
	"sync/atomic"
	"time"
)

// Hooks receives engine events for external instrumentation (see the
// observe package). All fields are optional. Hooks run synchronously on
// the mutating goroutine and must be fast and non-reentrant: calling back
// into the graph from a hook is not supported.
type Hooks struct {
	// OnSignalWrite fires after a signal write that changed the value,
	// before subscribers are notified.
	OnSignalWrite func(id uint64)

	// OnComputedRecompute fires after a successful recompute.
	OnComputedRecompute func(id uint64, elapsed time.Duration)

	// OnEffectRun fires after an effect body returns.
	OnEffectRun func(id uint64, elapsed time.Duration)

	// OnBatchFlush fires when the outermost batch flushes a non-empty
	// queue, with the raw queue length and the deduplicated count.
	OnBatchFlush func(queued, notified int)
}

var activeHooks atomic.Pointer[Hooks]

// SetHooks installs process-wide instrumentation hooks. Pass nil to
// remove them. Intended to be called once at startup.
func SetHooks(h *Hooks) {
	activeHooks.Store(h)
}

func getHooks() *Hooks {
	return activeHooks.Load()
}
