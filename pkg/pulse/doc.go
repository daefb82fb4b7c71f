// Package pulse implements a fine-grained reactive signal graph:
// writable signals, lazily memoized computed values, side-effecting
// subscribers, and batched transactions.
//
// Dependencies are tracked automatically at runtime. Reading a signal
// during a tracked execution (a computed's recompute or an effect's run)
// subscribes that consumer to the signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := pulse.NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a cached derived computation:
//
//	doubled := pulse.NewComputed(func() int { return count.Get() * 2 })
//	value := doubled.Get()  // Recomputes only if dependencies changed
//
// Effect runs side effects when dependencies change:
//
//	e := pulse.CreateEffect(func() pulse.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
//	defer e.Dispose()
//
// # Batching
//
// Multiple signal writes can be batched so dependent effects run once:
//
//	pulse.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	    c.Set(3)
//	})  // Effects reading a, b, c each re-run a single time
//
// Inside a batch, computed values still become dirty immediately; reading
// one mid-batch never yields a stale value. Only effect runs and external
// Subscribe callbacks are deferred to the outermost batch's flush.
//
// # Panics
//
// The engine never swallows panics. A panic from a compute function or an
// effect body propagates to the caller of Get, Set, or Batch. A computed
// whose compute function panicked stays dirty and retries on the next
// read; the tracking context is restored on every exit path.
//
// # Thread Safety
//
// All primitives use internal locking and the tracking context is
// per-goroutine, so independent graphs on separate goroutines do not
// interfere. The graph itself is designed for single-goroutine mutation;
// callers that share one graph across goroutines must serialize writes
// themselves.
package pulse
