package pulse

import "fmt"

// DebugMode enables debug printing in the pulse package, such as TxNamed
// transaction boundaries. Set at startup; not synchronized.
var DebugMode bool

// Debug holds fine-grained debug switches.
var Debug struct {
	// LogStormBudget prints a line when the storm budget drops an
	// effect run.
	LogStormBudget bool
}

// Batch coalesces notifications triggered inside fn into a single flush.
// Signal writes inside the batch still mark dependent computeds dirty
// immediately, so mid-batch reads are never stale, but dependent effects
// and Subscribe callbacks are queued and each distinct one runs exactly
// once when the outermost batch completes.
//
// Batches nest: inner calls are transparent pass-throughs sharing the one
// queue, and only the outermost call flushes. The flush also runs when fn
// panics, after which the panic propagates.
//
// Example:
//
//	pulse.Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// An effect reading both names re-ran once, not twice.
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			flushPending()
		}
	}()

	fn()
}

// RunBatch is Batch for functions with a return value; batches compose
// transparently around arbitrary return types.
func RunBatch[R any](fn func() R) R {
	var out R
	Batch(func() {
		out = fn()
	})
	return out
}

// flushPending deduplicates the queue by listener identity and notifies
// each distinct listener once. An empty queue is a no-op.
func flushPending() {
	pending := drainPending()
	if len(pending) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(pending))
	unique := make([]Listener, 0, len(pending))

	for _, l := range pending {
		id := l.ID()
		if !seen[id] {
			seen[id] = true
			unique = append(unique, l)
		}
	}

	if h := getHooks(); h != nil && h.OnBatchFlush != nil {
		h.OnBatchFlush(len(pending), len(unique))
	}

	// Batch depth is zero here, so each MarkDirty executes synchronously.
	for _, l := range unique {
		l.MarkDirty()
	}
}

// Untracked runs fn without tracking signal reads as dependencies. For a
// single read, Peek is clearer.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// UntrackedGet reads a signal without creating a dependency.
// Equivalent to s.Peek().
func UntrackedGet[T any](s *Signal[T]) T {
	return s.Peek()
}

// Tx runs fn as a transaction. Alias for Batch, matching transaction
// terminology.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named transaction. The name is printed in debug
// mode, which helps attribute flushes during development.
func TxNamed(name string, fn func()) {
	if DebugMode {
		fmt.Printf("[TX] %s start\n", name)
		defer fmt.Printf("[TX] %s end\n", name)
	}
	Batch(fn)
}
