package pulse

import "sync"

// node provides type-erased producer bookkeeping: a stable identity plus
// the set of listeners subscribed to it. It is embedded in Signal[T] and
// Computed[T] to share subscription logic.
type node struct {
	id uint64

	// subs are the listeners subscribed to this producer.
	subs []Listener

	// subMu protects subs.
	subMu sync.RWMutex
}

// subscribe adds a listener, deduplicating by ID so a producer's
// subscriber set never contains the same consumer twice.
func (n *node) subscribe(l Listener) {
	if l == nil {
		return
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	lid := l.ID()
	for _, existing := range n.subs {
		if existing.ID() == lid {
			return
		}
	}

	n.subs = append(n.subs, l)
}

// unsubscribe removes a listener. Removing an absent listener is a no-op,
// which makes double-unsubscribe and double-dispose safe.
func (n *node) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()

	lid := l.ID()
	for i, existing := range n.subs {
		if existing.ID() == lid {
			// Order does not matter; swap with the last element.
			n.subs[i] = n.subs[len(n.subs)-1]
			n.subs = n.subs[:len(n.subs)-1]
			return
		}
	}
}

// notify invalidates every current subscriber. The subscriber slice is
// snapshotted first: a callback may dispose a sibling subscriber or
// register a new one, and mutating the live set during iteration must not
// skip or duplicate invocations.
//
// Batching is the listeners' concern, not the producer's: a Computed's
// MarkDirty always propagates immediately (mid-batch reads stay fresh),
// while Effect and Subscribe callbacks defer themselves to the flush.
func (n *node) notify() {
	n.subMu.RLock()
	subs := make([]Listener, len(n.subs))
	copy(subs, n.subs)
	n.subMu.RUnlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// clearSubs drops every subscription. Used on disposal.
func (n *node) clearSubs() {
	n.subMu.Lock()
	n.subs = nil
	n.subMu.Unlock()
}

// trackDependency registers n as a dependency of the currently active
// consumer and the consumer as a subscriber of n. No-op when no consumer
// is active (a bare Get outside any computed or effect).
func trackDependency(n *node) {
	l := getCurrentListener()
	if l == nil {
		return
	}

	n.subscribe(l)

	if dt, ok := l.(depTracker); ok {
		dt.addDep(n)
	}
}

// callbackListener adapts an external Subscribe callback to the Listener
// contract. Outside a batch the callback fires synchronously; inside a
// batch it is queued and the flush invokes it once.
type callbackListener struct {
	id uint64
	fn func()
}

func (c *callbackListener) MarkDirty() {
	if getBatchDepth() > 0 {
		queuePending(c)
		return
	}
	c.fn()
}

func (c *callbackListener) ID() uint64 {
	return c.id
}

// addCallback subscribes fn to this producer and returns an unsubscribe
// function that is safe to call more than once.
func (n *node) addCallback(fn func()) func() {
	l := &callbackListener{id: nextID(), fn: fn}
	n.subscribe(l)

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(l) })
	}
}
