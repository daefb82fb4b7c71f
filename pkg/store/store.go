package store

import (
	"sync"
	"sync/atomic"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

// ScopeKey is the owner-context key under which a Store is attached.
var ScopeKey = &struct{ name string }{"pulse.Store"}

// Store holds scope-local signals, created lazily per definition. Attach
// one to an owner scope and every Shared definition resolves its signal
// through it, so independent scopes (sessions, tests) get independent
// state from the same package-level declarations.
type Store struct {
	signals sync.Map // map[uint64]any
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Attach binds the store to an owner scope. Shared definitions resolved
// while that scope (or a descendant) is active use this store.
func Attach(owner *pulse.Owner, s *Store) {
	owner.SetValue(ScopeKey, s)
}

// Global declares a process-wide signal. It is an ordinary pulse.Signal
// declared at package level; the wrapper exists so call sites read the
// same way as Shared declarations.
type Global[T any] struct {
	*pulse.Signal[T]
}

// NewGlobal creates a process-wide signal with the given initial value.
func NewGlobal[T any](initial T) *Global[T] {
	return &Global[T]{pulse.NewSignal(initial)}
}

// Shared declares a scope-local signal. The declaration itself holds no
// value; each store materializes its own signal on first access.
type Shared[T any] struct {
	id      uint64
	initial T
}

var defCounter uint64

// NewShared creates a scope-local signal definition.
func NewShared[T any](initial T) *Shared[T] {
	return &Shared[T]{
		id:      atomic.AddUint64(&defCounter, 1),
		initial: initial,
	}
}

// Get returns the current value for the active scope, subscribing the
// current consumer. Outside any scope it returns the initial value.
func (s *Shared[T]) Get() T {
	sig := s.resolve()
	if sig == nil {
		return s.initial
	}
	return sig.Get()
}

// Peek returns the current value without tracking.
func (s *Shared[T]) Peek() T {
	sig := s.resolve()
	if sig == nil {
		return s.initial
	}
	return sig.Peek()
}

// Set updates the value for the active scope. No-op outside a scope.
func (s *Shared[T]) Set(value T) {
	if sig := s.resolve(); sig != nil {
		sig.Set(value)
	}
}

// Update replaces the value with fn(current) for the active scope.
func (s *Shared[T]) Update(fn func(T) T) {
	if sig := s.resolve(); sig != nil {
		sig.Update(fn)
	}
}

// resolve finds or creates the underlying signal in the active scope's
// store. Returns nil when no store is attached.
func (s *Shared[T]) resolve() *pulse.Signal[T] {
	val := pulse.GetContext(ScopeKey)
	if val == nil {
		return nil
	}

	st, ok := val.(*Store)
	if !ok {
		return nil
	}

	if existing, ok := st.signals.Load(s.id); ok {
		return existing.(*pulse.Signal[T])
	}

	// LoadOrStore keeps the first signal if two goroutines race here.
	sig := pulse.NewSignal(s.initial)
	actual, loaded := st.signals.LoadOrStore(s.id, sig)
	if loaded {
		return actual.(*pulse.Signal[T])
	}
	return sig
}
