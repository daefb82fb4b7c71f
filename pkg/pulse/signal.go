package pulse

import (
	"fmt"
	"reflect"
	"sync"
)

// Signal is a mutable reactive cell. Reading it during a tracked execution
// (a computed's recompute or an effect's run) subscribes that consumer to
// the signal's changes.
type Signal[T any] struct {
	node node

	// value is the current signal value.
	value T

	// mu protects value.
	mu sync.RWMutex

	// equal decides whether a write changed the value. nil means
	// defaultEquals. It must be total and side-effect-free; the engine
	// does not guard against a panicking equality function.
	equal func(T, T) bool
}

// NewSignal creates a signal holding the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		node:  node{id: nextID()},
		value: initial,
	}
}

// Get returns the current value and registers the active consumer, if any,
// as a subscriber. Never fails.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track after releasing the value lock to avoid lock ordering issues
	// when the consumer's bookkeeping re-enters this signal.
	trackDependency(&s.node)

	return value
}

// Peek returns the current value without registering any dependency.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers. A write that the
// equality function reports as unchanged is a silent no-op; this is the
// primary mechanism by which unrelated recomputation is suppressed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		if h := getHooks(); h != nil && h.OnSignalWrite != nil {
			h.OnSignalWrite(s.node.id)
		}
		s.node.notify()
	}
}

// Update atomically replaces the value with fn(current), with the same
// equality suppression as Set.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		if h := getHooks(); h != nil && h.OnSignalWrite != nil {
			h.OnSignalWrite(s.node.id)
		}
		s.node.notify()
	}
}

// Subscribe registers an external callback invoked after the value
// changes. Inside a batch the callback is coalesced to a single
// invocation at the flush. The returned function unsubscribes and is
// idempotent under double-unsubscribe.
func (s *Signal[T]) Subscribe(fn func()) func() {
	return s.node.addCallback(fn)
}

// WithEquals configures a custom equality function and returns the signal
// for chaining. Useful when reflect.DeepEqual is too expensive or has the
// wrong semantics for T.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.node.id
}

// GetAny returns the current value type-erased. Part of the Reactive
// contract used by adapters that handle signals generically.
func (s *Signal[T]) GetAny() any {
	return s.Get()
}

// SetAny sets the value from a type-erased argument. Returns
// ErrTypeMismatch (wrapped) when value is not assignable to T.
func (s *Signal[T]) SetAny(value any) error {
	typed, ok := value.(T)
	if !ok {
		return fmt.Errorf("%w: cannot assign %T to signal of %T", ErrTypeMismatch, value, s.Peek())
	}
	s.Set(typed)
	return nil
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable kinds and falls back to
// reflect.DeepEqual for slices, maps, and structs.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
