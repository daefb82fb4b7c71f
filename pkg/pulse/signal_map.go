package pulse

import "maps"

// MapSignal wraps Signal[map[K]V] with copy-on-write key operations, so
// subscribers never observe in-place mutation of a previously read map.
type MapSignal[K comparable, V any] struct {
	*Signal[map[K]V]
}

// NewMapSignal creates a new MapSignal. A nil initial map becomes an
// empty one.
func NewMapSignal[K comparable, V any](initial map[K]V) *MapSignal[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	return &MapSignal[K, V]{NewSignal(initial)}
}

// SetKey sets key to value in a copied map.
func (s *MapSignal[K, V]) SetKey(key K, value V) {
	s.Update(func(m map[K]V) map[K]V {
		next := maps.Clone(m)
		next[key] = value
		return next
	})
}

// DeleteKey removes key from a copied map. No-op when absent.
func (s *MapSignal[K, V]) DeleteKey(key K) {
	s.Update(func(m map[K]V) map[K]V {
		if _, ok := m[key]; !ok {
			return m
		}
		next := maps.Clone(m)
		delete(next, key)
		return next
	})
}

// HasKey reports whether key is present. Reads the signal and creates a
// dependency.
func (s *MapSignal[K, V]) HasKey(key K) bool {
	_, ok := s.Get()[key]
	return ok
}

// Len returns the number of entries. Reads the signal and creates a
// dependency.
func (s *MapSignal[K, V]) Len() int {
	return len(s.Get())
}
