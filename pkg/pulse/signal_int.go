package pulse

// IntSignal wraps Signal[int] with convenience methods for counters.
type IntSignal struct {
	*Signal[int]
}

// NewIntSignal creates a new IntSignal with the given initial value.
func NewIntSignal(initial int) *IntSignal {
	return &IntSignal{NewSignal(initial)}
}

// Inc increments the value by 1.
func (s *IntSignal) Inc() {
	s.Add(1)
}

// Dec decrements the value by 1.
func (s *IntSignal) Dec() {
	s.Add(-1)
}

// Add adds n to the value.
func (s *IntSignal) Add(n int) {
	s.Update(func(v int) int { return v + n })
}
