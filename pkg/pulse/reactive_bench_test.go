package pulse

import "testing"

func BenchmarkSignalSet(b *testing.B) {
	s := NewSignal(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalGetUntracked(b *testing.B) {
	s := NewSignal(42)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Get()
	}
}

func BenchmarkComputedMemoizedGet(b *testing.B) {
	s := NewSignal(1)
	c := NewComputed(func() int { return s.Get() * 2 })
	_ = c.Get()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Get()
	}
}

func BenchmarkComputedRecompute(b *testing.B) {
	s := NewSignal(0)
	c := NewComputed(func() int { return s.Get() * 2 })
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i + 1)
		_ = c.Get()
	}
}

func BenchmarkEffectRerun(b *testing.B) {
	s := NewSignal(0)
	e := CreateEffect(func() Cleanup {
		_ = s.Get()
		return nil
	})
	defer e.Dispose()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i + 1)
	}
}

func BenchmarkBatchedWrites(b *testing.B) {
	a := NewSignal(0)
	c := NewSignal(0)
	e := CreateEffect(func() Cleanup {
		_ = a.Get()
		_ = c.Get()
		return nil
	})
	defer e.Dispose()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Batch(func() {
			a.Set(i + 1)
			c.Set(i + 2)
		})
	}
}

func BenchmarkDiamondPropagation(b *testing.B) {
	source := NewSignal(0)
	left := NewComputed(func() int { return source.Get() + 1 })
	right := NewComputed(func() int { return source.Get() * 2 })
	top := NewComputed(func() int { return left.Get() + right.Get() })
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		source.Set(i + 1)
		_ = top.Get()
	}
}
