package observe

import (
	"context"
	"testing"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

func TestTracedBatchBatchesWrites(t *testing.T) {
	a := pulse.NewSignal(0)
	b := pulse.NewSignal(0)

	runs := 0
	e := pulse.CreateEffect(func() pulse.Cleanup {
		runs++
		_ = a.Get()
		_ = b.Get()
		return nil
	})
	defer e.Dispose()

	TracedBatch(context.Background(), "update", func() {
		a.Set(1)
		b.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected creation run plus one batched rerun, got %d", runs)
	}
	if a.Get() != 1 || b.Get() != 2 {
		t.Errorf("expected writes applied, got a=%d b=%d", a.Get(), b.Get())
	}
}

func TestTracedBatchRepanicsAfterFlush(t *testing.T) {
	a := pulse.NewSignal(0)

	runs := 0
	e := pulse.CreateEffect(func() pulse.Cleanup {
		runs++
		_ = a.Get()
		return nil
	})
	defer e.Dispose()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		TracedBatch(context.Background(), "boom", func() {
			a.Set(1)
			panic("boom")
		})
	}()

	// The write before the panic still flushed to the effect.
	if runs != 2 {
		t.Errorf("expected flush before repanic, got %d runs", runs)
	}
}
