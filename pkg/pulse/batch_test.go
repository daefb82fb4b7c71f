package pulse

import "testing"

func TestBatchCoalescesEffectRuns(t *testing.T) {
	// Scenario: an effect reading a and b runs once at creation and
	// exactly once after the batch, never once per write.
	a := NewSignal(0)
	b := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = a.Get()
		_ = b.Get()
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		a.Set(1)
		b.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected 2 total runs (creation + one flush), got %d", runs)
	}
}

func TestBatchManyWritesOneRun(t *testing.T) {
	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		for i := 1; i <= 50; i++ {
			count.Set(i)
		}
	})

	if runs != 2 {
		t.Errorf("expected 1 re-run for 50 writes, got %d total runs", runs)
	}
	if count.Get() != 50 {
		t.Errorf("expected final value 50, got %d", count.Get())
	}
}

func TestBatchNestedOnlyOutermostFlushes(t *testing.T) {
	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		count.Set(1)

		Batch(func() {
			count.Set(2)

			if runs != 1 {
				t.Errorf("inner batch must not flush, got %d runs", runs)
			}
		})

		if runs != 1 {
			t.Errorf("middle of outer batch must not flush, got %d runs", runs)
		}
	})

	if runs != 2 {
		t.Errorf("expected one flush after outermost batch, got %d runs", runs)
	}
}

func TestRunBatchReturnsValue(t *testing.T) {
	count := NewSignal(1)

	got := RunBatch(func() string {
		count.Set(2)
		return "done"
	})

	if got != "done" {
		t.Errorf("expected RunBatch to pass the return value through, got %q", got)
	}
	if count.Get() != 2 {
		t.Errorf("expected 2, got %d", count.Get())
	}
}

func TestBatchComputedStaysFreshMidBatch(t *testing.T) {
	count := NewSignal(1)
	double := NewComputed(func() int { return count.Get() * 2 })
	_ = double.Get()

	Batch(func() {
		count.Set(5)

		// Dirtiness propagates immediately inside the batch; a mid-batch
		// read must see the new value, not a stale cache.
		if double.Get() != 10 {
			t.Errorf("mid-batch read is stale: got %d, want 10", double.Get())
		}
	})
}

func TestBatchDiamondSingleRun(t *testing.T) {
	// Diamond: source feeds two computeds, both feed one effect. A single
	// write inside a batch must re-run the effect once with a consistent
	// pair of values.
	source := NewSignal(1)
	left := NewComputed(func() int { return source.Get() + 1 })
	right := NewComputed(func() int { return source.Get() * 10 })

	runs := 0
	var pairs [][2]int
	e := CreateEffect(func() Cleanup {
		runs++
		pairs = append(pairs, [2]int{left.Get(), right.Get()})
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		source.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected 2 runs total, got %d", runs)
	}
	last := pairs[len(pairs)-1]
	if last != [2]int{3, 20} {
		t.Errorf("effect observed inconsistent values: %v", last)
	}
}

func TestBatchSubscribeCallbackCoalesced(t *testing.T) {
	count := NewSignal(0)

	calls := 0
	unsub := count.Subscribe(func() { calls++ })
	defer unsub()

	Batch(func() {
		count.Set(1)
		count.Set(2)
		count.Set(3)
	})

	if calls != 1 {
		t.Errorf("expected 1 coalesced callback, got %d", calls)
	}
}

func TestBatchEmptyFlushIsNoop(t *testing.T) {
	count := NewSignal(5)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	Batch(func() {
		count.Set(5) // unchanged, nothing queued
	})
	Batch(func() {})

	if runs != 1 {
		t.Errorf("expected no re-runs for empty flushes, got %d total", runs)
	}
}

func TestBatchPanicStillFlushes(t *testing.T) {
	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate from Batch")
			}
		}()

		Batch(func() {
			count.Set(1)
			panic("batch failure")
		})
	}()

	if runs != 2 {
		t.Errorf("expected queued work flushed despite panic, got %d runs", runs)
	}

	if getBatchDepth() != 0 {
		t.Errorf("batch depth leaked: %d", getBatchDepth())
	}
}

func TestUntracked(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			if count.Get() != 42 {
				t.Errorf("expected 42, got %d", count.Get())
			}
		})
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Untracked read must not subscribe, got %d", listener.getDirtyCount())
	}
}

func TestUntrackedRestoresListener(t *testing.T) {
	tracked := NewSignal(0)
	ignored := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = tracked.Get()
		Untracked(func() {
			_ = ignored.Get()
		})
	})

	ignored.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Errorf("ignored signal must not notify, got %d", listener.getDirtyCount())
	}

	tracked.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("tracked signal must notify, got %d", listener.getDirtyCount())
	}
}

func TestUntrackedGet(t *testing.T) {
	count := NewSignal(7)
	listener := newTestListener()

	WithListener(listener, func() {
		if UntrackedGet(count) != 7 {
			t.Errorf("expected 7")
		}
	})

	count.Set(8)
	if listener.getDirtyCount() != 0 {
		t.Errorf("UntrackedGet must not subscribe, got %d", listener.getDirtyCount())
	}
}

func TestTxAndTxNamed(t *testing.T) {
	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	Tx(func() {
		count.Set(1)
		count.Set(2)
	})
	if runs != 2 {
		t.Errorf("Tx: expected 2 total runs, got %d", runs)
	}

	TxNamed("rename", func() {
		count.Set(3)
	})
	if runs != 3 {
		t.Errorf("TxNamed: expected 3 total runs, got %d", runs)
	}
}

func TestTxNamedDebugMode(t *testing.T) {
	old := DebugMode
	DebugMode = true
	defer func() { DebugMode = old }()

	count := NewSignal(0)
	TxNamed("debug", func() {
		count.Set(42)
	})

	if count.Get() != 42 {
		t.Errorf("expected 42, got %d", count.Get())
	}
}
