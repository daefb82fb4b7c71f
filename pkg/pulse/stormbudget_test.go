package pulse

import (
	"errors"
	"testing"
	"time"
)

func TestStormBudgetThrottlesEffectRuns(t *testing.T) {
	SetStormBudget(NewStormBudget(StormBudgetConfig{
		MaxEffectRunsPerWindow: 3,
		WindowDuration:         time.Minute,
	}))
	defer SetStormBudget(nil)

	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	for i := 1; i <= 10; i++ {
		count.Set(i)
	}

	// Creation run is exempt; notification-driven runs are capped at 3.
	if runs != 4 {
		t.Errorf("expected 4 total runs (1 creation + 3 budgeted), got %d", runs)
	}

	stats := activeStormBudget().Stats()
	if stats.EffectRunsInWindow != 3 {
		t.Errorf("expected 3 runs recorded in window, got %d", stats.EffectRunsInWindow)
	}
}

func TestStormBudgetPanicMode(t *testing.T) {
	SetStormBudget(NewStormBudget(StormBudgetConfig{
		MaxEffectRunsPerWindow: 1,
		WindowDuration:         time.Minute,
		OnExceeded:             BudgetModePanic,
	}))
	defer SetStormBudget(nil)

	count := NewSignal(0)
	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	count.Set(1) // within budget

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when budget exceeded")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrBudgetExceeded) {
			t.Fatalf("expected ErrBudgetExceeded, got %v", r)
		}
	}()

	count.Set(2) // exceeds budget
}

func TestStormBudgetNilIsUnlimited(t *testing.T) {
	SetStormBudget(nil)

	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	for i := 1; i <= 100; i++ {
		count.Set(i)
	}

	if runs != 101 {
		t.Errorf("expected unlimited runs, got %d", runs)
	}
}

func TestStormBudgetZeroLimitIsUnlimited(t *testing.T) {
	SetStormBudget(NewStormBudget(StormBudgetConfig{}))
	defer SetStormBudget(nil)

	count := NewSignal(0)

	runs := 0
	e := CreateEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})
	defer e.Dispose()

	for i := 1; i <= 20; i++ {
		count.Set(i)
	}

	if runs != 21 {
		t.Errorf("expected zero limit to mean unlimited, got %d runs", runs)
	}
}

func TestSlidingWindowExpiry(t *testing.T) {
	w := newSlidingWindow(10*time.Millisecond, 2)

	if !w.tryAdd() || !w.tryAdd() {
		t.Fatal("expected first two events to fit")
	}
	if w.tryAdd() {
		t.Fatal("expected third event rejected")
	}

	time.Sleep(15 * time.Millisecond)

	if !w.tryAdd() {
		t.Error("expected room after the window expired")
	}
	if w.count() != 1 {
		t.Errorf("expected 1 live event, got %d", w.count())
	}
}
