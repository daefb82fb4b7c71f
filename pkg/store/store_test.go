package store

import (
	"testing"

	"github.com/pulse-dev/pulse/pkg/pulse"
)

func newScope(t *testing.T) *pulse.Owner {
	t.Helper()
	owner := pulse.NewOwner(nil)
	t.Cleanup(owner.Dispose)
	Attach(owner, New())
	return owner
}

func TestGlobalBehavesLikeSignal(t *testing.T) {
	g := NewGlobal("hello")

	if g.Get() != "hello" {
		t.Errorf("expected initial value, got %q", g.Get())
	}

	g.Set("world")
	if g.Get() != "world" {
		t.Errorf("expected updated value, got %q", g.Get())
	}
}

func TestSharedOutsideScopeReturnsInitial(t *testing.T) {
	counter := NewShared(7)

	if got := counter.Get(); got != 7 {
		t.Errorf("expected initial value outside scope, got %d", got)
	}

	// Writes outside a scope have nowhere to land.
	counter.Set(99)
	if got := counter.Get(); got != 7 {
		t.Errorf("expected write outside scope to be dropped, got %d", got)
	}
}

func TestSharedIsScopeLocal(t *testing.T) {
	counter := NewShared(0)

	scopeA := newScope(t)
	scopeB := newScope(t)

	pulse.WithOwner(scopeA, func() {
		counter.Set(1)
	})
	pulse.WithOwner(scopeB, func() {
		counter.Set(2)
	})

	pulse.WithOwner(scopeA, func() {
		if got := counter.Get(); got != 1 {
			t.Errorf("scope A: expected 1, got %d", got)
		}
	})
	pulse.WithOwner(scopeB, func() {
		if got := counter.Get(); got != 2 {
			t.Errorf("scope B: expected 2, got %d", got)
		}
	})
}

func TestSharedResolvesThroughChildScope(t *testing.T) {
	counter := NewShared(0)

	parent := newScope(t)
	child := pulse.NewOwner(parent)
	t.Cleanup(child.Dispose)

	pulse.WithOwner(parent, func() {
		counter.Set(10)
	})
	pulse.WithOwner(child, func() {
		if got := counter.Get(); got != 10 {
			t.Errorf("expected child scope to see parent store, got %d", got)
		}
	})
}

func TestSharedUpdate(t *testing.T) {
	counter := NewShared(5)
	scope := newScope(t)

	pulse.WithOwner(scope, func() {
		counter.Update(func(n int) int { return n * 2 })
		if got := counter.Get(); got != 10 {
			t.Errorf("expected 10, got %d", got)
		}
	})
}

func TestSharedIsReactiveWithinScope(t *testing.T) {
	counter := NewShared(0)
	scope := newScope(t)

	var seen []int
	pulse.WithOwner(scope, func() {
		e := pulse.CreateEffect(func() pulse.Cleanup {
			seen = append(seen, counter.Get())
			return nil
		})
		t.Cleanup(e.Dispose)

		counter.Set(1)
		counter.Set(2)
	})

	if len(seen) != 3 || seen[0] != 0 || seen[1] != 1 || seen[2] != 2 {
		t.Errorf("expected effect to observe 0,1,2, got %v", seen)
	}
}

func TestSharedPeekDoesNotTrack(t *testing.T) {
	counter := NewShared(0)
	scope := newScope(t)

	runs := 0
	pulse.WithOwner(scope, func() {
		e := pulse.CreateEffect(func() pulse.Cleanup {
			runs++
			_ = counter.Peek()
			return nil
		})
		t.Cleanup(e.Dispose)

		counter.Set(1)
	})

	if runs != 1 {
		t.Errorf("expected Peek not to subscribe, got %d runs", runs)
	}
}
