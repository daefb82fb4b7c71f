package pulse

import (
	"sync"
	"sync/atomic"
	"time"
)

// StormBudget rate-limits notification-driven effect runs. It protects
// against amplification bugs where effects cascade into more effect runs,
// up to and including infinite write-notify loops.
//
// The budget applies only to runs triggered by invalidation; the initial
// run at CreateEffect is never counted.
type StormBudget struct {
	window     *slidingWindow
	onExceeded BudgetExceededMode
}

// BudgetExceededMode determines behavior when the budget is exceeded.
type BudgetExceededMode int

const (
	// BudgetModeThrottle drops excess effect runs silently (default).
	// The effect runs again on its next notification inside the window's
	// budget.
	BudgetModeThrottle BudgetExceededMode = iota

	// BudgetModePanic panics with ErrBudgetExceeded, surfacing the
	// amplification loop to the writer that triggered it.
	BudgetModePanic
)

// StormBudgetConfig configures a StormBudget.
type StormBudgetConfig struct {
	// MaxEffectRunsPerWindow caps notification-driven effect runs per
	// window. Zero means unlimited.
	MaxEffectRunsPerWindow int

	// WindowDuration is the sliding window size. Defaults to one second.
	WindowDuration time.Duration

	// OnExceeded selects throttle or panic behavior.
	OnExceeded BudgetExceededMode
}

// NewStormBudget creates a storm budget from cfg.
func NewStormBudget(cfg StormBudgetConfig) *StormBudget {
	window := cfg.WindowDuration
	if window == 0 {
		window = time.Second
	}

	return &StormBudget{
		window:     newSlidingWindow(window, cfg.MaxEffectRunsPerWindow),
		onExceeded: cfg.OnExceeded,
	}
}

// checkEffectRun reports whether another effect run fits in the window.
func (b *StormBudget) checkEffectRun() error {
	if b == nil {
		return nil
	}
	if !b.window.tryAdd() {
		return ErrBudgetExceeded
	}
	return nil
}

// Stats returns current budget usage.
func (b *StormBudget) Stats() BudgetStats {
	if b == nil {
		return BudgetStats{}
	}
	return BudgetStats{EffectRunsInWindow: b.window.count()}
}

// BudgetStats is a snapshot of budget usage.
type BudgetStats struct {
	EffectRunsInWindow int
}

var globalStormBudget atomic.Pointer[StormBudget]

// SetStormBudget installs a process-wide storm budget. Pass nil to remove
// it; the default is unlimited.
func SetStormBudget(b *StormBudget) {
	globalStormBudget.Store(b)
}

func activeStormBudget() *StormBudget {
	return globalStormBudget.Load()
}

// slidingWindow tracks events within a time window for rate limiting.
type slidingWindow struct {
	events     []time.Time
	windowSize time.Duration
	maxEvents  int
	mu         sync.Mutex
}

func newSlidingWindow(windowSize time.Duration, maxEvents int) *slidingWindow {
	return &slidingWindow{
		windowSize: windowSize,
		maxEvents:  maxEvents,
	}
}

// tryAdd attempts to record an event. Returns false when the window is at
// its limit.
func (w *slidingWindow) tryAdd() bool {
	if w.maxEvents == 0 {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-w.windowSize)

	valid := 0
	for _, t := range w.events {
		if t.After(cutoff) {
			w.events[valid] = t
			valid++
		}
	}
	w.events = w.events[:valid]

	if len(w.events) >= w.maxEvents {
		return false
	}

	w.events = append(w.events, now)
	return true
}

// count returns the number of events currently inside the window.
func (w *slidingWindow) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := time.Now().Add(-w.windowSize)

	n := 0
	for _, t := range w.events {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
